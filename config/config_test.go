package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"NOTION_TOKEN", "NOTION_DATABASE_ID", "OPENAI_API_KEY", "OPENAI_MODEL"} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notecard.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	if exists || resolved != path {
		t.Fatalf("文件不存在时应返回原路径且 exists=false: %s %v", resolved, exists)
	}
	if cfg.Notion.Version != "2022-06-28" || cfg.Notion.ReadyStatus != "Ready" || cfg.Notion.DoneStatus != "Done" {
		t.Fatalf("Notion 默认值错误: %+v", cfg.Notion)
	}
	if cfg.Output.Filename != "header_${id}.png" || !filepath.IsAbs(cfg.Output.Dir) {
		t.Fatalf("输出默认值错误: %+v", cfg.Output)
	}
	if strings.HasPrefix(cfg.State.Ledger, "~") || !filepath.IsAbs(cfg.State.Lock) {
		t.Fatalf("状态路径应展开为绝对路径: %+v", cfg.State)
	}
	if err := cfg.ValidateRemote(); err == nil {
		t.Fatalf("缺少凭据时 ValidateRemote 应报错")
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[notion]
token = "file-token"
database_id = "db-1"
base_url = "http://localhost:9999/v1/"

[llm]
api_key = "sk-file"
model = "gpt-file"
max_tokens = 2000

[output]
dir = "out"
filename = "card_${date}_${id}.png"

[log]
level = "DEBUG"
json = true
`)
	t.Setenv("NOTION_TOKEN", "env-token")
	t.Setenv("OPENAI_MODEL", "gpt-env")

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	if !exists {
		t.Fatalf("应识别到配置文件")
	}
	if cfg.Notion.Token != "env-token" || cfg.Notion.DatabaseID != "db-1" {
		t.Fatalf("环境变量应覆盖文件值: %+v", cfg.Notion)
	}
	if cfg.Notion.BaseURL != "http://localhost:9999/v1" {
		t.Fatalf("base_url 应去掉结尾斜杠: %s", cfg.Notion.BaseURL)
	}
	if cfg.LLM.Model != "gpt-env" || cfg.LLM.APIKey != "sk-file" || cfg.LLM.MaxTokens != 2000 {
		t.Fatalf("LLM 配置错误: %+v", cfg.LLM)
	}
	if cfg.LLM.TimeoutSeconds != 60 {
		t.Fatalf("未出现在文件中的项应保留默认值: %d", cfg.LLM.TimeoutSeconds)
	}
	if cfg.Log.Level != "debug" || !cfg.Log.JSON {
		t.Fatalf("日志配置错误: %+v", cfg.Log)
	}
	if err := cfg.ValidateRemote(); err != nil {
		t.Fatalf("凭据齐全时不应报错: %v", err)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	clearEnv(t)
	cases := map[string]string{
		"unknown key":     "[notion]\ntokn = \"x\"\n",
		"syntax":          "[notion\n",
		"bad level":       "[log]\nlevel = \"loud\"\n",
		"bad filename":    "[output]\nfilename = \"../${id}.png\"\n",
		"bad placeholder": "[output]\nfilename = \"${title}.png\"\n",
		"zero tokens":     "[llm]\nmax_tokens = 0\n",
	}
	for name, body := range cases {
		if _, _, _, err := Load(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: 应返回错误", name)
		}
	}
}

func TestValidateRemoteListsAllMissing(t *testing.T) {
	cfg := Default()
	err := cfg.ValidateRemote()
	if err == nil {
		t.Fatalf("应报错")
	}
	for _, want := range []string{"NOTION_TOKEN", "NOTION_DATABASE_ID", "OPENAI_API_KEY"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("错误信息缺少 %s: %v", want, err)
		}
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("无法确定主目录")
	}
	got, err := ExpandPath("~/notecard/x.db")
	if err != nil || got != filepath.Join(home, "notecard", "x.db") {
		t.Fatalf("展开 ~ 失败: %s %v", got, err)
	}
	if got, _ := ExpandPath(""); got != "" {
		t.Fatalf("空路径应保持为空")
	}
}
