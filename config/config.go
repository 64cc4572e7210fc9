// Package config 读取 notecard 的 TOML 配置。
//
// 配置按子系统分段：
//   - Notion: 文章数据库的访问参数
//   - LLM: 文章整形使用的 OpenAI 兼容接口
//   - Card: 头图主题与素材目录
//   - Output: 草稿输出目录与文件名模板
//   - State: 处理记录数据库与运行锁
//   - Log: 日志级别与格式
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Notion 描述文章数据库。
type Notion struct {
	Token          string `toml:"token"`
	DatabaseID     string `toml:"database_id"`
	BaseURL        string `toml:"base_url"`
	Version        string `toml:"version"`
	StatusProperty string `toml:"status_property"`
	ReadyStatus    string `toml:"ready_status"`
	DoneStatus     string `toml:"done_status"`
}

// LLM 是 OpenAI 兼容接口的连接参数。
type LLM struct {
	APIKey         string  `toml:"api_key"`
	BaseURL        string  `toml:"base_url"`
	Model          string  `toml:"model"`
	MaxTokens      int     `toml:"max_tokens"`
	Temperature    float64 `toml:"temperature"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	MaxRetries     int     `toml:"max_retries"`
}

// Card 描述头图主题。
type Card struct {
	Theme     string `toml:"theme"`      // 主题文件，为空时使用内置默认主题
	AssetsDir string `toml:"assets_dir"` // 主题内相对路径的根目录
}

// Output 描述草稿输出位置。
type Output struct {
	Dir      string `toml:"dir"`
	Filename string `toml:"filename"` // 头图文件名模板，支持 ${id}
}

// State 描述运行状态文件。
type State struct {
	Ledger string `toml:"ledger"`
	Lock   string `toml:"lock"`
}

// Log 描述日志输出。
type Log struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
}

// Config 汇总全部配置。
type Config struct {
	Notion Notion `toml:"notion"`
	LLM    LLM    `toml:"llm"`
	Card   Card   `toml:"card"`
	Output Output `toml:"output"`
	State  State  `toml:"state"`
	Log    Log    `toml:"log"`
}

// DefaultConfigPath 返回默认配置文件位置。
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load 查找并解析配置文件，返回配置、实际路径以及文件是否存在。
// 文件不存在时使用默认值并继续应用环境变量。
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("打开配置文件失败: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("解析配置文件 %s 失败: %w", resolvedPath, describeDecodeError(err))
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

// describeDecodeError 为 TOML 错误补充行列信息。
func describeDecodeError(err error) error {
	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		row, col := decodeErr.Position()
		return fmt.Errorf("第 %d 行第 %d 列: %w", row, col, err)
	}
	var strictErr *toml.StrictMissingError
	if errors.As(err, &strictErr) {
		return fmt.Errorf("存在未知配置项: %w", err)
	}
	return err
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("读取配置文件信息失败: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories 创建输出与状态文件所在目录。
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Output.Dir, filepath.Dir(c.State.Ledger), filepath.Dir(c.State.Lock)} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建目录 %q 失败: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("无法确定用户主目录: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("无法解析绝对路径 %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath 对外暴露路径展开规则。
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
