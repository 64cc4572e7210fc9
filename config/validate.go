package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ByLCY/notecard/binding"
	"github.com/ByLCY/notecard/logging"
)

// Validate 检查与远程服务无关的配置项。
func (c *Config) Validate() error {
	if !logging.ValidLevel(c.Log.Level) {
		return fmt.Errorf("log.level %q 无效，可选 trace/debug/info/warn/error", c.Log.Level)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens 必须为正数")
	}
	if c.LLM.TimeoutSeconds <= 0 {
		return fmt.Errorf("llm.timeout_seconds 必须为正数")
	}
	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("llm.max_retries 不能为负数")
	}
	if strings.TrimSpace(c.Output.Dir) == "" {
		return fmt.Errorf("output.dir 不能为空")
	}
	if err := validateFilename(c.Output.Filename); err != nil {
		return err
	}
	return nil
}

// ValidateRemote 检查执行流水线所需的凭据。
func (c *Config) ValidateRemote() error {
	var errs []error
	if c.Notion.Token == "" {
		errs = append(errs, errors.New("缺少 notion.token（或环境变量 NOTION_TOKEN）"))
	}
	if c.Notion.DatabaseID == "" {
		errs = append(errs, errors.New("缺少 notion.database_id（或环境变量 NOTION_DATABASE_ID）"))
	}
	if c.LLM.APIKey == "" {
		errs = append(errs, errors.New("缺少 llm.api_key（或环境变量 OPENAI_API_KEY）"))
	}
	return errors.Join(errs...)
}

func validateFilename(tmpl string) error {
	for _, p := range binding.Placeholders(tmpl) {
		if p != "id" && p != "date" {
			return fmt.Errorf("output.filename 不支持占位符 ${%s}", p)
		}
	}
	if sample := binding.Interpolate(tmpl, map[string]any{"id": "1", "date": "20060102"}); filepath.Base(sample) != sample {
		return fmt.Errorf("output.filename 不能包含目录: %q", tmpl)
	}
	return nil
}
