package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeNotion()
	c.normalizeLLM()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	return nil
}

func (c *Config) normalizeNotion() {
	if value, ok := lookupEnv("NOTION_TOKEN"); ok {
		c.Notion.Token = value
	}
	if value, ok := lookupEnv("NOTION_DATABASE_ID"); ok {
		c.Notion.DatabaseID = value
	}
	c.Notion.Token = strings.TrimSpace(c.Notion.Token)
	c.Notion.DatabaseID = strings.TrimSpace(c.Notion.DatabaseID)
	c.Notion.BaseURL = strings.TrimRight(strings.TrimSpace(c.Notion.BaseURL), "/")
	if c.Notion.BaseURL == "" {
		c.Notion.BaseURL = defaultNotionBaseURL
	}
	if strings.TrimSpace(c.Notion.Version) == "" {
		c.Notion.Version = defaultNotionVersion
	}
	if c.Notion.StatusProperty == "" {
		c.Notion.StatusProperty = "Status"
	}
	if c.Notion.ReadyStatus == "" {
		c.Notion.ReadyStatus = "Ready"
	}
	if c.Notion.DoneStatus == "" {
		c.Notion.DoneStatus = "Done"
	}
}

func (c *Config) normalizeLLM() {
	if value, ok := lookupEnv("OPENAI_API_KEY"); ok {
		c.LLM.APIKey = value
	}
	if value, ok := lookupEnv("OPENAI_MODEL"); ok {
		c.LLM.Model = value
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.BaseURL = strings.TrimRight(strings.TrimSpace(c.LLM.BaseURL), "/")
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Card.Theme, err = expandPath(c.Card.Theme); err != nil {
		return fmt.Errorf("card.theme: %w", err)
	}
	if c.Card.AssetsDir, err = expandPath(c.Card.AssetsDir); err != nil {
		return fmt.Errorf("card.assets_dir: %w", err)
	}
	if c.Output.Dir, err = expandPath(c.Output.Dir); err != nil {
		return fmt.Errorf("output.dir: %w", err)
	}
	if strings.TrimSpace(c.Output.Filename) == "" {
		c.Output.Filename = defaultFilename
	}
	if c.State.Ledger, err = expandPath(c.State.Ledger); err != nil {
		return fmt.Errorf("state.ledger: %w", err)
	}
	if c.State.Lock, err = expandPath(c.State.Lock); err != nil {
		return fmt.Errorf("state.lock: %w", err)
	}
	return nil
}

// lookupEnv 只接受非空的环境变量。
func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return strings.TrimSpace(value), true
}
