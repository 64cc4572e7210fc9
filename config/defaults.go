package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultConfigPath    = "~/.config/notecard/config.toml"
	projectConfigName    = "notecard.toml"
	defaultNotionBaseURL = "https://api.notion.com/v1"
	defaultNotionVersion = "2022-06-28"
	defaultLLMBaseURL    = "https://api.openai.com/v1"
	defaultLLMModel      = "gpt-4o-mini"
	defaultFilename      = "header_${id}.png"
)

// Default 返回全部默认值。
func Default() Config {
	return Config{
		Notion: Notion{
			BaseURL:        defaultNotionBaseURL,
			Version:        defaultNotionVersion,
			StatusProperty: "Status",
			ReadyStatus:    "Ready",
			DoneStatus:     "Done",
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			MaxTokens:      4000,
			Temperature:    0.7,
			TimeoutSeconds: 60,
			MaxRetries:     3,
		},
		Card: Card{
			AssetsDir: ".",
		},
		Output: Output{
			Dir:      "drafts",
			Filename: defaultFilename,
		},
		State: State{
			Ledger: filepath.Join(defaultStateDir(), "ledger.db"),
			Lock:   filepath.Join(defaultStateDir(), "run.lock"),
		},
		Log: Log{
			Level: "info",
		},
	}
}

func defaultStateDir() string {
	if base, ok := os.LookupEnv("XDG_STATE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "notecard")
	}
	return "~/.local/state/notecard"
}
