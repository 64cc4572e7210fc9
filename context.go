package main

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/ByLCY/notecard/config"
	"github.com/ByLCY/notecard/logging"
	canvasrenderer "github.com/ByLCY/notecard/renderer/canvas"
	"github.com/ByLCY/notecard/theme"
)

type globalFlags struct {
	config   string
	logLevel string
	logJSON  bool
}

type commandContext struct {
	flags  *globalFlags
	stderr io.Writer

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     hclog.Logger
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags, stderr: os.Stderr}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.log().Debug("配置已加载", "path", path, "exists", exists)
	})
	return c.config, c.configErr
}

// log 按命令行参数优先、配置文件其次的顺序确定日志级别与格式。
func (c *commandContext) log() hclog.Logger {
	c.loggerOnce.Do(func() {
		level, json := c.flags.logLevel, c.flags.logJSON
		if c.config != nil {
			if strings.TrimSpace(level) == "" {
				level = c.config.Log.Level
			}
			json = json || c.config.Log.JSON
		}
		if strings.TrimSpace(level) == "" {
			level = logging.DefaultLevel
		}
		c.logger = logging.New("notecard", level, c.stderr, json)
	})
	return c.logger
}

// loadTheme 优先使用 --theme，其次使用配置中的主题，都没有时使用默认主题。
func (c *commandContext) loadTheme(override string) (*theme.Theme, error) {
	path := strings.TrimSpace(override)
	if path == "" && c.config != nil {
		path = c.config.Card.Theme
	}
	th, err := theme.Load(path)
	if err != nil {
		return nil, err
	}
	c.log().Debug("主题已加载", "name", th.Name, "version", th.Version, "path", path)
	return th, nil
}

func (c *commandContext) newRenderer(th *theme.Theme) (*canvasrenderer.Renderer, error) {
	baseDir := "."
	if c.config != nil && c.config.Card.AssetsDir != "" {
		baseDir = c.config.Card.AssetsDir
	}
	return canvasrenderer.NewRendererWithOptions(th.RendererOptions(baseDir, c.log()))
}
