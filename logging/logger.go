// Package logging 统一创建 hclog 日志器。
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/mattn/go-isatty"
)

// DefaultLevel 是未指定级别时使用的日志级别。
const DefaultLevel = "info"

// Options 配置日志输出。
type Options struct {
	Name   string
	Level  string
	Output io.Writer
	JSON   bool
}

// New 创建 hclog 日志器；output 为空时写入 stderr。
func New(name, level string, output io.Writer, json bool) hclog.Logger {
	return NewWithOptions(Options{Name: name, Level: level, Output: output, JSON: json})
}

// NewWithOptions 按 Options 创建日志器。终端输出时启用颜色。
func NewWithOptions(opts Options) hclog.Logger {
	output := opts.Output
	if output == nil {
		output = os.Stderr
	}
	color := hclog.ColorOff
	if !opts.JSON && isTerminal(output) {
		color = hclog.AutoColor
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       opts.Name,
		Level:      ParseLevel(opts.Level),
		JSONFormat: opts.JSON,
		Output:     output,
		Color:      color,
		TimeFormat: "2006-01-02T15:04:05Z",
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	})
}

// ParseLevel 把字符串转换为日志级别，无法识别时回退到 info。
func ParseLevel(level string) hclog.Level {
	l := hclog.LevelFromString(strings.TrimSpace(level))
	if l == hclog.NoLevel {
		return hclog.Info
	}
	return l
}

// ValidLevel 判断级别字符串是否可识别。
func ValidLevel(level string) bool {
	if strings.TrimSpace(level) == "" {
		return true
	}
	return hclog.LevelFromString(strings.TrimSpace(level)) != hclog.NoLevel
}

// Discard 返回丢弃所有输出的日志器，供测试使用。
func Discard() hclog.Logger {
	return hclog.NewNullLogger()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
