// Package formatter 用大模型把素材整理成 note 记事，并拆分出标题与正文。
package formatter

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/notecard/binding"
)

// 写作模式。
const (
	ModeEssay   = "共感・エッセイ型"
	ModeKnowhow = "ノウハウ・ビジネス型"
	ModeRewrite = "推敲・リライト型"
)

// FallbackTitle 在无法从输出中取得标题时使用。
const FallbackTitle = "新しい記事"

//go:embed prompts/*.md
var promptFS embed.FS

var modePromptFiles = map[string]string{
	ModeEssay:   "prompts/essay.md",
	ModeKnowhow: "prompts/knowhow.md",
	ModeRewrite: "prompts/rewrite.md",
}

// Completer 是一次 system + user 对话的抽象，便于在测试中替换。
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Article 是整形后的记事。
type Article struct {
	Title string
	Body  string
	Mode  string
}

// Formatter 组合提示词并解析模型输出。
type Formatter struct {
	completer Completer
	base      string
	modes     map[string]string
	user      string
	logger    hclog.Logger
}

// New 使用内置提示词创建 Formatter。
func New(completer Completer, logger hclog.Logger) (*Formatter, error) {
	if completer == nil {
		return nil, fmt.Errorf("formatter: completer 不能为空")
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	f := &Formatter{completer: completer, modes: map[string]string{}, logger: logger.Named("formatter")}
	var err error
	if f.base, err = readPrompt("prompts/base.md"); err != nil {
		return nil, err
	}
	if f.user, err = readPrompt("prompts/user.md"); err != nil {
		return nil, err
	}
	for mode, file := range modePromptFiles {
		if f.modes[mode], err = readPrompt(file); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Modes 返回支持的写作模式。
func Modes() []string {
	return []string{ModeEssay, ModeKnowhow, ModeRewrite}
}

// ResolveMode 未知模式回退到共感・エッセイ型。
func ResolveMode(mode string) string {
	if _, ok := modePromptFiles[strings.TrimSpace(mode)]; ok {
		return strings.TrimSpace(mode)
	}
	return ModeEssay
}

// SystemPrompt 返回某个模式的完整 system 提示词。
func (f *Formatter) SystemPrompt(mode string) string {
	return f.base + "\n\n" + f.modes[ResolveMode(mode)]
}

// UserPrompt 把素材填入用户消息模板。
func (f *Formatter) UserPrompt(content string) (string, error) {
	return binding.Strict(f.user, map[string]any{"content": strings.TrimSpace(content)})
}

// Format 调用模型整形素材。
func (f *Formatter) Format(ctx context.Context, content, mode string) (Article, error) {
	if strings.TrimSpace(content) == "" {
		return Article{}, fmt.Errorf("formatter: 素材为空")
	}
	resolved := ResolveMode(mode)
	if resolved != strings.TrimSpace(mode) {
		f.logger.Warn("未知的写作模式，使用默认模式", "mode", mode, "fallback", resolved)
	}
	user, err := f.UserPrompt(content)
	if err != nil {
		return Article{}, err
	}
	out, err := f.completer.Complete(ctx, f.SystemPrompt(resolved), user)
	if err != nil {
		return Article{}, fmt.Errorf("formatter: 调用模型失败: %w", err)
	}
	title, body := SplitTitle(out)
	f.logger.Debug("记事已整形", "mode", resolved, "title", title, "body_runes", len([]rune(body)))
	return Article{Title: title, Body: body, Mode: resolved}, nil
}

// SplitTitle 取第一个非空行作为标题（去掉开头的 #），其余部分为正文。
// 找不到标题时返回 FallbackTitle 与完整文本。
func SplitTitle(text string) (string, string) {
	text = norm.NFC.String(text)
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, line := range lines {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		title := strings.TrimSpace(strings.TrimLeft(stripped, "#"))
		if title == "" {
			break
		}
		return title, strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
	}
	return FallbackTitle, text
}

func readPrompt(name string) (string, error) {
	data, err := promptFS.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("formatter: 读取提示词 %s 失败: %w", name, err)
	}
	return strings.TrimSpace(string(data)), nil
}
