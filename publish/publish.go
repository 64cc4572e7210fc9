// Package publish 把整形后的记事与头图保存为草稿。
package publish

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/ByLCY/notecard/binding"
)

// Draft 是一篇待发布的草稿。
type Draft struct {
	ArticleID string
	Title     string
	Body      string
	Header    []byte // PNG
}

// Publisher 发布草稿并返回草稿位置。
type Publisher interface {
	Publish(ctx context.Context, draft Draft) (string, error)
}

// DirPublisher 把草稿写入 <Dir>/<uuid>/ 目录。
type DirPublisher struct {
	Dir      string
	Filename string // 头图文件名模板，支持 ${id} 与 ${date}
	Logger   hclog.Logger

	now   func() time.Time
	newID func() string
}

var _ Publisher = (*DirPublisher)(nil)

const (
	articleFile     = "article.md"
	defaultFilename = "header.png"
)

// NewDirPublisher 创建目录发布器。
func NewDirPublisher(dir, filename string, logger hclog.Logger) *DirPublisher {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &DirPublisher{
		Dir:      dir,
		Filename: filename,
		Logger:   logger.Named("publish"),
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

// Publish 写入 article.md 与头图，返回草稿目录。
// 任一文件写入失败时删除整个草稿目录。
func (p *DirPublisher) Publish(ctx context.Context, draft Draft) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(draft.Title) == "" {
		return "", fmt.Errorf("publish: 标题不能为空")
	}
	if len(draft.Header) == 0 {
		return "", fmt.Errorf("publish: 缺少头图")
	}
	name, err := p.headerName(draft)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(p.Dir, p.newID())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("publish: 创建草稿目录失败: %w", err)
	}
	if err := p.writeFiles(dir, name, draft); err != nil {
		_ = os.RemoveAll(dir)
		return "", err
	}
	p.Logger.Info("草稿已保存", "article", draft.ArticleID, "dir", dir, "header", humanize.Bytes(uint64(len(draft.Header))))
	return dir, nil
}

func (p *DirPublisher) writeFiles(dir, headerName string, draft Draft) error {
	if err := os.WriteFile(filepath.Join(dir, articleFile), []byte(Markdown(draft, headerName)), 0o644); err != nil {
		return fmt.Errorf("publish: 写入正文失败: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, headerName), draft.Header, 0o644); err != nil {
		return fmt.Errorf("publish: 写入头图失败: %w", err)
	}
	return nil
}

func (p *DirPublisher) headerName(draft Draft) (string, error) {
	tmpl := p.Filename
	if strings.TrimSpace(tmpl) == "" {
		tmpl = defaultFilename
	}
	name, err := binding.Strict(tmpl, map[string]any{
		"id":   sanitize(draft.ArticleID),
		"date": p.now().Format("20060102"),
	})
	if err != nil {
		return "", fmt.Errorf("publish: 头图文件名模板无效: %w", err)
	}
	if name != filepath.Base(name) || name == "." || name == articleFile {
		return "", fmt.Errorf("publish: 头图文件名无效 %q", name)
	}
	return name, nil
}

// Markdown 生成草稿正文：标题、头图引用、正文。
func Markdown(draft Draft, headerName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", strings.TrimSpace(draft.Title))
	if headerName != "" {
		fmt.Fprintf(&b, "![header](%s)\n\n", headerName)
	}
	if body := strings.TrimSpace(draft.Body); body != "" {
		b.WriteString(body)
		b.WriteString("\n")
	}
	return b.String()
}

// sanitize 使 ID 可以安全地用在文件名中。
func sanitize(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return "untitled"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, id)
}
