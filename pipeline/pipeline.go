// Package pipeline 串联文章读取、整形、头图渲染、草稿发布与状态回写。
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/hashicorp/go-hclog"

	"github.com/ByLCY/notecard/formatter"
	"github.com/ByLCY/notecard/ledger"
	"github.com/ByLCY/notecard/notion"
	"github.com/ByLCY/notecard/publish"
	"github.com/ByLCY/notecard/renderer"
)

// ErrLocked 表示另一个进程正在运行流水线。
var ErrLocked = errors.New("pipeline: 已有实例在运行")

// Source 提供待处理文章并接受状态回写。
type Source interface {
	FetchReady(ctx context.Context, databaseID string) ([]notion.Article, error)
	MarkDone(ctx context.Context, pageID string) error
}

// Formatter 把素材整形为记事。
type Formatter interface {
	Format(ctx context.Context, content, mode string) (formatter.Article, error)
}

// Ledger 记录已发布的文章。
type Ledger interface {
	Seen(ctx context.Context, articleID string) (ledger.Entry, bool, error)
	Record(ctx context.Context, articleID, title, location string) error
	MarkDone(ctx context.Context, articleID string) error
}

// Status 是单篇文章的处理结果。
type Status string

const (
	StatusPublished Status = "published"
	StatusDryRun    Status = "dry-run"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Result 描述单篇文章的处理情况。
type Result struct {
	ArticleID string
	Title     string
	Mode      string
	Location  string
	Status    Status
	Elapsed   time.Duration
	Err       error
}

// Summary 汇总一次运行。
type Summary struct {
	Success int
	Errors  int
	Skipped int
	Results []Result
}

// Runner 按顺序处理所有 Ready 文章。
type Runner struct {
	DatabaseID string
	LockPath   string
	DryRun     bool

	Source    Source
	Formatter Formatter
	Renderer  renderer.Renderer
	Publisher publish.Publisher
	Ledger    Ledger
	Logger    hclog.Logger
}

func (r *Runner) validate() error {
	var missing []string
	if r.Source == nil {
		missing = append(missing, "Source")
	}
	if r.Formatter == nil {
		missing = append(missing, "Formatter")
	}
	if r.Renderer == nil {
		missing = append(missing, "Renderer")
	}
	if !r.DryRun {
		if r.Publisher == nil {
			missing = append(missing, "Publisher")
		}
		if r.Ledger == nil {
			missing = append(missing, "Ledger")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("pipeline: 缺少依赖 %s", strings.Join(missing, ", "))
	}
	return nil
}

func (r *Runner) logger() hclog.Logger {
	if r.Logger == nil {
		return hclog.NewNullLogger()
	}
	return r.Logger
}

// Run 执行一次流水线。单篇失败只计数并记录日志，不中断其余文章；
// 只有获取锁或读取文章列表失败时返回 error。
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var summary Summary
	if err := r.validate(); err != nil {
		return summary, err
	}
	logger := r.logger()

	if r.LockPath != "" {
		lock := flock.New(r.LockPath)
		ok, err := lock.TryLock()
		if err != nil {
			return summary, fmt.Errorf("pipeline: 获取运行锁失败: %w", err)
		}
		if !ok {
			return summary, fmt.Errorf("%w (%s)", ErrLocked, r.LockPath)
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				logger.Warn("释放运行锁失败", "lock", r.LockPath, "error", err)
			}
		}()
	}

	articles, err := r.Source.FetchReady(ctx, r.DatabaseID)
	if err != nil {
		return summary, fmt.Errorf("pipeline: 读取文章失败: %w", err)
	}
	logger.Info("读取到待处理文章", "count", len(articles), "dry_run", r.DryRun)

	for i, article := range articles {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		start := time.Now()
		res := r.process(ctx, article)
		res.Elapsed = time.Since(start)

		switch res.Status {
		case StatusPublished, StatusDryRun:
			summary.Success++
			logger.Info("处理完成", "index", i+1, "article", article.ID, "title", res.Title, "location", res.Location, "elapsed", res.Elapsed.Round(time.Millisecond))
		case StatusSkipped:
			summary.Skipped++
			logger.Info("已发布过，跳过", "index", i+1, "article", article.ID, "location", res.Location)
		default:
			summary.Errors++
			logger.Error("处理失败", "index", i+1, "article", article.ID, "error", res.Err)
		}
		summary.Results = append(summary.Results, res)
	}
	logger.Info("运行结束", "success", summary.Success, "errors", summary.Errors, "skipped", summary.Skipped)
	return summary, nil
}

func (r *Runner) process(ctx context.Context, article notion.Article) Result {
	res := Result{ArticleID: article.ID, Title: article.Title, Mode: article.Mode}
	fail := func(err error) Result {
		res.Status, res.Err = StatusFailed, err
		return res
	}

	if !r.DryRun {
		entry, seen, err := r.Ledger.Seen(ctx, article.ID)
		if err != nil {
			return fail(err)
		}
		if seen {
			// 草稿已保存但状态回写失败过，只重试回写
			res.Title, res.Location = entry.Title, entry.Location
			if err := r.markDone(ctx, article.ID); err != nil {
				return fail(err)
			}
			res.Status = StatusSkipped
			return res
		}
	}

	if strings.TrimSpace(article.Content) == "" {
		return fail(fmt.Errorf("文章 %s 没有素材内容", article.ID))
	}

	formatted, err := r.Formatter.Format(ctx, article.Content, article.Mode)
	if err != nil {
		return fail(err)
	}
	res.Title, res.Mode = formatted.Title, formatted.Mode

	header, err := r.Renderer.Render(formatted.Title)
	if err != nil {
		return fail(fmt.Errorf("渲染头图失败: %w", err))
	}

	if r.DryRun {
		res.Status = StatusDryRun
		return res
	}

	location, err := r.Publisher.Publish(ctx, publish.Draft{
		ArticleID: article.ID,
		Title:     formatted.Title,
		Body:      formatted.Body,
		Header:    header,
	})
	if err != nil {
		return fail(fmt.Errorf("发布草稿失败: %w", err))
	}
	res.Location = location

	if err := r.Ledger.Record(ctx, article.ID, formatted.Title, location); err != nil {
		return fail(err)
	}
	if err := r.markDone(ctx, article.ID); err != nil {
		return fail(err)
	}
	res.Status = StatusPublished
	return res
}

func (r *Runner) markDone(ctx context.Context, articleID string) error {
	if err := r.Source.MarkDone(ctx, articleID); err != nil {
		return fmt.Errorf("回写状态失败: %w", err)
	}
	return r.Ledger.MarkDone(ctx, articleID)
}
