// Package ledger 记录已经保存过草稿的文章，避免重复发布。
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrDuplicate 表示同一篇文章已经登记过。
var ErrDuplicate = errors.New("ledger: 文章已登记")

// Entry 是一条草稿记录。
type Entry struct {
	ArticleID string
	Title     string
	Location  string
	CreatedAt time.Time
	Done      bool
}

// Ledger 是基于 SQLite 的处理记录。
type Ledger struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS drafts (
	article_id TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	location   TEXT NOT NULL,
	created_at TEXT NOT NULL,
	done       INTEGER NOT NULL DEFAULT 0
)`

// Open 打开或创建记录数据库。
func Open(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ledger: 创建目录失败: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("ledger: 打开数据库失败: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ledger: apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ledger: 初始化表结构失败: %w", err)
	}
	return &Ledger{db: db, path: path, now: time.Now}, nil
}

// Path 返回数据库文件路径。
func (l *Ledger) Path() string { return l.path }

// Close closes the underlying database connection.
func (l *Ledger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Seen 返回文章的记录；不存在时 ok 为 false。
func (l *Ledger) Seen(ctx context.Context, articleID string) (Entry, bool, error) {
	row := l.db.QueryRowContext(ctx,
		`SELECT article_id, title, location, created_at, done FROM drafts WHERE article_id = ?`, articleID)
	var (
		e       Entry
		created string
		done    int
	)
	if err := row.Scan(&e.ArticleID, &e.Title, &e.Location, &created, &done); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("ledger: 查询 %s 失败: %w", articleID, err)
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Entry{}, false, fmt.Errorf("ledger: created_at %q 格式错误: %w", created, err)
	}
	e.CreatedAt = t
	e.Done = done != 0
	return e, true, nil
}

// Record 登记一篇已保存的草稿。重复登记返回 ErrDuplicate。
func (l *Ledger) Record(ctx context.Context, articleID, title, location string) error {
	res, err := l.db.ExecContext(ctx,
		`INSERT INTO drafts (article_id, title, location, created_at, done) VALUES (?, ?, ?, ?, 0)
		 ON CONFLICT(article_id) DO NOTHING`,
		articleID, title, location, l.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("ledger: 登记 %s 失败: %w", articleID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrDuplicate, articleID)
	}
	return nil
}

// MarkDone 标记文章状态已回写。
func (l *Ledger) MarkDone(ctx context.Context, articleID string) error {
	res, err := l.db.ExecContext(ctx, `UPDATE drafts SET done = 1 WHERE article_id = ?`, articleID)
	if err != nil {
		return fmt.Errorf("ledger: 更新 %s 失败: %w", articleID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("ledger: 文章 %s 未登记", articleID)
	}
	return nil
}

// List 按登记时间返回全部记录。
func (l *Ledger) List(ctx context.Context) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT article_id, title, location, created_at, done FROM drafts ORDER BY created_at, article_id`)
	if err != nil {
		return nil, fmt.Errorf("ledger: 查询记录失败: %w", err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			created string
			done    int
		)
		if err := rows.Scan(&e.ArticleID, &e.Title, &e.Location, &created, &done); err != nil {
			return nil, fmt.Errorf("ledger: 读取记录失败: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		e.Done = done != 0
		out = append(out, e)
	}
	return out, rows.Err()
}
