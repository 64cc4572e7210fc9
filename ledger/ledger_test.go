package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTest(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "state", "ledger.db"))
	if err != nil {
		t.Fatalf("Open 失败: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestRecordSeenMarkDone(t *testing.T) {
	l := openTest(t)
	ctx := context.Background()
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	if _, ok, err := l.Seen(ctx, "page-1"); err != nil || ok {
		t.Fatalf("未登记的文章不应存在: %v %v", ok, err)
	}
	if err := l.Record(ctx, "page-1", "朝活", "/drafts/a"); err != nil {
		t.Fatalf("Record 失败: %v", err)
	}
	e, ok, err := l.Seen(ctx, "page-1")
	if err != nil || !ok {
		t.Fatalf("登记后应能查到: %v %v", ok, err)
	}
	if e.Title != "朝活" || e.Location != "/drafts/a" || !e.CreatedAt.Equal(fixed) || e.Done {
		t.Fatalf("记录内容错误: %+v", e)
	}

	if err := l.Record(ctx, "page-1", "朝活", "/drafts/b"); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("重复登记应返回 ErrDuplicate: %v", err)
	}
	if err := l.MarkDone(ctx, "page-1"); err != nil {
		t.Fatalf("MarkDone 失败: %v", err)
	}
	if e, _, _ := l.Seen(ctx, "page-1"); !e.Done || e.Location != "/drafts/a" {
		t.Fatalf("MarkDone 后应为 done 且位置不变: %+v", e)
	}
	if err := l.MarkDone(ctx, "page-x"); err == nil {
		t.Fatalf("未登记的文章 MarkDone 应报错")
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	l, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := l.Record(ctx, "b", "二", "/d/2"); err != nil {
		t.Fatal(err)
	}
	if err := l.Record(ctx, "a", "一", "/d/1"); err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	l, err = Open(path)
	if err != nil {
		t.Fatalf("重新打开失败: %v", err)
	}
	defer l.Close()
	entries, err := l.List(ctx)
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if len(entries) != 2 || l.Path() != path {
		t.Fatalf("重新打开后记录丢失: %+v", entries)
	}
}
