package publish

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestPublisher(t *testing.T, filename string) *DirPublisher {
	t.Helper()
	p := NewDirPublisher(t.TempDir(), filename, nil)
	p.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	p.newID = func() string { return "draft-1" }
	return p
}

func TestPublishWritesDraft(t *testing.T) {
	p := newTestPublisher(t, "header_${id}_${date}.png")
	png := []byte{0x89, 'P', 'N', 'G'}
	dir, err := p.Publish(context.Background(), Draft{
		ArticleID: "page/12",
		Title:     "朝5時起きの習慣が私を変えた話",
		Body:      "\n本文です。\n",
		Header:    png,
	})
	if err != nil {
		t.Fatalf("Publish 失败: %v", err)
	}
	if dir != filepath.Join(p.Dir, "draft-1") {
		t.Fatalf("草稿目录错误: %s", dir)
	}
	md, err := os.ReadFile(filepath.Join(dir, "article.md"))
	if err != nil {
		t.Fatalf("读取正文失败: %v", err)
	}
	want := "# 朝5時起きの習慣が私を変えた話\n\n![header](header_page_12_20260301.png)\n\n本文です。\n"
	if string(md) != want {
		t.Fatalf("正文内容错误:\n%s", md)
	}
	header, err := os.ReadFile(filepath.Join(dir, "header_page_12_20260301.png"))
	if err != nil || !bytes.Equal(header, png) {
		t.Fatalf("头图内容错误: %v", err)
	}
}

func TestPublishValidates(t *testing.T) {
	p := newTestPublisher(t, "")
	ctx := context.Background()
	if _, err := p.Publish(ctx, Draft{Title: " ", Header: []byte{1}}); err == nil {
		t.Fatalf("空标题应报错")
	}
	if _, err := p.Publish(ctx, Draft{Title: "t"}); err == nil {
		t.Fatalf("缺少头图应报错")
	}

	p.Filename = "${title}.png"
	if _, err := p.Publish(ctx, Draft{Title: "t", Header: []byte{1}}); err == nil {
		t.Fatalf("未知占位符应报错")
	}
	p.Filename = "article.md"
	if _, err := p.Publish(ctx, Draft{Title: "t", Header: []byte{1}}); err == nil {
		t.Fatalf("头图不能覆盖正文")
	}
	if entries, _ := os.ReadDir(p.Dir); len(entries) != 0 {
		t.Fatalf("校验失败时不应留下目录: %v", entries)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := p.Publish(cancelled, Draft{Title: "t", Header: []byte{1}}); err == nil {
		t.Fatalf("已取消的 context 应报错")
	}
}

func TestMarkdownWithoutBody(t *testing.T) {
	if got := Markdown(Draft{Title: " 題 "}, ""); got != "# 題\n\n" {
		t.Fatalf("Markdown 输出错误: %q", got)
	}
}
