package formatter

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeCompleter struct {
	system, user string
	reply        string
	err          error
}

func (f *fakeCompleter) Complete(_ context.Context, system, user string) (string, error) {
	f.system, f.user = system, user
	return f.reply, f.err
}

func TestSplitTitle(t *testing.T) {
	cases := []struct {
		name, in, title, body string
	}{
		{"plain", "朝活のすすめ\n\n## はじめに\n本文", "朝活のすすめ", "## はじめに\n本文"},
		{"heading", "\n\n# 見出し付き  \n本文", "見出し付き", "本文"},
		{"only title", "タイトルだけ", "タイトルだけ", ""},
		{"hash only", "###\n本文", FallbackTitle, "###\n本文"},
		{"empty", "  \n ", FallbackTitle, "  \n "},
		// 组合浊点经 NFC 合成为单个字符
		{"nfc", "ガイド\n本文", "ガイド", "本文"},
	}
	for _, tc := range cases {
		title, body := SplitTitle(tc.in)
		if title != tc.title || body != tc.body {
			t.Fatalf("%s: SplitTitle = (%q, %q)，期望 (%q, %q)", tc.name, title, body, tc.title, tc.body)
		}
	}
}

func TestFormatBuildsPrompts(t *testing.T) {
	fake := &fakeCompleter{reply: "# 朝5時起きの習慣が私を変えた話\n\n本文です。"}
	f, err := New(fake, nil)
	if err != nil {
		t.Fatalf("New 失败: %v", err)
	}
	article, err := f.Format(context.Background(), "  早起きのメモ  ", ModeKnowhow)
	if err != nil {
		t.Fatalf("Format 失败: %v", err)
	}
	if article.Title != "朝5時起きの習慣が私を変えた話" || article.Body != "本文です。" || article.Mode != ModeKnowhow {
		t.Fatalf("整形结果错误: %+v", article)
	}
	if !strings.Contains(fake.system, "出力ルール") || !strings.Contains(fake.system, "ノウハウ・ビジネス型") {
		t.Fatalf("system 提示词应包含公共规则与模式提示: %q", fake.system)
	}
	if !strings.Contains(fake.user, "素材:\n早起きのメモ\n---") || strings.Contains(fake.user, "${content}") {
		t.Fatalf("user 提示词应填入素材: %q", fake.user)
	}
}

func TestFormatUnknownModeFallsBack(t *testing.T) {
	fake := &fakeCompleter{reply: "題\n本文"}
	f, _ := New(fake, nil)
	article, err := f.Format(context.Background(), "素材", "謎のモード")
	if err != nil {
		t.Fatalf("Format 失败: %v", err)
	}
	if article.Mode != ModeEssay || !strings.Contains(fake.system, ModeEssay) {
		t.Fatalf("未知模式应回退到 %s: %+v", ModeEssay, article)
	}
}

func TestFormatErrors(t *testing.T) {
	boom := errors.New("boom")
	f, _ := New(&fakeCompleter{err: boom}, nil)
	if _, err := f.Format(context.Background(), "素材", ModeEssay); !errors.Is(err, boom) {
		t.Fatalf("应包装模型错误: %v", err)
	}
	if _, err := f.Format(context.Background(), " \n", ModeEssay); err == nil {
		t.Fatalf("空素材应报错")
	}
	if _, err := New(nil, nil); err == nil {
		t.Fatalf("completer 为空应报错")
	}
}

func TestEveryModeHasPrompt(t *testing.T) {
	f, err := New(&fakeCompleter{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, mode := range Modes() {
		if !strings.Contains(f.SystemPrompt(mode), mode) {
			t.Fatalf("模式 %s 缺少提示词", mode)
		}
	}
}
