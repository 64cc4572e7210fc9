package renderer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type fixedRenderer struct {
	data []byte
	err  error
}

func (f fixedRenderer) Render(string) ([]byte, error) { return f.data, f.err }

func TestRenderFileCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "header.png")
	n, err := RenderFile(fixedRenderer{data: []byte("png")}, "タイトル", path)
	if err != nil {
		t.Fatalf("RenderFile: %v", err)
	}
	if n != 3 {
		t.Fatalf("期望写入 3 字节，实际 %d", n)
	}
	got, err := os.ReadFile(path)
	if err != nil || string(got) != "png" {
		t.Fatalf("文件内容错误: %q %v", got, err)
	}
}

func TestRenderFilePropagatesError(t *testing.T) {
	boom := errors.New("boom")
	path := filepath.Join(t.TempDir(), "header.png")
	if _, err := RenderFile(fixedRenderer{err: boom}, "x", path); !errors.Is(err, boom) {
		t.Fatalf("期望透传渲染错误，实际 %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("渲染失败时不应写文件")
	}
	if _, err := RenderFile(nil, "x", path); err == nil {
		t.Fatalf("nil renderer 应返回错误")
	}
}
