package renderer

import (
	"fmt"
	"os"
	"path/filepath"
)

// Renderer 将标题渲染为最终的头图文件内容（例如 PNG 字节）。
type Renderer interface {
	Render(title string) ([]byte, error)
}

// RenderFile 渲染标题并写入 path，必要时创建目录，返回写入的字节数。
func RenderFile(r Renderer, title, path string) (int, error) {
	if r == nil {
		return 0, fmt.Errorf("renderer 不能为空")
	}
	data, err := r.Render(title)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, fmt.Errorf("写入头图 %s 失败: %w", path, err)
	}
	return len(data), nil
}
