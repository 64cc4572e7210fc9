package fonts

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// 内置字体只覆盖拉丁字符，作为字体回退链的最后一环，保证任何环境都能得到一个可用字体。
var builtin = map[string][]byte{
	"goregular": goregular.TTF,
	"gobold":    gobold.TTF,
}

// Prefix 标记内置字体来源，例如 "builtin:gobold"。
const Prefix = "builtin:"

// IsBuiltin 判断 src 是否指向内置字体。
func IsBuiltin(src string) bool {
	return strings.HasPrefix(src, Prefix) || strings.HasPrefix(src, "built-in:")
}

// Load 返回内置字体的字节数据，name 可写为 "builtin:gobold" 或直接 "gobold"。
func Load(name string) ([]byte, error) {
	key := strings.TrimPrefix(strings.TrimPrefix(name, Prefix), "built-in:")
	data, ok := builtin[key]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 可选 %s", name, strings.Join(Names(), ", "))
	}
	return data, nil
}

// Names 列出全部内置字体名称。
func Names() []string {
	out := make([]string, 0, len(builtin))
	for name := range builtin {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
