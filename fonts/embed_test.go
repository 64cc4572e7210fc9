package fonts

import "testing"

func TestLoadBuiltin(t *testing.T) {
	for _, name := range []string{"builtin:gobold", "goregular", "built-in:goregular"} {
		data, err := Load(name)
		if err != nil {
			t.Fatalf("Load(%q): %v", name, err)
		}
		if len(data) == 0 {
			t.Fatalf("Load(%q) 返回空数据", name)
		}
	}
	if _, err := Load("builtin:missing"); err == nil {
		t.Fatalf("未知字体应返回错误")
	}
	if !IsBuiltin("builtin:gobold") || IsBuiltin("assets/font.ttf") {
		t.Fatalf("IsBuiltin 判断错误")
	}
}
