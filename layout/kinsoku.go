package layout

// 行頭/行末禁则字符表（禁則処理）。

const (
	// 助词、小写假名、闭合标点与括号、长音等不可出现在行首。
	DefaultLineStart = "がをはにでともへやのかなよねわ" +
		"ぁぃぅぇぉっゃゅょゎ" +
		"ァィゥェォッャュョヮヵヶ" +
		"。、．，！？）」』】〉》）]｝・：；ー～"
	// 开括号不可出现在行末。
	DefaultLineEnd = "（「『【〈《([｛"
)

// Kinsoku 保存两张禁则表。构造后不再修改，可在多个 Engine 之间共享。
type Kinsoku struct {
	lineStart map[rune]struct{}
	lineEnd   map[rune]struct{}
}

// DefaultKinsoku 返回日文排版惯例下的禁则表。
func DefaultKinsoku() *Kinsoku {
	return NewKinsoku(DefaultLineStart, DefaultLineEnd)
}

// NewKinsoku 以两串字符构造禁则表。
func NewKinsoku(lineStart, lineEnd string) *Kinsoku {
	return &Kinsoku{
		lineStart: runeSet(lineStart),
		lineEnd:   runeSet(lineEnd),
	}
}

// CannotStart 判断 r 是否禁止出现在行首。
func (k *Kinsoku) CannotStart(r rune) bool {
	if k == nil {
		return false
	}
	_, ok := k.lineStart[r]
	return ok
}

// CannotEnd 判断 r 是否禁止出现在行末。
func (k *Kinsoku) CannotEnd(r rune) bool {
	if k == nil {
		return false
	}
	_, ok := k.lineEnd[r]
	return ok
}

func runeSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(s))
	for _, r := range s {
		set[r] = struct{}{}
	}
	return set
}
