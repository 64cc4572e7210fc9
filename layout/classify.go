package layout

import "unicode"

// ScriptClass 是字符的粗粒度文字类别，用于给断行候选打分。
type ScriptClass int

const (
	ScriptOther ScriptClass = iota
	ScriptKanji
	ScriptHiragana
	ScriptKatakana
	ScriptLatin
	ScriptDigit
)

func (c ScriptClass) String() string {
	switch c {
	case ScriptKanji:
		return "kanji"
	case ScriptHiragana:
		return "hiragana"
	case ScriptKatakana:
		return "katakana"
	case ScriptLatin:
		return "alpha"
	case ScriptDigit:
		return "digit"
	default:
		return "other"
	}
}

// Classify 按码位返回字符的文字类别，未命中任何区间时为 ScriptOther。
func Classify(r rune) ScriptClass {
	switch {
	case r >= 0x4E00 && r <= 0x9FFF, r >= 0x3400 && r <= 0x4DBF:
		return ScriptKanji
	case r >= 0x3040 && r <= 0x309F:
		return ScriptHiragana
	case r >= 0x30A0 && r <= 0x30FF:
		return ScriptKatakana
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		return ScriptLatin
	case unicode.IsDigit(r):
		return ScriptDigit
	default:
		return ScriptOther
	}
}
