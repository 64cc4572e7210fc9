package layout

// Weights 是断行候选的打分参数，数值越大越倾向于在该处断开。
type Weights struct {
	KanjiPair     int // 汉字|汉字：拆开熟语
	KatakanaPair  int // 片假名|片假名：拆开外来语
	LatinPair     int // 字母|字母：拆开英文单词
	HiraganaKanji int // 平假名|汉字：语法单元的自然结尾
	Transition    int // 两侧类别不同
}

// DefaultWeights 返回默认打分参数。
func DefaultWeights() Weights {
	return Weights{
		KanjiPair:     -100,
		KatakanaPair:  -50,
		LatinPair:     -50,
		HiraganaKanji: 30,
		Transition:    10,
	}
}

// BreakCandidate 是一个可行断点：Pos 表示保留在当前行的字符数。
type BreakCandidate struct {
	Pos   int
	Score int
}

// Breaker 在一行即将溢出时向前搜索最佳断点。
type Breaker struct {
	Kinsoku *Kinsoku
	Weights Weights
}

// Candidates 按位置从后向前列出未被禁则排除的断点及其得分。
// buf 为溢出前已累积的字符，next 为触发溢出的字符。
func (b Breaker) Candidates(buf []rune, next rune) []BreakCandidate {
	out := make([]BreakCandidate, 0, len(buf))
	for pos := len(buf); pos >= 1; pos-- {
		starter := next
		if pos < len(buf) {
			starter = buf[pos]
		}
		ender := buf[pos-1]
		if b.Kinsoku.CannotStart(starter) || b.Kinsoku.CannotEnd(ender) {
			continue
		}
		out = append(out, BreakCandidate{Pos: pos, Score: b.score(ender, starter) + pos})
	}
	return out
}

// BreakPoint 返回 buf 中的切分位置：buf[:pos] 成为完成的一行，
// buf[pos:] 加上 next 开始下一行。没有可行断点时返回 len(buf)。
func (b Breaker) BreakPoint(buf []rune, next rune) int {
	best := BreakCandidate{Pos: len(buf)}
	found := false
	for _, c := range b.Candidates(buf, next) {
		// 候选按位置降序排列，严格大于保证同分时靠后的位置胜出
		if !found || c.Score > best.Score {
			best = c
			found = true
		}
	}
	return best.Pos
}

func (b Breaker) score(ender, starter rune) int {
	w := b.Weights
	endClass, startClass := Classify(ender), Classify(starter)
	score := 0
	switch {
	case endClass == ScriptKanji && startClass == ScriptKanji:
		score += w.KanjiPair
	case endClass == ScriptKatakana && startClass == ScriptKatakana:
		score += w.KatakanaPair
	case endClass == ScriptLatin && startClass == ScriptLatin:
		score += w.LatinPair
	}
	if endClass == ScriptHiragana && startClass == ScriptKanji {
		score += w.HiraganaKanji
	}
	if endClass != startClass {
		score += w.Transition
	}
	return score
}
