package layout

import (
	"fmt"
	"unicode/utf8"
)

// Tier 表示“字符数不超过 MaxChars 时使用 Size 字号”。
type Tier struct {
	MaxChars int `json:"maxChars"`
	Size     int `json:"size"`
}

// Tiers 是按 MaxChars 升序排列的阶梯，超出最后一级时使用 Default。
type Tiers struct {
	Steps   []Tier `json:"steps"`
	Default int    `json:"default"`
}

// DefaultTiers 返回 120/100/85/70/60/50 六级字号。
func DefaultTiers() Tiers {
	return Tiers{
		Steps: []Tier{
			{MaxChars: 10, Size: 120},
			{MaxChars: 15, Size: 100},
			{MaxChars: 20, Size: 85},
			{MaxChars: 25, Size: 70},
			{MaxChars: 30, Size: 60},
		},
		Default: 50,
	}
}

// SizeFor 按标题的 Unicode 码点数选择字号。
func (t Tiers) SizeFor(title string) int {
	n := utf8.RuneCountInString(title)
	for _, step := range t.Steps {
		if n <= step.MaxChars {
			return step.Size
		}
	}
	return t.Default
}

// Sizes 返回阶梯中出现的全部字号（含 Default），渲染器据此预热字体面。
func (t Tiers) Sizes() []int {
	out := make([]int, 0, len(t.Steps)+1)
	for _, step := range t.Steps {
		out = append(out, step.Size)
	}
	return append(out, t.Default)
}

// Validate 要求阶梯严格递增、字号不增，以保证字号随长度单调不增。
func (t Tiers) Validate() error {
	if t.Default <= 0 {
		return fmt.Errorf("layout: 默认字号必须为正数，当前 %d", t.Default)
	}
	prevChars, prevSize := -1, 0
	for i, step := range t.Steps {
		if step.Size <= 0 {
			return fmt.Errorf("layout: 第 %d 级字号必须为正数", i+1)
		}
		if step.MaxChars <= prevChars {
			return fmt.Errorf("layout: 第 %d 级字符数 %d 未递增", i+1, step.MaxChars)
		}
		if i > 0 && step.Size > prevSize {
			return fmt.Errorf("layout: 第 %d 级字号 %d 大于上一级 %d", i+1, step.Size, prevSize)
		}
		prevChars, prevSize = step.MaxChars, step.Size
	}
	if len(t.Steps) > 0 && t.Default > prevSize {
		return fmt.Errorf("layout: 默认字号 %d 大于最后一级 %d", t.Default, prevSize)
	}
	return nil
}
