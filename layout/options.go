package layout

import "fmt"

// Config 是排版引擎的不可变配置，在构造 Engine 时注入。
type Config struct {
	CanvasWidth   int
	CanvasHeight  int
	MaxWidthRatio float64 // 可用行宽占画布宽度的比例
	LineSpacing   int     // 行间固定间距（px）
	Tiers         Tiers
	Weights       Weights
	Kinsoku       *Kinsoku
	TextColor     Color
	Shadow        *Shadow
}

// DefaultConfig 返回 1280×670 画布、80% 行宽、20px 行距的默认配置。
func DefaultConfig() Config {
	return Config{
		CanvasWidth:   1280,
		CanvasHeight:  670,
		MaxWidthRatio: 0.8,
		LineSpacing:   20,
		Tiers:         DefaultTiers(),
		Weights:       DefaultWeights(),
		Kinsoku:       DefaultKinsoku(),
		TextColor:     Color{R: 0, G: 0, B: 0},
	}
}

// MaxWidth 返回以像素计的可用行宽。
func (c Config) MaxWidth() int {
	return int(float64(c.CanvasWidth) * c.MaxWidthRatio)
}

// Validate 检查配置是否可用于排版。
func (c Config) Validate() error {
	if c.CanvasWidth <= 0 || c.CanvasHeight <= 0 {
		return fmt.Errorf("layout: 画布尺寸无效 %dx%d", c.CanvasWidth, c.CanvasHeight)
	}
	if c.MaxWidthRatio <= 0 || c.MaxWidthRatio > 1 {
		return fmt.Errorf("layout: 行宽比例必须在 (0, 1] 之间，当前 %g", c.MaxWidthRatio)
	}
	if c.LineSpacing < 0 {
		return fmt.Errorf("layout: 行距不能为负数 %d", c.LineSpacing)
	}
	if err := c.Tiers.Validate(); err != nil {
		return err
	}
	return nil
}
