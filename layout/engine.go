package layout

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
)

// Engine 把标题排成居中的多行文本块并绘制到画布上。
// Engine 只持有不可变配置，可在多个 goroutine 中并发使用。
type Engine struct {
	cfg      Config
	breaker  Breaker
	resolver FaceResolver
}

// NewEngine 校验配置并绑定字体解析器。
func NewEngine(cfg Config, resolver FaceResolver) (*Engine, error) {
	if resolver == nil {
		return nil, fmt.Errorf("layout: 缺少字体解析器 FaceResolver: %w", ErrNoFace)
	}
	if cfg.Kinsoku == nil {
		cfg.Kinsoku = DefaultKinsoku()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:      cfg,
		breaker:  Breaker{Kinsoku: cfg.Kinsoku, Weights: cfg.Weights},
		resolver: resolver,
	}, nil
}

// Config 返回引擎使用的配置副本。
func (e *Engine) Config() Config { return e.cfg }

// Layout 选择字号、解析字体、折行并计算每行坐标。
func (e *Engine) Layout(title string) (*Block, Face, error) {
	size := e.cfg.Tiers.SizeFor(title)
	face, err := e.resolver.Resolve(size)
	if err != nil {
		if !errors.Is(err, ErrNoFace) {
			err = fmt.Errorf("%w: %v", ErrNoFace, err)
		}
		return nil, nil, fmt.Errorf("解析 %dpx 字体失败: %w", size, err)
	}
	if face == nil {
		return nil, nil, fmt.Errorf("解析 %dpx 字体失败: %w", size, ErrNoFace)
	}
	maxWidth := e.cfg.MaxWidth()
	lines := e.Wrap(title, face, maxWidth)
	block := Compose(lines, e.cfg.CanvasWidth, e.cfg.CanvasHeight, e.cfg.LineSpacing)
	block.Title = title
	block.Size = size
	block.MaxWidth = maxWidth
	return block, face, nil
}

// Render 完成排版并把结果画到 dst。
func (e *Engine) Render(dst draw.Image, title string) (*Block, error) {
	block, face, err := e.Layout(title)
	if err != nil {
		return nil, err
	}
	if err := e.Draw(dst, block, face); err != nil {
		return nil, err
	}
	return block, nil
}

// Draw 依次绘制每一行；配置了阴影时先绘制阴影。
func (e *Engine) Draw(dst draw.Image, block *Block, face Face) error {
	if block == nil || face == nil {
		return fmt.Errorf("layout: 缺少可绘制的文本块")
	}
	fg := e.cfg.TextColor.RGBA()
	for _, line := range block.Lines {
		if line.Content == "" {
			continue
		}
		if s := e.cfg.Shadow; s != nil && s.Offset != 0 {
			at := image.Pt(line.X+s.Offset, line.Y+s.Offset)
			if err := face.Draw(dst, line.Content, at, s.Color.RGBA()); err != nil {
				return fmt.Errorf("绘制阴影 %q 失败: %w", line.Content, err)
			}
		}
		if err := face.Draw(dst, line.Content, image.Pt(line.X, line.Y), fg); err != nil {
			return fmt.Errorf("绘制文本 %q 失败: %w", line.Content, err)
		}
	}
	return nil
}

// Wrap 逐字符累积并测量，溢出时交给 Breaker 选择断点。
// 结果至少包含一行；空标题得到一行空字符串。
func (e *Engine) Wrap(title string, face Face, maxWidth int) []Line {
	var (
		lines []Line
		buf   []rune
	)
	emit := func(runes []rune) {
		text := string(runes)
		w, h := face.Measure(text)
		lines = append(lines, Line{Content: text, Width: w, Height: h})
	}
	reseed := func(rest []rune, r rune) []rune {
		next := make([]rune, 0, len(rest)+1)
		next = append(next, rest...)
		return append(next, r)
	}

	for _, r := range title {
		candidate := append(buf[:len(buf):len(buf)], r)
		if w, _ := face.Measure(string(candidate)); w <= maxWidth {
			buf = candidate
			continue
		}
		if len(buf) == 0 {
			// 单个字符已超出行宽，独占一行
			emit([]rune{r})
			continue
		}
		pos := e.breaker.BreakPoint(buf, r)
		emit(buf[:pos])
		buf = reseed(buf[pos:], r)
		// 断点靠前且 r 较宽时，新行本身可能已超宽，继续断开直到放得下或只剩一个字符
		for len(buf) > 1 {
			if w, _ := face.Measure(string(buf)); w <= maxWidth {
				break
			}
			last := len(buf) - 1
			pos = e.breaker.BreakPoint(buf[:last], buf[last])
			emit(buf[:pos])
			buf = reseed(buf[pos:last], buf[last])
		}
	}
	if len(buf) > 0 || len(lines) == 0 {
		emit(buf)
	}
	return lines
}

// Compose 计算垂直居中的起点与每行的水平居中坐标。
// 起点允许为负（文本块高于画布时会被裁切）。
func Compose(lines []Line, canvasWidth, canvasHeight, spacing int) *Block {
	total := 0
	for _, line := range lines {
		total += line.Height
	}
	if len(lines) > 1 {
		total += spacing * (len(lines) - 1)
	}

	startY := floorDiv(canvasHeight-total, 2)
	placed := make([]Line, len(lines))
	y := startY
	for i, line := range lines {
		line.X = floorDiv(canvasWidth-line.Width, 2)
		line.Y = y
		placed[i] = line
		y += line.Height + spacing
	}
	return &Block{
		CanvasWidth:  canvasWidth,
		CanvasHeight: canvasHeight,
		Spacing:      spacing,
		StartY:       startY,
		Height:       total,
		Lines:        placed,
	}
}

// floorDiv 向下取整的整数除法，负数时与 Go 的截断除法不同。
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
