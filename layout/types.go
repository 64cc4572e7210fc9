package layout

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
)

// 该文件定义布局结果与排版后端接口，供布局计算、渲染与调试 JSON 共用。

// ErrNoFace 表示任何字号都拿不到可用字体，属于配置错误，调用方不应尝试部分渲染。
var ErrNoFace = errors.New("layout: 没有可用的字体")

// Face 是绑定到某个字号的字形度量与绘制能力。
type Face interface {
	// Measure 返回整段文本的像素宽度与行高（上升部 + 下降部）。
	Measure(text string) (width, height int)
	// Draw 以 at 为行框左上角，将文本绘制到 dst 上。
	Draw(dst draw.Image, text string, at image.Point, c color.Color) error
}

// FaceResolver 按字号提供 Face；失败时返回的错误应包装 ErrNoFace。
type FaceResolver interface {
	Resolve(size int) (Face, error)
}

// Line 表示排版后的一行文本及其度量与位置。
type Line struct {
	Content string `json:"content"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
}

// Block 是居中排布后的整段标题。
type Block struct {
	Title        string `json:"title"`
	Size         int    `json:"size"`
	MaxWidth     int    `json:"maxWidth"`
	CanvasWidth  int    `json:"canvasWidth"`
	CanvasHeight int    `json:"canvasHeight"`
	Spacing      int    `json:"spacing"`
	StartY       int    `json:"startY"`
	Height       int    `json:"height"`
	Lines        []Line `json:"lines"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// RGBA 转为标准库颜色，分量超出范围时截断。
func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: clampByte(c.R), G: clampByte(c.G), B: clampByte(c.B), A: 0xff}
}

// Shadow 描述可选的文字阴影：先以 Offset 偏移绘制阴影色，再绘制正文。
type Shadow struct {
	Color  Color `json:"color"`
	Offset int   `json:"offset"`
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
