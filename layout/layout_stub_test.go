package layout

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// stubFace 是测试用的等宽字体：ASCII 占半个字号，其余字符占一个字号，
// 行高为字号的 1.2 倍。只用于测试，避免依赖真实字体文件。
type stubFace struct {
	size  int
	draws []stubDraw
}

type stubDraw struct {
	text string
	at   image.Point
	c    color.Color
}

func (f *stubFace) Measure(text string) (int, int) {
	w := 0
	for _, r := range text {
		if r < 0x80 {
			w += f.size / 2
		} else {
			w += f.size
		}
	}
	return w, f.size * 6 / 5
}

func (f *stubFace) Draw(dst draw.Image, text string, at image.Point, c color.Color) error {
	f.draws = append(f.draws, stubDraw{text: text, at: at, c: c})
	w, h := f.Measure(text)
	draw.Draw(dst, image.Rect(at.X, at.Y, at.X+w, at.Y+h), image.NewUniform(c), image.Point{}, draw.Over)
	return nil
}

// stubResolver 为每个字号返回一个 stubFace，并记录请求过的字号。
type stubResolver struct {
	faces map[int]*stubFace
	fail  bool
}

func newStubResolver() *stubResolver {
	return &stubResolver{faces: map[int]*stubFace{}}
}

func (r *stubResolver) Resolve(size int) (Face, error) {
	if r.fail {
		return nil, fmt.Errorf("no font for %d", size)
	}
	if f, ok := r.faces[size]; ok {
		return f, nil
	}
	f := &stubFace{size: size}
	r.faces[size] = f
	return f, nil
}
