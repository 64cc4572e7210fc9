// Package background 为标题卡片准备底图：优先使用用户提供的图片，
// 找不到或无法解码时退回到纵向线性渐变。
package background

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/hashicorp/go-hclog"
)

// DefaultExtensions 是查找底图时依次尝试的扩展名。
var DefaultExtensions = []string{".png", ".jpg", ".jpeg"}

// Options 配置底图解析。
type Options struct {
	Width  int
	Height int
	// Base 是不含扩展名的图片路径，例如 "assets/header_background"。
	Base       string
	Extensions []string
	From       color.RGBA
	To         color.RGBA
	// FS 用于查找图片；为空时使用本地文件系统。
	FS     fs.FS
	Logger hclog.Logger
}

// DefaultOptions 返回 1280×670、#667eea → #764ba2 的默认配置。
func DefaultOptions() Options {
	return Options{
		Width:      1280,
		Height:     670,
		Extensions: DefaultExtensions,
		From:       color.RGBA{R: 102, G: 126, B: 234, A: 0xff},
		To:         color.RGBA{R: 118, G: 75, B: 162, A: 0xff},
	}
}

// Resolver 产生固定尺寸的底图，永不失败。
type Resolver struct {
	opts   Options
	logger hclog.Logger
}

// NewResolver 创建底图解析器。
func NewResolver(opts Options) *Resolver {
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Resolver{opts: opts, logger: logger.Named("background")}
}

// Candidates 返回按顺序尝试的图片路径。
func (r *Resolver) Candidates() []string {
	if r.opts.Base == "" {
		return nil
	}
	out := make([]string, 0, len(r.opts.Extensions))
	for _, ext := range r.opts.Extensions {
		out = append(out, r.opts.Base+ext)
	}
	return out
}

// Resolve 返回调用方独占的新画布。
func (r *Resolver) Resolve() *image.RGBA {
	for _, path := range r.Candidates() {
		img, err := r.load(path)
		if err != nil {
			if !isNotExist(err) {
				r.logger.Warn("底图无法使用，继续尝试", "path", path, "error", err)
			}
			continue
		}
		r.logger.Debug("使用底图", "path", path)
		return r.fit(img)
	}
	r.logger.Debug("未找到底图，使用渐变", "base", r.opts.Base)
	return Gradient(r.opts.Width, r.opts.Height, r.opts.From, r.opts.To)
}

func (r *Resolver) load(path string) (image.Image, error) {
	var (
		file fs.File
		err  error
	)
	if r.opts.FS != nil {
		file, err = r.opts.FS.Open(filepath.ToSlash(path))
	} else {
		file, err = os.Open(path)
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("解码底图 %s 失败: %w", path, err)
	}
	return img, nil
}

// fit 以 Lanczos 重采样缩放到画布尺寸（不保持宽高比）。
func (r *Resolver) fit(img image.Image) *image.RGBA {
	resized := imaging.Resize(img, r.opts.Width, r.opts.Height, imaging.Lanczos)
	dst := image.NewRGBA(image.Rect(0, 0, r.opts.Width, r.opts.Height))
	draw.Draw(dst, dst.Bounds(), resized, resized.Bounds().Min, draw.Src)
	return dst
}

// Gradient 逐行线性插值生成纵向渐变：第 y 行各通道为 from + (to-from)*y/height，向零截断。
func Gradient(width, height int, from, to color.RGBA) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		ratio := float64(y) / float64(height)
		c := color.RGBA{
			R: lerp(from.R, to.R, ratio),
			G: lerp(from.G, to.G, ratio),
			B: lerp(from.B, to.B, ratio),
			A: 0xff,
		}
		row := dst.Pix[y*dst.Stride : y*dst.Stride+width*4]
		for x := 0; x < width; x++ {
			row[x*4+0] = c.R
			row[x*4+1] = c.G
			row[x*4+2] = c.B
			row[x*4+3] = c.A
		}
	}
	return dst
}

func lerp(a, b uint8, ratio float64) uint8 {
	return uint8(int(float64(a) + (float64(b)-float64(a))*ratio))
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
