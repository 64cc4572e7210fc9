package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-hclog"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/notecard/background"
	"github.com/ByLCY/notecard/fonts"
	"github.com/ByLCY/notecard/layout"
	"github.com/ByLCY/notecard/renderer"
)

// DefaultFontChain 是字体回退链：项目内字体 → 各平台 CJK 字体 → 内置字体。
var DefaultFontChain = []string{
	"assets/RocknRollOne.ttf",
	"assets/DelaGothicOne.ttf",
	"/System/Library/Fonts/ヒラギノ角ゴシック W6.ttc",
	"/System/Library/Fonts/ヒラギノ角ゴシック W3.ttc",
	"/Library/Fonts/Arial Unicode.ttf",
	"/usr/share/fonts/opentype/noto/NotoSansCJK-Bold.ttc",
	"/usr/share/fonts/truetype/noto/NotoSansCJK-Bold.ttc",
	"/usr/share/fonts/opentype/noto/NotoSansCJKjp-Bold.otf",
	"/usr/share/fonts/truetype/fonts-japanese-gothic.ttf",
	"C:/Windows/Fonts/msgothic.ttc",
	"C:/Windows/Fonts/meiryo.ttc",
	"C:/Windows/Fonts/YuGothB.ttc",
	fonts.Prefix + "gobold",
}

// Renderer draws title cards via github.com/tdewolff/canvas.
type Renderer struct {
	baseDir string
	chain   []string
	logger  hclog.Logger

	engine     *layout.Engine
	background *background.Resolver

	fontMu    sync.Mutex
	family    *canvas.FontFamily
	familySrc string
	familyErr error
	faces     map[int]*Face
}

var (
	_ renderer.Renderer   = (*Renderer)(nil)
	_ layout.FaceResolver = (*Renderer)(nil)
	_ layout.Face         = (*Face)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	BaseDir    string
	Fonts      []string // ordered font sources: file paths or builtin:<name>
	Layout     layout.Config
	Background background.Options
	Logger     hclog.Logger
}

// DefaultOptions returns the 1280×670 card with the default font chain.
func DefaultOptions() Options {
	return Options{
		Fonts:      DefaultFontChain,
		Layout:     layout.DefaultConfig(),
		Background: background.DefaultOptions(),
	}
}

// NewRenderer creates a renderer with default settings rooted at baseDir.
func NewRenderer(baseDir string) (*Renderer, error) {
	opts := DefaultOptions()
	opts.BaseDir = baseDir
	opts.Background.Base = filepath.Join(baseDir, "assets", "header_background")
	return NewRendererWithOptions(opts)
}

// NewRendererWithOptions creates a renderer with injected fonts, layout and background settings.
func NewRendererWithOptions(opts Options) (*Renderer, error) {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	chain := opts.Fonts
	if len(chain) == 0 {
		chain = DefaultFontChain
	}
	r := &Renderer{
		baseDir: opts.BaseDir,
		chain:   append([]string(nil), chain...),
		logger:  logger.Named("canvas"),
		faces:   map[int]*Face{},
	}
	engine, err := layout.NewEngine(opts.Layout, r)
	if err != nil {
		return nil, err
	}
	r.engine = engine

	bg := opts.Background
	bg.Width, bg.Height = opts.Layout.CanvasWidth, opts.Layout.CanvasHeight
	if bg.Logger == nil {
		bg.Logger = logger
	}
	r.background = background.NewResolver(bg)
	return r, nil
}

// Engine exposes the layout engine bound to this renderer.
func (r *Renderer) Engine() *layout.Engine { return r.engine }

// FontSource reports which font of the chain was loaded, resolving it if needed.
func (r *Renderer) FontSource() (string, error) {
	if _, err := r.ensureFamily(); err != nil {
		return "", err
	}
	return r.familySrc, nil
}

// Render 实现 renderer.Renderer：底图 + 标题 → PNG 字节。
func (r *Renderer) Render(title string) ([]byte, error) {
	img, block, err := r.RenderImage(title)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, img); err != nil {
		return nil, err
	}
	r.logger.Debug("头图已生成", "title", block.Title, "size", block.Size, "lines", len(block.Lines), "bytes", humanize.Bytes(uint64(buf.Len())))
	return buf.Bytes(), nil
}

// RenderImage 返回绘制完成的画布与排版结果，画布归调用方独占。
func (r *Renderer) RenderImage(title string) (*image.RGBA, *layout.Block, error) {
	img := r.background.Resolve()
	block, err := r.engine.Render(img, norm.NFC.String(title))
	if err != nil {
		return nil, nil, err
	}
	return img, block, nil
}

// Layout 只做排版，不绘制。
func (r *Renderer) Layout(title string) (*layout.Block, error) {
	block, _, err := r.engine.Layout(norm.NFC.String(title))
	return block, err
}

// Warm 为字号阶梯中的每个字号预先创建字体面，字体链不可用时尽早返回 ErrNoFace。
func (r *Renderer) Warm() error {
	for _, size := range r.engine.Config().Tiers.Sizes() {
		if _, err := r.Resolve(size); err != nil {
			return err
		}
	}
	return nil
}

// Resolve 实现 layout.FaceResolver，同一字号只创建一次字体面。
func (r *Renderer) Resolve(size int) (layout.Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("字号无效 %d: %w", size, layout.ErrNoFace)
	}
	family, err := r.ensureFamily()
	if err != nil {
		return nil, err
	}
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if f, ok := r.faces[size]; ok {
		return f, nil
	}
	f := newFace(family, size)
	r.faces[size] = f
	return f, nil
}

func (r *Renderer) ensureFamily() (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if r.family != nil || r.familyErr != nil {
		return r.family, r.familyErr
	}
	for _, src := range r.chain {
		family, err := r.loadFamily(src)
		if err != nil {
			if !os.IsNotExist(err) {
				r.logger.Warn("字体加载失败", "src", src, "error", err)
			}
			continue
		}
		if fonts.IsBuiltin(src) {
			r.logger.Warn("未找到日文字体，使用内置字体", "src", src)
		} else {
			r.logger.Info("已加载字体", "src", src)
		}
		r.family, r.familySrc = family, src
		return family, nil
	}
	r.familyErr = fmt.Errorf("字体回退链 %d 项均不可用: %w", len(r.chain), layout.ErrNoFace)
	return nil, r.familyErr
}

func (r *Renderer) loadFamily(src string) (*canvas.FontFamily, error) {
	data, err := r.loadFontBytes(src)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("notecard")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("解析字体 %s 失败: %w", src, err)
	}
	return family, nil
}

func (r *Renderer) loadFontBytes(src string) ([]byte, error) {
	if fonts.IsBuiltin(src) {
		return fonts.Load(src)
	}
	path := src
	if !filepath.IsAbs(path) && r.baseDir != "" {
		path = filepath.Join(r.baseDir, path)
	}
	return os.ReadFile(path)
}

// Face 是绑定到固定像素字号的 canvas 字体面。
// 画布以 1mm = 1px 光栅化，因此 canvas 的用户坐标即像素。
type Face struct {
	family  *canvas.FontFamily
	sizePt  float64
	measure *canvas.FontFace
	ascent  float64
	height  int
}

func newFace(family *canvas.FontFamily, size int) *Face {
	sizePt := layout.PxToCanvasPt(float64(size))
	measure := family.Face(sizePt, canvas.Black, canvas.FontRegular, canvas.FontNormal)
	m := measure.Metrics()
	return &Face{
		family:  family,
		sizePt:  sizePt,
		measure: measure,
		ascent:  m.Ascent,
		height:  int(math.Ceil(m.Ascent + math.Abs(m.Descent))),
	}
}

// Measure 返回文本宽度（向上取整）与行高（上升部 + 下降部）。
func (f *Face) Measure(text string) (int, int) {
	if text == "" {
		return 0, f.height
	}
	return int(math.Ceil(f.measure.TextWidth(text))), f.height
}

// Draw 在独立的小画布上光栅化一行文字，再以 Over 合成到 dst 的 at 处。
func (f *Face) Draw(dst draw.Image, text string, at image.Point, c color.Color) error {
	if text == "" {
		return nil
	}
	w, h := f.Measure(text)
	pad := h/2 + 1 // 容纳字形越出行框的部分
	c2 := canvas.New(float64(w+2*pad), float64(h+2*pad))
	ctx := canvas.NewContext(c2)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

	face := f.family.Face(f.sizePt, c, canvas.FontRegular, canvas.FontNormal)
	ctx.DrawText(float64(pad), float64(pad)+f.ascent, canvas.NewTextLine(face, text, canvas.Left))

	layer := rasterizer.Draw(c2, canvas.DPMM(1.0), canvas.DefaultColorSpace)
	if layer == nil {
		return fmt.Errorf("光栅化 %q 失败", text)
	}
	origin := image.Pt(at.X-pad, at.Y-pad)
	draw.Draw(dst, layer.Bounds().Add(origin), layer, layer.Bounds().Min, draw.Over)
	return nil
}

// Encode 以固定压缩级别输出无损 PNG。
func Encode(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return nil
}
