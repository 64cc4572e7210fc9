// Package theme 解析标题卡片的主题文件（画布、文字、底图、字体链、字号阶梯、打分参数），
// 并转换为排版引擎与渲染器的配置。
package theme

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/ByLCY/notecard/background"
	"github.com/ByLCY/notecard/layout"
	canvasrenderer "github.com/ByLCY/notecard/renderer/canvas"
)

// Theme 是解析并校验后的主题。
type Theme struct {
	Name       string
	Version    string
	Layout     layout.Config
	Background Background
	Fonts      []string
}

// Background 描述底图查找约定与渐变两端颜色。
type Background struct {
	Base       string
	Extensions []string
	From       layout.Color
	To         layout.Color
}

// Default 返回内置默认主题。
func Default() *Theme {
	return &Theme{
		Name:    "default",
		Version: "v1",
		Layout:  layout.DefaultConfig(),
		Background: Background{
			Base:       "assets/header_background",
			Extensions: append([]string(nil), background.DefaultExtensions...),
			From:       layout.Color{R: 102, G: 126, B: 234},
			To:         layout.Color{R: 118, G: 75, B: 162},
		},
		Fonts: append([]string(nil), canvasrenderer.DefaultFontChain...),
	}
}

// Load 读取主题文件；path 为空时返回默认主题。
func Load(path string) (*Theme, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开主题文件 %s: %w", path, err)
	}
	defer file.Close()
	th, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("解析主题 %s 失败: %w", path, err)
	}
	return th, nil
}

// Parse 从 io.Reader 解析主题，未声明的项沿用默认值。
func Parse(r io.Reader) (*Theme, error) {
	doc, err := ParseDocument(r)
	if err != nil {
		return nil, err
	}
	return FromDocument(doc)
}

// ParseString 从字符串解析主题。
func ParseString(input string) (*Theme, error) {
	doc, err := ParseDocumentString(input)
	if err != nil {
		return nil, err
	}
	return FromDocument(doc)
}

// FromDocument 把 AST 转为主题并校验。
func FromDocument(doc *Document) (*Theme, error) {
	if doc == nil || doc.Block == nil {
		return nil, fmt.Errorf("主题为空")
	}
	th := Default()
	th.Name, th.Version = doc.Name, doc.Version

	for _, st := range doc.Block.Statements {
		if st.Command == nil {
			return nil, fmt.Errorf("%s: 顶层只允许段落声明", statementPos(st))
		}
		cmd := st.Command
		if cmd.Block == nil {
			return nil, fmt.Errorf("%s: 段落 %s 缺少内容", cmd.Pos, cmd.Name)
		}
		var err error
		switch cmd.Name {
		case "canvas":
			err = th.applyCanvas(cmd.Block)
		case "text":
			err = th.applyText(cmd.Block)
		case "background":
			err = th.applyBackground(cmd.Block)
		case "fonts":
			err = th.applyFonts(cmd.Block)
		case "tiers":
			err = th.applyTiers(cmd.Block)
		case "weights":
			err = th.applyWeights(cmd.Block)
		case "kinsoku":
			err = th.applyKinsoku(cmd.Block)
		default:
			err = fmt.Errorf("%s: 未知段落 %s", cmd.Pos, cmd.Name)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := th.Layout.Validate(); err != nil {
		return nil, err
	}
	if len(th.Fonts) == 0 {
		return nil, fmt.Errorf("fonts 段落不能为空")
	}
	return th, nil
}

func (th *Theme) applyCanvas(block *Block) error {
	return eachAssignment(block, "canvas", func(a *Assignment) error {
		switch a.Key {
		case "width":
			return setInt(a, &th.Layout.CanvasWidth)
		case "height":
			return setInt(a, &th.Layout.CanvasHeight)
		}
		return unknownKey(a, "canvas")
	})
}

func (th *Theme) applyText(block *Block) error {
	return eachAssignment(block, "text", func(a *Assignment) error {
		switch a.Key {
		case "color":
			return setColor(a, &th.Layout.TextColor)
		case "max-width":
			l, err := lengthValue(a)
			if err != nil {
				return err
			}
			if l.Unit != layout.UnitPercent && l.Unit != layout.UnitNone {
				return fmt.Errorf("%s: max-width 只接受百分比或 0~1 的比例，得到单位 %s", a.Pos, l.Unit)
			}
			th.Layout.MaxWidthRatio = l.Ratio()
			return nil
		case "spacing":
			return setInt(a, &th.Layout.LineSpacing)
		case "shadow":
			if th.Layout.Shadow == nil {
				th.Layout.Shadow = &layout.Shadow{Offset: 2}
			}
			return setColor(a, &th.Layout.Shadow.Color)
		case "shadow-offset":
			if th.Layout.Shadow == nil {
				th.Layout.Shadow = &layout.Shadow{Color: layout.Color{R: 255, G: 255, B: 255}}
			}
			return setInt(a, &th.Layout.Shadow.Offset)
		}
		return unknownKey(a, "text")
	})
}

func (th *Theme) applyBackground(block *Block) error {
	return eachAssignment(block, "background", func(a *Assignment) error {
		switch a.Key {
		case "src":
			s, err := stringValue(a)
			if err != nil {
				return err
			}
			th.Background.Base = s
			return nil
		case "extensions":
			list, err := stringList(a)
			if err != nil {
				return err
			}
			th.Background.Extensions = list
			return nil
		case "from":
			return setColor(a, &th.Background.From)
		case "to":
			return setColor(a, &th.Background.To)
		}
		return unknownKey(a, "background")
	})
}

func (th *Theme) applyFonts(block *Block) error {
	var chain []string
	for _, st := range block.Statements {
		if st.Text == nil {
			return fmt.Errorf("%s: fonts 段落只接受字符串路径", statementPos(st))
		}
		chain = append(chain, string(st.Text.Value))
	}
	th.Fonts = chain
	return nil
}

// applyTiers 解析 `tier <最大字符数> <字号>` 与 `default <字号>`。
func (th *Theme) applyTiers(block *Block) error {
	tiers := layout.Tiers{Default: th.Layout.Tiers.Default}
	for _, st := range block.Statements {
		cmd := st.Command
		if cmd == nil {
			return fmt.Errorf("%s: tiers 段落只接受 tier/default 指令", statementPos(st))
		}
		switch cmd.Name {
		case "tier":
			if len(cmd.Args) != 2 {
				return fmt.Errorf("%s: tier 需要两个参数：字符数与字号", cmd.Pos)
			}
			n, err := strconv.Atoi(cmd.Args[0].Value)
			if err != nil {
				return fmt.Errorf("%s: 字符数 %q 无效", cmd.Pos, cmd.Args[0].Value)
			}
			size, err := sizeArg(cmd.Args[1])
			if err != nil {
				return err
			}
			tiers.Steps = append(tiers.Steps, layout.Tier{MaxChars: n, Size: size})
		case "default":
			if len(cmd.Args) != 1 {
				return fmt.Errorf("%s: default 需要一个字号参数", cmd.Pos)
			}
			size, err := sizeArg(cmd.Args[0])
			if err != nil {
				return err
			}
			tiers.Default = size
		default:
			return fmt.Errorf("%s: tiers 段落不支持 %s", cmd.Pos, cmd.Name)
		}
	}
	sort.SliceStable(tiers.Steps, func(i, j int) bool { return tiers.Steps[i].MaxChars < tiers.Steps[j].MaxChars })
	th.Layout.Tiers = tiers
	return nil
}

func (th *Theme) applyWeights(block *Block) error {
	w := &th.Layout.Weights
	return eachAssignment(block, "weights", func(a *Assignment) error {
		switch a.Key {
		case "kanji-pair":
			return setInt(a, &w.KanjiPair)
		case "katakana-pair":
			return setInt(a, &w.KatakanaPair)
		case "latin-pair":
			return setInt(a, &w.LatinPair)
		case "hiragana-kanji":
			return setInt(a, &w.HiraganaKanji)
		case "transition":
			return setInt(a, &w.Transition)
		}
		return unknownKey(a, "weights")
	})
}

// applyKinsoku 允许在默认禁则表之外追加字符，不能删除默认项。
func (th *Theme) applyKinsoku(block *Block) error {
	var extraStart, extraEnd string
	err := eachAssignment(block, "kinsoku", func(a *Assignment) error {
		s, err := stringValue(a)
		if err != nil {
			return err
		}
		switch a.Key {
		case "line-start":
			extraStart += s
		case "line-end":
			extraEnd += s
		default:
			return unknownKey(a, "kinsoku")
		}
		return nil
	})
	if err != nil {
		return err
	}
	th.Layout.Kinsoku = layout.NewKinsoku(layout.DefaultLineStart+extraStart, layout.DefaultLineEnd+extraEnd)
	return nil
}

// LayoutConfig 返回排版引擎配置。
func (th *Theme) LayoutConfig() layout.Config { return th.Layout }

// FontChain 返回字体回退链的副本。
func (th *Theme) FontChain() []string { return append([]string(nil), th.Fonts...) }

// BackgroundOptions 返回底图配置，相对路径以 baseDir 为根。
func (th *Theme) BackgroundOptions(baseDir string) background.Options {
	opts := background.DefaultOptions()
	opts.Width, opts.Height = th.Layout.CanvasWidth, th.Layout.CanvasHeight
	opts.Base = th.Background.Base
	if opts.Base != "" && !filepath.IsAbs(opts.Base) && baseDir != "" {
		opts.Base = filepath.Join(baseDir, opts.Base)
	}
	if len(th.Background.Extensions) > 0 {
		opts.Extensions = th.Background.Extensions
	}
	opts.From = th.Background.From.RGBA()
	opts.To = th.Background.To.RGBA()
	return opts
}

// RendererOptions 组装 canvas 渲染器配置。
func (th *Theme) RendererOptions(baseDir string, logger hclog.Logger) canvasrenderer.Options {
	return canvasrenderer.Options{
		BaseDir:    baseDir,
		Fonts:      th.FontChain(),
		Layout:     th.Layout,
		Background: th.BackgroundOptions(baseDir),
		Logger:     logger,
	}
}

func eachAssignment(block *Block, section string, fn func(a *Assignment) error) error {
	for _, st := range block.Statements {
		if st.Assignment == nil {
			return fmt.Errorf("%s: %s 段落只接受 key: value", statementPos(st), section)
		}
		if err := fn(st.Assignment); err != nil {
			return err
		}
	}
	return nil
}

func unknownKey(a *Assignment, section string) error {
	return fmt.Errorf("%s: %s 段落不支持 %s", a.Pos, section, a.Key)
}

func statementPos(st *Statement) string {
	switch {
	case st.Assignment != nil:
		return st.Assignment.Pos.String()
	case st.Command != nil:
		return st.Command.Pos.String()
	case st.Text != nil:
		return st.Text.Pos.String()
	default:
		return "?"
	}
}

func setInt(a *Assignment, dst *int) error {
	l, err := lengthValue(a)
	if err != nil {
		return err
	}
	*dst = l.RoundPx(0)
	return nil
}

func lengthValue(a *Assignment) (layout.Length, error) {
	if a.Value == nil || a.Value.Number == nil {
		return layout.Length{}, fmt.Errorf("%s: %s 需要数值", a.Pos, a.Key)
	}
	l, ok := layout.ParseLength(*a.Value.Number)
	if !ok {
		return layout.Length{}, fmt.Errorf("%s: %s 的数值 %q 无效", a.Pos, a.Key, *a.Value.Number)
	}
	return l, nil
}

func stringValue(a *Assignment) (string, error) {
	if a.Value == nil || a.Value.String == nil {
		return "", fmt.Errorf("%s: %s 需要字符串", a.Pos, a.Key)
	}
	return string(*a.Value.String), nil
}

func stringList(a *Assignment) ([]string, error) {
	if a.Value == nil || a.Value.Array == nil {
		return nil, fmt.Errorf("%s: %s 需要字符串数组", a.Pos, a.Key)
	}
	out := make([]string, 0, len(a.Value.Array.Values))
	for _, v := range a.Value.Array.Values {
		if v.String == nil {
			return nil, fmt.Errorf("%s: %s 只能包含字符串", a.Pos, a.Key)
		}
		out = append(out, string(*v.String))
	}
	return out, nil
}

func setColor(a *Assignment, dst *layout.Color) error {
	if a.Value == nil || a.Value.Color == nil {
		return fmt.Errorf("%s: %s 需要颜色值，例如 #667eea", a.Pos, a.Key)
	}
	c, err := parseColor(*a.Value.Color)
	if err != nil {
		return fmt.Errorf("%s: %w", a.Pos, err)
	}
	*dst = c
	return nil
}

func sizeArg(lx *Lexeme) (int, error) {
	l, ok := layout.ParseLength(lx.Value)
	if !ok || l.Unit == layout.UnitPercent {
		return 0, fmt.Errorf("%s: 字号 %q 无效", lx.Pos, lx.Raw)
	}
	return l.RoundPx(0), nil
}

// parseColor 解析 #rgb 或 #rrggbb。
func parseColor(value string) (layout.Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return layout.Color{}, fmt.Errorf("颜色 %q 格式无效", value)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return layout.Color{}, fmt.Errorf("颜色 %q 格式无效: %w", value, err)
	}
	return layout.Color{R: int(v >> 16 & 0xff), G: int(v >> 8 & 0xff), B: int(v & 0xff)}, nil
}
