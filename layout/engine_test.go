package layout

import (
	"errors"
	"image"
	"image/color"
	"reflect"
	"testing"
	"unicode/utf8"
)

var sampleTitles = []string{
	"短いタイトル",
	"朝5時起きの習慣が私を変えた話",
	"プログラミング初心者が最短で成長する勉強法",
	"AIと一緒に学ぶGo言語の並行処理パターン入門ガイド完全版",
	"「はじめての」ノート術：毎日続けるためのコツ",
	"エンジニアが副業で月10万円を稼ぐまでにやったことをすべて公開します【保存版】",
	"Kubernetes運用で本当に困ったトラブルシューティング事例集",
	"なぜ私は会社を辞めてフリーランスになったのか、そしてその後の一年間",
}

func newTestEngine(t *testing.T) (*Engine, *stubResolver) {
	t.Helper()
	res := newStubResolver()
	e, err := NewEngine(DefaultConfig(), res)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e, res
}

func contents(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Content
	}
	return out
}

func TestLayoutShortTitleSingleLine(t *testing.T) {
	e, _ := newTestEngine(t)
	block, _, err := e.Layout("短いタイトル")
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if block.Size != 120 {
		t.Fatalf("字号期望 120，实际 %d", block.Size)
	}
	if len(block.Lines) != 1 || block.Lines[0].Content != "短いタイトル" {
		t.Fatalf("期望单行，实际 %v", contents(block.Lines))
	}
}

func TestLayoutParticlesNeverStartLine(t *testing.T) {
	e, _ := newTestEngine(t)
	block, _, err := e.Layout("朝5時起きの習慣が私を変えた話")
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if block.Size != 100 {
		t.Fatalf("字号期望 100，实际 %d", block.Size)
	}
	want := []string{"朝5時起きの習慣が", "私を変えた話"}
	if got := contents(block.Lines); !reflect.DeepEqual(got, want) {
		t.Fatalf("折行期望 %v，实际 %v", want, got)
	}
	for _, l := range block.Lines {
		first, _ := utf8.DecodeRuneInString(l.Content)
		if first == 'が' || first == 'の' {
			t.Fatalf("行 %q 以助词开头", l.Content)
		}
	}
}

// 21 个字符落在 ≤25 档（70px）；在 85px 下直接调用 Wrap 也不拆开熟语。
func TestWrapKeepsKanjiCompounds(t *testing.T) {
	e, _ := newTestEngine(t)
	title := "プログラミング初心者が最短で成長する勉強法"
	if got := DefaultTiers().SizeFor(title); got != 70 {
		t.Fatalf("字号期望 70，实际 %d", got)
	}
	lines := e.Wrap(title, &stubFace{size: 85}, 1024)
	want := []string{"プログラミング初心者が", "最短で成長する勉強法"}
	if got := contents(lines); !reflect.DeepEqual(got, want) {
		t.Fatalf("折行期望 %v，实际 %v", want, got)
	}

	block, _, err := e.Layout(title)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	want = []string{"プログラミング初心者が最短で", "成長する勉強法"}
	if got := contents(block.Lines); !reflect.DeepEqual(got, want) {
		t.Fatalf("70px 折行期望 %v，实际 %v", want, got)
	}
}

func TestWrapEmptyTitle(t *testing.T) {
	e, _ := newTestEngine(t)
	block, _, err := e.Layout("")
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if len(block.Lines) != 1 || block.Lines[0].Content != "" {
		t.Fatalf("空标题应得到一行空字符串，实际 %v", contents(block.Lines))
	}
	if block.Height != block.Lines[0].Height {
		t.Fatalf("总高度期望 %d，实际 %d", block.Lines[0].Height, block.Height)
	}
}

// 断行后剩余部分加上触发溢出的宽字符仍然超宽时，需要再次断行。
func TestWrapRebreaksOverflowingRemainder(t *testing.T) {
	e, _ := newTestEngine(t)
	lines := e.Wrap("a漢漢漢漢漢漢漢漢漢", &stubFace{size: 120}, 1024)
	want := []string{"a", "漢漢漢漢漢漢漢漢", "漢"}
	if got := contents(lines); !reflect.DeepEqual(got, want) {
		t.Fatalf("折行期望 %v，实际 %v", want, got)
	}
	for i, l := range lines {
		if l.Width > 1024 {
			t.Fatalf("第 %d 行 %q 宽度 %d 超过 1024", i, l.Content, l.Width)
		}
	}
}

func TestWrapOversizedRuneStandsAlone(t *testing.T) {
	e, _ := newTestEngine(t)
	lines := e.Wrap("漢字漢字", &stubFace{size: 600}, 1024)
	want := []string{"漢", "字", "漢", "字"}
	if got := contents(lines); !reflect.DeepEqual(got, want) {
		t.Fatalf("期望 %v，实际 %v", want, got)
	}
	lines = e.Wrap("あ", &stubFace{size: 2000}, 1024)
	if len(lines) != 1 || lines[0].Content != "あ" || lines[0].Width != 2000 {
		t.Fatalf("单个超宽字符应独占一行，实际 %+v", lines)
	}
}

// 覆盖不变量：至少一行、行宽不超限、禁则、纯函数。
func TestWrapInvariants(t *testing.T) {
	e, _ := newTestEngine(t)
	k := DefaultKinsoku()
	maxWidth := e.Config().MaxWidth()
	titles := append([]string{
		"a漢漢漢漢漢漢漢漢漢",
		"Go言語の並行処理パターン入門ガイド",
	}, sampleTitles...)
	for _, title := range titles {
		face := &stubFace{size: e.Config().Tiers.SizeFor(title)}
		lines := e.Wrap(title, face, maxWidth)
		if len(lines) == 0 {
			t.Fatalf("%q: 没有产生任何行", title)
		}
		joined := ""
		for i, l := range lines {
			joined += l.Content
			if l.Width > maxWidth && utf8.RuneCountInString(l.Content) > 1 {
				t.Fatalf("%q: 第 %d 行宽度 %d 超过 %d", title, i, l.Width, maxWidth)
			}
			if l.Content == "" {
				t.Fatalf("%q: 第 %d 行为空", title, i)
			}
			first, _ := utf8.DecodeRuneInString(l.Content)
			last, _ := utf8.DecodeLastRuneInString(l.Content)
			if i > 0 && k.CannotStart(first) {
				t.Fatalf("%q: 第 %d 行以禁则字符 %q 开头", title, i, first)
			}
			if i < len(lines)-1 && k.CannotEnd(last) {
				t.Fatalf("%q: 第 %d 行以禁则字符 %q 结尾", title, i, last)
			}
		}
		if joined != title {
			t.Fatalf("折行丢失或重复字符: %q -> %q", title, joined)
		}
		again := e.Wrap(title, face, maxWidth)
		if !reflect.DeepEqual(lines, again) {
			t.Fatalf("%q: 两次折行结果不一致", title)
		}
	}
}

func TestTiersMonotonic(t *testing.T) {
	tiers := DefaultTiers()
	want := map[int]int{0: 120, 10: 120, 11: 100, 15: 100, 16: 85, 20: 85, 21: 70, 25: 70, 26: 60, 30: 60, 31: 50, 200: 50}
	prev := 1 << 30
	for n := 0; n <= 200; n++ {
		title := ""
		for i := 0; i < n; i++ {
			title += "字"
		}
		got := tiers.SizeFor(title)
		if got > prev {
			t.Fatalf("字号随长度增大: n=%d size=%d prev=%d", n, got, prev)
		}
		prev = got
		if w, ok := want[n]; ok && got != w {
			t.Fatalf("n=%d 期望 %d，实际 %d", n, w, got)
		}
	}
	// 按码点计数而非字节
	if got := tiers.SizeFor("あいうえおかきくけこ"); got != 120 {
		t.Fatalf("10 个假名期望 120，实际 %d", got)
	}
	if got := tiers.Sizes(); !reflect.DeepEqual(got, []int{120, 100, 85, 70, 60, 50}) {
		t.Fatalf("字号列表错误: %v", got)
	}
}

func TestTiersValidate(t *testing.T) {
	if err := DefaultTiers().Validate(); err != nil {
		t.Fatalf("默认阶梯应合法: %v", err)
	}
	bad := Tiers{Steps: []Tier{{MaxChars: 10, Size: 60}, {MaxChars: 20, Size: 80}}, Default: 50}
	if err := bad.Validate(); err == nil {
		t.Fatalf("字号递增的阶梯应校验失败")
	}
	bad = Tiers{Steps: []Tier{{MaxChars: 10, Size: 60}, {MaxChars: 10, Size: 50}}, Default: 40}
	if err := bad.Validate(); err == nil {
		t.Fatalf("字符数未递增的阶梯应校验失败")
	}
}

func TestComposeCentersBlock(t *testing.T) {
	lines := []Line{
		{Content: "a", Width: 850, Height: 120},
		{Content: "b", Width: 601, Height: 120},
	}
	block := Compose(lines, 1280, 670, 20)
	if block.Height != 260 {
		t.Fatalf("总高度期望 260，实际 %d", block.Height)
	}
	if block.StartY != 205 {
		t.Fatalf("起点期望 205，实际 %d", block.StartY)
	}
	if block.Lines[0].X != 215 || block.Lines[0].Y != 205 {
		t.Fatalf("第一行坐标错误: %+v", block.Lines[0])
	}
	if block.Lines[1].X != 339 || block.Lines[1].Y != 345 {
		t.Fatalf("第二行坐标错误: %+v", block.Lines[1])
	}
}

func TestComposeTallBlockGoesNegative(t *testing.T) {
	lines := make([]Line, 6)
	for i := range lines {
		lines[i] = Line{Content: "x", Width: 100, Height: 121}
	}
	block := Compose(lines, 1280, 670, 20)
	// 6*121 + 5*20 = 826，(670-826)/2 = -78
	if block.StartY != -78 {
		t.Fatalf("起点期望 -78，实际 %d", block.StartY)
	}
	odd := Compose([]Line{{Width: 1281, Height: 671}}, 1280, 670, 20)
	if odd.StartY != -1 || odd.Lines[0].X != -1 {
		t.Fatalf("负数应向下取整: startY=%d x=%d", odd.StartY, odd.Lines[0].X)
	}
}

func TestRenderDrawsShadowThenText(t *testing.T) {
	res := newStubResolver()
	cfg := DefaultConfig()
	cfg.Shadow = &Shadow{Color: Color{R: 255, G: 255, B: 255}, Offset: 2}
	e, err := NewEngine(cfg, res)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	dst := image.NewRGBA(image.Rect(0, 0, cfg.CanvasWidth, cfg.CanvasHeight))
	block, err := e.Render(dst, "短いタイトル")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	face := res.faces[block.Size]
	if len(face.draws) != 2 {
		t.Fatalf("期望阴影+正文两次绘制，实际 %d", len(face.draws))
	}
	line := block.Lines[0]
	if face.draws[0].at != image.Pt(line.X+2, line.Y+2) {
		t.Fatalf("阴影位置错误: %v", face.draws[0].at)
	}
	if face.draws[1].at != image.Pt(line.X, line.Y) || face.draws[1].c != (color.RGBA{A: 0xff}) {
		t.Fatalf("正文绘制参数错误: %+v", face.draws[1])
	}
	if got := dst.RGBAAt(line.X+1, line.Y+1); got != (color.RGBA{A: 0xff}) {
		t.Fatalf("正文区域应为黑色，实际 %v", got)
	}
}

func TestLayoutWithoutFaceIsConfigError(t *testing.T) {
	res := newStubResolver()
	res.fail = true
	e, err := NewEngine(DefaultConfig(), res)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if _, _, err := e.Layout("タイトル"); !errors.Is(err, ErrNoFace) {
		t.Fatalf("期望 ErrNoFace，实际 %v", err)
	}
	if _, err := NewEngine(DefaultConfig(), nil); !errors.Is(err, ErrNoFace) {
		t.Fatalf("缺少解析器应返回 ErrNoFace，实际 %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MaxWidth() != 1024 {
		t.Fatalf("默认行宽期望 1024，实际 %d", cfg.MaxWidth())
	}
	cfg.MaxWidthRatio = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatalf("行宽比例超过 1 应校验失败")
	}
	cfg = DefaultConfig()
	cfg.CanvasHeight = 0
	if _, err := NewEngine(cfg, newStubResolver()); err == nil {
		t.Fatalf("画布高度为 0 应校验失败")
	}
}
