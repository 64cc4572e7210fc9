package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ByLCY/notecard/theme"
)

func newThemeCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "主题文件工具",
		Annotations: map[string]string{
			"skipConfigLoad": "true",
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check <file>",
		Short: "解析并校验主题文件",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			th, err := theme.Load(args[0])
			if err != nil {
				return err
			}
			ctx.log().Debug("主题校验通过", "path", args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: OK\n", th.Name, th.Version)
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"项目", "值"}, themeRows(th), nil))
			return nil
		},
	})
	return cmd
}

func themeRows(th *theme.Theme) [][]string {
	cfg := th.LayoutConfig()
	tiers := make([]string, 0, len(cfg.Tiers.Steps)+1)
	for _, t := range cfg.Tiers.Steps {
		tiers = append(tiers, fmt.Sprintf("≤%d→%dpx", t.MaxChars, t.Size))
	}
	tiers = append(tiers, fmt.Sprintf("其他→%dpx", cfg.Tiers.Default))
	w := cfg.Weights
	return [][]string{
		{"画布", fmt.Sprintf("%dx%d", cfg.CanvasWidth, cfg.CanvasHeight)},
		{"可用宽度", strconv.Itoa(cfg.MaxWidth()) + "px"},
		{"行距", strconv.Itoa(cfg.LineSpacing) + "px"},
		{"字号阶梯", strings.Join(tiers, " ")},
		{"打分", fmt.Sprintf("漢字%d カナ%d 英字%d かな→漢字%+d 切替%+d", w.KanjiPair, w.KatakanaPair, w.LatinPair, w.HiraganaKanji, w.Transition)},
		{"底图", th.Background.Base},
		{"字体", strings.Join(th.Fonts, "\n")},
	}
}
