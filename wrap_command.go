package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ByLCY/notecard/layout"
)

func newWrapCommand(ctx *commandContext) *cobra.Command {
	var title, themePath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "wrap",
		Short: "只排版不绘制，打印换行结果",
		RunE: func(cmd *cobra.Command, args []string) error {
			th, err := ctx.loadTheme(themePath)
			if err != nil {
				return err
			}
			r, err := ctx.newRenderer(th)
			if err != nil {
				return err
			}
			block, err := r.Layout(title)
			if err != nil {
				return fmt.Errorf("排版失败: %w", err)
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(block)
			}
			fmt.Fprintf(out, "字号 %dpx，可用宽度 %dpx，共 %d 行，起始 Y %d\n", block.Size, block.MaxWidth, len(block.Lines), block.StartY)
			fmt.Fprintln(out, renderTable(
				[]string{"#", "内容", "宽度", "高度", "X", "Y"},
				lineRows(block.Lines),
				[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "标题文本")
	cmd.Flags().StringVar(&themePath, "theme", "", "主题文件，覆盖配置中的 card.theme")
	cmd.Flags().BoolVar(&asJSON, "json", false, "以 JSON 输出排版结果")
	return cmd
}

func lineRows(lines []layout.Line) [][]string {
	rows := make([][]string, 0, len(lines))
	for i, l := range lines {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			l.Content,
			strconv.Itoa(l.Width),
			strconv.Itoa(l.Height),
			strconv.Itoa(l.X),
			strconv.Itoa(l.Y),
		})
	}
	return rows
}
