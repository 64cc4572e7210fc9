package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/ByLCY/notecard/layout"
	"github.com/ByLCY/notecard/renderer"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var title, out, themePath, debugPath string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "把标题渲染为 PNG 头图",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(out) == "" {
				return fmt.Errorf("需要 --out 指定输出路径")
			}
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
			if debugPath != "" {
				if err := writeDebug(block, debugPath); err != nil {
					return err
				}
			}
			n, err := renderer.RenderFile(r, title, out)
			if err != nil {
				return fmt.Errorf("生成头图失败: %w", err)
			}
			src, err := r.FontSource()
			fmt.Fprintf(cmd.OutOrStdout(), "已生成头图：%s（%s，字号 %dpx，%d 行，字体 %s）\n",
				out, humanize.Bytes(uint64(n)), block.Size, len(block.Lines), fontLabel(src, err, ctx.log()))
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "标题文本")
	cmd.Flags().StringVarP(&out, "out", "o", "header.png", "PNG 输出路径")
	cmd.Flags().StringVar(&themePath, "theme", "", "主题文件，覆盖配置中的 card.theme")
	cmd.Flags().StringVar(&debugPath, "debug", "", "排版调试 JSON 输出路径")
	return cmd
}

// fontLabel 返回用于提示的字体来源，无法确定时记录原因并显示“未知”。
func fontLabel(src string, err error, logger hclog.Logger) string {
	if err != nil {
		logger.Debug("无法确定字体来源", "error", err)
		return "未知"
	}
	return src
}

func writeDebug(block *layout.Block, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(block, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
