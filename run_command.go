package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ByLCY/notecard/formatter"
	"github.com/ByLCY/notecard/ledger"
	"github.com/ByLCY/notecard/notion"
	"github.com/ByLCY/notecard/pipeline"
	"github.com/ByLCY/notecard/publish"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var themePath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "处理 Notion 中所有 Ready 状态的文章",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateRemote(); err != nil {
				return err
			}
			logger := ctx.log()

			th, err := ctx.loadTheme(themePath)
			if err != nil {
				return err
			}
			r, err := ctx.newRenderer(th)
			if err != nil {
				return err
			}
			if err := r.Warm(); err != nil {
				return fmt.Errorf("加载字体失败: %w", err)
			}
			llm := formatter.NewClient(formatter.ClientConfig{
				APIKey:         cfg.LLM.APIKey,
				BaseURL:        cfg.LLM.BaseURL,
				Model:          cfg.LLM.Model,
				MaxTokens:      cfg.LLM.MaxTokens,
				Temperature:    cfg.LLM.Temperature,
				TimeoutSeconds: cfg.LLM.TimeoutSeconds,
			}, formatter.WithRetryMaxAttempts(cfg.LLM.MaxRetries+1))
			f, err := formatter.New(llm, logger)
			if err != nil {
				return err
			}
			runner := &pipeline.Runner{
				DatabaseID: cfg.Notion.DatabaseID,
				DryRun:     dryRun,
				Source: notion.NewClient(notion.Config{
					Token:          cfg.Notion.Token,
					BaseURL:        cfg.Notion.BaseURL,
					Version:        cfg.Notion.Version,
					StatusProperty: cfg.Notion.StatusProperty,
					ReadyStatus:    cfg.Notion.ReadyStatus,
					DoneStatus:     cfg.Notion.DoneStatus,
				}),
				Formatter: f,
				Renderer:  r,
				Logger:    logger.Named("pipeline"),
			}
			if !dryRun {
				if err := cfg.EnsureDirectories(); err != nil {
					return err
				}
				l, err := ledger.Open(cfg.State.Ledger)
				if err != nil {
					return err
				}
				defer l.Close()
				runner.Ledger = l
				runner.LockPath = cfg.State.Lock
				runner.Publisher = publish.NewDirPublisher(cfg.Output.Dir, cfg.Output.Filename, logger)
			}
			logger.Info("开始运行", "model", llm.Model(), "theme", th.Name, "dry_run", dryRun)

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			summary, err := runner.Run(runCtx)
			if err != nil {
				return err
			}
			printSummary(cmd, summary)
			if summary.Errors > 0 {
				return fmt.Errorf("%d 篇文章处理失败", summary.Errors)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "只整形与渲染，不保存草稿也不回写状态")
	cmd.Flags().StringVar(&themePath, "theme", "", "主题文件，覆盖配置中的 card.theme")
	return cmd
}

func printSummary(cmd *cobra.Command, summary pipeline.Summary) {
	out := cmd.OutOrStdout()
	if len(summary.Results) > 0 {
		rows := make([][]string, 0, len(summary.Results))
		for i, res := range summary.Results {
			detail := res.Location
			if res.Err != nil {
				detail = res.Err.Error()
			}
			rows = append(rows, []string{strconv.Itoa(i + 1), res.ArticleID, res.Title, string(res.Status), detail})
		}
		fmt.Fprintln(out, renderTable([]string{"#", "ID", "标题", "状态", "位置/错误"}, rows, []columnAlignment{alignRight}))
	}
	fmt.Fprintf(out, "成功 %d，失败 %d，跳过 %d\n", summary.Success, summary.Errors, summary.Skipped)
}
