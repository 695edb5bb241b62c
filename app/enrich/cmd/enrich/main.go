package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/optimate/optimate/app/common/pkg/config"
	"github.com/optimate/optimate/app/common/pkg/feed"
	"github.com/optimate/optimate/app/common/pkg/heatmap"
	"github.com/optimate/optimate/app/common/pkg/logger"
	"github.com/optimate/optimate/app/enrich/pkg/engine"
)

var (
	confPath string
	cfg      *config.Config
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "enrich",
		Short:         "Offline scoring for the underwriting dashboard feed",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if confPath == "" {
				cfg = config.Default()
			} else if cfg, err = config.LoadConfig(confPath); err != nil {
				return fmt.Errorf("无法加载配置文件: %w", err)
			}
			if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
				return fmt.Errorf("无法初始化日志: %w", err)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&confPath, "conf", "", "config path, eg: --conf app/enrich/configs/config.yaml")

	root.AddCommand(newScoreCmd(), newHeatmapCmd())
	return root
}

func newScoreCmd() *cobra.Command {
	var (
		in, out, heatmapOut string
		opts                engine.ScoreOptions
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a raw policy export and write the accounts feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runScore(ctx, in, out, heatmapOut, opts)
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "raw policy export (JSON)")
	cmd.Flags().StringVar(&out, "out", "accounts.json", "accounts feed output")
	cmd.Flags().StringVar(&heatmapOut, "heatmap", "", "optional heatmap output")
	cmd.Flags().BoolVar(&opts.Justify, "justify", false, "generate justification points with the LLM")
	cmd.Flags().IntVar(&opts.Top, "top", engine.DefaultJustifyTop, "number of top policies to justify")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func runScore(ctx context.Context, in, out, heatmapOut string, opts engine.ScoreOptions) error {
	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	raws, err := feed.DecodeRaw(data)
	if err != nil {
		return err
	}
	logger.Log.Infof("读取到 %d 张原始保单", len(raws))

	e, err := engine.NewEngine(cfg)
	if err != nil {
		return err
	}
	doc, err := e.Score(ctx, raws, opts)
	if err != nil {
		return err
	}
	if err := writeJSON(out, doc); err != nil {
		return err
	}
	logger.Log.Infof("已写入 %s，共 %d 个账户", out, len(doc.Accounts))

	if heatmapOut == "" {
		return nil
	}
	if err := writeJSON(heatmapOut, engine.Heatmap(doc)); err != nil {
		return err
	}
	logger.Log.Infof("已写入 %s", heatmapOut)
	return nil
}

func newHeatmapCmd() *cobra.Command {
	var in, out string
	cmd := &cobra.Command{
		Use:   "heatmap",
		Short: "Aggregate an accounts feed by state",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(in)
			if err != nil {
				return err
			}
			policies, err := feed.Decode(data)
			if err != nil {
				return err
			}
			doc := &heatmap.Document{States: heatmap.Aggregate(policies)}
			if err := writeJSON(out, doc); err != nil {
				return err
			}
			logger.Log.Infof("已写入 %s，共 %d 个州", out, len(doc.States))
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "accounts feed (JSON)")
	cmd.Flags().StringVar(&out, "out", "heatmap.json", "heatmap output")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func writeJSON(path string, v any) error {
	data, err := feed.Encode(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
