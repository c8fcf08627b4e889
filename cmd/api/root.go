package main

import (
	"context"
	"log"

	"resume-analyzer/internal/app"
	"resume-analyzer/internal/config"
	"resume-analyzer/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	// Used for flags.
	cfgFile string

	v = viper.New()

	rootCmd = &cobra.Command{
		Use:           config.AppName,
		Short:         "resume-analyzer scores a PDF resume against a job description with Gemini",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-analyzer.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	if err := v.BindPFlag("logging.debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		log.Fatalf("binding debug flag: %v", err)
	}
	if err := v.BindPFlag("logging.json", rootCmd.PersistentFlags().Lookup("json")); err != nil {
		log.Fatalf("binding json flag: %v", err)
	}
}

// bootstrap loads the config, builds the logger and wires the pipeline.
func bootstrap(ctx context.Context) (*app.App, *zap.Logger, error) {

	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, nil, err
	}

	l, err := logger.New(cfg.Logging.JSON, cfg.Logging.Debug)
	if err != nil {
		return nil, nil, err
	}

	l.Debug("configuration loaded",
		zap.String("model", cfg.Gemini.Model),
		zap.Float64("render_scale", cfg.Render.Scale),
		zap.Bool("page_cache", cfg.Cache.URL != ""),
		zap.Bool("run_ledger", cfg.Ledger.DatabaseURL != ""),
	)

	a, err := app.New(ctx, cfg, l)
	if err != nil {
		_ = l.Sync()
		return nil, nil, err
	}

	return a, l, nil
}
