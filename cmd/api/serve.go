package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		a, l, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer l.Sync()
		defer a.Close()

		l.Info("starting the resume-analyzer", zap.String("version", version))

		return a.Serve(ctx, version)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
