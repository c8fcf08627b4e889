package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"resume-analyzer/internal/processor"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a local resume PDF against a job description file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		filePath, _ := cmd.Flags().GetString("file")
		jobPath, _ := cmd.Flags().GetString("job")

		document, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("reading resume: %w", err)
		}

		job, err := os.ReadFile(jobPath)
		if err != nil {
			return fmt.Errorf("reading job description: %w", err)
		}

		ctx := cmd.Context()

		a, l, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer l.Sync()
		defer a.Close()

		result, err := a.Processor.Process(ctx, processor.Request{
			FileName:       filepath.Base(filePath),
			Document:       document,
			JobDescription: string(job),
		})
		if err != nil {
			l.Error("analysis failed", zap.Error(err))
			return err
		}

		pretty, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("file", "f", "", "resume PDF to analyze")
	analyzeCmd.Flags().StringP("job", "J", "", "text file with the job description")

	_ = analyzeCmd.MarkFlagRequired("file")
	_ = analyzeCmd.MarkFlagRequired("job")
}
