// -- cmd/analyze.go --
package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/postmortem-cli/api/schemas"
	"github.com/xkilldash9x/postmortem-cli/internal/config"
	"github.com/xkilldash9x/postmortem-cli/internal/observability"
	"github.com/xkilldash9x/postmortem-cli/internal/pipeline"
	"github.com/xkilldash9x/postmortem-cli/internal/reporting"
	"github.com/xkilldash9x/postmortem-cli/internal/tracker"
	"github.com/xkilldash9x/postmortem-cli/internal/wiki"
)

// newAnalyzeCmd creates and configures the `analyze` command.
func newAnalyzeCmd() *cobra.Command {
	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Pulls incidents, analyzes their review documents and exports a report",
		// PreRunE finalizes configuration before the main execution logic.
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags to their Viper keys so CLI flags override values
			// from the config file and environment variables.
			if err := viper.BindPFlag("report.format", cmd.Flags().Lookup("format")); err != nil {
				return err
			}
			if err := viper.BindPFlag("report.preserve_content", cmd.Flags().Lookup("preserve-content")); err != nil {
				return err
			}
			if err := viper.BindPFlag("analysis.workers", cmd.Flags().Lookup("workers")); err != nil {
				return err
			}
			if err := viper.BindPFlag("tracker.project", cmd.Flags().Lookup("project")); err != nil {
				return err
			}
			if err := viper.BindPFlag("wiki.space_key", cmd.Flags().Lookup("space")); err != nil {
				return err
			}
			return viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return err
			}
			// Date-window flags live outside the config file.
			cfg.Report.Since = viper.GetString("since")
			cfg.Report.RecentDays = viper.GetInt("recent")
			if cfg.Report.Since != "" && cfg.Report.RecentDays > 0 {
				return fmt.Errorf("--since and --recent are mutually exclusive")
			}
			if cfg.Tracker.BaseURL == "" {
				return fmt.Errorf("tracker.base_url is not configured (POSTMORTEM_TRACKER_BASE_URL)")
			}
			if cfg.Wiki.BaseURL == "" {
				return fmt.Errorf("wiki.base_url is not configured (POSTMORTEM_WIKI_BASE_URL)")
			}

			trackerClient := tracker.NewClient(cfg.Tracker, logger)
			wikiClient := wiki.NewClient(cfg.Wiki, logger)

			if err := trackerClient.Ping(ctx); err != nil {
				return err
			}
			if err := wikiClient.Ping(ctx); err != nil {
				// Analysis can still run on tracker data alone; every
				// incident just keeps its no-document defaults.
				logger.Warn("Wiki unreachable; reports will lack document analysis.", zap.Error(err))
			}

			run := pipeline.New(cfg, trackerClient, wikiClient, logger)
			envelope, err := run.Run(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return fmt.Errorf("analysis aborted by user signal")
				}
				return err
			}

			outputs, err := writeReports(cfg, viper.GetString("output"), &envelope, logger)
			if err != nil {
				return err
			}

			fmt.Printf("\nAnalysis Complete. Run ID: %s\n", envelope.RunID)
			for _, path := range outputs {
				fmt.Printf("Report written to %s\n", path)
			}
			return nil
		},
	}

	// Reporting flags
	analyzeCmd.Flags().StringP("output", "o", "", "Output file path. Defaults to incident_analysis_<date>.<ext> in report.output_dir.")
	analyzeCmd.Flags().StringP("format", "f", "csv", "Report format: 'csv', 'json' or 'both'.")
	analyzeCmd.Flags().Bool("preserve-content", false, "Embed raw document markup and text in JSON exports.")

	// Incident selection flags
	analyzeCmd.Flags().String("since", "", "Only analyze incidents created on or after this date (YYYY-MM-DD).")
	analyzeCmd.Flags().Int("recent", 0, "Only analyze incidents created in the last N days.")

	// Override flags
	analyzeCmd.Flags().IntP("workers", "j", 0, "Number of concurrent incident analyzers. (Overrides config/env)")
	analyzeCmd.Flags().String("project", "", "Tracker project key to pull incidents from. (Overrides config/env)")
	analyzeCmd.Flags().String("space", "", "Wiki space key holding the review documents. (Overrides config/env)")

	return analyzeCmd
}

// writeReports emits the envelope in every requested format and returns the
// written paths.
func writeReports(cfg *config.Config, outputPath string, envelope *schemas.ReportEnvelope, logger *zap.Logger) ([]string, error) {
	formats := []string{cfg.Report.Format}
	if cfg.Report.Format == "both" {
		formats = []string{"csv", "json"}
	}

	var written []string
	for _, format := range formats {
		path := resolveOutputPath(cfg, outputPath, format, len(formats) > 1)

		reporter, err := reporting.New(format, path)
		if err != nil {
			return written, fmt.Errorf("failed to initialize %s reporter: %w", format, err)
		}
		if err := reporter.Write(envelope); err != nil {
			reporter.Close()
			return written, fmt.Errorf("failed to write %s report: %w", format, err)
		}
		if err := reporter.Close(); err != nil {
			return written, fmt.Errorf("failed to finalize %s report: %w", format, err)
		}

		logger.Info("Report generated successfully.",
			zap.String("format", format), zap.String("path", displayPath(path)))
		written = append(written, displayPath(path))
	}
	return written, nil
}

// resolveOutputPath picks the file to write: the explicit --output path, or a
// dated default inside report.output_dir. When exporting both formats the
// explicit path keeps its base name and swaps the extension.
func resolveOutputPath(cfg *config.Config, outputPath, format string, multi bool) string {
	if outputPath != "" {
		if !multi {
			return outputPath
		}
		ext := filepath.Ext(outputPath)
		return strings.TrimSuffix(outputPath, ext) + "." + format
	}
	name := fmt.Sprintf("incident_analysis_%s.%s", time.Now().Format("20060102"), format)
	return filepath.Join(cfg.Report.OutputDir, name)
}

func displayPath(path string) string {
	if path == "" {
		return "stdout"
	}
	return path
}
