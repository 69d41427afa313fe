package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Tag, filter, and summarize the archived detections",
	Long: `Analyze reads every product archive from disk, tags each detection with
its satellite and distance from the vent, applies the track, FRP, and time
window filters, and writes the filtered detections, per-day maximum extents,
and per-satellite FRP statistics to the output directory.

No network access is needed; the command operates on whatever the last
ingest left in the archive directory.`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a := buildApp(cfg)
	defer a.close()

	summary, err := a.pipeline.Analyze(context.Background())
	if err != nil {
		return err
	}
	a.logger.Info("analysis complete",
		"archive_records", summary.ArchiveRecords,
		"filtered", summary.Filtered,
		"daily_extents", summary.DailyExtents,
	)
	return nil
}
