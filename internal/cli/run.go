package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one full ingest, analyze, and speed cycle",
	Long: `Run executes the three stages in sequence: download and merge the latest
detections, regenerate the filtered and daily extent datasets, and extract
breakthrough events. This is the command to put in a cron job.`,
	RunE: runOnce,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireMapKey(); err != nil {
		return err
	}

	a := buildApp(cfg)
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return a.pipeline.RunCycle(ctx)
}
