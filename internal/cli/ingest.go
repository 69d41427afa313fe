package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tephralabs/lavaflow/internal/pipeline"
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Download the latest detections and merge them into the archives",
	Long: `Ingest fetches the recent detection window for every configured FIRMS
product and merges each batch into its product archive, replacing any
previously archived data for the dates the batch covers.

A failing product is reported and skipped; the remaining products still
merge. The command fails only when no product could be ingested.`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
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

	outcomes := a.pipeline.Ingest(ctx)
	failures := 0
	for _, o := range outcomes {
		o.Log(a.logger)
		if o.Status != pipeline.StatusMerged && o.Status != pipeline.StatusEmpty {
			failures++
		}
	}
	if failures == len(outcomes) {
		return fmt.Errorf("all %d sources failed to ingest", failures)
	}
	return nil
}
