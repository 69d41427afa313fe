package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// speedCmd represents the speed command
var speedCmd = &cobra.Command{
	Use:   "speed",
	Short: "Extract breakthrough events and propagation speeds",
	Long: `Speed reads the daily extent dataset produced by analyze and extracts
breakthrough events, days on which the flow front reached a new maximum
distance from the vent, along with the propagation speed since the previous
breakthrough.

The tracker mode decides whether all satellites share one pooled timeline
or each satellite is tracked independently. When a Kafka sink is
configured, new events are also published there.`,
	RunE: runSpeed,
}

func init() {
	rootCmd.AddCommand(speedCmd)
}

func runSpeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a := buildApp(cfg)
	defer a.close()

	summary, err := a.pipeline.Track(context.Background())
	if err != nil {
		return err
	}
	a.logger.Info("tracking complete", "mode", cfg.TrackerMode, "events", summary.Events)
	return nil
}
