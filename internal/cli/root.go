// Package cli wires the lavaflow commands. Each command resolves
// configuration from the config file, LAVAFLOW_* environment variables, and
// defaults, then assembles the pipeline pieces it needs.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tephralabs/lavaflow/internal/config"
)

var cfgFile string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "lavaflow",
	Short: "Lavaflow - satellite thermal anomaly tracking for active lava flows",
	Long: `Lavaflow ingests NASA FIRMS thermal anomaly detections around a volcanic
vent, maintains deduplicated per-product archives, and derives how far the
flow front has advanced from the vent over time.

It downloads detections for each configured FIRMS product, merges them into
CSV archives that survive upstream reprocessing, tags every detection with
its Haversine distance from the vent, and extracts breakthrough events with
propagation speeds whenever the flow reaches a new maximum extent.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("lavaflow v0.3.1")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./lavaflow.yaml)")

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("lavaflow")
	}

	viper.SetEnvPrefix("LAVAFLOW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	config.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
			os.Exit(1)
		}
	}
}

// loadConfig turns the resolved viper state into a validated Config.
func loadConfig() (*config.Config, error) {
	return config.FromViper(viper.GetViper())
}
