// Command teampulse is the team health analytics CLI: metrics reports, trend
// history, predictive insights, and early-warning monitoring over standup
// data.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/teampulse/teampulse/internal/config"
	"github.com/teampulse/teampulse/internal/storage"
)

var (
	cfgPath string
	dbPath  string

	cfg   config.Config
	store storage.Storage
)

var rootCmd = &cobra.Command{
	Use:   "teampulse",
	Short: "Team health analytics for standup data",
	Long: `TeamPulse analyzes standup session data to surface team health:

  - Health metrics (participation, sentiment, blockers, work items)
  - Historical trend tracking with rolling averages
  - Predictive insights (sentiment, productivity, blockers, velocity, risk)
  - Early-warning alerts with deduplication and manager notification

Data lives in a local SQLite database (default: .teampulse/teampulse.db).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		if dbPath != "" {
			cfg.Database.Path = dbPath
		}

		if dir := filepath.Dir(cfg.Database.Path); dir != "." && cfg.Database.Path != ":memory:" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}
		}

		store, err = storage.NewStorage(cmd.Context(), &storage.Config{Path: cfg.Database.Path})
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			store.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to config file (default .teampulse/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database (overrides config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
