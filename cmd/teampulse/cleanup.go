package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var cleanupDryRun bool

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Purge old trend points and inactive alerts",
	Long: `Apply the retention policy: delete trend points older than
retention.trend_days and resolved/dismissed alerts older than
retention.alert_days. Active alerts are never purged.

Example:
  teampulse cleanup
  teampulse cleanup --dry-run`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		now := time.Now().UTC()

		trendCutoff := now.AddDate(0, 0, -cfg.Retention.TrendDays)
		alertCutoff := now.AddDate(0, 0, -cfg.Retention.AlertDays)

		if cleanupDryRun {
			fmt.Printf("Would purge trend points before %s and inactive alerts before %s\n",
				trendCutoff.Format("2006-01-02"), alertCutoff.Format("2006-01-02"))
			return
		}

		trendN, err := store.PurgeTrendPoints(ctx, trendCutoff)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		alertN, err := store.PurgeInactiveAlerts(ctx, alertCutoff)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Purged %d trend points and %d inactive alerts\n", green("✓"), trendN, alertN)
	},
}

func init() {
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "Show what would be deleted without deleting")
	rootCmd.AddCommand(cleanupCmd)
}
