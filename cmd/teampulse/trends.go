package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/teampulse/teampulse/internal/clock"
	"github.com/teampulse/teampulse/internal/metrics"
	"github.com/teampulse/teampulse/internal/trends"
	"github.com/teampulse/teampulse/internal/types"
)

var trendsDays int

var trendsCmd = &cobra.Command{
	Use:   "trends <project> [metric]",
	Short: "Show recorded trend history for a project",
	Long: `Display the stored trend time series for a project, with change
percentages, rolling averages, and concern markers.

Without a metric argument, all four metrics are shown.

Example:
  teampulse trends payments
  teampulse trends payments sentiment --days 14`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		project, err := resolveProject(ctx, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		metricTypes := types.MetricTypes
		if len(args) == 2 {
			mt := types.MetricType(args[1])
			switch mt {
			case types.MetricParticipation, types.MetricSentiment, types.MetricBlockers, types.MetricWorkItems:
				metricTypes = []types.MetricType{mt}
			default:
				fmt.Fprintf(os.Stderr, "Error: unknown metric %q\n", args[1])
				os.Exit(1)
			}
		}

		engine := trends.NewEngine(store)
		now := clock.System{}.Now()

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		fmt.Printf("\n%s\n\n", cyan(fmt.Sprintf("=== Trends: %s ===", project.Name)))

		for _, metric := range metricTypes {
			points, err := engine.History(ctx, project.ID, metric, now, trendsDays)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}

			fmt.Printf("%s\n", color.YellowString("%s:", metric))
			if len(points) == 0 {
				fmt.Printf("  %s\n\n", gray("No recorded points. Run 'teampulse snapshot' to record one."))
				continue
			}
			for _, p := range points {
				change := "      "
				if p.ChangePercentage != nil {
					change = fmt.Sprintf("%+5.1f%%", *p.ChangePercentage)
				}
				avg7 := "     "
				if p.RollingAverage7d != nil {
					avg7 = fmt.Sprintf("%5.1f", *p.RollingAverage7d)
				}
				marker := ""
				if trends.IsConcerning(p) {
					marker = red(" !")
				}
				fmt.Printf("  %s  %6.1f  %s  %-9s  7d:%s%s\n",
					p.Date.Format("2006-01-02"), p.CurrentValue, change, p.TrendDirection, avg7, marker)
			}
			fmt.Println()
		}
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <project>",
	Short: "Record today's metric values into the trend history",
	Long: `Calculate the current health metrics and record them as today's trend
points. Metrics with no data are skipped. Recording is idempotent: running
twice on the same day updates the existing points in place.

Intended to run daily, typically from the scheduled monitor loop.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		project, err := resolveProject(ctx, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		engine := trends.NewEngine(store)
		calc := metrics.NewCalculator(store)
		points, err := engine.RecordSnapshot(ctx, calc, project.ID, clock.System{}.Now(), cfg.Metrics.WindowDays)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Recorded %d trend points for %q\n", green("✓"), len(points), project.Name)
		for _, p := range points {
			fmt.Printf("  %-14s %6.1f  %s\n", p.MetricType, p.CurrentValue, p.TrendDirection)
		}
	},
}

func init() {
	trendsCmd.Flags().IntVar(&trendsDays, "days", 30, "History window in days")
	rootCmd.AddCommand(trendsCmd)
	rootCmd.AddCommand(snapshotCmd)
}
