package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/teampulse/teampulse/internal/clock"
	"github.com/teampulse/teampulse/internal/metrics"
	"github.com/teampulse/teampulse/internal/types"
)

var metricsDays int

var metricsCmd = &cobra.Command{
	Use:   "metrics <project>",
	Short: "Show team health metrics for a project",
	Long: `Calculate and display the four team health metrics over a rolling
window: participation rate, average sentiment, blocker resolution, and work
item completion, plus the weighted composite health score.

Example:
  teampulse metrics payments
  teampulse metrics payments --days 14`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		project, err := resolveProject(ctx, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		calc := metrics.NewCalculator(store)
		report, err := calc.Report(ctx, clock.System{}, project.ID, metricsDays)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		fmt.Printf("\n%s\n", cyan(fmt.Sprintf("=== Team Health: %s ===", project.Name)))
		fmt.Printf("Window: %s to %s (%d days)\n\n",
			report.Start.Format("2006-01-02"), report.End.Format("2006-01-02"), metricsDays)

		for _, metric := range types.MetricTypes {
			result, ok := report.Metrics[metric]
			if !ok {
				continue
			}
			fmt.Printf("  %-14s %6.1f  %-11s %s  (%d data points)\n",
				metric, result.Value, statusColor(result.Status)(string(result.Status)),
				trendIcon(result.Trend), result.DataPoints)
		}

		fmt.Println()
		overall := report.Overall
		fmt.Printf("  %-14s %6.1f  %s\n\n", "overall",
			overall.Score, statusColor(overall.Status)(string(overall.Status)))
	},
}

func statusColor(status metrics.Status) func(a ...interface{}) string {
	switch status {
	case metrics.StatusExcellent, metrics.StatusGood:
		return color.New(color.FgGreen).SprintFunc()
	case metrics.StatusConcerning:
		return color.New(color.FgRed).SprintFunc()
	case metrics.StatusNoData:
		return color.New(color.FgHiBlack).SprintFunc()
	default:
		return color.New(color.FgYellow).SprintFunc()
	}
}

func trendIcon(trend types.TrendDirection) string {
	switch trend {
	case types.TrendImproving:
		return color.GreenString("↑ improving")
	case types.TrendDeclining:
		return color.RedString("↓ declining")
	case types.TrendVolatile:
		return color.YellowString("~ volatile")
	case metrics.TrendNoData:
		return color.HiBlackString("- no data")
	default:
		return "→ stable"
	}
}

func init() {
	metricsCmd.Flags().IntVar(&metricsDays, "days", 30, "Window size in days")
	rootCmd.AddCommand(metricsCmd)
}
