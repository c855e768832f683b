package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/teampulse/teampulse/internal/clock"
	"github.com/teampulse/teampulse/internal/predict"
)

var (
	predictDays int
	predictJSON bool
)

var predictCmd = &cobra.Command{
	Use:   "predict <project>",
	Short: "Generate predictive insights for a project",
	Long: `Run the predictive models over recent standup history: sentiment and
productivity forecasts, blocker patterns, velocity, risk assessment, and
rule-based recommendations.

Requires at least 7 completed sessions in the lookback window.

Example:
  teampulse predict payments
  teampulse predict payments --days 90 --json`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		project, err := resolveProject(ctx, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		engine := predict.NewEngine(store, clock.System{})
		insights, err := engine.GenerateInsights(ctx, project.ID, predictDays)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if predictJSON {
			out, err := json.MarshalIndent(insights, "", "  ")
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(out))
			return
		}

		printInsights(insights)
	},
}

func printInsights(insights *predict.Insights) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Printf("\n%s\n", cyan(fmt.Sprintf("=== Predictive Insights: %s ===", insights.ProjectName)))
	fmt.Printf("Period: %s to %s (%d sessions)\n\n",
		insights.Period.Start.Format("2006-01-02"), insights.Period.End.Format("2006-01-02"),
		insights.Period.SessionsAnalyzed)

	if insights.Insufficient != nil {
		fmt.Printf("%s %s (%d of %d sessions)\n\n", yellow("Insufficient data:"),
			insights.Insufficient.Reason, insights.Insufficient.Current, insights.Insufficient.MinimumRequired)
		return
	}

	if s := insights.Sentiment; s != nil {
		fmt.Printf("%s\n", yellow("Sentiment:"))
		if s.Insufficient != nil {
			fmt.Printf("  %s\n", gray(s.Insufficient.Reason))
		} else {
			fmt.Printf("  Trend: %s  Recent average: %.2f  Volatility: %.3f\n",
				trendIcon(s.CurrentTrend), s.RecentAverage, s.Volatility)
			for _, f := range s.Forecast {
				fmt.Printf("    %s  %.2f  (confidence %.0f%%)\n",
					f.Date.Format("Mon 01-02"), f.Value, f.Confidence*100)
			}
		}
		fmt.Println()
	}

	if p := insights.Productivity; p != nil {
		fmt.Printf("%s\n", yellow("Productivity:"))
		if p.Insufficient != nil {
			fmt.Printf("  %s\n", gray(p.Insufficient.Reason))
		} else {
			fmt.Printf("  Trend: %s  Baseline delta: %+.2f  Peak day: %s\n",
				trendIcon(p.CurrentTrend), p.BaselineComparison, p.PeakDay)
			for _, signal := range p.LowProductivitySignals {
				fmt.Printf("    %s\n", gray(signal))
			}
		}
		fmt.Println()
	}

	if b := insights.Blockers; b != nil {
		fmt.Printf("%s\n", yellow("Blockers:"))
		if b.Insufficient != nil {
			fmt.Printf("  %s\n", gray(b.Insufficient.Reason))
		} else {
			fmt.Printf("  Overall rate: %.0f%%  Recent rate: %.0f%%\n", b.OverallRate*100, b.RecentRate*100)
			for _, d := range b.NextWeek {
				marker := ""
				if d.RiskLevel == "high" {
					marker = color.RedString(" high risk")
				}
				fmt.Printf("    %s  %.0f%%%s\n", d.Weekday, d.Probability*100, marker)
			}
			if len(b.RecurringThemes) > 0 {
				fmt.Printf("  Recurring themes:\n")
				for _, p := range b.RecurringThemes {
					fmt.Printf("    %s (%d occurrences)\n", p.Pattern, p.Frequency)
				}
			}
		}
		fmt.Println()
	}

	if v := insights.Velocity; v != nil {
		fmt.Printf("%s\n", yellow("Velocity:"))
		if v.Insufficient != nil {
			fmt.Printf("  %s\n", gray(v.Insufficient.Reason))
		} else {
			fmt.Printf("  Trend: %s  Current: %.1f  Average: %.1f\n",
				trendIcon(v.Trend), v.CurrentVelocity, v.AverageVelocity)
			for _, f := range v.Forecast {
				fmt.Printf("    week of %s  %.1f  (confidence %.0f%%)\n",
					f.Date.Format("2006-01-02"), f.Value, f.Confidence*100)
			}
		}
		fmt.Println()
	}

	if r := insights.Risk; r != nil {
		fmt.Printf("%s\n", yellow("Risk:"))
		levelColor := color.GreenString
		if r.Level == "high" {
			levelColor = color.RedString
		} else if r.Level == "medium" {
			levelColor = color.YellowString
		}
		fmt.Printf("  Overall: %.2f (%s)\n", r.OverallScore, levelColor(r.Level))
		for _, factor := range r.RiskFactors {
			fmt.Printf("    %s\n", color.RedString(factor))
		}
		fmt.Println()
	}

	if len(insights.Recommendations) > 0 {
		fmt.Printf("%s\n", yellow("Recommendations:"))
		for _, rec := range insights.Recommendations {
			fmt.Printf("  [%s] %s: %s\n", priorityColor(rec.Priority), rec.Category, rec.Action)
			fmt.Printf("        %s\n", gray(rec.Rationale))
		}
		fmt.Println()
	}
}

func priorityColor(priority string) string {
	switch priority {
	case "high":
		return color.RedString(priority)
	case "medium":
		return color.YellowString(priority)
	default:
		return color.GreenString(priority)
	}
}

func init() {
	predictCmd.Flags().IntVar(&predictDays, "days", predict.DefaultLookbackDays, "Lookback window in days")
	predictCmd.Flags().BoolVar(&predictJSON, "json", false, "Emit raw JSON")
	rootCmd.AddCommand(predictCmd)
}
