package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/teampulse/teampulse/internal/alerting"
	"github.com/teampulse/teampulse/internal/clock"
	"github.com/teampulse/teampulse/internal/metrics"
	"github.com/teampulse/teampulse/internal/trends"
	"github.com/teampulse/teampulse/internal/types"
)

var (
	monitorProject  string
	monitorSchedule bool
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run the early-warning health checks",
	Long: `Run all six early-warning checks (sentiment decline, engagement drop,
blocker increase, productivity concern, burnout, communication gap) against
active projects, persist new alerts, record trend snapshots, and notify
managers of high and critical findings.

Alerts deduplicate within the configured window, so running monitor
repeatedly is safe.

With --cron, stays resident and runs on the configured schedule
(monitor.schedule, default weekday mornings).

Example:
  teampulse monitor
  teampulse monitor --project payments
  teampulse monitor --cron`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		notifier := alerting.NewNotifier(store, nil)
		notifier.SetRatePerMinute(cfg.Alerting.NotifyRatePerMinute)
		engine := alerting.NewEngine(store, clock.System{}, notifier)
		engine.SetDedupWindow(time.Duration(cfg.Alerting.DedupWindowHours) * time.Hour)
		engine.DisableChecks(cfg.Alerting.DisabledChecks)

		if monitorSchedule {
			runScheduled(ctx, engine)
			return
		}

		if monitorProject != "" {
			project, err := resolveProject(ctx, monitorProject)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			result, err := engine.RunProject(ctx, project.ID)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			recordSnapshots(ctx, []int64{project.ID})
			printProjectResult(result)
			return
		}

		summary, err := engine.RunAll(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		var ids []int64
		for _, d := range summary.Details {
			ids = append(ids, d.ProjectID)
		}
		recordSnapshots(ctx, ids)
		printSummary(summary)
	},
}

// runScheduled blocks and runs the full monitoring pass on the configured
// cron schedule until interrupted.
func runScheduled(ctx context.Context, engine *alerting.Engine) {
	c := cron.New()
	_, err := c.AddFunc(cfg.Monitor.Schedule, func() {
		summary, err := engine.RunAll(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: monitoring run failed: %v\n", err)
			return
		}
		var ids []int64
		for _, d := range summary.Details {
			ids = append(ids, d.ProjectID)
		}
		recordSnapshots(ctx, ids)
		fmt.Printf("[%s] monitored %d projects, %d new alerts (%d critical)\n",
			time.Now().Format("2006-01-02 15:04:05"),
			summary.ProjectsMonitored, summary.AlertsGenerated, summary.CriticalAlerts)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid schedule %q: %v\n", cfg.Monitor.Schedule, err)
		os.Exit(1)
	}

	fmt.Printf("Monitoring on schedule %q (Ctrl+C to stop)\n", cfg.Monitor.Schedule)
	c.Start()
	defer c.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	fmt.Println("\nStopping monitor")
}

// recordSnapshots writes today's trend points for each monitored project so
// scheduled monitoring doubles as the daily trend capture.
func recordSnapshots(ctx context.Context, projectIDs []int64) {
	engine := trends.NewEngine(store)
	calc := metrics.NewCalculator(store)
	now := clock.System{}.Now()
	for _, id := range projectIDs {
		if _, err := engine.RecordSnapshot(ctx, calc, id, now, cfg.Metrics.WindowDays); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: trend snapshot failed for project %d: %v\n", id, err)
		}
	}
}

func printSummary(summary *alerting.Summary) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Printf("\n%s\n\n", cyan("=== Health Monitoring ==="))
	fmt.Printf("Projects monitored: %d\n", summary.ProjectsMonitored)
	fmt.Printf("New alerts:         %d\n", summary.AlertsGenerated)
	fmt.Printf("Critical alerts:    %d\n\n", summary.CriticalAlerts)

	if len(summary.ProjectsAtRisk) == 0 {
		fmt.Printf("%s All projects healthy\n\n", green("✓"))
	} else {
		fmt.Printf("%s\n", color.YellowString("Projects at risk:"))
		for _, p := range summary.ProjectsAtRisk {
			line := fmt.Sprintf("  %s: %d alerts", p.Project, p.Alerts)
			if p.Critical > 0 {
				line += red(fmt.Sprintf(" (%d critical)", p.Critical))
			}
			fmt.Println(line)
		}
		fmt.Println()
	}

	for _, detail := range summary.Details {
		if len(detail.Alerts) > 0 {
			printProjectResult(&detail)
		}
	}
}

func printProjectResult(result *alerting.ProjectResult) {
	yellow := color.New(color.FgYellow).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Printf("%s\n", yellow(result.Project+":"))
	if len(result.Alerts) == 0 {
		fmt.Printf("  %s\n", gray("No alerts"))
	}
	for _, alert := range result.Alerts {
		icon := severityIcon(alert.Severity)
		suffix := ""
		if alert.Outcome == alerting.OutcomeDuplicate {
			suffix = gray(" (duplicate, suppressed)")
		}
		fmt.Printf("  %s %s%s\n", icon, alert.Title, suffix)
		fmt.Printf("    %s\n", gray(alert.Description))
	}

	status := result.TeamStatus
	sentiment := "n/a"
	if status.AvgSentiment != nil {
		sentiment = fmt.Sprintf("%.2f", *status.AvgSentiment)
	}
	fmt.Printf("  Team: %d members, %d recent sessions, sentiment %s, participation %.0f%%, %d active alerts\n\n",
		status.TeamSize, status.RecentSessions, sentiment,
		status.ParticipationRate*100, status.ActiveAlerts)
}

func severityIcon(severity types.Severity) string {
	switch severity {
	case types.SeverityCritical:
		return color.RedString("🚨")
	case types.SeverityHigh:
		return color.RedString("●")
	case types.SeverityMedium:
		return color.YellowString("●")
	default:
		return color.GreenString("●")
	}
}

func init() {
	monitorCmd.Flags().StringVar(&monitorProject, "project", "", "Monitor a single project (name or id)")
	monitorCmd.Flags().BoolVar(&monitorSchedule, "cron", false, "Stay resident and run on the configured schedule")
	rootCmd.AddCommand(monitorCmd)
}
