package repl

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"

	"github.com/teampulse/teampulse/internal/alerting"
	"github.com/teampulse/teampulse/internal/metrics"
	"github.com/teampulse/teampulse/internal/trends"
	"github.com/teampulse/teampulse/internal/types"
)

func (r *REPL) cmdProjects(args []string) error {
	projects, err := r.store.ListActiveProjects(r.ctx)
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Println("No projects. Create one with 'teampulse init'.")
		return nil
	}

	for _, p := range projects {
		members, err := r.store.ListTeamMembers(r.ctx, p.ID)
		if err != nil {
			return err
		}
		active, err := r.store.CountActiveAlerts(r.ctx, p.ID)
		if err != nil {
			return err
		}
		line := fmt.Sprintf("  %-20s id %-3d %d members", p.Name, p.ID, len(members))
		if active > 0 {
			line += color.RedString("  %d active alerts", active)
		}
		fmt.Println(line)
	}
	return nil
}

func (r *REPL) cmdMetrics(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: metrics <project> [days]")
	}
	project, err := r.resolveProject(args[0])
	if err != nil {
		return err
	}
	days := r.window
	if len(args) > 1 {
		if days, err = strconv.Atoi(args[1]); err != nil {
			return fmt.Errorf("invalid day count %q", args[1])
		}
	}

	report, err := r.calc.Report(r.ctx, r.clock, project.ID, days)
	if err != nil {
		return err
	}

	fmt.Printf("\n%s (last %d days)\n", color.CyanString("Team health: %s", project.Name), days)
	for _, metric := range types.MetricTypes {
		result, ok := report.Metrics[metric]
		if !ok {
			continue
		}
		fmt.Printf("  %-14s %6.1f  %-11s %s\n",
			metric, result.Value, result.Status, trendLabel(result.Trend))
	}
	fmt.Printf("  %-14s %6.1f  %s\n\n", "overall", report.Overall.Score, statusLabel(report.Overall.Status))
	return nil
}

func (r *REPL) cmdTrends(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: trends <project> [metric]")
	}
	project, err := r.resolveProject(args[0])
	if err != nil {
		return err
	}

	metricTypes := types.MetricTypes
	if len(args) > 1 {
		metricTypes = []types.MetricType{types.MetricType(args[1])}
	}

	now := r.clock.Now()
	for _, metric := range metricTypes {
		points, err := r.trends.History(r.ctx, project.ID, metric, now, r.window)
		if err != nil {
			return err
		}
		fmt.Printf("%s\n", color.YellowString("%s:", metric))
		if len(points) == 0 {
			fmt.Println("  no recorded points")
			continue
		}
		for _, p := range points {
			marker := ""
			if trends.IsConcerning(p) {
				marker = color.RedString(" !")
			}
			fmt.Printf("  %s  %6.1f  %s%s\n",
				p.Date.Format("2006-01-02"), p.CurrentValue, p.TrendDirection, marker)
		}
	}
	return nil
}

func (r *REPL) cmdSnapshot(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: snapshot <project>")
	}
	project, err := r.resolveProject(args[0])
	if err != nil {
		return err
	}
	points, err := r.trends.RecordSnapshot(r.ctx, r.calc, project.ID, r.clock.Now(), r.window)
	if err != nil {
		return err
	}
	fmt.Printf("%s recorded %d trend points\n", color.GreenString("✓"), len(points))
	return nil
}

func (r *REPL) cmdPredict(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: predict <project>")
	}
	project, err := r.resolveProject(args[0])
	if err != nil {
		return err
	}

	insights, err := r.predict.GenerateInsights(r.ctx, project.ID, 0)
	if err != nil {
		return err
	}

	fmt.Printf("\n%s\n", color.CyanString("Predictive insights: %s", project.Name))
	if insights.Insufficient != nil {
		fmt.Printf("  insufficient data: %s (%d of %d sessions)\n\n",
			insights.Insufficient.Reason, insights.Insufficient.Current, insights.Insufficient.MinimumRequired)
		return nil
	}

	if s := insights.Sentiment; s != nil && s.Insufficient == nil {
		fmt.Printf("  sentiment:    %s (recent average %.2f)\n", trendLabel(s.CurrentTrend), s.RecentAverage)
	}
	if p := insights.Productivity; p != nil && p.Insufficient == nil {
		fmt.Printf("  productivity: %s (average %.1f/10)\n", trendLabel(p.CurrentTrend), p.AverageProductivity)
	}
	if b := insights.Blockers; b != nil && b.Insufficient == nil {
		fmt.Printf("  blockers:     %.0f%% of sessions\n", b.OverallRate*100)
	}
	if v := insights.Velocity; v != nil && v.Insufficient == nil {
		fmt.Printf("  velocity:     %s (current %.1f)\n", trendLabel(v.Trend), v.CurrentVelocity)
	}
	if risk := insights.Risk; risk != nil {
		fmt.Printf("  risk:         %.2f (%s)\n", risk.OverallScore, risk.Level)
		for _, factor := range risk.RiskFactors {
			fmt.Printf("                %s\n", color.RedString(factor))
		}
	}
	for _, rec := range insights.Recommendations {
		fmt.Printf("  [%s] %s: %s\n", rec.Priority, rec.Category, rec.Action)
	}
	fmt.Println()
	return nil
}

func (r *REPL) cmdMonitor(args []string) error {
	if len(args) > 0 {
		project, err := r.resolveProject(args[0])
		if err != nil {
			return err
		}
		result, err := r.alerting.RunProject(r.ctx, project.ID)
		if err != nil {
			return err
		}
		r.printMonitorResult(result.Project, result.Alerts)
		return nil
	}

	summary, err := r.alerting.RunAll(r.ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Monitored %d projects: %d new alerts (%d critical)\n",
		summary.ProjectsMonitored, summary.AlertsGenerated, summary.CriticalAlerts)
	for _, detail := range summary.Details {
		if len(detail.Alerts) > 0 {
			r.printMonitorResult(detail.Project, detail.Alerts)
		}
	}
	return nil
}

func (r *REPL) printMonitorResult(project string, alerts []alerting.AlertResult) {
	fmt.Printf("%s\n", color.YellowString("%s:", project))
	for _, alert := range alerts {
		suffix := ""
		if alert.Outcome == alerting.OutcomeDuplicate {
			suffix = " (duplicate, suppressed)"
		}
		fmt.Printf("  [%s] %s%s\n", severityLabel(alert.Severity), alert.Title, suffix)
	}
}

func (r *REPL) cmdAlerts(args []string) error {
	filter := types.AlertFilter{Limit: 20}
	if len(args) > 0 {
		project, err := r.resolveProject(args[0])
		if err != nil {
			return err
		}
		filter.ProjectID = project.ID
	}

	alerts, err := r.store.ListAlerts(r.ctx, filter)
	if err != nil {
		return err
	}
	if len(alerts) == 0 {
		fmt.Println("No alerts")
		return nil
	}
	for _, alert := range alerts {
		fmt.Printf("  %s [%s] %s\n", alert.CreatedAt.Format("01-02 15:04"),
			severityLabel(alert.Severity), alert.Title)
		fmt.Printf("    id %s  status %s\n", alert.ID, alert.Status)
	}
	return nil
}

func trendLabel(trend types.TrendDirection) string {
	switch trend {
	case types.TrendImproving:
		return color.GreenString("improving")
	case types.TrendDeclining:
		return color.RedString("declining")
	case types.TrendVolatile:
		return color.YellowString("volatile")
	case metrics.TrendNoData:
		return "no data"
	default:
		return "stable"
	}
}

func statusLabel(status metrics.Status) string {
	switch status {
	case metrics.StatusExcellent, metrics.StatusGood:
		return color.GreenString(string(status))
	case metrics.StatusConcerning:
		return color.RedString(string(status))
	default:
		return color.YellowString(string(status))
	}
}

func severityLabel(severity types.Severity) string {
	switch severity {
	case types.SeverityCritical, types.SeverityHigh:
		return color.RedString(string(severity))
	case types.SeverityMedium:
		return color.YellowString(string(severity))
	default:
		return string(severity)
	}
}
