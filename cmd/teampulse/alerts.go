package main

import (
	"fmt"
	"os"
	"os/user"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/teampulse/teampulse/internal/types"
)

var (
	alertsProject   string
	alertsStatus    string
	alertsSeverity  string
	alertsLimit     int
	alertsSinceDays int
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List and manage health alerts",
	Long: `List health alerts, newest first. Subcommands transition alerts
through their lifecycle: active -> acknowledged -> resolved or dismissed.

Example:
  teampulse alerts
  teampulse alerts --project payments --status active
  teampulse alerts ack 4f1f...
  teampulse alerts resolve 4f1f...`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		filter := types.AlertFilter{Limit: alertsLimit}
		if alertsSinceDays > 0 {
			filter.Since = time.Now().UTC().AddDate(0, 0, -alertsSinceDays)
		}
		if alertsProject != "" {
			project, err := resolveProject(ctx, alertsProject)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			filter.ProjectID = project.ID
		}
		filter.Status = types.AlertStatus(alertsStatus)
		filter.Severity = types.Severity(alertsSeverity)

		alerts, err := store.ListAlerts(ctx, filter)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		gray := color.New(color.FgHiBlack).SprintFunc()
		if len(alerts) == 0 {
			fmt.Printf("%s\n", gray("No alerts"))
			return
		}

		for _, alert := range alerts {
			fmt.Printf("%s %s  %s\n", severityIcon(alert.Severity), alert.Title, statusBadge(alert.Status))
			fmt.Printf("  %s\n", alert.Description)
			fmt.Printf("  %s\n", gray(fmt.Sprintf("id %s | %s | project %d | confidence %.0f%% | %s",
				alert.ID, alert.AlertType, alert.ProjectID, alert.ConfidenceScore*100,
				alert.CreatedAt.Format("2006-01-02 15:04"))))
			fmt.Println()
		}
	},
}

var alertsAckCmd = &cobra.Command{
	Use:   "ack <alert-id>",
	Short: "Acknowledge an active alert",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := store.AcknowledgeAlert(cmd.Context(), args[0], currentActor()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s Acknowledged %s\n", color.GreenString("✓"), args[0])
	},
}

var alertsResolveCmd = &cobra.Command{
	Use:   "resolve <alert-id>",
	Short: "Resolve an alert",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := store.ResolveAlert(cmd.Context(), args[0], currentActor()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s Resolved %s\n", color.GreenString("✓"), args[0])
	},
}

var alertsDismissCmd = &cobra.Command{
	Use:   "dismiss <alert-id>",
	Short: "Dismiss an alert as not actionable",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := store.DismissAlert(cmd.Context(), args[0], currentActor()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s Dismissed %s\n", color.GreenString("✓"), args[0])
	},
}

func statusBadge(status types.AlertStatus) string {
	switch status {
	case types.AlertActive:
		return color.RedString("[active]")
	case types.AlertAcknowledged:
		return color.YellowString("[acknowledged]")
	case types.AlertResolved:
		return color.GreenString("[resolved]")
	default:
		return color.HiBlackString("[" + string(status) + "]")
	}
}

func currentActor() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "user"
}

func init() {
	alertsCmd.Flags().StringVar(&alertsProject, "project", "", "Filter by project (name or id)")
	alertsCmd.Flags().StringVar(&alertsStatus, "status", "", "Filter by status (active/acknowledged/resolved/dismissed)")
	alertsCmd.Flags().StringVar(&alertsSeverity, "severity", "", "Filter by severity (low/medium/high/critical)")
	alertsCmd.Flags().IntVar(&alertsLimit, "limit", 50, "Maximum alerts to show")
	alertsCmd.Flags().IntVar(&alertsSinceDays, "since", 0, "Only alerts created in the last N days")
	alertsCmd.AddCommand(alertsAckCmd, alertsResolveCmd, alertsDismissCmd)
	rootCmd.AddCommand(alertsCmd)
}
