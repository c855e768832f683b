package alerting

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/teampulse/teampulse/internal/clock"
	"github.com/teampulse/teampulse/internal/storage"
	"github.com/teampulse/teampulse/internal/types"
)

// DefaultDedupWindow suppresses repeat alerts of the same type for a project
// within 24 hours of the previous active alert.
const DefaultDedupWindow = 24 * time.Hour

// monitorConcurrency bounds how many projects are checked in parallel.
const monitorConcurrency = 4

// AlertOutcome says what happened to one candidate alert during a run.
type AlertOutcome string

const (
	OutcomeCreated   AlertOutcome = "created"
	OutcomeDuplicate AlertOutcome = "duplicate"
)

// AlertResult is the per-alert record in a monitoring run report.
type AlertResult struct {
	Outcome     AlertOutcome    `json:"outcome"`
	ID          string          `json:"id"`
	Type        types.AlertType `json:"type"`
	Severity    types.Severity  `json:"severity"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Confidence  float64         `json:"confidence"`
}

// TeamStatus is a snapshot of a project's recent activity, attached to each
// monitoring result for context.
type TeamStatus struct {
	TeamSize          int      `json:"team_size"`
	RecentSessions    int      `json:"recent_sessions"`
	AvgSentiment      *float64 `json:"avg_sentiment"`
	ParticipationRate float64  `json:"participation_rate"`
	ActiveAlerts      int      `json:"active_alerts"`
}

// ProjectResult is the monitoring outcome for one project.
type ProjectResult struct {
	ProjectID  int64         `json:"project_id"`
	Project    string        `json:"project"`
	Timestamp  time.Time     `json:"timestamp"`
	Alerts     []AlertResult `json:"alerts"`
	TeamStatus TeamStatus    `json:"team_status"`
}

// AtRiskProject summarizes a project that generated alerts in a run.
type AtRiskProject struct {
	ProjectID int64  `json:"project_id"`
	Project   string `json:"project"`
	Alerts    int    `json:"alerts"`
	Critical  int    `json:"critical"`
}

// Summary aggregates one monitoring run across all checked projects.
type Summary struct {
	ProjectsMonitored int             `json:"projects_monitored"`
	AlertsGenerated   int             `json:"alerts_generated"`
	CriticalAlerts    int             `json:"critical_alerts"`
	ProjectsAtRisk    []AtRiskProject `json:"projects_at_risk"`
	Details           []ProjectResult `json:"details"`
}

// Engine runs the early-warning checks against active projects and persists
// the resulting alerts.
type Engine struct {
	store       storage.Storage
	clock       clock.Clock
	checks      []Check
	dedupWindow time.Duration
	notifier    *Notifier
}

// NewEngine builds an engine with the full check set and the default dedup
// window. The notifier may be nil to disable notification fan-out.
func NewEngine(store storage.Storage, clk clock.Clock, notifier *Notifier) *Engine {
	return &Engine{
		store:       store,
		clock:       clk,
		checks:      allChecks(),
		dedupWindow: DefaultDedupWindow,
		notifier:    notifier,
	}
}

// DisableChecks removes the named checks from the run set. Unknown names are
// ignored; config validation rejects them before this point.
func (e *Engine) DisableChecks(names []string) {
	disabled := make(map[types.AlertType]bool, len(names))
	for _, name := range names {
		disabled[types.AlertType(name)] = true
	}
	kept := e.checks[:0]
	for _, check := range e.checks {
		if !disabled[check.Type()] {
			kept = append(kept, check)
		}
	}
	e.checks = kept
}

// SetDedupWindow overrides the default alert suppression window.
func (e *Engine) SetDedupWindow(d time.Duration) {
	if d > 0 {
		e.dedupWindow = d
	}
}

// RunAll monitors every active project. Failures are isolated per project: a
// project whose checks error is logged and skipped, and the run continues.
func (e *Engine) RunAll(ctx context.Context) (*Summary, error) {
	projects, err := e.store.ListActiveProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active projects: %w", err)
	}
	return e.run(ctx, projects)
}

// RunProject monitors a single project.
func (e *Engine) RunProject(ctx context.Context, projectID int64) (*ProjectResult, error) {
	project, err := e.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return e.monitorProject(ctx, project)
}

func (e *Engine) run(ctx context.Context, projects []*types.Project) (*Summary, error) {
	summary := &Summary{ProjectsMonitored: len(projects)}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(monitorConcurrency)

	for _, project := range projects {
		project := project
		g.Go(func() error {
			result, err := e.monitorProject(gctx, project)
			if err != nil {
				slog.Warn("health monitoring failed for project",
					"project", project.Name, "project_id", project.ID, "error", err)
				return nil
			}
			mu.Lock()
			summary.Details = append(summary.Details, *result)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Deterministic report order regardless of goroutine completion order.
	sort.Slice(summary.Details, func(i, j int) bool {
		return summary.Details[i].ProjectID < summary.Details[j].ProjectID
	})

	for _, detail := range summary.Details {
		var created, critical int
		for _, a := range detail.Alerts {
			if a.Outcome != OutcomeCreated {
				continue
			}
			created++
			if a.Severity == types.SeverityCritical {
				critical++
			}
		}
		summary.AlertsGenerated += created
		summary.CriticalAlerts += critical
		if created > 0 {
			summary.ProjectsAtRisk = append(summary.ProjectsAtRisk, AtRiskProject{
				ProjectID: detail.ProjectID,
				Project:   detail.Project,
				Alerts:    created,
				Critical:  critical,
			})
		}
	}
	return summary, nil
}

// monitorProject runs every check for one project. A failing check is logged
// and skipped so one bad query cannot mask the remaining checks.
func (e *Engine) monitorProject(ctx context.Context, project *types.Project) (*ProjectResult, error) {
	env := &Env{Store: e.store, Now: e.clock.Now()}
	result := &ProjectResult{
		ProjectID: project.ID,
		Project:   project.Name,
		Timestamp: env.Now,
	}

	for _, check := range e.checks {
		candidates, err := check.Run(ctx, env, project)
		if err != nil {
			slog.Warn("health check failed",
				"check", check.Type(), "project", project.Name, "error", err)
			continue
		}
		for _, alert := range candidates {
			created, existingID, err := e.store.CreateAlertIfAbsent(ctx, alert, e.dedupWindow)
			if err != nil {
				slog.Warn("failed to persist alert",
					"check", check.Type(), "project", project.Name, "error", err)
				continue
			}
			ar := AlertResult{
				ID:          alert.ID,
				Type:        alert.AlertType,
				Severity:    alert.Severity,
				Title:       alert.Title,
				Description: alert.Description,
				Confidence:  alert.ConfidenceScore,
			}
			if created {
				ar.Outcome = OutcomeCreated
				if e.notifier != nil {
					e.notifier.Notify(ctx, project, alert)
				}
			} else {
				ar.Outcome = OutcomeDuplicate
				ar.ID = existingID
			}
			result.Alerts = append(result.Alerts, ar)
		}
	}

	status, err := e.teamStatus(ctx, env, project)
	if err != nil {
		return nil, fmt.Errorf("failed to analyse team status: %w", err)
	}
	result.TeamStatus = *status
	return result, nil
}

// teamStatus snapshots recent team activity for the monitoring report.
func (e *Engine) teamStatus(ctx context.Context, env *Env, project *types.Project) (*TeamStatus, error) {
	members, err := env.Store.ListTeamMembers(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	start, end := env.window()
	sessions, err := env.Store.ListSessions(ctx, types.SessionFilter{
		ProjectID: project.ID,
		Start:     start,
		End:       end,
		Status:    types.SessionCompleted,
	})
	if err != nil {
		return nil, err
	}

	status := &TeamStatus{
		TeamSize:       len(members),
		RecentSessions: len(sessions),
	}

	var sum float64
	var n int
	for _, s := range sessions {
		if s.SentimentScore != nil {
			sum += *s.SentimentScore
			n++
		}
	}
	if n > 0 {
		avg := sum / float64(n)
		status.AvgSentiment = &avg
	}

	expected := len(members) * lookbackDays
	status.ParticipationRate = float64(len(sessions)) / float64(max(expected, 1))

	active, err := env.Store.CountActiveAlerts(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	status.ActiveAlerts = active
	return status, nil
}
