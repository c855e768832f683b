package alerting

import (
	"context"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/teampulse/teampulse/internal/storage"
	"github.com/teampulse/teampulse/internal/types"
)

// Notifier fans high and critical alerts out to project managers. Delivery is
// delegated to a Sender; the default sender only logs, which keeps the engine
// useful without any mail or chat integration configured.
type Notifier struct {
	store   storage.Storage
	sender  Sender
	limiter *rate.Limiter
}

// Sender delivers one alert notification to a set of recipients.
type Sender interface {
	Send(ctx context.Context, project *types.Project, alert *types.HealthAlert, recipients []*types.TeamMember) error
}

// LogSender records the notification in the structured log instead of
// delivering it anywhere.
type LogSender struct{}

// Send implements Sender.
func (LogSender) Send(_ context.Context, project *types.Project, alert *types.HealthAlert, recipients []*types.TeamMember) error {
	emails := make([]string, 0, len(recipients))
	for _, m := range recipients {
		emails = append(emails, m.Email)
	}
	slog.Info("alert notification",
		"project", project.Name,
		"alert_type", alert.AlertType,
		"severity", alert.Severity,
		"title", alert.Title,
		"recipients", emails)
	return nil
}

// NewNotifier builds a notifier limited to roughly one notification per
// second with a burst of five, so a backlog of alerts cannot flood managers.
func NewNotifier(store storage.Storage, sender Sender) *Notifier {
	if sender == nil {
		sender = LogSender{}
	}
	return &Notifier{
		store:   store,
		sender:  sender,
		limiter: rate.NewLimiter(rate.Limit(1), 5),
	}
}

// SetRatePerMinute adjusts the notification rate limit.
func (n *Notifier) SetRatePerMinute(perMinute int) {
	if perMinute > 0 {
		n.limiter.SetLimit(rate.Limit(float64(perMinute) / 60))
	}
}

// Notify sends the alert to the project's managers if it warrants action.
// Low and medium severity alerts are persisted but not pushed.
func (n *Notifier) Notify(ctx context.Context, project *types.Project, alert *types.HealthAlert) {
	if !alert.RequiresAction() {
		return
	}

	recipients, err := n.recipients(ctx, project.ID)
	if err != nil {
		slog.Warn("failed to resolve notification recipients",
			"project", project.Name, "error", err)
		return
	}
	if len(recipients) == 0 {
		slog.Warn("no managers to notify", "project", project.Name, "alert_type", alert.AlertType)
		return
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return
	}
	if err := n.sender.Send(ctx, project, alert, recipients); err != nil {
		slog.Warn("alert notification failed",
			"project", project.Name, "alert_type", alert.AlertType, "error", err)
	}
}

// recipients returns the project's managers, falling back to managers across
// all projects when the project has none of its own.
func (n *Notifier) recipients(ctx context.Context, projectID int64) ([]*types.TeamMember, error) {
	managers, err := n.store.ListManagers(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(managers) > 0 {
		return managers, nil
	}
	return n.store.ListAllManagers(ctx)
}
