// Package types defines the core domain types shared across the analytics
// engine: standup sessions, work item references, the team roster, trend
// points, and health alerts.
//
// Sentiment scores are canonically on a 0..1 scale (the scale the upstream
// sentiment model emits). Thresholds that originated on a -1..1 scale carry a
// conversion note at the constant that uses them. Metric display values are
// 0-100.
package types

import (
	"fmt"
	"strings"
	"time"
)

// SessionStatus is the lifecycle state of a standup session.
type SessionStatus string

const (
	SessionPending    SessionStatus = "pending"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionCancelled  SessionStatus = "cancelled"
)

// SentimentLabel is the categorical fallback used when a numeric sentiment
// score is absent.
type SentimentLabel string

const (
	SentimentExcited     SentimentLabel = "excited"
	SentimentProductive  SentimentLabel = "productive"
	SentimentFocused     SentimentLabel = "focused"
	SentimentNeutral     SentimentLabel = "neutral"
	SentimentTired       SentimentLabel = "tired"
	SentimentFrustrated  SentimentLabel = "frustrated"
	SentimentBlocked     SentimentLabel = "blocked"
	SentimentOverwhelmed SentimentLabel = "overwhelmed"
)

// labelScores maps sentiment labels onto the canonical 0..1 scale. Used only
// as a fallback when SentimentScore is nil.
var labelScores = map[SentimentLabel]float64{
	SentimentExcited:     0.95,
	SentimentProductive:  0.85,
	SentimentFocused:     0.75,
	SentimentNeutral:     0.50,
	SentimentTired:       0.35,
	SentimentFrustrated:  0.25,
	SentimentBlocked:     0.15,
	SentimentOverwhelmed: 0.10,
}

// StandupSession is one member's standup record for a single day.
// At most one session exists per (member, project, date).
type StandupSession struct {
	ID        int64
	ProjectID int64
	MemberID  int64
	// Date is the standup day, normalized to UTC midnight.
	Date   time.Time
	Status SessionStatus

	YesterdayWork string
	TodayPlan     string
	Blockers      string

	// SentimentScore is on the 0..1 scale; nil when the sentiment model has
	// not processed this session.
	SentimentScore *float64
	SentimentLabel SentimentLabel

	// WorkItemCount is derived from associated WorkItemReference rows.
	WorkItemCount int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasBlockers reports whether the session carries any blocker text.
func (s *StandupSession) HasBlockers() bool {
	return strings.TrimSpace(s.Blockers) != ""
}

// ContentLength is the combined character count of the three free-text fields.
func (s *StandupSession) ContentLength() int {
	return len(s.YesterdayWork) + len(s.TodayPlan) + len(s.Blockers)
}

// Sentiment returns the numeric sentiment for the session, falling back to
// the label mapping when no score is present. The second return reports
// whether any sentiment signal exists at all.
func (s *StandupSession) Sentiment() (float64, bool) {
	if s.SentimentScore != nil {
		return *s.SentimentScore, true
	}
	if v, ok := labelScores[s.SentimentLabel]; ok {
		return v, true
	}
	return 0, false
}

// WorkItemType identifies the external system a work item reference points at.
type WorkItemType string

const (
	WorkItemGitHubPR    WorkItemType = "github_pr"
	WorkItemGitHubIssue WorkItemType = "github_issue"
	WorkItemJiraTicket  WorkItemType = "jira_ticket"
	WorkItemBranch      WorkItemType = "branch"
)

// WorkItemStatus is the tracked state of a referenced work item.
type WorkItemStatus string

const (
	WorkItemActive    WorkItemStatus = "active"
	WorkItemCompleted WorkItemStatus = "completed"
	WorkItemBlocked   WorkItemStatus = "blocked"
	WorkItemCancelled WorkItemStatus = "cancelled"
	// WorkItemDone and WorkItemApproved appear in data synced from external
	// trackers and count as completed for metric purposes.
	WorkItemDone     WorkItemStatus = "done"
	WorkItemApproved WorkItemStatus = "approved"
)

// IsComplete reports whether the status counts toward completion metrics.
func (s WorkItemStatus) IsComplete() bool {
	return s == WorkItemCompleted || s == WorkItemDone || s == WorkItemApproved
}

// WorkItemReference ties a standup session to an external work item
// (GitHub PR/issue, Jira ticket, or branch). The engine only reads these.
type WorkItemReference struct {
	ID        int64
	SessionID int64
	ItemType  WorkItemType
	ItemID    string
	Title     string
	Status    WorkItemStatus
	CreatedAt time.Time
}

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "active"
	ProjectInactive ProjectStatus = "inactive"
	ProjectArchived ProjectStatus = "archived"
)

// Project groups standup sessions and team members.
type Project struct {
	ID        int64
	Name      string
	Status    ProjectStatus
	CreatedAt time.Time
}

// Role is a team member's role within a project.
type Role string

const (
	RoleDeveloper Role = "developer"
	RoleManager   Role = "manager"
)

// TeamMember is one person on one project's roster.
type TeamMember struct {
	ID        int64
	ProjectID int64
	Username  string
	Email     string
	Role      Role
	IsActive  bool
	JoinedAt  time.Time
}

// MetricType names one of the four MVP team-health metrics.
type MetricType string

const (
	MetricParticipation MetricType = "participation"
	MetricSentiment     MetricType = "sentiment"
	MetricBlockers      MetricType = "blockers"
	MetricWorkItems     MetricType = "work_items"
)

// MetricTypes lists all metric types in composite-weight order.
var MetricTypes = []MetricType{
	MetricParticipation,
	MetricSentiment,
	MetricBlockers,
	MetricWorkItems,
}

// TrendDirection classifies period-over-period movement of a metric.
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendStable    TrendDirection = "stable"
	TrendDeclining TrendDirection = "declining"
	TrendVolatile  TrendDirection = "volatile"
)

// TrendPoint is one row of the metric time series: the value of one metric
// for one project on one date, plus derived statistics. Unique per
// (project, metric type, date); recomputed via upsert.
type TrendPoint struct {
	ID         int64
	ProjectID  int64
	MetricType MetricType
	Date       time.Time

	CurrentValue float64
	// PreviousValue is the prior point's CurrentValue; nil when this is the
	// first point for the (project, metric) key.
	PreviousValue    *float64
	ChangePercentage *float64
	TrendDirection   TrendDirection

	RollingAverage7d  *float64
	RollingAverage30d *float64

	AnomalyDetected        bool
	AlertThresholdBreached bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Severity ranks how urgent a health alert is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AlertType names one of the six early-warning checks.
type AlertType string

const (
	AlertSentimentDecline    AlertType = "sentiment_decline"
	AlertEngagementDrop      AlertType = "engagement_drop"
	AlertBlockerIncrease     AlertType = "blocker_increase"
	AlertProductivityConcern AlertType = "productivity_concern"
	AlertTeamMemberBurnout   AlertType = "team_member_burnout"
	AlertCommunicationGap    AlertType = "communication_gap"
)

// AlertStatus is the management lifecycle of a health alert. The engine only
// ever creates alerts in the active state; transitions are explicit
// management actions.
type AlertStatus string

const (
	AlertActive       AlertStatus = "active"
	AlertAcknowledged AlertStatus = "acknowledged"
	AlertResolved     AlertStatus = "resolved"
	AlertDismissed    AlertStatus = "dismissed"
)

// HealthAlert is an early-warning record produced by one of the six checks.
type HealthAlert struct {
	ID        string
	ProjectID int64
	// MemberID is set for member-scoped alerts (burnout); nil otherwise.
	MemberID *int64

	AlertType AlertType
	Severity  Severity
	Status    AlertStatus

	Title       string
	Description string
	// ContextData holds the triggering metrics for the alert, serialized as
	// JSON in storage.
	ContextData map[string]any

	// ConfidenceScore is in [0, 1].
	ConfidenceScore float64

	CreatedAt      time.Time
	AcknowledgedAt *time.Time
	AcknowledgedBy string
	ResolvedAt     *time.Time
	ResolvedBy     string
}

// Validate checks field constraints before an alert is persisted.
func (a *HealthAlert) Validate() error {
	if a.ProjectID == 0 {
		return fmt.Errorf("alert requires a project")
	}
	switch a.AlertType {
	case AlertSentimentDecline, AlertEngagementDrop, AlertBlockerIncrease,
		AlertProductivityConcern, AlertTeamMemberBurnout, AlertCommunicationGap:
	default:
		return fmt.Errorf("invalid alert type: %q", a.AlertType)
	}
	switch a.Severity {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
	default:
		return fmt.Errorf("invalid severity: %q", a.Severity)
	}
	if a.Title == "" {
		return fmt.Errorf("alert requires a title")
	}
	if a.ConfidenceScore < 0 || a.ConfidenceScore > 1 {
		return fmt.Errorf("confidence score %.3f outside [0, 1]", a.ConfidenceScore)
	}
	return nil
}

// RequiresAction reports whether the alert needs immediate management
// attention.
func (a *HealthAlert) RequiresAction() bool {
	return (a.Severity == SeverityHigh || a.Severity == SeverityCritical) && a.Status == AlertActive
}

// Day normalizes a timestamp to its UTC date (midnight).
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
