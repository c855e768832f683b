// Package storage defines the data-access interface the analytics engine
// depends on, and constructs the default SQLite-backed implementation.
package storage

import (
	"context"
	"os"
	"time"

	"github.com/teampulse/teampulse/internal/storage/sqlite"
	"github.com/teampulse/teampulse/internal/types"
)

// Storage is the interface the engine's collaborating data store must
// provide. The engine is read-mostly: the only writes it performs are trend
// point upserts and alert inserts; the roster/session/work-item write methods
// exist for ingestion, seeding, and tests.
type Storage interface {
	// Projects and roster
	CreateProject(ctx context.Context, p *types.Project) error
	GetProject(ctx context.Context, id int64) (*types.Project, error)
	GetProjectByName(ctx context.Context, name string) (*types.Project, error)
	ListActiveProjects(ctx context.Context) ([]*types.Project, error)
	AddTeamMember(ctx context.Context, m *types.TeamMember) error
	ListTeamMembers(ctx context.Context, projectID int64) ([]*types.TeamMember, error)
	ListManagers(ctx context.Context, projectID int64) ([]*types.TeamMember, error)
	ListAllManagers(ctx context.Context) ([]*types.TeamMember, error)

	// Standup sessions
	CreateSession(ctx context.Context, s *types.StandupSession) error
	ListSessions(ctx context.Context, filter types.SessionFilter) ([]*types.StandupSession, error)
	LastCompletedSessionDate(ctx context.Context, projectID, memberID int64) (time.Time, bool, error)

	// Work item references
	AddWorkItem(ctx context.Context, w *types.WorkItemReference) error
	ListWorkItems(ctx context.Context, projectID int64, start, end time.Time) ([]*types.WorkItemReference, error)

	// Trend points
	LatestTrendPointBefore(ctx context.Context, projectID int64, metric types.MetricType, date time.Time) (*types.TrendPoint, error)
	ListTrendPoints(ctx context.Context, projectID int64, metric types.MetricType, start, end time.Time) ([]*types.TrendPoint, error)
	UpsertTrendPoint(ctx context.Context, p *types.TrendPoint) error

	// Health alerts. CreateAlertIfAbsent is atomic: at most one active alert
	// per (project, alert type) is created within the dedup window even under
	// concurrent monitoring runs.
	CreateAlertIfAbsent(ctx context.Context, a *types.HealthAlert, dedupWindow time.Duration) (created bool, existingID string, err error)
	ListAlerts(ctx context.Context, filter types.AlertFilter) ([]*types.HealthAlert, error)
	CountActiveAlerts(ctx context.Context, projectID int64) (int, error)
	AcknowledgeAlert(ctx context.Context, id, actor string) error
	ResolveAlert(ctx context.Context, id, actor string) error
	DismissAlert(ctx context.Context, id, actor string) error

	// Retention for engine-owned data. Session retention is an external
	// policy and deliberately absent here.
	PurgeTrendPoints(ctx context.Context, cutoff time.Time) (int, error)
	PurgeInactiveAlerts(ctx context.Context, cutoff time.Time) (int, error)

	Close() error
}

// Config holds database configuration.
type Config struct {
	// Path is the SQLite database file path.
	// Default: ".teampulse/teampulse.db"
	// Special value ":memory:" creates an in-memory database (useful for tests).
	Path string
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{Path: ".teampulse/teampulse.db"}
}

// NewStorage creates the SQLite storage backend. The TEAMPULSE_DB_PATH
// environment variable overrides the configured path, which lets tests and
// sandboxes isolate their databases.
func NewStorage(ctx context.Context, cfg *Config) (Storage, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	path := cfg.Path
	if env := os.Getenv("TEAMPULSE_DB_PATH"); env != "" {
		path = env
	}
	if path == "" {
		path = DefaultConfig().Path
	}

	return sqlite.New(path)
}
