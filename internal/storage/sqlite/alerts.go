package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/teampulse/teampulse/internal/types"
)

const alertColumns = `id, project_id, member_id, alert_type, severity, status, title,
	description, context_data, confidence_score, created_at,
	acknowledged_at, acknowledged_by, resolved_at, resolved_by`

// CreateAlertIfAbsent inserts the alert unless an active alert of the same
// (project, alert type) already exists within the dedup window. The check and
// insert run in a single immediate transaction so concurrent monitoring runs
// cannot both create the alert. Returns whether the alert was created and,
// when it was not, the ID of the existing alert that suppressed it.
func (s *SQLiteStorage) CreateAlertIfAbsent(ctx context.Context, alert *types.HealthAlert, window time.Duration) (bool, string, error) {
	if err := alert.Validate(); err != nil {
		return false, "", fmt.Errorf("invalid alert: %w", err)
	}
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	if alert.Status == "" {
		alert.Status = types.AlertActive
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}
	if alert.ContextData == nil {
		alert.ContextData = map[string]any{}
	}
	contextJSON, err := json.Marshal(alert.ContextData)
	if err != nil {
		return false, "", fmt.Errorf("failed to marshal alert context: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	cutoff := alert.CreatedAt.Add(-window)
	var existingID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM health_alerts
		 WHERE project_id = ? AND alert_type = ? AND status = ? AND created_at >= ?
		 ORDER BY created_at DESC LIMIT 1`,
		alert.ProjectID, alert.AlertType, types.AlertActive, fmtTime(cutoff),
	).Scan(&existingID)
	if err == nil {
		return false, existingID, nil
	}
	if err != sql.ErrNoRows {
		return false, "", fmt.Errorf("failed to check for duplicate alert: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO health_alerts
		 (id, project_id, member_id, alert_type, severity, status, title, description,
		  context_data, confidence_score, created_at,
		  acknowledged_at, acknowledged_by, resolved_at, resolved_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, '', NULL, '')`,
		alert.ID, alert.ProjectID, nullInt(alert.MemberID), alert.AlertType,
		alert.Severity, alert.Status, alert.Title, alert.Description,
		string(contextJSON), alert.ConfidenceScore, fmtTime(alert.CreatedAt),
	)
	if err != nil {
		return false, "", fmt.Errorf("failed to create alert %s: %w", alert.AlertType, err)
	}

	if err := tx.Commit(); err != nil {
		return false, "", fmt.Errorf("failed to commit alert: %w", err)
	}
	return true, "", nil
}

// ListAlerts returns alerts matching the filter, newest first.
func (s *SQLiteStorage) ListAlerts(ctx context.Context, filter types.AlertFilter) ([]*types.HealthAlert, error) {
	query := `SELECT ` + alertColumns + ` FROM health_alerts WHERE 1=1`
	args := []any{}

	if filter.ProjectID != 0 {
		query += " AND project_id = ?"
		args = append(args, filter.ProjectID)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.Severity != "" {
		query += " AND severity = ?"
		args = append(args, filter.Severity)
	}
	if !filter.Since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, fmtTime(filter.Since))
	}

	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*types.HealthAlert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// CountActiveAlerts returns the number of active alerts for a project.
func (s *SQLiteStorage) CountActiveAlerts(ctx context.Context, projectID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM health_alerts WHERE project_id = ? AND status = ?`,
		projectID, types.AlertActive,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count active alerts: %w", err)
	}
	return n, nil
}

// AcknowledgeAlert transitions an active alert to acknowledged, recording who
// and when. Fails if the alert is not active.
func (s *SQLiteStorage) AcknowledgeAlert(ctx context.Context, id, by string) error {
	return s.transitionAlert(ctx, id,
		`UPDATE health_alerts SET status = ?, acknowledged_at = ?, acknowledged_by = ?
		 WHERE id = ? AND status = ?`,
		types.AlertAcknowledged, fmtTime(time.Now().UTC()), by, id, types.AlertActive)
}

// ResolveAlert transitions an active or acknowledged alert to resolved.
func (s *SQLiteStorage) ResolveAlert(ctx context.Context, id, by string) error {
	return s.transitionAlert(ctx, id,
		`UPDATE health_alerts SET status = ?, resolved_at = ?, resolved_by = ?
		 WHERE id = ? AND status IN (?, ?)`,
		types.AlertResolved, fmtTime(time.Now().UTC()), by, id,
		types.AlertActive, types.AlertAcknowledged)
}

// DismissAlert transitions an active or acknowledged alert to dismissed.
func (s *SQLiteStorage) DismissAlert(ctx context.Context, id, by string) error {
	return s.transitionAlert(ctx, id,
		`UPDATE health_alerts SET status = ?, resolved_at = ?, resolved_by = ?
		 WHERE id = ? AND status IN (?, ?)`,
		types.AlertDismissed, fmtTime(time.Now().UTC()), by, id,
		types.AlertActive, types.AlertAcknowledged)
}

func (s *SQLiteStorage) transitionAlert(ctx context.Context, id, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update alert %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check alert update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("alert %s not found or not in a transitionable state", id)
	}
	return nil
}

// PurgeInactiveAlerts deletes resolved, dismissed, and acknowledged alerts
// created before the cutoff. Active alerts are never purged.
func (s *SQLiteStorage) PurgeInactiveAlerts(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM health_alerts WHERE status != ? AND created_at < ?`,
		types.AlertActive, fmtTime(cutoff),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge alerts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged alerts: %w", err)
	}
	return int(n), nil
}

func scanAlert(rows *sql.Rows) (*types.HealthAlert, error) {
	var a types.HealthAlert
	var memberID sql.NullInt64
	var contextJSON, createdAt string
	var ackAt, resAt sql.NullString

	if err := rows.Scan(
		&a.ID, &a.ProjectID, &memberID, &a.AlertType, &a.Severity, &a.Status,
		&a.Title, &a.Description, &contextJSON, &a.ConfidenceScore, &createdAt,
		&ackAt, &a.AcknowledgedBy, &resAt, &a.ResolvedBy,
	); err != nil {
		return nil, fmt.Errorf("failed to scan alert: %w", err)
	}

	if memberID.Valid {
		v := memberID.Int64
		a.MemberID = &v
	}
	if contextJSON != "" {
		if err := json.Unmarshal([]byte(contextJSON), &a.ContextData); err != nil {
			return nil, fmt.Errorf("failed to unmarshal alert context: %w", err)
		}
	}

	var err error
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if a.AcknowledgedAt, err = parseNullTime(ackAt); err != nil {
		return nil, err
	}
	if a.ResolvedAt, err = parseNullTime(resAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func nullInt(i *int64) any {
	if i == nil {
		return nil
	}
	return *i
}
