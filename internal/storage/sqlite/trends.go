package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/teampulse/teampulse/internal/types"
)

const trendColumns = `id, project_id, metric_type, date, current_value, previous_value,
	change_percentage, trend_direction, rolling_average_7d, rolling_average_30d,
	anomaly_detected, alert_threshold_breached, created_at, updated_at`

// LatestTrendPointBefore returns the most recent trend point for the
// (project, metric) key strictly before date, or nil when none exists.
func (s *SQLiteStorage) LatestTrendPointBefore(ctx context.Context, projectID int64, metric types.MetricType, date time.Time) (*types.TrendPoint, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+trendColumns+` FROM trend_points
		 WHERE project_id = ? AND metric_type = ? AND date < ?
		 ORDER BY date DESC LIMIT 1`,
		projectID, metric, fmtDate(date),
	)

	p, err := scanTrendRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest trend point: %w", err)
	}
	return p, nil
}

// ListTrendPoints returns trend points for the key with date in
// [start, end), ordered by date ascending.
func (s *SQLiteStorage) ListTrendPoints(ctx context.Context, projectID int64, metric types.MetricType, start, end time.Time) ([]*types.TrendPoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+trendColumns+` FROM trend_points
		 WHERE project_id = ? AND metric_type = ? AND date >= ? AND date < ?
		 ORDER BY date ASC`,
		projectID, metric, fmtDate(start), fmtDate(end),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query trend points: %w", err)
	}
	defer rows.Close()

	var points []*types.TrendPoint
	for rows.Next() {
		p, err := scanTrendRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trend point: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// UpsertTrendPoint creates or replaces the trend point keyed by
// (project, metric_type, date). Safe to call repeatedly with recomputed
// values for the same date.
func (s *SQLiteStorage) UpsertTrendPoint(ctx context.Context, p *types.TrendPoint) error {
	if p.ProjectID == 0 || p.MetricType == "" || p.Date.IsZero() {
		return fmt.Errorf("trend point requires project, metric type, and date")
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO trend_points
		 (project_id, metric_type, date, current_value, previous_value, change_percentage,
		  trend_direction, rolling_average_7d, rolling_average_30d,
		  anomaly_detected, alert_threshold_breached, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(project_id, metric_type, date) DO UPDATE SET
		   current_value = excluded.current_value,
		   previous_value = excluded.previous_value,
		   change_percentage = excluded.change_percentage,
		   trend_direction = excluded.trend_direction,
		   rolling_average_7d = excluded.rolling_average_7d,
		   rolling_average_30d = excluded.rolling_average_30d,
		   anomaly_detected = excluded.anomaly_detected,
		   alert_threshold_breached = excluded.alert_threshold_breached,
		   updated_at = excluded.updated_at`,
		p.ProjectID, p.MetricType, fmtDate(p.Date), p.CurrentValue,
		nullFloat(p.PreviousValue), nullFloat(p.ChangePercentage), p.TrendDirection,
		nullFloat(p.RollingAverage7d), nullFloat(p.RollingAverage30d),
		p.AnomalyDetected, p.AlertThresholdBreached,
		fmtTime(p.CreatedAt), fmtTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert trend point (project=%d, metric=%s, date=%s): %w",
			p.ProjectID, p.MetricType, fmtDate(p.Date), err)
	}
	return nil
}

// PurgeTrendPoints deletes trend points dated before the cutoff, returning
// the number deleted.
func (s *SQLiteStorage) PurgeTrendPoints(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM trend_points WHERE date < ?`, fmtDate(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to purge trend points: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged trend points: %w", err)
	}
	return int(n), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrendRow(row rowScanner) (*types.TrendPoint, error) {
	var p types.TrendPoint
	var date, createdAt, updatedAt string
	var prev, change, roll7, roll30 sql.NullFloat64

	if err := row.Scan(
		&p.ID, &p.ProjectID, &p.MetricType, &date, &p.CurrentValue,
		&prev, &change, &p.TrendDirection, &roll7, &roll30,
		&p.AnomalyDetected, &p.AlertThresholdBreached, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if p.Date, err = parseDate(date); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	p.PreviousValue = floatPtr(prev)
	p.ChangePercentage = floatPtr(change)
	p.RollingAverage7d = floatPtr(roll7)
	p.RollingAverage30d = floatPtr(roll30)
	return &p, nil
}
