// Package trends maintains the per-project metric time series: one point per
// (project, metric type, date) with period-over-period change, rolling
// averages, and a trend direction classification.
package trends

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/teampulse/teampulse/internal/metrics"
	"github.com/teampulse/teampulse/internal/storage"
	"github.com/teampulse/teampulse/internal/types"
)

// Thresholds for trend classification and concern detection. Values are on
// the 0-100 display scale shared by all four metrics.
const (
	// |change%| above this is volatile; checked before the directional
	// thresholds so large swings classify as volatility, not improvement.
	volatileThreshold  = 15.0
	improvingThreshold = 5.0
	decliningThreshold = -5.0

	concerningDecline       = -10.0
	concerningParticipation = 50.0
	concerningSentiment     = 35.0
	concerningBlockers      = 70.0
)

// Engine computes and persists trend points.
type Engine struct {
	store storage.Storage
}

// NewEngine creates a trend engine backed by the given store.
func NewEngine(store storage.Storage) *Engine {
	return &Engine{store: store}
}

// RecordMetric computes the trend point for one (project, metric, date)
// observation and upserts it. Idempotent: recomputing the same date reuses
// the point before that date as the previous value, never the overwritten
// row itself.
func (e *Engine) RecordMetric(ctx context.Context, projectID int64, metric types.MetricType, value float64, date time.Time) (*types.TrendPoint, error) {
	date = types.Day(date)

	prev, err := e.store.LatestTrendPointBefore(ctx, projectID, metric, date)
	if err != nil {
		return nil, fmt.Errorf("record metric: %w", err)
	}

	point := &types.TrendPoint{
		ProjectID:      projectID,
		MetricType:     metric,
		Date:           date,
		CurrentValue:   value,
		TrendDirection: types.TrendStable,
	}

	if prev != nil {
		pv := prev.CurrentValue
		point.PreviousValue = &pv
		if pv != 0 {
			change := (value - pv) / pv * 100
			point.ChangePercentage = &change
			point.TrendDirection = classify(change)
		}
	}

	roll7, err := e.rollingAverage(ctx, projectID, metric, date, 7)
	if err != nil {
		return nil, err
	}
	roll30, err := e.rollingAverage(ctx, projectID, metric, date, 30)
	if err != nil {
		return nil, err
	}
	point.RollingAverage7d = roll7
	point.RollingAverage30d = roll30

	if err := e.store.UpsertTrendPoint(ctx, point); err != nil {
		return nil, fmt.Errorf("record metric: %w", err)
	}
	return point, nil
}

// RecordSnapshot computes all four MVP metrics over the trailing window
// ending at date and records a trend point for each. Metrics reporting
// no data are skipped rather than recorded as zero, so sparse history does
// not read as collapse.
func (e *Engine) RecordSnapshot(ctx context.Context, calc *metrics.Calculator, projectID int64, date time.Time, windowDays int) ([]*types.TrendPoint, error) {
	date = types.Day(date)
	start := date.AddDate(0, 0, -windowDays)

	var points []*types.TrendPoint
	for _, metric := range types.MetricTypes {
		r, err := calc.Calculate(ctx, metric, projectID, start, date)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", metric, err)
		}
		if r.Status == metrics.StatusNoData {
			continue
		}
		p, err := e.RecordMetric(ctx, projectID, metric, r.Value, date)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

// History returns the recorded series for one metric over the trailing
// window ending at (and including) date.
func (e *Engine) History(ctx context.Context, projectID int64, metric types.MetricType, date time.Time, windowDays int) ([]*types.TrendPoint, error) {
	date = types.Day(date)
	return e.store.ListTrendPoints(ctx, projectID, metric, date.AddDate(0, 0, -windowDays), date.AddDate(0, 0, 1))
}

// IsConcerning reports whether a trend point indicates concerning team
// health: a steep decline, a flagged anomaly or threshold breach, or a
// metric value below its floor.
func IsConcerning(p *types.TrendPoint) bool {
	if p.TrendDirection == types.TrendDeclining &&
		p.ChangePercentage != nil && *p.ChangePercentage < concerningDecline {
		return true
	}
	if p.AnomalyDetected || p.AlertThresholdBreached {
		return true
	}
	switch p.MetricType {
	case types.MetricParticipation:
		return p.CurrentValue < concerningParticipation
	case types.MetricSentiment:
		return p.CurrentValue < concerningSentiment
	case types.MetricBlockers:
		return p.CurrentValue < concerningBlockers
	}
	return false
}

func classify(change float64) types.TrendDirection {
	switch {
	case math.Abs(change) > volatileThreshold:
		return types.TrendVolatile
	case change > improvingThreshold:
		return types.TrendImproving
	case change < decliningThreshold:
		return types.TrendDeclining
	default:
		return types.TrendStable
	}
}

func (e *Engine) rollingAverage(ctx context.Context, projectID int64, metric types.MetricType, date time.Time, days int) (*float64, error) {
	points, err := e.store.ListTrendPoints(ctx, projectID, metric, date.AddDate(0, 0, -days), date)
	if err != nil {
		return nil, fmt.Errorf("rolling average: %w", err)
	}
	if len(points) == 0 {
		return nil, nil
	}
	var sum float64
	for _, p := range points {
		sum += p.CurrentValue
	}
	avg := sum / float64(len(points))
	return &avg, nil
}
