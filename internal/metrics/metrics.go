// Package metrics computes the four MVP team-health metrics from standup
// session data: participation rate, average sentiment, blocker resolution
// rate, and work-item completion rate. All metric values are on a 0-100
// display scale. Calculators never fail on empty ranges; they return a
// zero-valued result with a no-data sentinel instead.
package metrics

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/teampulse/teampulse/internal/storage"
	"github.com/teampulse/teampulse/internal/types"
)

// Status is the qualitative band a metric value falls into.
type Status string

const (
	StatusGood       Status = "good"
	StatusAverage    Status = "average"
	StatusConcerning Status = "concerning"
	StatusNoData     Status = "no_data"
)

// TrendNoData marks a metric computed over an empty range, where no trend
// comparison is possible.
const TrendNoData types.TrendDirection = "no_data"

// Result is one metric's outcome for a date window.
type Result struct {
	Metric      types.MetricType     `json:"metric"`
	Value       float64              `json:"value"`
	Trend       types.TrendDirection `json:"trend"`
	Status      Status               `json:"status"`
	DataPoints  int                  `json:"data_points"`
	LastUpdated time.Time            `json:"last_updated"`
}

// Calculator computes MVP metrics for a project over a date window.
type Calculator struct {
	store storage.Storage
}

// NewCalculator creates a metric calculator backed by the given store.
func NewCalculator(store storage.Storage) *Calculator {
	return &Calculator{store: store}
}

// Calculate dispatches to the named metric's calculator.
func (c *Calculator) Calculate(ctx context.Context, metric types.MetricType, projectID int64, start, end time.Time) (Result, error) {
	switch metric {
	case types.MetricParticipation:
		return c.Participation(ctx, projectID, start, end)
	case types.MetricSentiment:
		return c.Sentiment(ctx, projectID, start, end)
	case types.MetricBlockers:
		return c.Blockers(ctx, projectID, start, end)
	case types.MetricWorkItems:
		return c.WorkItems(ctx, projectID, start, end)
	default:
		return Result{}, fmt.Errorf("unknown metric type: %q", metric)
	}
}

// Participation computes the share of sessions in range that were completed.
// All sessions count toward the denominator regardless of status; the rate is
// not weighted by expected team size.
func (c *Calculator) Participation(ctx context.Context, projectID int64, start, end time.Time) (Result, error) {
	sessions, err := c.store.ListSessions(ctx, types.SessionFilter{
		ProjectID: projectID, Start: start, End: end,
	})
	if err != nil {
		return Result{}, fmt.Errorf("participation metric: %w", err)
	}
	if len(sessions) == 0 {
		return emptyResult(types.MetricParticipation, StatusConcerning, end), nil
	}

	completed := 0
	for _, s := range sessions {
		if s.Status == types.SessionCompleted {
			completed++
		}
	}
	rate := float64(completed) / float64(len(sessions)) * 100

	mid := midpoint(start, end)
	first, second := 0, 0
	for _, s := range sessions {
		if s.Date.Before(mid) {
			first++
		} else {
			second++
		}
	}

	return Result{
		Metric:      types.MetricParticipation,
		Value:       round1(rate),
		Trend:       countTrend(first, second, 1.1, 0.9),
		Status:      band(rate, 70, 50),
		DataPoints:  len(sessions),
		LastUpdated: end,
	}, nil
}

// Sentiment computes the mean sentiment score over sessions that carry one,
// scaled to 0-100 for display. Sessions without a numeric score are excluded
// entirely; the label fallback is not used here.
func (c *Calculator) Sentiment(ctx context.Context, projectID int64, start, end time.Time) (Result, error) {
	sessions, err := c.store.ListSessions(ctx, types.SessionFilter{
		ProjectID: projectID, Start: start, End: end, RequireSentiment: true,
	})
	if err != nil {
		return Result{}, fmt.Errorf("sentiment metric: %w", err)
	}
	if len(sessions) == 0 {
		return emptyResult(types.MetricSentiment, StatusNoData, end), nil
	}

	var sum float64
	for _, s := range sessions {
		sum += *s.SentimentScore
	}
	avg100 := sum / float64(len(sessions)) * 100

	// Trend compares half-window averages, not counts: sentiment is the one
	// metric where intensity matters more than activity volume.
	mid := midpoint(start, end)
	var firstSum, secondSum float64
	var firstN, secondN int
	for _, s := range sessions {
		if s.Date.Before(mid) {
			firstSum += *s.SentimentScore
			firstN++
		} else {
			secondSum += *s.SentimentScore
			secondN++
		}
	}

	trend := types.TrendStable
	if firstN > 0 {
		firstAvg := firstSum / float64(firstN)
		secondAvg := firstAvg
		if secondN > 0 {
			secondAvg = secondSum / float64(secondN)
		}
		switch {
		case secondAvg > firstAvg*1.05:
			trend = types.TrendImproving
		case secondAvg < firstAvg*0.95:
			trend = types.TrendDeclining
		}
	}

	return Result{
		Metric:      types.MetricSentiment,
		Value:       round1(avg100),
		Trend:       trend,
		Status:      band(avg100, 70, 40),
		DataPoints:  len(sessions),
		LastUpdated: end,
	}, nil
}

// Blockers computes the blocker resolution rate. Resolution is a fixed 70%
// heuristic applied to sessions reporting blockers rather than a count of
// actually-resolved blocker records; see DESIGN.md for the tradeoff.
func (c *Calculator) Blockers(ctx context.Context, projectID int64, start, end time.Time) (Result, error) {
	sessions, err := c.store.ListSessions(ctx, types.SessionFilter{
		ProjectID: projectID, Start: start, End: end,
	})
	if err != nil {
		return Result{}, fmt.Errorf("blocker metric: %w", err)
	}
	if len(sessions) == 0 {
		return emptyResult(types.MetricBlockers, StatusConcerning, end), nil
	}

	mid := midpoint(start, end)
	blocked, first, second := 0, 0, 0
	for _, s := range sessions {
		if !s.HasBlockers() {
			continue
		}
		blocked++
		if s.Date.Before(mid) {
			first++
		} else {
			second++
		}
	}

	rate := 0.0
	if blocked > 0 {
		resolved := int(float64(blocked) * 0.7)
		rate = float64(resolved) / float64(blocked) * 100
	}

	// Fewer blockers in the second half is the improving direction.
	trend := types.TrendStable
	if first > 0 {
		switch {
		case float64(second) < float64(first)*0.8:
			trend = types.TrendImproving
		case float64(second) > float64(first)*1.2:
			trend = types.TrendDeclining
		}
	}

	return Result{
		Metric:      types.MetricBlockers,
		Value:       round1(rate),
		Trend:       trend,
		Status:      band(rate, 80, 60),
		DataPoints:  blocked,
		LastUpdated: end,
	}, nil
}

// WorkItems computes the share of referenced work items in a completed state,
// scoped to sessions in the date range.
func (c *Calculator) WorkItems(ctx context.Context, projectID int64, start, end time.Time) (Result, error) {
	items, err := c.store.ListWorkItems(ctx, projectID, start, end)
	if err != nil {
		return Result{}, fmt.Errorf("work item metric: %w", err)
	}
	if len(items) == 0 {
		return emptyResult(types.MetricWorkItems, StatusNoData, end), nil
	}

	completed := 0
	for _, w := range items {
		if w.Status.IsComplete() {
			completed++
		}
	}
	rate := float64(completed) / float64(len(items)) * 100

	// Half-window split follows the owning session's date, which the item
	// row itself does not carry; query the first sub-range for the count.
	mid := midpoint(start, end)
	firstItems, err := c.store.ListWorkItems(ctx, projectID, start, mid.AddDate(0, 0, -1))
	if err != nil {
		return Result{}, fmt.Errorf("work item metric: %w", err)
	}
	first := len(firstItems)
	second := len(items) - first

	return Result{
		Metric:      types.MetricWorkItems,
		Value:       round1(rate),
		Trend:       countTrend(first, second, 1.1, 0.9),
		Status:      band(rate, 75, 50),
		DataPoints:  len(items),
		LastUpdated: end,
	}, nil
}

func emptyResult(metric types.MetricType, status Status, end time.Time) Result {
	return Result{
		Metric:      metric,
		Trend:       TrendNoData,
		Status:      status,
		LastUpdated: end,
	}
}

// midpoint splits the window at its whole-day middle. First half is dates
// strictly before the midpoint; second half is the midpoint onward.
func midpoint(start, end time.Time) time.Time {
	days := int(end.Sub(start).Hours()) / 24
	return start.AddDate(0, 0, days/2)
}

// countTrend classifies activity movement from half-window counts. A zero
// first half means no baseline, so stable.
func countTrend(first, second int, up, down float64) types.TrendDirection {
	if first == 0 {
		return types.TrendStable
	}
	switch {
	case float64(second) > float64(first)*up:
		return types.TrendImproving
	case float64(second) < float64(first)*down:
		return types.TrendDeclining
	default:
		return types.TrendStable
	}
}

// band maps a 0-100 value onto a status band given the good and concerning
// thresholds.
func band(value, good, concerning float64) Status {
	switch {
	case value >= good:
		return StatusGood
	case value < concerning:
		return StatusConcerning
	default:
		return StatusAverage
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
