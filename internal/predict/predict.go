// Package predict is the forward-looking analytics engine: it fits linear
// trends to sentiment, productivity, and velocity series, projects them
// forward with decaying confidence, finds weekly blocker patterns, and
// scores five independent risk dimensions that roll up into an overall risk
// level with actionable recommendations.
//
// Sub-models never fail on thin data; each reports an explicit
// insufficient-data marker and a zero confidence instead.
package predict

import (
	"context"
	"fmt"
	"time"

	"github.com/teampulse/teampulse/internal/clock"
	"github.com/teampulse/teampulse/internal/storage"
	"github.com/teampulse/teampulse/internal/types"
)

// MinSessions is the completed-session floor below which no predictive
// analysis is attempted.
const MinSessions = 7

// DefaultLookbackDays is the history window insights are computed over.
const DefaultLookbackDays = 60

// Insufficient marks a model that lacked its minimum sample size. It is data,
// not an error: callers render it as a placeholder.
type Insufficient struct {
	Reason          string `json:"reason"`
	MinimumRequired int    `json:"minimum_required"`
	Current         int    `json:"current"`
}

// Forecast is one projected future value with its confidence.
type Forecast struct {
	Date       time.Time `json:"date"`
	Value      float64   `json:"value"`
	Confidence float64   `json:"confidence"`
}

// Period describes the analysis window.
type Period struct {
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	SessionsAnalyzed int       `json:"sessions_analyzed"`
}

// Insights is the full predictive payload for one project.
type Insights struct {
	ProjectID   int64  `json:"project_id"`
	ProjectName string `json:"project_name"`
	Period      Period `json:"analysis_period"`

	// Insufficient is set, and all models nil, when the project has fewer
	// than MinSessions completed sessions in the window.
	Insufficient *Insufficient `json:"insufficient_data,omitempty"`

	Sentiment    *SentimentPrediction    `json:"sentiment,omitempty"`
	Productivity *ProductivityPrediction `json:"productivity,omitempty"`
	Blockers     *BlockerPrediction      `json:"blockers,omitempty"`
	Velocity     *VelocityPrediction     `json:"velocity,omitempty"`

	Risk            *RiskAssessment    `json:"risk_assessment,omitempty"`
	Recommendations []Recommendation   `json:"recommendations,omitempty"`
	Confidence      map[string]float64 `json:"confidence_scores,omitempty"`

	GeneratedAt time.Time `json:"generated_at"`
}

// Engine computes predictive insights from standup history.
type Engine struct {
	store storage.Storage
	clock clock.Clock
}

// NewEngine creates a predictive engine.
func NewEngine(store storage.Storage, clk clock.Clock) *Engine {
	return &Engine{store: store, clock: clk}
}

// GenerateInsights runs every predictive sub-model for the project over the
// trailing lookback window. The returned error covers storage failures only;
// thin data degrades to insufficient-data markers inside the payload.
func (e *Engine) GenerateInsights(ctx context.Context, projectID int64, daysBack int) (*Insights, error) {
	if daysBack <= 0 {
		daysBack = DefaultLookbackDays
	}
	now := e.clock.Now()
	end := types.Day(now)
	start := end.AddDate(0, 0, -daysBack)

	project, err := e.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("predictive insights: %w", err)
	}

	sessions, err := e.store.ListSessions(ctx, types.SessionFilter{
		ProjectID: projectID,
		Start:     start,
		End:       end,
		Status:    types.SessionCompleted,
	})
	if err != nil {
		return nil, fmt.Errorf("predictive insights: %w", err)
	}

	insights := &Insights{
		ProjectID:   projectID,
		ProjectName: project.Name,
		Period:      Period{Start: start, End: end, SessionsAnalyzed: len(sessions)},
		GeneratedAt: now,
	}

	if len(sessions) < MinSessions {
		insights.Insufficient = &Insufficient{
			Reason:          "insufficient data for predictive analysis",
			MinimumRequired: MinSessions,
			Current:         len(sessions),
		}
		return insights, nil
	}

	insights.Sentiment = predictSentiment(sessions)
	insights.Productivity = predictProductivity(sessions)
	insights.Blockers = predictBlockers(sessions, end)
	insights.Velocity = predictVelocity(sessions)
	insights.Risk = assessRisks(sessions, now)
	insights.Recommendations = recommend(insights.Sentiment, insights.Productivity, insights.Blockers, insights.Risk)
	insights.Confidence = confidenceScores(sessions, insights)

	return insights, nil
}

// recentSessions keeps sessions dated within the trailing days before now.
func recentSessions(sessions []*types.StandupSession, now time.Time, days int) []*types.StandupSession {
	cutoff := types.Day(now).AddDate(0, 0, -days)
	var recent []*types.StandupSession
	for _, s := range sessions {
		if !s.Date.Before(cutoff) {
			recent = append(recent, s)
		}
	}
	return recent
}

// dailyAverages groups per-session values by date and averages same-day
// values, returning the chronologically sorted series. Input sessions are
// already date-ordered from storage.
func dailyAverages(dates []time.Time, values []float64) ([]time.Time, []float64) {
	var outDates []time.Time
	var outValues []float64
	var sum float64
	var count int

	flush := func(d time.Time) {
		if count > 0 {
			outDates = append(outDates, d)
			outValues = append(outValues, sum/float64(count))
		}
		sum, count = 0, 0
	}

	var current time.Time
	for i, d := range dates {
		if i > 0 && !d.Equal(current) {
			flush(current)
		}
		current = d
		sum += values[i]
		count++
	}
	if len(dates) > 0 {
		flush(current)
	}
	return outDates, outValues
}
