package predict

import (
	"time"

	"github.com/teampulse/teampulse/internal/types"
)

// minSentimentPoints is the per-session sentiment sample floor for the
// sentiment model.
const minSentimentPoints = 5

// SentimentPrediction is the sentiment sub-model output. Values are on the
// canonical 0..1 sentiment scale.
type SentimentPrediction struct {
	Insufficient *Insufficient `json:"insufficient_data,omitempty"`

	CurrentTrend      types.TrendDirection `json:"current_trend,omitempty"`
	TrendSlope        float64              `json:"trend_slope"`
	RecentAverage     float64              `json:"recent_average"`
	HistoricalAverage float64              `json:"historical_average"`

	Forecast      []Forecast         `json:"future_predictions,omitempty"`
	WeeklyPattern map[string]float64 `json:"weekly_patterns,omitempty"`
	Volatility    float64            `json:"volatility"`

	// DataPoints is the number of distinct days with sentiment data.
	DataPoints int `json:"data_points"`
}

// predictSentiment fits a linear trend to the daily-average sentiment series
// and projects it 7 days forward with linearly decaying confidence.
func predictSentiment(sessions []*types.StandupSession) *SentimentPrediction {
	var dates []time.Time
	var scores []float64
	for _, s := range sessions {
		if s.SentimentScore != nil {
			dates = append(dates, s.Date)
			scores = append(scores, *s.SentimentScore)
		}
	}

	if len(scores) < minSentimentPoints {
		return &SentimentPrediction{Insufficient: &Insufficient{
			Reason:          "insufficient sentiment data for prediction",
			MinimumRequired: minSentimentPoints,
			Current:         len(scores),
		}}
	}

	days, averages := dailyAverages(dates, scores)
	slope := trendSlope(averages)

	last := averages[len(averages)-1]
	lastDay := days[len(days)-1]
	forecast := make([]Forecast, 0, 7)
	for i := 1; i <= 7; i++ {
		forecast = append(forecast, Forecast{
			Date:       lastDay.AddDate(0, 0, i),
			Value:      round3(clamp01(last + slope*float64(i))),
			Confidence: clamp(1.0-float64(i)*0.1, 0.5, 1.0),
		})
	}

	recentN := len(averages)
	if recentN > 7 {
		recentN = 7
	}
	var recentSum, totalSum float64
	for _, v := range averages[len(averages)-recentN:] {
		recentSum += v
	}
	for _, v := range averages {
		totalSum += v
	}

	return &SentimentPrediction{
		CurrentTrend:      slopeTrend(slope, 0.01),
		TrendSlope:        round4(slope),
		RecentAverage:     round3(recentSum / float64(recentN)),
		HistoricalAverage: round3(totalSum / float64(len(averages))),
		Forecast:          forecast,
		WeeklyPattern:     weekdayAverages(days, averages),
		Volatility:        round3(volatility(averages)),
		DataPoints:        len(averages),
	}
}

// slopeTrend classifies a regression slope against a symmetric threshold.
func slopeTrend(slope, threshold float64) types.TrendDirection {
	switch {
	case slope > threshold:
		return types.TrendImproving
	case slope < -threshold:
		return types.TrendDeclining
	default:
		return types.TrendStable
	}
}
