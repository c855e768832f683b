package predict

import (
	"sort"
	"time"

	"github.com/teampulse/teampulse/internal/types"
)

const (
	minVelocityWeeks = 3
	// minSessionsPerWeek excludes near-empty weeks from the velocity series.
	minSessionsPerWeek = 2
	// completionAssumption estimates completed work from referenced work
	// items; actual completion data lives in the work-item metric instead.
	completionAssumption = 0.7
)

// WeekVelocity is one week's velocity observation.
type WeekVelocity struct {
	WeekStart    time.Time `json:"week_start"`
	Sessions     int       `json:"sessions_count"`
	Contributors int       `json:"contributors"`
	WorkItems    int       `json:"work_items"`
	AvgSentiment float64   `json:"avg_sentiment"`
	Score        float64   `json:"velocity_score"`
}

// VelocityPrediction is the velocity sub-model output.
type VelocityPrediction struct {
	Insufficient *Insufficient `json:"insufficient_data,omitempty"`

	CurrentVelocity float64              `json:"current_velocity"`
	Trend           types.TrendDirection `json:"velocity_trend,omitempty"`
	AverageVelocity float64              `json:"average_velocity"`
	Volatility      float64              `json:"velocity_volatility"`

	Forecast []Forecast `json:"future_predictions,omitempty"`

	// RecentWeeks is the last 4 observed weeks, oldest first.
	RecentWeeks []WeekVelocity `json:"weekly_data,omitempty"`

	// DataPoints is the number of qualifying weeks.
	DataPoints int `json:"data_points"`
}

// predictVelocity groups sessions into calendar weeks, scores each week by
// work-item throughput weighted by team mood, and projects two weeks ahead.
func predictVelocity(sessions []*types.StandupSession) *VelocityPrediction {
	byWeek := make(map[time.Time][]*types.StandupSession)
	for _, s := range sessions {
		ws := weekStart(s.Date)
		byWeek[ws] = append(byWeek[ws], s)
	}

	var weeks []WeekVelocity
	for ws, weekSessions := range byWeek {
		if len(weekSessions) < minSessionsPerWeek {
			continue
		}

		items := 0
		contributors := make(map[int64]bool)
		var sentimentSum float64
		for _, s := range weekSessions {
			items += s.WorkItemCount
			contributors[s.MemberID] = true
			if s.SentimentScore != nil {
				sentimentSum += *s.SentimentScore
			} else {
				sentimentSum += 0.5
			}
		}
		avgSentiment := sentimentSum / float64(len(weekSessions))

		weeks = append(weeks, WeekVelocity{
			WeekStart:    ws,
			Sessions:     len(weekSessions),
			Contributors: len(contributors),
			WorkItems:    items,
			AvgSentiment: round3(avgSentiment),
			Score:        round2(float64(items) * completionAssumption * avgSentiment),
		})
	}

	if len(weeks) < minVelocityWeeks {
		return &VelocityPrediction{Insufficient: &Insufficient{
			Reason:          "insufficient data for velocity prediction",
			MinimumRequired: minVelocityWeeks,
			Current:         len(weeks),
		}}
	}

	sort.Slice(weeks, func(i, j int) bool { return weeks[i].WeekStart.Before(weeks[j].WeekStart) })

	scores := make([]float64, len(weeks))
	for i, w := range weeks {
		scores[i] = w.Score
	}
	slope := trendSlope(scores)

	last := scores[len(scores)-1]
	lastWeek := weeks[len(weeks)-1].WeekStart
	forecast := make([]Forecast, 0, 2)
	for i := 1; i <= 2; i++ {
		predicted := last + slope*float64(i)
		if predicted < 0 {
			predicted = 0
		}
		forecast = append(forecast, Forecast{
			Date:       lastWeek.AddDate(0, 0, 7*i),
			Value:      round2(predicted),
			Confidence: clamp(1.0-float64(i)*0.2, 0.3, 1.0),
		})
	}

	var total float64
	for _, v := range scores {
		total += v
	}

	recent := weeks
	if len(recent) > 4 {
		recent = recent[len(recent)-4:]
	}

	return &VelocityPrediction{
		CurrentVelocity: round2(last),
		Trend:           slopeTrend(slope, 0.1),
		AverageVelocity: round2(total / float64(len(scores))),
		Volatility:      round3(volatility(scores)),
		Forecast:        forecast,
		RecentWeeks:     recent,
		DataPoints:      len(weeks),
	}
}
