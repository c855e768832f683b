package predict

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/teampulse/teampulse/internal/types"
)

const (
	minProductivityPoints = 5

	// productivityBaseline is the neutral midpoint of the 0-10 score.
	productivityBaseline = 5.0

	lowProductivityScore = 3.0
)

var (
	specificTaskRe     = regexp.MustCompile(`\b(implement|fix|debug|review|test|deploy)\b`)
	quantifiableGoalRe = regexp.MustCompile(`\b(\d+|finish|complete|deliver)\b`)
	collaborationRe    = regexp.MustCompile(`\b(with|team|pair|review|meeting)\b`)
)

// ProductivityPrediction is the productivity sub-model output. Scores are on
// a 0-10 scale.
type ProductivityPrediction struct {
	Insufficient *Insufficient `json:"insufficient_data,omitempty"`

	CurrentTrend        types.TrendDirection `json:"current_trend,omitempty"`
	TrendSlope          float64              `json:"trend_slope"`
	AverageProductivity float64              `json:"average_productivity"`
	BaselineComparison  float64              `json:"baseline_comparison"`

	Forecast []Forecast `json:"future_predictions,omitempty"`

	PeakDay                string   `json:"peak_productivity_day,omitempty"`
	LowProductivitySignals []string `json:"low_productivity_indicators,omitempty"`

	// DataPoints is the number of distinct days with productivity data.
	DataPoints int `json:"data_points"`
}

// sessionProductivity scores one session 0-10 from its work-item references,
// content depth, and quality keywords.
func sessionProductivity(s *types.StandupSession) float64 {
	today := strings.ToLower(s.TodayPlan)
	yesterday := strings.ToLower(s.YesterdayWork)

	score := float64(s.WorkItemCount)*2 + float64(s.ContentLength())/50
	if specificTaskRe.MatchString(today) {
		score += 2
	}
	if quantifiableGoalRe.MatchString(today) {
		score += 2
	}
	if collaborationRe.MatchString(yesterday) {
		score += 1
	}
	return clamp(score, 0, 10)
}

// predictProductivity fits a linear trend to daily-average productivity and
// projects 7 days forward, plus qualitative low-productivity patterns.
func predictProductivity(sessions []*types.StandupSession) *ProductivityPrediction {
	if len(sessions) < minProductivityPoints {
		return &ProductivityPrediction{Insufficient: &Insufficient{
			Reason:          "insufficient productivity data for prediction",
			MinimumRequired: minProductivityPoints,
			Current:         len(sessions),
		}}
	}

	dates := make([]time.Time, len(sessions))
	scores := make([]float64, len(sessions))
	for i, s := range sessions {
		dates[i] = s.Date
		scores[i] = sessionProductivity(s)
	}

	days, averages := dailyAverages(dates, scores)
	slope := trendSlope(averages)

	last := averages[len(averages)-1]
	lastDay := days[len(days)-1]
	forecast := make([]Forecast, 0, 7)
	for i := 1; i <= 7; i++ {
		forecast = append(forecast, Forecast{
			Date:       lastDay.AddDate(0, 0, i),
			Value:      round2(clamp(last+slope*float64(i), 0, 10)),
			Confidence: clamp(1.0-float64(i)*0.12, 0.4, 1.0),
		})
	}

	var total float64
	for _, v := range averages {
		total += v
	}
	recentN := len(averages)
	if recentN > 7 {
		recentN = 7
	}
	var recentSum float64
	for _, v := range averages[len(averages)-recentN:] {
		recentSum += v
	}

	return &ProductivityPrediction{
		CurrentTrend:           slopeTrend(slope, 0.1),
		TrendSlope:             round3(slope),
		AverageProductivity:    round2(total / float64(len(averages))),
		BaselineComparison:     round2(recentSum/7 - productivityBaseline),
		Forecast:               forecast,
		PeakDay:                peakDay(days, averages),
		LowProductivitySignals: lowProductivityPatterns(sessions, scores),
		DataPoints:             len(averages),
	}
}

// lowProductivityPatterns summarizes what low-scoring sessions have in
// common: thin content, few work items, and the weekday they cluster on.
func lowProductivityPatterns(sessions []*types.StandupSession, scores []float64) []string {
	var patterns []string
	var contentSum, itemSum float64
	weekdayCounts := make(map[time.Weekday]int)
	low := 0

	for i, s := range sessions {
		if scores[i] >= lowProductivityScore {
			continue
		}
		low++
		contentSum += float64(s.ContentLength())
		itemSum += float64(s.WorkItemCount)
		weekdayCounts[s.Date.Weekday()]++
	}
	if low == 0 {
		return nil
	}

	avgContent := contentSum / float64(low)
	avgItems := itemSum / float64(low)
	if avgContent < 100 {
		patterns = append(patterns, fmt.Sprintf("Short standup updates (avg %.0f characters)", avgContent))
	}
	if avgItems < 1 {
		patterns = append(patterns, fmt.Sprintf("Few work item references (avg %.1f items)", avgItems))
	}

	var topDay time.Weekday
	topCount := 0
	for wd, n := range weekdayCounts {
		if n > topCount || (n == topCount && wd < topDay) {
			topDay, topCount = wd, n
		}
	}
	patterns = append(patterns, fmt.Sprintf("Most common on %s", topDay))
	return patterns
}
