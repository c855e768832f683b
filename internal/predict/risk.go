package predict

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/teampulse/teampulse/internal/types"
)

const (
	riskWindowDays = 14

	negativeSentimentThreshold = 0.4
	minimalContentChars        = 50

	// maxSessionsPerUser is the per-member session ceiling assumed for the
	// two-week participation rate.
	maxSessionsPerUser = 10.0
)

// stressWords flag blocker text that reads as pressure, not just friction.
var stressWords = []string{"urgent", "critical", "stuck", "blocked", "frustrated", "overwhelmed"}

// RiskScore is one risk dimension's outcome. Score is in [0,1].
type RiskScore struct {
	Score float64 `json:"score"`
	// Trend is the qualitative label: concerning, moderate, or good. Empty
	// when the dimension had no data.
	Trend string `json:"trend,omitempty"`
	// Reason is set when the dimension lacked data and fell back to the
	// neutral 0.5 score.
	Reason  string             `json:"reason,omitempty"`
	Details map[string]float64 `json:"details,omitempty"`
}

// RiskAssessment rolls five independent risk dimensions into an overall
// score and level.
type RiskAssessment struct {
	OverallScore float64 `json:"overall_risk_score"`
	Level        string  `json:"risk_level"`

	Sentiment     RiskScore `json:"sentiment_risk"`
	Productivity  RiskScore `json:"productivity_risk"`
	Communication RiskScore `json:"communication_risk"`
	Workload      RiskScore `json:"workload_risk"`
	Consistency   RiskScore `json:"consistency_risk"`

	// RiskFactors names the dimensions scoring above 0.5.
	RiskFactors []string `json:"risk_factors,omitempty"`

	AssessedAt time.Time `json:"assessment_date"`
}

// assessRisks scores the five risk dimensions over the last two weeks of
// sessions. Dimensions without data report a neutral 0.5 and are excluded
// from the overall mean.
func assessRisks(sessions []*types.StandupSession, now time.Time) *RiskAssessment {
	recent := recentSessions(sessions, now, riskWindowDays)

	a := &RiskAssessment{
		Sentiment:     sentimentRisk(recent),
		Productivity:  productivityRisk(recent),
		Communication: communicationRisk(recent),
		Workload:      workloadRisk(recent),
		Consistency:   consistencyRisk(recent),
		AssessedAt:    now,
	}

	named := map[string]RiskScore{
		"sentiment risk":     a.Sentiment,
		"productivity risk":  a.Productivity,
		"communication risk": a.Communication,
		"workload risk":      a.Workload,
		"consistency risk":   a.Consistency,
	}

	var sum float64
	var n int
	for _, r := range named {
		if r.Reason != "" {
			continue
		}
		sum += r.Score
		n++
	}
	if n > 0 {
		a.OverallScore = round2(sum / float64(n))
	}

	switch {
	case a.OverallScore > 0.7:
		a.Level = "high"
	case a.OverallScore > 0.4:
		a.Level = "medium"
	default:
		a.Level = "low"
	}

	for name, r := range named {
		if r.Score > 0.5 {
			a.RiskFactors = append(a.RiskFactors, fmt.Sprintf("High %s: %s", name, r.Trend))
		}
	}
	sort.Strings(a.RiskFactors)

	return a
}

// sentimentRisk rises with low average sentiment and a high share of
// negative sessions.
func sentimentRisk(sessions []*types.StandupSession) RiskScore {
	var scores []float64
	for _, s := range sessions {
		if s.SentimentScore != nil {
			scores = append(scores, *s.SentimentScore)
		}
	}
	if len(scores) == 0 {
		return RiskScore{Score: 0.5, Reason: "no sentiment data available"}
	}

	var sum float64
	negative := 0
	for _, v := range scores {
		sum += v
		if v < negativeSentimentThreshold {
			negative++
		}
	}
	avg := sum / float64(len(scores))
	negativeRatio := float64(negative) / float64(len(scores))
	score := clamp01((1 - avg) + negativeRatio)

	return RiskScore{
		Score: round3(score),
		Trend: riskTrend(score, 0.6, 0.3),
		Details: map[string]float64{
			"average_sentiment":       round3(avg),
			"negative_sessions_ratio": round3(negativeRatio),
		},
	}
}

// productivityRisk rises with thin update content and sessions referencing
// no work items.
func productivityRisk(sessions []*types.StandupSession) RiskScore {
	if len(sessions) == 0 {
		return RiskScore{Score: 0.5, Reason: "no session data available"}
	}

	minimal, noItems := 0, 0
	for _, s := range sessions {
		if len(s.YesterdayWork)+len(s.TodayPlan) < minimalContentChars {
			minimal++
		}
		if s.WorkItemCount == 0 {
			noItems++
		}
	}
	minimalRatio := float64(minimal) / float64(len(sessions))
	noItemsRatio := float64(noItems) / float64(len(sessions))
	score := (minimalRatio + noItemsRatio) / 2

	return RiskScore{
		Score: round3(score),
		Trend: riskTrend(score, 0.6, 0.3),
		Details: map[string]float64{
			"minimal_content_ratio": round3(minimalRatio),
			"no_work_items_ratio":   round3(noItemsRatio),
		},
	}
}

// communicationRisk rises when members average few sessions against the
// two-week workday ceiling.
func communicationRisk(sessions []*types.StandupSession) RiskScore {
	if len(sessions) == 0 {
		return RiskScore{Score: 0.5, Reason: "insufficient data"}
	}

	perUser := make(map[int64]int)
	for _, s := range sessions {
		perUser[s.MemberID]++
	}
	avgPerUser := float64(len(sessions)) / float64(len(perUser))
	participationRate := avgPerUser / maxSessionsPerUser
	score := clamp01(1 - participationRate)

	return RiskScore{
		Score: round3(score),
		Trend: riskTrend(score, 0.6, 0.3),
		Details: map[string]float64{
			"participation_rate":    round3(participationRate),
			"unique_contributors":   float64(len(perUser)),
			"avg_sessions_per_user": round3(avgPerUser),
		},
	}
}

// workloadRisk rises with blocker frequency and stress language in blocker
// text.
func workloadRisk(sessions []*types.StandupSession) RiskScore {
	if len(sessions) == 0 {
		return RiskScore{Score: 0.5, Reason: "no session data"}
	}

	blocked, stressed := 0, 0
	for _, s := range sessions {
		if !s.HasBlockers() {
			continue
		}
		blocked++
		text := strings.ToLower(s.Blockers)
		for _, w := range stressWords {
			if strings.Contains(text, w) {
				stressed++
				break
			}
		}
	}
	blockerRatio := float64(blocked) / float64(len(sessions))
	stressRatio := float64(stressed) / float64(len(sessions))
	score := clamp01(blockerRatio + stressRatio)

	return RiskScore{
		Score: round3(score),
		Trend: riskTrend(score, 0.5, 0.25),
		Details: map[string]float64{
			"blocker_frequency": round3(blockerRatio),
			"stress_indicators": float64(stressed),
			"stress_ratio":      round3(stressRatio),
		},
	}
}

// consistencyRisk rises when submitted sessions fall short of the expected
// workdays across the observed span. Weekends are excluded from the
// expectation.
func consistencyRisk(sessions []*types.StandupSession) RiskScore {
	if len(sessions) < 2 {
		return RiskScore{Score: 0.5, Reason: "insufficient date range"}
	}

	first := sessions[0].Date
	last := sessions[len(sessions)-1].Date

	workdays := 0
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			workdays++
		}
	}
	if workdays == 0 {
		workdays = 1
	}

	consistencyRatio := float64(len(sessions)) / float64(workdays)
	score := clamp01(1 - consistencyRatio)

	return RiskScore{
		Score: round3(score),
		Trend: riskTrend(score, 0.4, 0.2),
		Details: map[string]float64{
			"consistency_ratio":  round3(consistencyRatio),
			"sessions_submitted": float64(len(sessions)),
			"expected_workdays":  float64(workdays),
		},
	}
}

func riskTrend(score, concerning, moderate float64) string {
	switch {
	case score > concerning:
		return "concerning"
	case score > moderate:
		return "moderate"
	default:
		return "good"
	}
}
