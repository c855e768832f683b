package predict

import (
	"github.com/teampulse/teampulse/internal/types"
)

// confidenceScores computes per-model confidence in [0,1]. The base term
// rewards sample size (30 sessions saturates it) and penalizes stale spans
// (spans past 30 days dilute it); each model then scales by its own
// data-sufficiency factor. Models that reported insufficient data score 0.
func confidenceScores(sessions []*types.StandupSession, insights *Insights) map[string]float64 {
	spanDays := 1
	if len(sessions) > 1 {
		first := sessions[0].Date
		last := sessions[len(sessions)-1].Date
		spanDays = int(last.Sub(first).Hours()) / 24
		if spanDays < 1 {
			spanDays = 1
		}
	}

	base := clamp01(float64(len(sessions))/30) * clamp01(30/float64(spanDays))

	scores := make(map[string]float64, 4)

	if s := insights.Sentiment; s != nil {
		if s.Insufficient != nil {
			scores["sentiment"] = 0
		} else {
			scores["sentiment"] = round3(base * clamp01(float64(s.DataPoints)/20))
		}
	}
	if p := insights.Productivity; p != nil {
		if p.Insufficient != nil {
			scores["productivity"] = 0
		} else {
			scores["productivity"] = round3(base * clamp01(float64(p.DataPoints)/15))
		}
	}
	if b := insights.Blockers; b != nil {
		if b.Insufficient != nil {
			scores["blockers"] = 0
		} else {
			scores["blockers"] = round3(base * clamp01(float64(b.BlockerSessions)/10))
		}
	}
	if v := insights.Velocity; v != nil {
		if v.Insufficient != nil {
			scores["velocity"] = 0
		} else {
			scores["velocity"] = round3(base * clamp01(float64(v.DataPoints)/8))
		}
	}

	return scores
}
