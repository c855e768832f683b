package metrics

import "github.com/teampulse/teampulse/internal/types"

// Composite weights for the overall health score. They sum to 1.0 and are
// applied to the 0-100 display value of each metric.
var compositeWeights = map[types.MetricType]float64{
	types.MetricParticipation: 0.30,
	types.MetricSentiment:     0.25,
	types.MetricBlockers:      0.25,
	types.MetricWorkItems:     0.20,
}

// Overall is the composite health score for one window.
type Overall struct {
	Score    float64 `json:"score"`
	Status   Status  `json:"status"`
	MaxScore float64 `json:"max_score"`
}

// StatusExcellent is the top composite band; individual metrics never reach
// it, only the weighted overall score does.
const StatusExcellent Status = "excellent"

// CompositeScore combines metric results into the weighted overall score. A
// missing or no-data metric contributes zero at full weight; the remaining
// weights are not renormalized, so absent data drags the score down rather
// than hiding.
func CompositeScore(results map[types.MetricType]Result) Overall {
	var score float64
	for metric, weight := range compositeWeights {
		r, ok := results[metric]
		if !ok || r.Status == StatusNoData {
			continue
		}
		score += r.Value * weight
	}

	var status Status
	switch {
	case score >= 80:
		status = StatusExcellent
	case score >= 70:
		status = StatusGood
	case score < 50:
		status = StatusConcerning
	default:
		status = StatusAverage
	}

	return Overall{Score: round1(score), Status: status, MaxScore: 100}
}
