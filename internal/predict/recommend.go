package predict

import (
	"fmt"
	"strings"

	"github.com/teampulse/teampulse/internal/types"
)

// Recommendation is one rule-based, actionable suggestion derived from the
// predictive models.
type Recommendation struct {
	Category       string `json:"category"`
	Priority       string `json:"priority"`
	Action         string `json:"recommendation"`
	Rationale      string `json:"rationale"`
	ExpectedImpact string `json:"expected_impact"`
	Timeline       string `json:"timeline"`
}

// recommend derives suggestions from the model outputs. The rules are
// deliberately few and legible; this is a nudge list, not a planner.
func recommend(sentiment *SentimentPrediction, productivity *ProductivityPrediction, blockers *BlockerPrediction, risk *RiskAssessment) []Recommendation {
	var recs []Recommendation

	if sentiment != nil && sentiment.CurrentTrend == types.TrendDeclining {
		recs = append(recs, Recommendation{
			Category:       "Team Morale",
			Priority:       "high",
			Action:         "Schedule team building activities or a retrospective to address declining sentiment",
			Rationale:      fmt.Sprintf("Sentiment trend is declining with slope %.4f", sentiment.TrendSlope),
			ExpectedImpact: "Improve team morale and communication",
			Timeline:       "1-2 weeks",
		})
	}

	if productivity != nil && productivity.CurrentTrend == types.TrendDeclining {
		recs = append(recs, Recommendation{
			Category:       "Productivity",
			Priority:       "medium",
			Action:         "Review current processes and identify bottlenecks in team workflow",
			Rationale:      fmt.Sprintf("Productivity trend is declining with baseline comparison %.2f", productivity.BaselineComparison),
			ExpectedImpact: "Restore productivity levels and improve efficiency",
			Timeline:       "2-3 weeks",
		})
	}

	if blockers != nil && blockers.OverallRate > 0.3 {
		var highRiskDays []string
		for _, day := range blockers.NextWeek {
			if day.RiskLevel == "high" {
				highRiskDays = append(highRiskDays, day.Weekday)
			}
		}
		if len(highRiskDays) > 0 {
			recs = append(recs, Recommendation{
				Category:       "Blocker Prevention",
				Priority:       "high",
				Action:         fmt.Sprintf("Proactive planning for %s - high blocker risk days", strings.Join(highRiskDays, ", ")),
				Rationale:      fmt.Sprintf("Historical data shows %.1f%% blocker rate", blockers.OverallRate*100),
				ExpectedImpact: "Reduce blocker frequency and team frustration",
				Timeline:       "Immediate",
			})
		}
	}

	if risk != nil && risk.OverallScore > 0.6 {
		recs = append(recs, Recommendation{
			Category:       "Risk Mitigation",
			Priority:       "high",
			Action:         "Implement immediate team health interventions and increase check-in frequency",
			Rationale:      fmt.Sprintf("Overall risk score is %.2f indicating high team health risk", risk.OverallScore),
			ExpectedImpact: "Prevent team burnout and maintain productivity",
			Timeline:       "Immediate",
		})
	}

	if sentiment != nil && productivity != nil &&
		sentiment.CurrentTrend == types.TrendImproving && productivity.CurrentTrend == types.TrendImproving {
		recs = append(recs, Recommendation{
			Category:       "Positive Reinforcement",
			Priority:       "low",
			Action:         "Recognize and celebrate the team's positive momentum in upcoming meetings",
			Rationale:      "Both sentiment and productivity trends are improving",
			ExpectedImpact: "Maintain positive team dynamics and motivation",
			Timeline:       "Next team meeting",
		})
	}

	return recs
}
