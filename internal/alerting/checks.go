package alerting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/teampulse/teampulse/internal/storage"
	"github.com/teampulse/teampulse/internal/types"
)

// Threshold constants for the six checks. Sentiment thresholds are on the
// canonical 0..1 scale (0.5 is neutral); the trend-drop and decline values
// correspond to -0.2 and -0.3 on a signed -1..1 scale.
const (
	lookbackDays     = 14
	minCheckSessions = 5

	sentimentDeclineThreshold  = 0.35
	sentimentCriticalThreshold = 0.25
	sentimentTrendDrop         = 0.10

	participationThreshold     = 0.6
	participationHighThreshold = 0.4

	blockerFrequencyThreshold = 0.5
	blockerCriticalThreshold  = 0.7

	lowQualityScore         = 0.3
	lowQualityRateThreshold = 0.4

	burnoutThreshold         = 3
	burnoutCriticalThreshold = 5

	inactiveDays = 5
)

// Env carries the shared dependencies a check needs for one monitoring run.
type Env struct {
	Store storage.Storage
	Now   time.Time
}

func (e *Env) window() (start, end time.Time) {
	end = types.Day(e.Now)
	return end.AddDate(0, 0, -lookbackDays), end
}

// Check is one early-warning rule. Run returns zero or more candidate
// alerts; persistence and deduplication belong to the engine, not the check.
type Check interface {
	Type() types.AlertType
	Run(ctx context.Context, env *Env, project *types.Project) ([]*types.HealthAlert, error)
}

// allChecks returns the six checks in their canonical run order.
func allChecks() []Check {
	return []Check{
		sentimentDeclineCheck{},
		engagementDropCheck{},
		blockerIncreaseCheck{},
		productivityConcernCheck{},
		burnoutCheck{},
		communicationGapCheck{},
	}
}

// sentimentDeclineCheck fires on critically low average sentiment, or on a
// week-over-week downward trend that has not yet reached the absolute floor.
type sentimentDeclineCheck struct{}

func (sentimentDeclineCheck) Type() types.AlertType { return types.AlertSentimentDecline }

func (sentimentDeclineCheck) Run(ctx context.Context, env *Env, project *types.Project) ([]*types.HealthAlert, error) {
	start, end := env.window()
	sessions, err := env.Store.ListSessions(ctx, types.SessionFilter{
		ProjectID:        project.ID,
		Start:            start,
		End:              end,
		Status:           types.SessionCompleted,
		RequireSentiment: true,
	})
	if err != nil {
		return nil, err
	}
	if len(sessions) < minCheckSessions {
		return nil, nil
	}

	mid := start.AddDate(0, 0, 7)
	var total, olderSum, newerSum float64
	var olderN, newerN int
	for _, s := range sessions {
		total += *s.SentimentScore
		if s.Date.Before(mid) {
			olderSum += *s.SentimentScore
			olderN++
		} else {
			newerSum += *s.SentimentScore
			newerN++
		}
	}
	avg := total / float64(len(sessions))

	if avg < sentimentDeclineThreshold {
		severity := types.SeverityHigh
		if avg < sentimentCriticalThreshold {
			severity = types.SeverityCritical
		}
		trending := "stable"
		if olderN > 0 && newerN > 0 && newerSum/float64(newerN) < olderSum/float64(olderN) {
			trending = "declining"
		}
		// Confidence tracks distance from the 0.5 neutral midpoint.
		confidence := clamp01(abs(2*avg-1) * 2)

		return []*types.HealthAlert{{
			ProjectID: project.ID,
			AlertType: types.AlertSentimentDecline,
			Severity:  severity,
			Title:     fmt.Sprintf("Team Sentiment Critical: %.2f", avg),
			Description: fmt.Sprintf(
				"Team sentiment has dropped to %.2f, indicating potential morale issues requiring immediate attention.", avg),
			ConfidenceScore: confidence,
			ContextData: map[string]any{
				"avg_sentiment":     avg,
				"sessions_analysed": len(sessions),
				"trending":          trending,
			},
		}}, nil
	}

	if olderN > 0 && newerN > 0 {
		older := olderSum / float64(olderN)
		newer := newerSum / float64(newerN)
		if newer < older-sentimentTrendDrop {
			return []*types.HealthAlert{{
				ProjectID: project.ID,
				AlertType: types.AlertSentimentDecline,
				Severity:  types.SeverityMedium,
				Title:     "Team Sentiment Declining Trend",
				Description: fmt.Sprintf(
					"Team sentiment trending downward from %.2f to %.2f over the past week.", older, newer),
				ConfidenceScore: clamp01((older - newer) * 6),
				ContextData: map[string]any{
					"older_sentiment": older,
					"newer_sentiment": newer,
					"trend_magnitude": older - newer,
				},
			}}, nil
		}
	}
	return nil, nil
}

// engagementDropCheck fires when completed sessions fall below 60% of the
// team-size-weighted two-week expectation.
type engagementDropCheck struct{}

func (engagementDropCheck) Type() types.AlertType { return types.AlertEngagementDrop }

func (engagementDropCheck) Run(ctx context.Context, env *Env, project *types.Project) ([]*types.HealthAlert, error) {
	members, err := env.Store.ListTeamMembers(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	start, end := env.window()
	sessions, err := env.Store.ListSessions(ctx, types.SessionFilter{
		ProjectID: project.ID,
		Start:     start,
		End:       end,
		Status:    types.SessionCompleted,
	})
	if err != nil {
		return nil, err
	}

	expected := len(members) * lookbackDays
	rate := float64(len(sessions)) / float64(max(expected, 1))
	if rate >= participationThreshold {
		return nil, nil
	}

	severity := types.SeverityMedium
	if rate < participationHighThreshold {
		severity = types.SeverityHigh
	}

	return []*types.HealthAlert{{
		ProjectID: project.ID,
		AlertType: types.AlertEngagementDrop,
		Severity:  severity,
		Title:     fmt.Sprintf("Low Team Participation: %.1f%%", rate*100),
		Description: fmt.Sprintf(
			"Team participation rate has dropped to %.1f%% (%d/%d sessions). Team may be disengaging from standup process.",
			rate*100, len(sessions), expected),
		ConfidenceScore: clamp01(1 - rate),
		ContextData: map[string]any{
			"participation_rate": rate,
			"actual_sessions":    len(sessions),
			"expected_sessions":  expected,
			"team_size":          len(members),
		},
	}}, nil
}

// blockerIncreaseCheck fires when over half of recent sessions report
// blockers.
type blockerIncreaseCheck struct{}

func (blockerIncreaseCheck) Type() types.AlertType { return types.AlertBlockerIncrease }

func (blockerIncreaseCheck) Run(ctx context.Context, env *Env, project *types.Project) ([]*types.HealthAlert, error) {
	start, end := env.window()
	sessions, err := env.Store.ListSessions(ctx, types.SessionFilter{
		ProjectID: project.ID,
		Start:     start,
		End:       end,
		Status:    types.SessionCompleted,
	})
	if err != nil {
		return nil, err
	}
	if len(sessions) < minCheckSessions {
		return nil, nil
	}

	var blockerSessions []*types.StandupSession
	for _, s := range sessions {
		if s.HasBlockers() {
			blockerSessions = append(blockerSessions, s)
		}
	}
	frequency := float64(len(blockerSessions)) / float64(len(sessions))
	if frequency <= blockerFrequencyThreshold {
		return nil, nil
	}

	severity := types.SeverityHigh
	if frequency > blockerCriticalThreshold {
		severity = types.SeverityCritical
	}
	themes := blockerThemes(blockerSessions)
	topThemes := themes
	if len(topThemes) > 3 {
		topThemes = topThemes[:3]
	}

	return []*types.HealthAlert{{
		ProjectID: project.ID,
		AlertType: types.AlertBlockerIncrease,
		Severity:  severity,
		Title:     fmt.Sprintf("High Blocker Frequency: %.1f%%", frequency*100),
		Description: fmt.Sprintf(
			"Team experiencing blockers in %.1f%% of standups. Common themes: %s",
			frequency*100, strings.Join(topThemes, ", ")),
		ConfidenceScore: clamp01(frequency * 1.5),
		ContextData: map[string]any{
			"blocker_frequency": frequency,
			"blocker_sessions":  len(blockerSessions),
			"total_sessions":    len(sessions),
			"common_themes":     themes,
		},
	}}, nil
}

// productivityConcernCheck fires when more than 40% of recent sessions score
// below the content-quality floor.
type productivityConcernCheck struct{}

func (productivityConcernCheck) Type() types.AlertType { return types.AlertProductivityConcern }

func (productivityConcernCheck) Run(ctx context.Context, env *Env, project *types.Project) ([]*types.HealthAlert, error) {
	start, end := env.window()
	sessions, err := env.Store.ListSessions(ctx, types.SessionFilter{
		ProjectID: project.ID,
		Start:     start,
		End:       end,
		Status:    types.SessionCompleted,
	})
	if err != nil {
		return nil, err
	}
	if len(sessions) < minCheckSessions {
		return nil, nil
	}

	lowQuality := 0
	for _, s := range sessions {
		if contentQuality(s) < lowQualityScore {
			lowQuality++
		}
	}
	rate := float64(lowQuality) / float64(len(sessions))
	if rate <= lowQualityRateThreshold {
		return nil, nil
	}

	return []*types.HealthAlert{{
		ProjectID: project.ID,
		AlertType: types.AlertProductivityConcern,
		Severity:  types.SeverityMedium,
		Title:     fmt.Sprintf("Content Quality Concern: %.1f%% Low-Quality Updates", rate*100),
		Description: "High rate of low-quality standup updates detected, potentially indicating " +
			"productivity issues or lack of meaningful work progress.",
		ConfidenceScore: clamp01(rate),
		ContextData: map[string]any{
			"low_content_rate":     rate,
			"low_content_sessions": lowQuality,
			"total_sessions":       len(sessions),
		},
	}}, nil
}

// burnoutCheck evaluates every active member independently and fires one
// alert per member crossing the burnout threshold.
type burnoutCheck struct{}

func (burnoutCheck) Type() types.AlertType { return types.AlertTeamMemberBurnout }

func (burnoutCheck) Run(ctx context.Context, env *Env, project *types.Project) ([]*types.HealthAlert, error) {
	members, err := env.Store.ListTeamMembers(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	start, end := env.window()
	var alerts []*types.HealthAlert
	for _, member := range members {
		sessions, err := env.Store.ListSessions(ctx, types.SessionFilter{
			ProjectID: project.ID,
			MemberID:  member.ID,
			Start:     start,
			End:       end,
			Status:    types.SessionCompleted,
		})
		if err != nil {
			return nil, err
		}

		score := burnoutScore(sessions, lookbackDays)
		if score < burnoutThreshold {
			continue
		}

		severity := types.SeverityHigh
		if score >= burnoutCriticalThreshold {
			severity = types.SeverityCritical
		}
		memberID := member.ID
		alerts = append(alerts, &types.HealthAlert{
			ProjectID: project.ID,
			MemberID:  &memberID,
			AlertType: types.AlertTeamMemberBurnout,
			Severity:  severity,
			Title:     fmt.Sprintf("Burnout Risk: %s", member.Username),
			Description: fmt.Sprintf(
				"Team member showing multiple burnout indicators (score: %d). Requires immediate management attention.", score),
			ConfidenceScore: clamp01(float64(score) / 5),
			ContextData: map[string]any{
				"burnout_score":   score,
				"member_id":       member.ID,
				"member_username": member.Username,
			},
		})
	}
	return alerts, nil
}

// communicationGapCheck fires when any active member has not completed a
// standup in the last 5 days.
type communicationGapCheck struct{}

func (communicationGapCheck) Type() types.AlertType { return types.AlertCommunicationGap }

func (communicationGapCheck) Run(ctx context.Context, env *Env, project *types.Project) ([]*types.HealthAlert, error) {
	members, err := env.Store.ListTeamMembers(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	threshold := types.Day(env.Now).AddDate(0, 0, -inactiveDays)
	var inactive []string
	for _, member := range members {
		last, ok, err := env.Store.LastCompletedSessionDate(ctx, project.ID, member.ID)
		if err != nil {
			return nil, err
		}
		if !ok || last.Before(threshold) {
			inactive = append(inactive, member.Username)
		}
	}
	if len(inactive) == 0 {
		return nil, nil
	}

	severity := types.SeverityMedium
	if float64(len(inactive)) > float64(len(members))*0.3 {
		severity = types.SeverityHigh
	}

	return []*types.HealthAlert{{
		ProjectID: project.ID,
		AlertType: types.AlertCommunicationGap,
		Severity:  severity,
		Title:     fmt.Sprintf("Communication Gap: %d Inactive Members", len(inactive)),
		Description: fmt.Sprintf(
			"%d team members haven't submitted standups in %d+ days: %s",
			len(inactive), inactiveDays, strings.Join(inactive, ", ")),
		ConfidenceScore: clamp01(float64(len(inactive)) / float64(max(len(members), 1))),
		ContextData: map[string]any{
			"inactive_members": inactive,
			"inactive_count":   len(inactive),
			"team_size":        len(members),
		},
	}}, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
