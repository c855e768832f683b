package predict

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teampulse/teampulse/internal/clock"
	"github.com/teampulse/teampulse/internal/storage/sqlite"
	"github.com/teampulse/teampulse/internal/types"
)

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
}

func fp(v float64) *float64 { return &v }

func session(d time.Time, opts ...func(*types.StandupSession)) *types.StandupSession {
	s := &types.StandupSession{
		MemberID: 1,
		Date:     d,
		Status:   types.SessionCompleted,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func withSentiment(v float64) func(*types.StandupSession) {
	return func(s *types.StandupSession) { s.SentimentScore = fp(v) }
}

func withBlockers(text string) func(*types.StandupSession) {
	return func(s *types.StandupSession) { s.Blockers = text }
}

func withMember(id int64) func(*types.StandupSession) {
	return func(s *types.StandupSession) { s.MemberID = id }
}

func withItems(n int) func(*types.StandupSession) {
	return func(s *types.StandupSession) { s.WorkItemCount = n }
}

func TestTrendSlopeLinearSeries(t *testing.T) {
	for _, tc := range []struct{ a, d float64 }{
		{0, 1}, {10, -2}, {0.3, 0.05}, {5, 0},
	} {
		series := make([]float64, 10)
		for i := range series {
			series[i] = tc.a + tc.d*float64(i)
		}
		assert.InDelta(t, tc.d, trendSlope(series), 1e-9, "a=%v d=%v", tc.a, tc.d)
	}
}

func TestTrendSlopeDegenerate(t *testing.T) {
	assert.Zero(t, trendSlope(nil))
	assert.Zero(t, trendSlope([]float64{5}))
}

func TestVolatility(t *testing.T) {
	assert.Zero(t, volatility([]float64{3}))
	assert.InDelta(t, 0.0, volatility([]float64{4, 4, 4}), 1e-9)
	// Population stddev of {2,4}: mean 3, variance 1.
	assert.InDelta(t, 1.0, volatility([]float64{2, 4}), 1e-9)
}

func TestWeekStartIsMonday(t *testing.T) {
	// 2026-03-02 is a Monday.
	monday := day(2)
	for i := 0; i < 7; i++ {
		assert.Equal(t, monday, weekStart(monday.AddDate(0, 0, i)), "offset %d", i)
	}
}

func TestPredictSentimentImproving(t *testing.T) {
	// Linearly increasing daily sentiment over 8 days.
	var sessions []*types.StandupSession
	for i := 0; i < 8; i++ {
		sessions = append(sessions, session(day(1+i), withSentiment(0.2+0.05*float64(i))))
	}

	p := predictSentiment(sessions)
	require.Nil(t, p.Insufficient)
	assert.Equal(t, types.TrendImproving, p.CurrentTrend)
	assert.Equal(t, 8, p.DataPoints)
	require.Len(t, p.Forecast, 7)

	// Confidence decays 0.1 per day until it hits the 0.5 floor.
	prevConfidence := 1.1
	for _, f := range p.Forecast {
		assert.LessOrEqual(t, f.Confidence, prevConfidence)
		assert.GreaterOrEqual(t, f.Confidence, 0.5)
		assert.GreaterOrEqual(t, f.Value, 0.0)
		assert.LessOrEqual(t, f.Value, 1.0)
		prevConfidence = f.Confidence
	}
}

func TestPredictSentimentClampsForecast(t *testing.T) {
	// Steep decline: projections would go negative without the clamp.
	var sessions []*types.StandupSession
	for i := 0; i < 6; i++ {
		sessions = append(sessions, session(day(1+i), withSentiment(clamp01(0.5-0.1*float64(i)))))
	}

	p := predictSentiment(sessions)
	require.Nil(t, p.Insufficient)
	assert.Equal(t, types.TrendDeclining, p.CurrentTrend)
	for _, f := range p.Forecast {
		assert.GreaterOrEqual(t, f.Value, 0.0)
	}
}

func TestPredictSentimentInsufficient(t *testing.T) {
	sessions := []*types.StandupSession{
		session(day(1), withSentiment(0.5)),
		session(day(2), withSentiment(0.5)),
		session(day(3)), // no score
	}
	p := predictSentiment(sessions)
	require.NotNil(t, p.Insufficient)
	assert.Equal(t, 5, p.Insufficient.MinimumRequired)
	assert.Equal(t, 2, p.Insufficient.Current)
}

func TestSessionProductivityScoring(t *testing.T) {
	base := session(day(2))
	assert.Zero(t, sessionProductivity(base))

	rich := session(day(2), withItems(2))
	rich.YesterdayWork = "Paired with the team on the search rollout review meeting"
	rich.TodayPlan = "Implement retry logic, finish 3 reviews, deploy the fix"
	// 2 items (4) + content/50 + specific (2) + quantifiable (2) + collab (1)
	score := sessionProductivity(rich)
	assert.Greater(t, score, 9.0)
	assert.LessOrEqual(t, score, 10.0)
}

func TestSessionProductivityCapsAtTen(t *testing.T) {
	s := session(day(2), withItems(50))
	assert.InDelta(t, 10.0, sessionProductivity(s), 1e-9)
}

func TestPredictProductivityTrend(t *testing.T) {
	var sessions []*types.StandupSession
	for i := 0; i < 7; i++ {
		s := session(day(1+i), withItems(i))
		sessions = append(sessions, s)
	}

	p := predictProductivity(sessions)
	require.Nil(t, p.Insufficient)
	assert.Equal(t, types.TrendImproving, p.CurrentTrend)
	require.Len(t, p.Forecast, 7)
	for _, f := range p.Forecast {
		assert.GreaterOrEqual(t, f.Value, 0.0)
		assert.LessOrEqual(t, f.Value, 10.0)
		assert.GreaterOrEqual(t, f.Confidence, 0.4)
	}
	assert.NotEmpty(t, p.PeakDay)
}

func TestLowProductivityPatterns(t *testing.T) {
	var sessions []*types.StandupSession
	var scores []float64
	for i := 0; i < 4; i++ {
		s := session(day(2), withItems(0)) // all Mondays, empty content
		sessions = append(sessions, s)
		scores = append(scores, sessionProductivity(s))
	}

	patterns := lowProductivityPatterns(sessions, scores)
	require.Len(t, patterns, 3)
	assert.Contains(t, patterns[0], "Short standup updates")
	assert.Contains(t, patterns[1], "Few work item references")
	assert.Contains(t, patterns[2], "Monday")
}

func TestPredictBlockers(t *testing.T) {
	// Mondays blocked, other days clear, over three weeks.
	var sessions []*types.StandupSession
	for week := 0; week < 3; week++ {
		monday := day(2 + 7*week)
		sessions = append(sessions, session(monday, withBlockers("waiting on database access approval")))
		sessions = append(sessions, session(monday.AddDate(0, 0, 1)))
		sessions = append(sessions, session(monday.AddDate(0, 0, 2)))
	}

	p := predictBlockers(sessions, day(20))
	require.Nil(t, p.Insufficient)
	assert.Equal(t, 3, p.BlockerSessions)
	assert.InDelta(t, 1.0/3.0, p.OverallRate, 0.01)

	require.Contains(t, p.WeekdayPatterns, "Monday")
	assert.InDelta(t, 1.0, p.WeekdayPatterns["Monday"].Rate, 1e-9)
	assert.InDelta(t, 0.0, p.WeekdayPatterns["Tuesday"].Rate, 1e-9)

	require.Len(t, p.NextWeek, 7)
	for _, d := range p.NextWeek {
		if d.Weekday == "Monday" {
			assert.Equal(t, "high", d.RiskLevel)
		}
	}

	// "waiting" and "approval" mark the dependency category.
	assert.Equal(t, 3, p.Categories["dependency"])
}

func TestRecurringBlockerThemes(t *testing.T) {
	texts := []string{
		"waiting on database migration",
		"database migration still failing",
		"migration blocked with errors",
	}
	themes := recurringBlockerThemes(texts)
	require.NotEmpty(t, themes)
	assert.Equal(t, "migration", themes[0].Pattern)
	assert.Equal(t, 3, themes[0].Frequency)
	for _, th := range themes {
		assert.NotEqual(t, "with", th.Pattern)
		assert.GreaterOrEqual(t, th.Frequency, 2)
	}
	assert.LessOrEqual(t, len(themes), 5)
}

func TestPredictBlockersInsufficient(t *testing.T) {
	sessions := []*types.StandupSession{
		session(day(1), withBlockers("stuck")),
		session(day(2)),
	}
	p := predictBlockers(sessions, day(3))
	require.NotNil(t, p.Insufficient)
	assert.Equal(t, 3, p.Insufficient.MinimumRequired)
}

func TestPredictVelocity(t *testing.T) {
	// Four full weeks, two sessions each, rising work-item counts.
	var sessions []*types.StandupSession
	for week := 0; week < 4; week++ {
		monday := day(2 + 7*week)
		sessions = append(sessions,
			session(monday, withItems(week+1), withSentiment(0.8), withMember(1)),
			session(monday.AddDate(0, 0, 2), withItems(week+1), withSentiment(0.8), withMember(2)),
		)
	}

	p := predictVelocity(sessions)
	require.Nil(t, p.Insufficient)
	assert.Equal(t, 4, p.DataPoints)
	assert.Equal(t, types.TrendImproving, p.Trend)
	require.Len(t, p.Forecast, 2)
	assert.GreaterOrEqual(t, p.Forecast[0].Confidence, p.Forecast[1].Confidence)
	require.Len(t, p.RecentWeeks, 4)
	assert.Equal(t, 2, p.RecentWeeks[0].Contributors)
}

func TestPredictVelocitySkipsSparseWeeks(t *testing.T) {
	var sessions []*types.StandupSession
	for week := 0; week < 4; week++ {
		sessions = append(sessions, session(day(2+7*week), withItems(1)))
	}
	p := predictVelocity(sessions)
	require.NotNil(t, p.Insufficient)
	assert.Zero(t, p.Insufficient.Current)
}

func TestSentimentRiskHighWhenNegative(t *testing.T) {
	var sessions []*types.StandupSession
	for i := 0; i < 6; i++ {
		sessions = append(sessions, session(day(1+i), withSentiment(0.2)))
	}
	r := sentimentRisk(sessions)
	assert.Empty(t, r.Reason)
	// (1-0.2) + 1.0 clamps to 1.
	assert.InDelta(t, 1.0, r.Score, 1e-9)
	assert.Equal(t, "concerning", r.Trend)
}

func TestConsistencyRiskCountsWorkdaysOnly(t *testing.T) {
	// Sessions every workday Mon 2nd .. Fri 13th: 10 workdays, 10 sessions.
	var sessions []*types.StandupSession
	for d := 2; d <= 13; d++ {
		date := day(d)
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		sessions = append(sessions, session(date))
	}
	require.Len(t, sessions, 10)

	r := consistencyRisk(sessions)
	assert.InDelta(t, 0.0, r.Score, 1e-9)
	assert.Equal(t, "good", r.Trend)
}

func TestBurnoutRangeOverallRisk(t *testing.T) {
	// Empty input: every dimension reports the neutral fallback and the
	// overall mean has nothing to average.
	a := assessRisks(nil, day(14))
	assert.Zero(t, a.OverallScore)
	assert.Equal(t, "low", a.Level)
	assert.Equal(t, "no sentiment data available", a.Sentiment.Reason)
}

func TestAssessRisksTroubledTeam(t *testing.T) {
	var sessions []*types.StandupSession
	for i := 0; i < 10; i++ {
		sessions = append(sessions, session(day(1+i),
			withSentiment(0.15),
			withBlockers("stuck and frustrated, urgent production issue"),
			withMember(1),
		))
	}

	a := assessRisks(sessions, day(12))
	assert.Greater(t, a.OverallScore, 0.4)
	assert.NotEmpty(t, a.RiskFactors)
	assert.Equal(t, "concerning", a.Sentiment.Trend)
	assert.Equal(t, "concerning", a.Workload.Trend)
}

func TestRecommendations(t *testing.T) {
	declining := &SentimentPrediction{CurrentTrend: types.TrendDeclining, TrendSlope: -0.02}
	improvingS := &SentimentPrediction{CurrentTrend: types.TrendImproving}
	improvingP := &ProductivityPrediction{CurrentTrend: types.TrendImproving}

	recs := recommend(declining, nil, nil, nil)
	require.Len(t, recs, 1)
	assert.Equal(t, "Team Morale", recs[0].Category)
	assert.Equal(t, "high", recs[0].Priority)

	recs = recommend(improvingS, improvingP, nil, nil)
	require.Len(t, recs, 1)
	assert.Equal(t, "Positive Reinforcement", recs[0].Category)
	assert.Equal(t, "low", recs[0].Priority)

	risky := &RiskAssessment{OverallScore: 0.8}
	recs = recommend(nil, nil, nil, risky)
	require.Len(t, recs, 1)
	assert.Equal(t, "Risk Mitigation", recs[0].Category)
}

func TestGenerateInsightsInsufficientData(t *testing.T) {
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	p := &types.Project{Name: "apollo"}
	require.NoError(t, s.CreateProject(ctx, p))
	m := &types.TeamMember{ProjectID: p.ID, Username: "alice", IsActive: true}
	require.NoError(t, s.AddTeamMember(ctx, m))
	for i := 0; i < 3; i++ {
		require.NoError(t, s.CreateSession(ctx, &types.StandupSession{
			ProjectID: p.ID, MemberID: m.ID, Date: day(1 + i), Status: types.SessionCompleted,
		}))
	}

	insights, err := NewEngine(s, clock.At(day(14))).GenerateInsights(ctx, p.ID, 60)
	require.NoError(t, err)
	require.NotNil(t, insights.Insufficient)
	assert.Equal(t, MinSessions, insights.Insufficient.MinimumRequired)
	assert.Equal(t, 3, insights.Insufficient.Current)
	assert.Nil(t, insights.Sentiment)
}

func TestGenerateInsightsEndToEnd(t *testing.T) {
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	p := &types.Project{Name: "apollo"}
	require.NoError(t, s.CreateProject(ctx, p))
	members := make([]*types.TeamMember, 2)
	for i := range members {
		m := &types.TeamMember{ProjectID: p.ID, Username: fmt.Sprintf("dev%d", i), IsActive: true}
		require.NoError(t, s.AddTeamMember(ctx, m))
		members[i] = m
	}

	// Three weeks of data for both members with rising sentiment and a
	// recurring Monday blocker.
	for week := 0; week < 3; week++ {
		for offset := 0; offset < 5; offset++ {
			date := day(2 + 7*week + offset)
			for _, m := range members {
				sess := &types.StandupSession{
					ProjectID:      p.ID,
					MemberID:       m.ID,
					Date:           date,
					Status:         types.SessionCompleted,
					YesterdayWork:  "Worked with the team on the ingestion pipeline refactor",
					TodayPlan:      "Implement and test the next migration step, finish 2 reviews",
					SentimentScore: fp(clamp01(0.4 + 0.02*float64(week*5+offset))),
				}
				if offset == 0 {
					sess.Blockers = "waiting on staging database access"
				}
				require.NoError(t, s.CreateSession(ctx, sess))
				require.NoError(t, s.AddWorkItem(ctx, &types.WorkItemReference{
					SessionID: sess.ID,
					ItemType:  types.WorkItemGitHubPR,
					ItemID:    fmt.Sprintf("%d-%d-%d", week, offset, m.ID),
					Status:    types.WorkItemCompleted,
				}))
			}
		}
	}

	insights, err := NewEngine(s, clock.At(day(21))).GenerateInsights(ctx, p.ID, 60)
	require.NoError(t, err)
	require.Nil(t, insights.Insufficient)

	require.NotNil(t, insights.Sentiment)
	assert.Nil(t, insights.Sentiment.Insufficient)
	assert.Equal(t, types.TrendImproving, insights.Sentiment.CurrentTrend)

	require.NotNil(t, insights.Productivity)
	assert.Nil(t, insights.Productivity.Insufficient)

	require.NotNil(t, insights.Blockers)
	assert.Nil(t, insights.Blockers.Insufficient)
	assert.InDelta(t, 0.2, insights.Blockers.OverallRate, 0.01)

	require.NotNil(t, insights.Velocity)
	assert.Nil(t, insights.Velocity.Insufficient)

	require.NotNil(t, insights.Risk)
	for model, confidence := range insights.Confidence {
		assert.GreaterOrEqual(t, confidence, 0.0, model)
		assert.LessOrEqual(t, confidence, 1.0, model)
	}
	assert.Greater(t, insights.Confidence["sentiment"], 0.0)
}
