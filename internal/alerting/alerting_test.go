package alerting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teampulse/teampulse/internal/clock"
	"github.com/teampulse/teampulse/internal/storage/sqlite"
	"github.com/teampulse/teampulse/internal/types"
)

func newTestStore(t *testing.T) *sqlite.SQLiteStorage {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedProject(t *testing.T, s *sqlite.SQLiteStorage, name string) *types.Project {
	t.Helper()
	p := &types.Project{Name: name}
	require.NoError(t, s.CreateProject(context.Background(), p))
	return p
}

func seedMember(t *testing.T, s *sqlite.SQLiteStorage, projectID int64, username string, role types.Role) *types.TeamMember {
	t.Helper()
	m := &types.TeamMember{
		ProjectID: projectID,
		Username:  username,
		Email:     username + "@example.com",
		Role:      role,
		IsActive:  true,
	}
	require.NoError(t, s.AddTeamMember(context.Background(), m))
	return m
}

type sessionOpt func(*types.StandupSession)

func withSentiment(score float64) sessionOpt {
	return func(s *types.StandupSession) { s.SentimentScore = &score }
}

func withBlockers(text string) sessionOpt {
	return func(s *types.StandupSession) { s.Blockers = text }
}

func withContent(yesterday, today string) sessionOpt {
	return func(s *types.StandupSession) {
		s.YesterdayWork = yesterday
		s.TodayPlan = today
	}
}

func seedSession(t *testing.T, s *sqlite.SQLiteStorage, projectID, memberID int64, day time.Time, opts ...sessionOpt) {
	t.Helper()
	sess := &types.StandupSession{
		ProjectID:     projectID,
		MemberID:      memberID,
		Date:          day,
		Status:        types.SessionCompleted,
		YesterdayWork: "Finished the payment service refactor and closed the review ticket",
		TodayPlan:     "Implement the retry logic for the webhook dispatcher",
	}
	for _, opt := range opts {
		opt(sess)
	}
	require.NoError(t, s.CreateSession(context.Background(), sess))
}

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
}

// testNow is a Friday; seeded sessions sit inside its 14-day lookback.
var testNow = time.Date(2026, time.March, 20, 12, 0, 0, 0, time.UTC)

func alertOfType(results []AlertResult, at types.AlertType) (AlertResult, bool) {
	for _, r := range results {
		if r.Type == at {
			return r, true
		}
	}
	return AlertResult{}, false
}

func TestContentQualityScoring(t *testing.T) {
	tests := []struct {
		name      string
		yesterday string
		today     string
		want      float64
	}{
		{"empty", "", "", 0},
		{"short fragments", "stuff", "things", 0},
		{"substantial without keywords", "Worked on several long-running analysis tasks", "Continue the same analysis work as before", 0.8},
		{"substantial with keyword", "Finished the login bug investigation yesterday", "Deploy the fix and review the test results", 1.0},
		{"keyword only", "fix", "", 0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &types.StandupSession{YesterdayWork: tt.yesterday, TodayPlan: tt.today}
			assert.InDelta(t, tt.want, contentQuality(s), 1e-9)
		})
	}
}

func TestBurnoutScoreIndicators(t *testing.T) {
	low := 0.2
	var sessions []*types.StandupSession
	for i := 0; i < 5; i++ {
		sessions = append(sessions, &types.StandupSession{
			SentimentScore: &low,
			Blockers:       "stuck again",
			YesterdayWork:  "x",
			TodayPlan:      "y",
		})
	}

	// Low sentiment (+2), high blocker rate (+1), low quality (+1),
	// 5 sessions in a 14-day window (+1).
	assert.Equal(t, 5, burnoutScore(sessions, 14))

	assert.Equal(t, 0, burnoutScore(nil, 14))

	happy := 0.9
	var healthy []*types.StandupSession
	for i := 0; i < 12; i++ {
		healthy = append(healthy, &types.StandupSession{
			SentimentScore: &happy,
			YesterdayWork:  "Completed the ingestion pipeline review and fixed two bugs",
			TodayPlan:      "Implement the new export endpoint and write tests",
		})
	}
	assert.Equal(t, 0, burnoutScore(healthy, 14))
}

func TestBlockerThemesExtraction(t *testing.T) {
	sessions := []*types.StandupSession{
		{Blockers: "waiting on database migration"},
		{Blockers: "database migration still pending"},
		{Blockers: "flaky deployment pipeline"},
		{Blockers: "deployment blocked on approvals"},
	}

	themes := blockerThemes(sessions)
	assert.Equal(t, []string{"database", "deployment", "migration"}, themes)
}

func TestBlockerThemesSkipsStopwordsAndSingletons(t *testing.T) {
	sessions := []*types.StandupSession{
		{Blockers: "still still still waiting"},
		{Blockers: "waiting with that"},
	}

	// "still" and "that" are stopwords; "waiting" appears in two sessions.
	assert.Equal(t, []string{"waiting"}, blockerThemes(sessions))
}

func TestSentimentDeclineEndToEnd(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := seedProject(t, s, "apollo")
	m := seedMember(t, s, p.ID, "alice", types.RoleDeveloper)
	for d := 10; d <= 18; d++ {
		seedSession(t, s, p.ID, m.ID, day(d), withSentiment(0.2))
	}

	engine := NewEngine(s, clock.At(testNow), nil)
	result, err := engine.RunProject(ctx, p.ID)
	require.NoError(t, err)

	require.Len(t, result.Alerts, 1)
	alert := result.Alerts[0]
	assert.Equal(t, OutcomeCreated, alert.Outcome)
	assert.Equal(t, types.AlertSentimentDecline, alert.Type)
	assert.Equal(t, types.SeverityCritical, alert.Severity)
	assert.InDelta(t, 1.0, alert.Confidence, 1e-9)
	assert.NotEmpty(t, alert.ID)

	assert.Equal(t, 1, result.TeamStatus.TeamSize)
	assert.Equal(t, 9, result.TeamStatus.RecentSessions)
	require.NotNil(t, result.TeamStatus.AvgSentiment)
	assert.InDelta(t, 0.2, *result.TeamStatus.AvgSentiment, 1e-9)
	assert.Equal(t, 1, result.TeamStatus.ActiveAlerts)

	// A second run inside the dedup window reports a duplicate, not a new alert.
	again, err := engine.RunProject(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, again.Alerts, 1)
	assert.Equal(t, OutcomeDuplicate, again.Alerts[0].Outcome)
	assert.Equal(t, alert.ID, again.Alerts[0].ID)
	assert.Equal(t, 1, again.TeamStatus.ActiveAlerts)
}

func TestEngagementDropAlert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := seedProject(t, s, "apollo")
	m := seedMember(t, s, p.ID, "alice", types.RoleDeveloper)
	seedSession(t, s, p.ID, m.ID, day(17))
	seedSession(t, s, p.ID, m.ID, day(18))

	engine := NewEngine(s, clock.At(testNow), nil)
	result, err := engine.RunProject(ctx, p.ID)
	require.NoError(t, err)

	alert, ok := alertOfType(result.Alerts, types.AlertEngagementDrop)
	require.True(t, ok)
	assert.Equal(t, types.SeverityHigh, alert.Severity)
	assert.InDelta(t, 2.0/14.0, result.TeamStatus.ParticipationRate, 1e-9)
}

func TestBlockerIncreaseAlert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := seedProject(t, s, "apollo")
	m := seedMember(t, s, p.ID, "alice", types.RoleDeveloper)
	for d := 13; d <= 16; d++ {
		seedSession(t, s, p.ID, m.ID, day(d), withBlockers("database migration blocked"))
	}
	seedSession(t, s, p.ID, m.ID, day(17))
	seedSession(t, s, p.ID, m.ID, day(18))

	engine := NewEngine(s, clock.At(testNow), nil)
	result, err := engine.RunProject(ctx, p.ID)
	require.NoError(t, err)

	alert, ok := alertOfType(result.Alerts, types.AlertBlockerIncrease)
	require.True(t, ok)
	assert.Equal(t, types.SeverityHigh, alert.Severity)
	assert.Contains(t, alert.Description, "database")
	assert.InDelta(t, 1.0, alert.Confidence, 1e-9)
}

func TestProductivityConcernAlert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := seedProject(t, s, "apollo")
	m := seedMember(t, s, p.ID, "alice", types.RoleDeveloper)
	for d := 12; d <= 18; d++ {
		seedSession(t, s, p.ID, m.ID, day(d), withContent("stuff", "more stuff"))
	}

	engine := NewEngine(s, clock.At(testNow), nil)
	result, err := engine.RunProject(ctx, p.ID)
	require.NoError(t, err)

	alert, ok := alertOfType(result.Alerts, types.AlertProductivityConcern)
	require.True(t, ok)
	assert.Equal(t, types.SeverityMedium, alert.Severity)
	assert.InDelta(t, 1.0, alert.Confidence, 1e-9)
}

func TestBurnoutAlertIsMemberScoped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := seedProject(t, s, "apollo")
	bob := seedMember(t, s, p.ID, "bob", types.RoleDeveloper)
	for d := 10; d <= 18; d++ {
		seedSession(t, s, p.ID, bob.ID, day(d),
			withSentiment(0.2), withBlockers("stuck"), withContent("x", "y"))
	}

	engine := NewEngine(s, clock.At(testNow), nil)
	_, err := engine.RunProject(ctx, p.ID)
	require.NoError(t, err)

	alerts, err := s.ListAlerts(ctx, types.AlertFilter{ProjectID: p.ID})
	require.NoError(t, err)

	var burnout *types.HealthAlert
	for _, a := range alerts {
		if a.AlertType == types.AlertTeamMemberBurnout {
			burnout = a
		}
	}
	require.NotNil(t, burnout)
	require.NotNil(t, burnout.MemberID)
	assert.Equal(t, bob.ID, *burnout.MemberID)
	assert.Equal(t, types.SeverityHigh, burnout.Severity)
	assert.Contains(t, burnout.Title, "bob")
}

func TestDisabledChecksAreSkipped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := seedProject(t, s, "apollo")
	seedMember(t, s, p.ID, "ghost", types.RoleDeveloper)

	engine := NewEngine(s, clock.At(testNow), nil)
	engine.DisableChecks([]string{"communication_gap", "engagement_drop"})

	result, err := engine.RunProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, result.Alerts)
}

func TestCommunicationGapAlert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := seedProject(t, s, "apollo")
	seedMember(t, s, p.ID, "ghost", types.RoleDeveloper)

	engine := NewEngine(s, clock.At(testNow), nil)
	result, err := engine.RunProject(ctx, p.ID)
	require.NoError(t, err)

	alert, ok := alertOfType(result.Alerts, types.AlertCommunicationGap)
	require.True(t, ok)
	assert.Equal(t, types.SeverityHigh, alert.Severity)
	assert.Contains(t, alert.Description, "ghost")
}

func TestRunAllSummary(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	healthy := seedProject(t, s, "healthy")
	hm := seedMember(t, s, healthy.ID, "alice", types.RoleDeveloper)
	for d := 10; d <= 18; d++ {
		seedSession(t, s, healthy.ID, hm.ID, day(d), withSentiment(0.8))
	}

	troubled := seedProject(t, s, "troubled")
	tm := seedMember(t, s, troubled.ID, "bob", types.RoleDeveloper)
	for d := 10; d <= 18; d++ {
		seedSession(t, s, troubled.ID, tm.ID, day(d), withSentiment(0.2))
	}

	engine := NewEngine(s, clock.At(testNow), nil)
	summary, err := engine.RunAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.ProjectsMonitored)
	assert.Equal(t, 1, summary.AlertsGenerated)
	assert.Equal(t, 1, summary.CriticalAlerts)
	require.Len(t, summary.ProjectsAtRisk, 1)
	assert.Equal(t, "troubled", summary.ProjectsAtRisk[0].Project)
	assert.Equal(t, 1, summary.ProjectsAtRisk[0].Critical)

	require.Len(t, summary.Details, 2)
	assert.Empty(t, summary.Details[0].Alerts)
	assert.Len(t, summary.Details[1].Alerts, 1)
}

type captureSender struct {
	calls []capturedNotification
}

type capturedNotification struct {
	alert      *types.HealthAlert
	recipients []string
}

func (c *captureSender) Send(_ context.Context, _ *types.Project, alert *types.HealthAlert, recipients []*types.TeamMember) error {
	var emails []string
	for _, m := range recipients {
		emails = append(emails, m.Email)
	}
	c.calls = append(c.calls, capturedNotification{alert: alert, recipients: emails})
	return nil
}

func TestNotifierOnlyPushesActionableAlerts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := seedProject(t, s, "apollo")
	seedMember(t, s, p.ID, "dev", types.RoleDeveloper)
	seedMember(t, s, p.ID, "mgr", types.RoleManager)

	sender := &captureSender{}
	n := NewNotifier(s, sender)

	n.Notify(ctx, p, &types.HealthAlert{
		ProjectID: p.ID, AlertType: types.AlertEngagementDrop,
		Severity: types.SeverityMedium, Status: types.AlertActive, Title: "quiet week",
	})
	assert.Empty(t, sender.calls)

	n.Notify(ctx, p, &types.HealthAlert{
		ProjectID: p.ID, AlertType: types.AlertSentimentDecline,
		Severity: types.SeverityCritical, Status: types.AlertActive, Title: "morale",
	})
	require.Len(t, sender.calls, 1)
	assert.Equal(t, []string{"mgr@example.com"}, sender.calls[0].recipients)
}

func TestNotifierFallsBackToGlobalManagers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := seedProject(t, s, "apollo")
	seedMember(t, s, p.ID, "dev", types.RoleDeveloper)
	other := seedProject(t, s, "zephyr")
	seedMember(t, s, other.ID, "boss", types.RoleManager)

	sender := &captureSender{}
	n := NewNotifier(s, sender)

	n.Notify(ctx, p, &types.HealthAlert{
		ProjectID: p.ID, AlertType: types.AlertTeamMemberBurnout,
		Severity: types.SeverityHigh, Status: types.AlertActive, Title: "burnout",
	})
	require.Len(t, sender.calls, 1)
	assert.Equal(t, []string{"boss@example.com"}, sender.calls[0].recipients)
}
