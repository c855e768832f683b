package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSentimentFallsBackToLabel(t *testing.T) {
	score := 0.9
	s := &StandupSession{SentimentScore: &score, SentimentLabel: SentimentBlocked}
	v, ok := s.Sentiment()
	assert.True(t, ok)
	assert.Equal(t, 0.9, v)

	s = &StandupSession{SentimentLabel: SentimentFrustrated}
	v, ok = s.Sentiment()
	assert.True(t, ok)
	assert.Equal(t, 0.25, v)

	s = &StandupSession{}
	_, ok = s.Sentiment()
	assert.False(t, ok)
}

func TestHasBlockersIgnoresWhitespace(t *testing.T) {
	assert.False(t, (&StandupSession{Blockers: "   \n"}).HasBlockers())
	assert.True(t, (&StandupSession{Blockers: "waiting on review"}).HasBlockers())
}

func TestWorkItemStatusIsComplete(t *testing.T) {
	assert.True(t, WorkItemCompleted.IsComplete())
	assert.True(t, WorkItemDone.IsComplete())
	assert.True(t, WorkItemApproved.IsComplete())
	assert.False(t, WorkItemActive.IsComplete())
	assert.False(t, WorkItemBlocked.IsComplete())
}

func TestAlertValidate(t *testing.T) {
	valid := &HealthAlert{
		ProjectID:       1,
		AlertType:       AlertSentimentDecline,
		Severity:        SeverityHigh,
		Title:           "Team Sentiment Critical: 0.20",
		ConfidenceScore: 0.8,
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*HealthAlert)
	}{
		{"missing project", func(a *HealthAlert) { a.ProjectID = 0 }},
		{"bad type", func(a *HealthAlert) { a.AlertType = "panic" }},
		{"bad severity", func(a *HealthAlert) { a.Severity = "loud" }},
		{"missing title", func(a *HealthAlert) { a.Title = "" }},
		{"confidence out of range", func(a *HealthAlert) { a.ConfidenceScore = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := *valid
			tt.mutate(&a)
			assert.Error(t, a.Validate())
		})
	}
}

func TestRequiresAction(t *testing.T) {
	a := &HealthAlert{Severity: SeverityCritical, Status: AlertActive}
	assert.True(t, a.RequiresAction())
	a.Status = AlertResolved
	assert.False(t, a.RequiresAction())
	a = &HealthAlert{Severity: SeverityLow, Status: AlertActive}
	assert.False(t, a.RequiresAction())
}

func TestDayNormalizesToUTCMidnight(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	d := Day(time.Date(2026, time.March, 2, 3, 30, 0, 0, loc))
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), d)

	d = Day(time.Date(2026, time.March, 2, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC), d)
}
