package types

import "time"

// SessionFilter narrows session queries. Zero values mean "no filter".
// Start and End are inclusive dates.
type SessionFilter struct {
	ProjectID int64
	MemberID  int64
	Start     time.Time
	End       time.Time
	Status    SessionStatus
	// RequireSentiment keeps only sessions with a non-null sentiment score.
	RequireSentiment bool
}

// AlertFilter narrows alert queries. Zero values mean "no filter".
type AlertFilter struct {
	ProjectID int64
	Status    AlertStatus
	Severity  Severity
	Since     time.Time
	Limit     int
}
