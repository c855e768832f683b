package predict

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/teampulse/teampulse/internal/types"
)

const (
	minBlockerSessions = 3
	recentBlockerDays  = 14
)

// blockerCategories maps a blocker theme to the keywords that indicate it.
var blockerCategories = map[string][]string{
	"technical":  {"bug", "error", "broken", "failing", "crash", "issue", "problem"},
	"dependency": {"waiting", "blocked by", "depends on", "pending", "approval"},
	"resource":   {"access", "permission", "account", "credentials", "server"},
	"knowledge":  {"unclear", "understand", "documentation", "help", "guidance"},
	"process":    {"review", "meeting", "decision", "policy", "procedure"},
}

var blockerWordRe = regexp.MustCompile(`\b\w{4,}\b`)

// blockerStopwords are common words excluded from recurring-theme extraction.
var blockerStopwords = map[string]bool{
	"with": true, "from": true, "this": true, "that": true,
	"have": true, "been": true, "were": true, "will": true,
}

// WeekdayRate is the historical blocker rate for one weekday.
type WeekdayRate struct {
	Rate     float64 `json:"blocker_rate"`
	Sessions int     `json:"total_sessions"`
}

// DayRisk is the predicted blocker probability for one upcoming day.
type DayRisk struct {
	Date        time.Time `json:"date"`
	Weekday     string    `json:"weekday"`
	Probability float64   `json:"blocker_probability"`
	RiskLevel   string    `json:"risk_level"`
}

// RecurringPattern is a keyword that appears repeatedly across blocker text.
type RecurringPattern struct {
	Pattern   string `json:"pattern"`
	Frequency int    `json:"frequency"`
}

// BlockerPrediction is the blocker sub-model output.
type BlockerPrediction struct {
	Insufficient *Insufficient `json:"insufficient_data,omitempty"`

	OverallRate float64 `json:"overall_blocker_rate"`
	RecentRate  float64 `json:"recent_blocker_rate"`

	Categories      map[string]int         `json:"blocker_categories,omitempty"`
	WeekdayPatterns map[string]WeekdayRate `json:"weekday_patterns,omitempty"`
	NextWeek        []DayRisk              `json:"next_week_predictions,omitempty"`
	RecurringThemes []RecurringPattern     `json:"recurring_patterns,omitempty"`
	BlockerSessions int                    `json:"total_blocker_sessions"`
}

// predictBlockers finds weekday-level blocker patterns and projects a
// blocker probability for each of the next 7 calendar days, falling back to
// the recent overall rate for weekdays with no history.
func predictBlockers(sessions []*types.StandupSession, today time.Time) *BlockerPrediction {
	var blockerTexts []string
	for _, s := range sessions {
		if s.HasBlockers() {
			blockerTexts = append(blockerTexts, strings.ToLower(s.Blockers))
		}
	}

	if len(blockerTexts) < minBlockerSessions {
		return &BlockerPrediction{Insufficient: &Insufficient{
			Reason:          "insufficient blocker data for pattern analysis",
			MinimumRequired: minBlockerSessions,
			Current:         len(blockerTexts),
		}}
	}

	recent := recentSessions(sessions, today, recentBlockerDays)
	recentBlocked := 0
	for _, s := range recent {
		if s.HasBlockers() {
			recentBlocked++
		}
	}
	recentRate := float64(recentBlocked) / float64(max(len(recent), 1))

	blockedByDay := make(map[string]int)
	totalByDay := make(map[string]int)
	for _, s := range sessions {
		name := s.Date.Weekday().String()
		totalByDay[name]++
		if s.HasBlockers() {
			blockedByDay[name]++
		}
	}

	weekdayPatterns := make(map[string]WeekdayRate, len(totalByDay))
	for name, total := range totalByDay {
		weekdayPatterns[name] = WeekdayRate{
			Rate:     round3(float64(blockedByDay[name]) / float64(total)),
			Sessions: total,
		}
	}

	nextWeek := make([]DayRisk, 0, 7)
	for i := 1; i <= 7; i++ {
		date := types.Day(today).AddDate(0, 0, i)
		name := date.Weekday().String()

		probability := recentRate
		if pattern, ok := weekdayPatterns[name]; ok {
			probability = pattern.Rate
		}

		nextWeek = append(nextWeek, DayRisk{
			Date:        date,
			Weekday:     name,
			Probability: round3(probability),
			RiskLevel:   blockerRiskLevel(probability),
		})
	}

	return &BlockerPrediction{
		OverallRate:     round3(float64(len(blockerTexts)) / float64(len(sessions))),
		RecentRate:      round3(recentRate),
		Categories:      categorizeBlockers(blockerTexts),
		WeekdayPatterns: weekdayPatterns,
		NextWeek:        nextWeek,
		RecurringThemes: recurringBlockerThemes(blockerTexts),
		BlockerSessions: len(blockerTexts),
	}
}

func blockerRiskLevel(probability float64) string {
	switch {
	case probability > 0.4:
		return "high"
	case probability > 0.2:
		return "medium"
	default:
		return "low"
	}
}

// categorizeBlockers counts how many blocker texts match each theme's
// keyword list. A text matching no theme counts as "other".
func categorizeBlockers(texts []string) map[string]int {
	counts := make(map[string]int)
	for _, text := range texts {
		matched := false
		for category, keywords := range blockerCategories {
			for _, kw := range keywords {
				if strings.Contains(text, kw) {
					counts[category]++
					matched = true
					break
				}
			}
		}
		if !matched {
			counts["other"]++
		}
	}
	return counts
}

// recurringBlockerThemes extracts the top 5 recurring keywords (4+ chars,
// stopword-filtered, frequency >= 2) across blocker text.
func recurringBlockerThemes(texts []string) []RecurringPattern {
	counts := make(map[string]int)
	for _, text := range texts {
		for _, word := range blockerWordRe.FindAllString(text, -1) {
			if !blockerStopwords[word] {
				counts[word]++
			}
		}
	}

	var patterns []RecurringPattern
	for word, n := range counts {
		if n >= 2 {
			patterns = append(patterns, RecurringPattern{Pattern: word, Frequency: n})
		}
	}
	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Frequency != patterns[j].Frequency {
			return patterns[i].Frequency > patterns[j].Frequency
		}
		return patterns[i].Pattern < patterns[j].Pattern
	})

	if len(patterns) > 5 {
		patterns = patterns[:5]
	}
	return patterns
}
