package alerting

import (
	"sort"
	"strings"

	"github.com/teampulse/teampulse/internal/types"
)

// qualityKeywords indicate an update references concrete work.
var qualityKeywords = []string{"ticket", "bug", "feature", "test", "review", "deploy", "fix", "implement"}

// themeStopwords are excluded from blocker theme extraction.
var themeStopwords = map[string]bool{
	"with": true, "that": true, "this": true, "have": true,
	"been": true, "need": true, "still": true,
}

// contentQuality scores a session's update 0-1: substantial yesterday and
// today text score 0.4 each, and a concrete-work keyword adds 0.2.
func contentQuality(s *types.StandupSession) float64 {
	score := 0.0
	if len(strings.TrimSpace(s.YesterdayWork)) > 20 {
		score += 0.4
	}
	if len(strings.TrimSpace(s.TodayPlan)) > 20 {
		score += 0.4
	}

	content := strings.ToLower(s.YesterdayWork + " " + s.TodayPlan)
	for _, kw := range qualityKeywords {
		if strings.Contains(content, kw) {
			score += 0.2
			break
		}
	}
	if score > 1 {
		score = 1
	}
	return score
}

// burnoutScore counts burnout indicators for one member's recent sessions:
// +2 for low average sentiment, +1 each for high blocker rate, mostly
// low-quality updates, and low participation. Zero when the member has no
// recent sessions.
func burnoutScore(sessions []*types.StandupSession, expectedDays int) int {
	if len(sessions) == 0 {
		return 0
	}

	score := 0

	var sentimentSum float64
	sentimentN := 0
	blocked := 0
	lowQuality := 0
	for _, s := range sessions {
		if s.SentimentScore != nil {
			sentimentSum += *s.SentimentScore
			sentimentN++
		}
		if s.HasBlockers() {
			blocked++
		}
		if contentQuality(s) < lowQualityScore {
			lowQuality++
		}
	}

	if sentimentN > 0 && sentimentSum/float64(sentimentN) < sentimentDeclineThreshold {
		score += 2
	}
	if float64(blocked)/float64(len(sessions)) > blockerFrequencyThreshold {
		score += 1
	}
	if float64(lowQuality) > float64(len(sessions))*lowQualityRateThreshold {
		score += 1
	}
	if float64(len(sessions)) < float64(expectedDays)*0.6 {
		score += 1
	}

	return score
}

// blockerThemes extracts the most common substantial words (5+ characters,
// stopword-filtered, seen more than once) from blocker text.
func blockerThemes(sessions []*types.StandupSession) []string {
	counts := make(map[string]int)
	for _, s := range sessions {
		if !s.HasBlockers() {
			continue
		}
		for _, word := range strings.Fields(strings.ToLower(s.Blockers)) {
			if len(word) > 4 && !themeStopwords[word] {
				counts[word]++
			}
		}
	}

	var themes []string
	for word, n := range counts {
		if n > 1 {
			themes = append(themes, word)
		}
	}
	sort.Slice(themes, func(i, j int) bool {
		if counts[themes[i]] != counts[themes[j]] {
			return counts[themes[i]] > counts[themes[j]]
		}
		return themes[i] < themes[j]
	})

	if len(themes) > 5 {
		themes = themes[:5]
	}
	return themes
}
