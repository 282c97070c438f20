// File: internal/analysis/textsignal/extract_test.go
package textsignal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDurationMinutes(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		text     string
		expected int
	}{
		{"hours and minutes", "The outage lasted 2 hours 30 min before recovery.", 150},
		{"hours only", "Service was degraded for 1.5 hours overall.", 90},
		{"minutes only", "The outage lasted 45 minutes in total.", 45},
		{"abbreviated minutes", "down for roughly 20 mins", 20},
		{"seconds floor to one", "The blip lasted 30 seconds.", 1},
		{"seconds over a minute", "Requests failed for 150 seconds.", 2},
		{"first match wins", "First spike 10 minutes, second spike 50 minutes.", 10},
		{"no duration", "No timing information recorded anywhere.", 0},
		{"case insensitive", "Outage Lasted 15 MINUTES", 15},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, DurationMinutes(tc.text))
		})
	}
}

func TestCountOrPercentage(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		text     string
		expected string
	}{
		{"numeric users", "Around 5,000 users saw errors during checkout.", "5,000 users"},
		{"percentage", "We estimate 12% of users hit the failure page.", "12% of user base"},
		{"entire base phrase", "The entire user base lost access to login.", AllUsersAffected},
		{"accounts as users", "We locked 300 accounts as a precaution.", "300 users"},
		{"all users qualitative", "All users were unable to sign in.", AllUsersAffected},
		{"multiple users qualitative", "Multiple users reported stale dashboards.", MultipleUsersAffected},
		{"limited users qualitative", "Some users in EU saw slow pages.", LimitedUsersAffected},
		{"nothing", "Database failover completed without details.", ImpactNotSpecified},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, CountOrPercentage(tc.text))
		})
	}
}

func TestKeywordScore(t *testing.T) {
	t.Parallel()

	weights := map[string]int{"legacy": 2, "hack": 3}

	assert.Equal(t, 0, KeywordScore("clean modern code", weights))
	assert.Equal(t, 2, KeywordScore("some legacy module", weights))
	// Occurrences multiply: legacy twice plus one hack.
	assert.Equal(t, 7, KeywordScore("legacy legacy hack", weights))
}

func TestKeywordHelpers(t *testing.T) {
	t.Parallel()

	text := "The alert fired and the monitor paged the on-call engineer."

	assert.Equal(t, 3, Occurrences(text, "the"))
	assert.True(t, ContainsAny(text, "pagerduty", "monitor"))
	assert.False(t, ContainsAny(text, "pagerduty", "grafana"))
	assert.Equal(t, 2, CountPresent(text, "alert", "monitor", "dashboard"))
}
