// File: internal/analysis/textsignal/extract.go

// Package textsignal provides the shared pattern-extraction primitives used
// by every incident analyzer: duration parsing, user-count extraction and
// keyword scoring. All functions are stateless and operate on plain text.
package textsignal

import (
	"regexp"
	"strconv"
	"strings"
)

// -- Duration extraction --

// Ordered time patterns. The first pattern that yields a usable value wins;
// matches are never aggregated.
var (
	regexHoursMinutes = regexp.MustCompile(`(\d+)\s*hours?\s*(\d+)?\s*min`)
	regexHours        = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*hours?`)
	regexMinutes      = regexp.MustCompile(`(\d+)\s*(?:mins?|minutes?)`)
	regexSeconds      = regexp.MustCompile(`(\d+)\s*seconds?`)

	// Phrase patterns tried after the bare unit patterns.
	durationPhrases = []*regexp.Regexp{
		regexp.MustCompile(`lasted\s+(?:for\s+)?(\d+)\s*(?:mins?|minutes?)`),
		regexp.MustCompile(`down\s+for\s+(\d+)\s*(?:mins?|minutes?)`),
		regexp.MustCompile(`outage\s+(?:of\s+)?(\d+)\s*(?:mins?|minutes?)`),
	}
)

// DurationMinutes extracts the first recognizable duration from text and
// returns it in whole minutes. Seconds are floored to minutes with a minimum
// of 1. Returns 0 when no pattern matches.
func DurationMinutes(text string) int {
	lower := strings.ToLower(text)

	if m := regexHoursMinutes.FindStringSubmatch(lower); m != nil {
		hours, err := strconv.Atoi(m[1])
		if err == nil {
			minutes := 0
			if m[2] != "" {
				minutes, _ = strconv.Atoi(m[2])
			}
			return hours*60 + minutes
		}
	}

	if m := regexHours.FindStringSubmatch(lower); m != nil {
		if hours, err := strconv.ParseFloat(m[1], 64); err == nil {
			return int(hours * 60)
		}
	}

	if m := regexMinutes.FindStringSubmatch(lower); m != nil {
		if minutes, err := strconv.Atoi(m[1]); err == nil {
			return minutes
		}
	}

	if m := regexSeconds.FindStringSubmatch(lower); m != nil {
		if seconds, err := strconv.Atoi(m[1]); err == nil {
			if seconds < 60 {
				return 1
			}
			return seconds / 60
		}
	}

	for _, re := range durationPhrases {
		if m := re.FindStringSubmatch(lower); m != nil {
			if minutes, err := strconv.Atoi(m[1]); err == nil {
				return minutes
			}
		}
	}

	return 0
}

// -- User count / percentage extraction --

var (
	regexUserCount    = regexp.MustCompile(`(\d+(?:,\d+)*)\s+(?:users?|members?|customers?)`)
	regexUserPercent  = regexp.MustCompile(`(\d+(?:\.\d+)?%)\s+of\s+(?:users?|members?)`)
	regexEntireBase   = regexp.MustCompile(`(?:all|entire)\s+(?:user\s+)?base`)
	regexAccountCount = regexp.MustCompile(`(\d+(?:,\d+)*)\s+(?:accounts?|profiles?)`)
)

// Canonical phrasings for qualitative user-impact buckets.
const (
	AllUsersAffected      = "All users affected"
	MultipleUsersAffected = "Multiple users affected (unquantified)"
	LimitedUsersAffected  = "Limited users affected"
	ImpactNotSpecified    = "User impact not specified"
)

// CountOrPercentage extracts a user-impact phrase from text. Numeric patterns
// are tried first, then the "all/entire base" phrase, then qualitative
// buckets. Falls through to ImpactNotSpecified.
func CountOrPercentage(text string) string {
	lower := strings.ToLower(text)

	if m := regexUserCount.FindStringSubmatch(lower); m != nil {
		return m[1] + " users"
	}
	if m := regexUserPercent.FindStringSubmatch(lower); m != nil {
		return m[1] + " of user base"
	}
	if regexEntireBase.MatchString(lower) {
		return AllUsersAffected
	}
	if m := regexAccountCount.FindStringSubmatch(lower); m != nil {
		return m[1] + " users"
	}

	switch {
	case containsAny(lower, "all users", "entire user base", "everyone"):
		return AllUsersAffected
	case containsAny(lower, "many users", "multiple users", "several"):
		return MultipleUsersAffected
	case containsAny(lower, "some users", "few users", "limited"):
		return LimitedUsersAffected
	default:
		return ImpactNotSpecified
	}
}

// -- Keyword scoring --

// KeywordScore sums weight multiplied by occurrence count for every keyword
// in weights. Contributions are uncapped; callers that want diminishing
// returns cap occurrences themselves via Occurrences.
func KeywordScore(text string, weights map[string]int) int {
	lower := strings.ToLower(text)
	score := 0
	for keyword, weight := range weights {
		score += strings.Count(lower, keyword) * weight
	}
	return score
}

// Occurrences counts case-insensitive occurrences of keyword in text.
func Occurrences(text, keyword string) int {
	return strings.Count(strings.ToLower(text), strings.ToLower(keyword))
}

// ContainsAny reports whether text contains at least one of the keywords,
// case-insensitively.
func ContainsAny(text string, keywords ...string) bool {
	return containsAny(strings.ToLower(text), keywords...)
}

// CountPresent returns how many of the keywords appear in text at least once.
func CountPresent(text string, keywords ...string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			n++
		}
	}
	return n
}

// containsAny expects text to already be lowercased.
func containsAny(lower string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
