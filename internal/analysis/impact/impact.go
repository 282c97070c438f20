// File: internal/analysis/impact/impact.go

// Package impact estimates the business cost of an incident from its priority
// and the review document text. Revenue figures are qualitative buckets
// derived from a fixed priority table, never computed amounts.
package impact

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/postmortem-cli/api/schemas"
	"github.com/xkilldash9x/postmortem-cli/internal/analysis/textsignal"
)

var (
	highRevenueKeywords = []string{
		"payment", "billing", "checkout", "subscription", "revenue",
		"transaction", "purchase", "order", "financial",
	}
	criticalServiceKeywords = []string{
		"login", "authentication", "auth", "signup", "registration",
		"core", "main", "primary", "essential", "critical",
	}
)

// Analyzer scores business impact. Stateless apart from its logger.
type Analyzer struct {
	logger *zap.Logger
}

// NewAnalyzer creates an impact Analyzer.
func NewAnalyzer(logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{logger: logger}
}

// Analyze estimates business impact for one incident. Panics inside the
// estimator degrade to a minimal fallback result.
func (a *Analyzer) Analyze(inc schemas.Incident, content string) (result schemas.BusinessImpact) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("impact analysis failed",
				zap.String("ticket", inc.TicketKey), zap.Any("cause", r))
			result = fallbackImpact(fmt.Sprint(r))
		}
	}()

	combined := strings.ToLower(inc.Summary + " " + content)

	downtime := textsignal.DurationMinutes(combined)
	customers := textsignal.CountOrPercentage(combined)
	customersLower := strings.ToLower(customers)
	revenue := a.revenueEstimate(inc.Urgency, combined, downtime)
	score := a.impactScore(inc.Urgency, combined, customersLower, downtime)

	result = schemas.BusinessImpact{
		ImpactScore:     score,
		CustomerCount:   customers,
		RevenueImpact:   revenue,
		DowntimeMinutes: downtime,
		Justification:   a.justification(inc.Urgency, customersLower, score, downtime),
	}
	a.logger.Debug("impact analysis complete",
		zap.String("ticket", inc.TicketKey),
		zap.Int("score", score),
		zap.Int("downtime_minutes", downtime))
	return result
}

// revenueEstimate maps priority, service criticality and downtime onto a
// qualitative revenue bucket.
func (a *Analyzer) revenueEstimate(priority schemas.Priority, lower string, downtime int) string {
	hasRevenue := textsignal.ContainsAny(lower, highRevenueKeywords...)
	hasCritical := textsignal.ContainsAny(lower, criticalServiceKeywords...)

	switch priority {
	case schemas.PriorityP1:
		switch {
		case hasRevenue && downtime > 30:
			return "High: $50K+ potential revenue impact"
		case hasCritical && downtime > 15:
			return "Medium: $10K-50K potential impact"
		default:
			return "Medium: $5K-25K potential impact"
		}
	case schemas.PriorityP2:
		if hasRevenue {
			return "Medium: $5K-25K potential impact"
		}
		return "Low: $1K-10K potential impact"
	case schemas.PriorityP3:
		if hasRevenue {
			return "Low: $1K-5K potential impact"
		}
		return "Minimal: <$1K potential impact"
	case schemas.PriorityP4:
		return "Minimal: <$500 potential impact"
	default:
		return schemas.NoEstimate
	}
}

// impactScore builds the 1-10 score: a priority base plus additive modifiers
// for user scope, downtime and revenue-adjacent language, capped at 10. The
// user-scope modifier reads the extracted customer phrase, not the document;
// a stray "%" in a disk metric must not count as user impact.
func (a *Analyzer) impactScore(priority schemas.Priority, lower, customersLower string, downtime int) int {
	score := 1

	switch priority {
	case schemas.PriorityP1:
		score += 4
	case schemas.PriorityP2:
		score += 3
	case schemas.PriorityP3:
		score += 2
	case schemas.PriorityP4:
		score++
	default:
		score++
	}

	switch {
	case textsignal.ContainsAny(customersLower, "all users", "entire", "everyone"):
		score += 3
	case textsignal.ContainsAny(customersLower, "%", "thousand", "k users"):
		score += 2
	case textsignal.ContainsAny(customersLower, "multiple", "several"):
		score++
	}

	switch {
	case downtime > 120:
		score += 2
	case downtime > 30:
		score++
	}

	if textsignal.ContainsAny(lower, highRevenueKeywords...) {
		score++
	}

	if score > 10 {
		score = 10
	}
	return score
}

// justification assembles the severity explanation from score band, priority,
// user scope and downtime fragments. User-scope fragments come from the
// extracted customer phrase.
func (a *Analyzer) justification(priority schemas.Priority, customersLower string, score, downtime int) string {
	var parts []string

	switch {
	case score >= 8:
		parts = append(parts, "Critical business impact")
	case score >= 6:
		parts = append(parts, "Significant business impact")
	case score >= 4:
		parts = append(parts, "Moderate business impact")
	default:
		parts = append(parts, "Limited business impact")
	}

	if priority == schemas.PriorityP1 || priority == schemas.PriorityP2 {
		parts = append(parts, fmt.Sprintf("%s incident with high urgency", priority))
	}

	if textsignal.ContainsAny(customersLower, "all users", "entire") {
		parts = append(parts, "Complete service disruption")
	} else if textsignal.ContainsAny(customersLower, "thousand", "%") {
		parts = append(parts, "Large user base affected")
	}

	if downtime > 60 {
		parts = append(parts, fmt.Sprintf("Extended downtime (%d minutes)", downtime))
	} else if downtime > 0 {
		parts = append(parts, fmt.Sprintf("Service interruption (%d minutes)", downtime))
	}

	return strings.Join(parts, "; ")
}

// fallbackImpact is returned when the estimator fails.
func fallbackImpact(cause string) schemas.BusinessImpact {
	return schemas.BusinessImpact{
		ImpactScore:     1,
		CustomerCount:   "Analysis failed",
		RevenueImpact:   schemas.NoEstimate,
		DowntimeMinutes: 0,
		Justification:   "Impact analysis failed: " + cause,
	}
}
