// File: internal/analysis/technical/technical.go

// Package technical classifies incidents into root-cause categories and
// extracts detection/resolution timings, technical-debt level and an
// automation-opportunity score from review text.
package technical

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/postmortem-cli/api/schemas"
	"github.com/xkilldash9x/postmortem-cli/internal/analysis/textsignal"
)

// categoryPatterns maps each classification to its evidence keywords.
// Iteration order matters for tie-breaking, so categories are kept in a
// slice rather than a map.
var categoryPatterns = []struct {
	category schemas.RootCauseCategory
	keywords []string
}{
	{schemas.CauseCodeBug, []string{
		"bug", "error", "exception", "null pointer", "index out of bounds",
		"race condition", "memory leak", "logic error", "off by one",
	}},
	{schemas.CauseConfiguration, []string{
		"config", "setting", "parameter", "environment variable", "property",
		"misconfigured", "wrong setting", "configuration error",
	}},
	{schemas.CauseInfrastructure, []string{
		"server", "hardware", "network", "database", "disk space", "memory",
		"cpu", "load balancer", "dns", "ssl certificate", "aws", "cloud",
	}},
	{schemas.CauseDeployment, []string{
		"deploy", "release", "rollback", "version", "build", "pipeline",
		"ci/cd", "migration", "update", "upgrade",
	}},
	{schemas.CauseDependency, []string{
		"third party", "external", "vendor", "api", "service", "upstream",
		"downstream", "integration", "webhook", "partner",
	}},
	{schemas.CauseCapacity, []string{
		"capacity", "performance", "slow", "timeout", "overload", "scaling",
		"traffic", "load", "bottleneck", "latency", "throughput",
	}},
	{schemas.CauseProcess, []string{
		"human error", "manual", "process", "procedure", "forgot", "missed",
		"training", "communication", "handoff",
	}},
	{schemas.CauseMonitoringGap, []string{
		"monitoring", "alert", "detection", "observability", "logging",
		"metric", "dashboard", "notification", "no alert",
	}},
}

var (
	detectionMinutePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:detected|noticed|discovered|alerted)\s+(?:after\s+)?(\d+)\s*(?:minutes?|mins?)`),
		regexp.MustCompile(`time to detect(?:ion)?:?\s*(\d+)\s*(?:minutes?|mins?)`),
		regexp.MustCompile(`mttd[\s:-]+(\d+)\s*(?:minutes?|mins?)`),
	}
	detectionHourPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:detected|noticed|discovered|alerted)\s+(?:after\s+)?(\d+)\s*(?:hours?|hrs?)`),
		regexp.MustCompile(`time to detect(?:ion)?:?\s*(\d+)\s*(?:hours?|hrs?)`),
	}

	resolutionMinutePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:resolved|fixed)\s+(?:after\s+)?(\d+)\s*(?:minutes?|mins?)`),
		regexp.MustCompile(`time to (?:fix|resolve|resolution):?\s*(\d+)\s*(?:minutes?|mins?)`),
		regexp.MustCompile(`took\s+(\d+)\s*(?:minutes?|mins?)\s+to\s+(?:fix|resolve)`),
		regexp.MustCompile(`resolution time:?\s*(\d+)\s*(?:minutes?|mins?)`),
	}
	resolutionHourPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:resolved|fixed)\s+(?:after\s+)?(\d+)\s*(?:hours?|hrs?)`),
		regexp.MustCompile(`time to (?:fix|resolve|resolution):?\s*(\d+)\s*(?:hours?|hrs?)`),
		regexp.MustCompile(`took\s+(\d+)\s*(?:hours?|hrs?)\s+to\s+(?:fix|resolve)`),
	}
)

// debtIndicators weight signals of accumulated shortcuts; occurrences are
// not capped, repeated mentions raise the level.
var debtIndicators = map[string]int{
	"legacy":         2,
	"technical debt": 3,
	"refactor":       2,
	"architectural":  3,
	"workaround":     2,
	"hack":           3,
	"quick fix":      1,
	"temporary":      1,
	"cleanup":        1,
}

var architecturalTerms = []string{
	"architecture", "design flaw", "structural", "foundational",
	"system design", "architectural debt",
}

// automationIndicators score on presence, not repetition.
var automationIndicators = map[string]int{
	"runbook":            1,
	"manual process":     2,
	"human intervention": 2,
	"could be automated": 3,
	"should automate":    3,
	"repetitive":         2,
	"toil":               3,
	"script":             1,
	"automation":         1,
}

// Analyzer performs the technical classification. Stateless apart from its
// logger.
type Analyzer struct {
	logger *zap.Logger
}

// NewAnalyzer creates a technical Analyzer.
func NewAnalyzer(logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{logger: logger}
}

// Analyze classifies one incident from its summary plus review text. Panics
// degrade to an all-defaults fallback result.
func (a *Analyzer) Analyze(inc schemas.Incident, content string) (result schemas.TechnicalAnalysis) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("technical analysis failed",
				zap.String("ticket", inc.TicketKey), zap.Any("cause", r))
			result = fallbackTechnical()
		}
	}()

	combined := strings.ToLower(inc.Summary + " " + content)

	result = schemas.TechnicalAnalysis{
		Category:          classifyRootCause(combined),
		DetectionMinutes:  firstMinutes(combined, detectionMinutePatterns, detectionHourPatterns),
		ResolutionMinutes: firstMinutes(combined, resolutionMinutePatterns, resolutionHourPatterns),
		DebtLevel:         assessDebt(combined),
		AutomationScore:   automationScore(combined),
	}
	a.logger.Debug("technical analysis complete",
		zap.String("ticket", inc.TicketKey),
		zap.String("category", string(result.Category)),
		zap.String("debt", string(result.DebtLevel)))
	return result
}

// classifyRootCause scores every category by keyword occurrences (each
// keyword capped at 3 to stop a single repeated word dominating) and returns
// the highest scorer. Ties keep the earlier category in the fixed order.
func classifyRootCause(lower string) schemas.RootCauseCategory {
	best := schemas.CauseUnknown
	bestScore := 0
	for _, cp := range categoryPatterns {
		score := 0
		for _, kw := range cp.keywords {
			n := strings.Count(lower, kw)
			if n > 3 {
				n = 3
			}
			score += n
		}
		if score > bestScore {
			best, bestScore = cp.category, score
		}
	}
	return best
}

// firstMinutes tries the minute patterns in order, then the hour patterns
// converted to minutes. Returns 0 when nothing matches.
func firstMinutes(lower string, minutePatterns, hourPatterns []*regexp.Regexp) int {
	for _, re := range minutePatterns {
		if m := re.FindStringSubmatch(lower); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil {
				return v
			}
		}
	}
	for _, re := range hourPatterns {
		if m := re.FindStringSubmatch(lower); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil {
				return v * 60
			}
		}
	}
	return 0
}

// assessDebt sums weighted indicator occurrences plus a flat bonus for each
// architectural term present, then maps the total onto the 4-tier scale.
func assessDebt(lower string) schemas.DebtLevel {
	score := textsignal.KeywordScore(lower, debtIndicators)
	for _, term := range architecturalTerms {
		if strings.Contains(lower, term) {
			score += 3
		}
	}

	switch {
	case score >= 8:
		return schemas.DebtHigh
	case score >= 4:
		return schemas.DebtMedium
	case score >= 1:
		return schemas.DebtLow
	default:
		return schemas.DebtNone
	}
}

// automationScore rates the automation opportunity on 0-5 from indicator
// presence plus combination bonuses.
func automationScore(lower string) int {
	score := 0
	for indicator, weight := range automationIndicators {
		if strings.Contains(lower, indicator) {
			score += weight
		}
	}

	if strings.Contains(lower, "manual") && strings.Contains(lower, "process") {
		score += 2
	}
	if strings.Contains(lower, "human") &&
		(strings.Contains(lower, "error") || strings.Contains(lower, "intervention")) {
		score += 2
	}
	if textsignal.ContainsAny(lower, "runbook", "playbook", "procedure") {
		score++
	}
	if textsignal.ContainsAny(lower, "repetitive", "recurring", "pattern") {
		score++
	}
	if strings.Contains(lower, "prevent") && strings.Contains(lower, "automat") {
		score += 2
	}

	if score > 5 {
		score = 5
	}
	return score
}

func fallbackTechnical() schemas.TechnicalAnalysis {
	return schemas.TechnicalAnalysis{
		Category:          schemas.CauseUnknown,
		DetectionMinutes:  0,
		ResolutionMinutes: 0,
		DebtLevel:         schemas.DebtNone,
		AutomationScore:   0,
	}
}
