// File: internal/analysis/narrative/narrative.go

// Package narrative pulls human-readable content out of review documents: an
// incident summary, the user-impact statement and a root-cause list. Every
// field degrades to an explicit placeholder, never to empty.
package narrative

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/postmortem-cli/api/schemas"
)

const (
	impactNotSpecified = "User impact information not clearly specified in RCA document"
	causesNotSpecified = "Root cause analysis in progress or not specified"
	maxSummaryChars    = 250
	maxRootCauses      = 5
)

var (
	// Tried in order; the most specific heading wins even though the generic
	// "summary" pattern would also match inside it.
	summaryPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?is)executive summary[:\s]+(.*?)(?:\n\n|\n[A-Z])`),
		regexp.MustCompile(`(?is)client facing summary[:\s]+(.*?)(?:\n\n|\n[A-Z])`),
		regexp.MustCompile(`(?is)incident summary[:\s]+(.*?)(?:\n\n|\n[A-Z])`),
		regexp.MustCompile(`(?is)summary[:\s]+(.*?)(?:\n\n|\n[A-Z])`),
		regexp.MustCompile(`(?is)overview[:\s]+(.*?)(?:\n\n|\n[A-Z])`),
		regexp.MustCompile(`(?is)what happened[:\s]+(.*?)(?:\n\n|\n[A-Z])`),
	}

	impactPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\d+(?:,\d+)*\s+users?\s+(?:were\s+)?(?:affected|impacted)`),
		regexp.MustCompile(`(?i)affected\s+\d+(?:,\d+)*\s+users?`),
		regexp.MustCompile(`(?i)\d+(?:\.\d+)?%\s+of\s+(?:all\s+)?users?`),
		regexp.MustCompile(`(?i)(?:all|no)\s+users?\s+(?:were\s+)?(?:affected|impacted)`),
	}

	impactDuration = regexp.MustCompile(`(?i)\d+\s*(?:minutes?|hours?|mins?|hrs?)`)
	userTypes      = []string{"customers", "members", "subscribers", "clients"}

	causeSectionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?is)root\s+causes?[:\s]+(.*?)(?:\n\n|\n[A-Z][a-z]+:|$)`),
		regexp.MustCompile(`(?is)(?:^|\n)cause[:\s]+(.*?)(?:\n\n|\n[A-Z][a-z]+:|$)`),
		regexp.MustCompile(`(?is)why\s+this\s+happened[:\s]+(.*?)(?:\n\n|\n[A-Z][a-z]+:|$)`),
	}

	bulletLine   = regexp.MustCompile(`(?m)^\s*(?:[-*•]|\d+[.)])\s*(.+)$`)
	sectionLabel = regexp.MustCompile(`(?m)(?:^|\n)[A-Z][a-z]+:`)
	listMarker   = regexp.MustCompile(`(?m)^\s*(?:[-*•]|\d+[.)])`)
	unwantedChar = regexp.MustCompile(`[\[\]{}]`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// technicalCauses are appended when their signature appears anywhere in the
// document but the extracted cause list does not already mention them.
var technicalCauses = []struct {
	pattern *regexp.Regexp
	label   string
}{
	{regexp.MustCompile(`(?i)code\s+bug`), "Code Bug"},
	{regexp.MustCompile(`(?i)configuration\s+(?:error|issue|problem)`), "Configuration Error"},
	{regexp.MustCompile(`(?i)deployment\s+(?:error|issue|failure)`), "Deployment Error"},
	{regexp.MustCompile(`(?i)database\s+(?:error|connection)`), "Database Error"},
	{regexp.MustCompile(`(?i)server\s+(?:error|crash|timeout)`), "Server Error"},
	{regexp.MustCompile(`(?i)network\s+(?:error|timeout)`), "Network Error"},
	{regexp.MustCompile(`(?i)third[\s-]party\s+service\s+failure`), "Third-Party Service Failure"},
	{regexp.MustCompile(`(?i)human\s+error`), "Human Error"},
	{regexp.MustCompile(`(?i)monitoring\s+gap`), "Monitoring Gap"},
	{regexp.MustCompile(`(?i)resource\s+exhaustion`), "Resource Exhaustion"},
}

// Extractor pulls narrative fields from review text.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates a narrative Extractor.
func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// Extract builds the narrative result for one document. Panics degrade to
// placeholder content keyed to the ticket.
func (e *Extractor) Extract(ticketKey, content string) (result schemas.NarrativeExtraction) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("narrative extraction failed",
				zap.String("ticket", ticketKey), zap.Any("cause", r))
			result = fallbackNarrative(ticketKey, len(content))
		}
	}()

	result = schemas.NarrativeExtraction{
		Summary:       e.extractSummary(ticketKey, content),
		UsersImpacted: e.extractUserImpact(content),
		RootCauses:    e.extractRootCauses(content),
		Quality:       contentQuality(content),
		ContentLength: len(content),
	}
	e.logger.Debug("narrative extraction complete",
		zap.String("ticket", ticketKey),
		zap.String("content_quality", result.Quality),
		zap.Int("root_causes", len(result.RootCauses)))
	return result
}

// extractSummary prefers a labelled summary section, then the first
// substantial paragraph, then a templated placeholder.
func (e *Extractor) extractSummary(ticketKey, content string) string {
	for _, re := range summaryPatterns {
		if m := re.FindStringSubmatch(content); m != nil {
			candidate := cleanSummary(m[1])
			if len(candidate) > 50 {
				return candidate
			}
		}
	}

	for _, paragraph := range strings.Split(content, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if len(paragraph) <= 100 {
			continue
		}
		var kept []string
		for _, sentence := range strings.Split(paragraph, ". ") {
			if len(strings.TrimSpace(sentence)) > 20 {
				kept = append(kept, strings.TrimSpace(sentence))
			}
			if len(kept) == 3 {
				break
			}
		}
		if len(kept) > 0 {
			return cleanSummary(strings.Join(kept, ". "))
		}
	}

	return fmt.Sprintf("Incident %s occurred with system impact requiring investigation and resolution.", ticketKey)
}

// cleanSummary normalizes whitespace, strips markup remnants and truncates on
// sentence boundaries near the character budget.
func cleanSummary(raw string) string {
	text := whitespace.ReplaceAllString(raw, " ")
	text = unwantedChar.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	if text == "" {
		return text
	}

	if len(text) > maxSummaryChars {
		var kept []string
		total := 0
		for _, sentence := range strings.Split(text, ". ") {
			sentence = strings.TrimSuffix(strings.TrimSpace(sentence), ".")
			if total+len(sentence) > maxSummaryChars {
				break
			}
			kept = append(kept, sentence)
			total += len(sentence) + 2
		}
		if len(kept) > 0 {
			text = strings.Join(kept, ". ")
		} else {
			return text[:maxSummaryChars] + "..."
		}
	}

	if !strings.HasSuffix(text, ".") {
		text += "."
	}
	return text
}

// extractUserImpact returns the first explicit impact statement verbatim,
// else combines duration and user-type hints, else the placeholder.
func (e *Extractor) extractUserImpact(content string) string {
	for _, re := range impactPatterns {
		if m := re.FindString(content); m != "" {
			return strings.TrimSpace(m)
		}
	}

	var details []string
	if m := impactDuration.FindString(content); m != "" {
		details = append(details, "Duration: "+strings.TrimSpace(m))
	}
	lower := strings.ToLower(content)
	var types []string
	for _, ut := range userTypes {
		if strings.Contains(lower, ut) {
			types = append(types, ut)
		}
	}
	if len(types) > 0 {
		details = append(details, "User types: "+strings.Join(types, ", "))
	}
	if len(details) > 0 {
		return "Impact details: " + strings.Join(details, "; ")
	}

	return impactNotSpecified
}

// extractRootCauses mines the cause section for list items or sentences, then
// appends well-known technical signatures found anywhere in the document.
func (e *Extractor) extractRootCauses(content string) []string {
	var causes []string

	for _, re := range causeSectionPatterns {
		m := re.FindStringSubmatch(content)
		if m == nil {
			continue
		}
		block := strings.TrimSpace(m[1])

		if items := bulletLine.FindAllStringSubmatch(block, -1); len(items) > 0 {
			for _, item := range items {
				if cause := strings.TrimSpace(item[1]); len(cause) > 10 {
					causes = append(causes, cause)
				}
			}
		}
		if len(causes) == 0 {
			for _, sentence := range regexp.MustCompile(`[.;]`).Split(block, -1) {
				if sentence = strings.TrimSpace(sentence); len(sentence) > 15 {
					causes = append(causes, sentence)
				}
				if len(causes) == 3 {
					break
				}
			}
		}
		if len(causes) == 0 && len(block) > 10 && len(block) < 200 {
			causes = append(causes, block)
		}
		if len(causes) > 0 {
			break
		}
	}

	for _, tc := range technicalCauses {
		if !tc.pattern.MatchString(content) {
			continue
		}
		if !mentions(causes, tc.label) {
			causes = append(causes, tc.label)
		}
	}

	causes = dedupe(causes)
	if len(causes) > maxRootCauses {
		causes = causes[:maxRootCauses]
	}
	if len(causes) == 0 {
		causes = []string{causesNotSpecified}
	}
	return causes
}

func mentions(causes []string, label string) bool {
	needle := strings.ToLower(label)
	for _, c := range causes {
		if strings.Contains(strings.ToLower(c), needle) {
			return true
		}
	}
	return false
}

func dedupe(causes []string) []string {
	seen := make(map[string]struct{}, len(causes))
	out := causes[:0]
	for _, c := range causes {
		key := strings.ToLower(c)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// contentQuality tiers a document by length and apparent structure. Section
// labels count fully; list markers count one per three since bullets are a
// weaker structural signal.
func contentQuality(content string) string {
	sections := len(sectionLabel.FindAllString(content, -1)) +
		len(listMarker.FindAllString(content, -1))/3

	switch {
	case len(content) >= 1000 && sections >= 3:
		return "high"
	case len(content) >= 500 && sections >= 2:
		return "medium"
	default:
		return "low"
	}
}

func fallbackNarrative(ticketKey string, length int) schemas.NarrativeExtraction {
	return schemas.NarrativeExtraction{
		Summary:       fmt.Sprintf("Incident %s occurred with system impact requiring investigation and resolution.", ticketKey),
		UsersImpacted: impactNotSpecified,
		RootCauses:    []string{causesNotSpecified},
		Quality:       "low",
		ContentLength: length,
	}
}
