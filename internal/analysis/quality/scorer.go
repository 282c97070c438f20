// File: internal/analysis/quality/scorer.go

// Package quality grades post-incident review documents against a fixed
// 7-dimension rubric, producing a 0-100 score, a letter grade and structured
// feedback. The rubric weights encode reviewer judgement and are not
// configurable at runtime.
package quality

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/postmortem-cli/api/schemas"
	"github.com/xkilldash9x/postmortem-cli/internal/analysis/textsignal"
)

// Dimension names, in rubric order. The order is an observable contract:
// top strengths are flattened across dimensions in this order.
const (
	dimTimeline      = "Timeline & Detection"
	dimImpact        = "Impact Assessment"
	dimRootCause     = "Root Cause Analysis"
	dimCommunication = "Communication & Clarity"
	dimActions       = "Action Items & Prevention"
	dimProcess       = "Process Adherence"
	dimLearning      = "Learning & Knowledge Sharing"
)

var (
	timestampPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\d{4}-\d{2}-\d{2}\s+\d{1,2}:\d{2}`),   // 2024-01-01 14:30
		regexp.MustCompile(`\d{1,2}:\d{2}\s+(?:AM|PM|PST|EST|UTC)`), // 2:30 PM PST
		regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}\s+\d{1,2}:\d{2}`), // 1/1/2024 14:30
	}

	userImpactPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\d+(?:,\d+)*\s+(?:users?|members?|customers?)`),
		regexp.MustCompile(`(?i)\d+(?:\.\d+)?%\s+of\s+(?:users?|members?)`),
		regexp.MustCompile(`(?i)(?:all|some|many)\s+(?:users?|members?)`),
	}

	durationScopePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\d+\s+(?:minutes?|hours?|mins?|hrs?)`),
		regexp.MustCompile(`(?i)from\s+\d+:\d+.*?to\s+\d+:\d+`),
		regexp.MustCompile(`(?i)lasted\s+(?:for\s+)?\d+`),
	}

	regexTimeline       = regexp.MustCompile(`(?i)timeline`)
	regexImpact         = regexp.MustCompile(`(?i)impact`)
	regexResponseTime   = regexp.MustCompile(`(?i)(?:time to|response time|detection time|resolution time)`)
	regexSummarySection = regexp.MustCompile(`(?i)(?:executive\s+)?summary`)
	regexSentenceSplit  = regexp.MustCompile(`[.!?]+`)
	regexTimestampAny   = regexp.MustCompile(`\d+:\d+`)
	regexDeadline       = regexp.MustCompile(`(?i)by\s+\d{4}-\d{2}-\d{2}`)
	regexActionVerb     = regexp.MustCompile(`(?i)(?:will|should|must|need to)\s+\w+`)
	regexOwnership      = regexp.MustCompile(`(?i)assigned to|owner:|responsible:`)
)

var (
	detectionKeywords  = []string{"alert", "monitor", "detect", "notice", "discover", "pingdom", "datadog", "alarm"}
	businessKeywords   = []string{"business", "revenue", "sla", "availability", "downtime", "cost"}
	rcaSections        = []string{"root cause", "why did this happen", "5 whys", "cause analysis"}
	methodologies      = []string{"5 whys", "why", "fishbone", "fault tree", "contributing factor"}
	factorIndicators   = []string{"immediate cause", "contributing", "underlying", "secondary", "primary"}
	technicalKeywords  = []string{"configuration", "deployment", "code", "database", "server", "api", "network", "timeout", "error", "exception", "log", "monitoring"}
	blameIndicators    = []string{"human error", "forgot", "mistake", "careless", "should have"}
	systemsIndicators  = []string{"process", "system", "automation", "procedure", "design"}
	documentSections   = []string{"summary", "timeline", "impact", "root cause", "action", "lesson"}
	actionSections     = []string{"action item", "next step", "remediation", "fix", "follow up", "todo"}
	preventionKeywords = []string{"prevent", "avoid", "monitor", "alert", "automation", "process", "procedure", "documentation", "training", "review"}
	priorityKeywords   = []string{"priority", "critical", "high", "medium", "low", "risk", "important"}
	timelineKeywords   = []string{"deadline", "by", "within", "week", "month", "sprint"}
	requiredSections   = []string{"summary", "timeline", "impact", "cause", "action"}
	severityKeywords   = []string{"severity", "priority", "p1", "p2", "p3", "p4", "critical", "major", "minor"}
	completenessTerms  = []string{"author", "date", "reviewed", "approved"}
	learningSections   = []string{"lesson", "learn", "takeaway", "insight"}
	broadKeywords      = []string{"team", "organization", "similar", "pattern", "trend", "future"}
	knowledgeKeywords  = []string{"document", "share", "communicate", "training", "wiki", "runbook"}
)

// Scorer evaluates review documents. It is stateless apart from its logger
// and safe to reuse across incidents.
type Scorer struct {
	logger *zap.Logger
}

// NewScorer creates a quality Scorer.
func NewScorer(logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{logger: logger}
}

// Assess runs the full rubric over cleaned document content. It never fails:
// a panic anywhere inside the rubric degrades to a zero-score fallback
// assessment rather than propagating.
func (s *Scorer) Assess(content, ticketKey string) (assessment schemas.QualityAssessment) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("quality assessment failed",
				zap.String("ticket", ticketKey), zap.Any("cause", r))
			assessment = fallbackAssessment(ticketKey, fmt.Sprint(r))
		}
	}()

	dims := []schemas.QualityDimension{
		s.assessTimelineDetection(content),
		s.assessImpact(content),
		s.assessRootCause(content),
		s.assessCommunication(content),
		s.assessActionItems(content),
		s.assessProcessAdherence(content),
		s.assessLearning(content),
	}

	total := 0
	for _, d := range dims {
		total += d.Score
	}
	grade := schemas.GradeForScore(total)

	assessment = schemas.QualityAssessment{
		TicketKey:       ticketKey,
		TotalScore:      total,
		Grade:           grade,
		Dimensions:      dims,
		OverallFeedback: overallFeedback(total, grade),
		TopStrengths:    topStrengths(dims),
		CriticalGaps:    criticalGaps(dims),
		Recommendations: recommendations(dims, grade),
		Confidence:      confidence(dims, total),
	}
	s.logger.Debug("quality assessment complete",
		zap.String("ticket", ticketKey),
		zap.String("grade", string(grade)),
		zap.Int("score", total))
	return assessment
}

// -- Dimension assessors --
// Each assessor is additive against its own checklist and clamps to the
// dimension maximum. Absence of structure lowers the score and adds gap
// text, it never errors.

func (s *Scorer) assessTimelineDetection(content string) schemas.QualityDimension {
	lower := strings.ToLower(content)
	score := 0
	var feedback []string

	if regexTimeline.MatchString(content) {
		score += 4
		feedback = append(feedback, "Timeline section present")

		timestamps := 0
		for _, re := range timestampPatterns {
			timestamps += len(re.FindAllString(content, -1))
		}
		switch {
		case timestamps >= 5:
			score += 6
			feedback = append(feedback, "Detailed timeline with multiple timestamps")
		case timestamps >= 2:
			score += 3
			feedback = append(feedback, "Basic timeline with some timestamps")
		default:
			feedback = append(feedback, "Timeline lacks sufficient timestamp detail")
		}
	} else {
		feedback = append(feedback, "Missing dedicated timeline section")
	}

	if textsignal.ContainsAny(lower, detectionKeywords...) {
		score += 3
		feedback = append(feedback, "Detection methods described")
	} else {
		feedback = append(feedback, "Detection methods not clearly described")
	}

	if regexResponseTime.MatchString(content) {
		score += 2
		feedback = append(feedback, "Response time analysis included")
	} else {
		feedback = append(feedback, "Missing response time analysis")
	}

	var strengths, gaps []string
	if timestampPatterns[0].MatchString(content) {
		strengths = append(strengths, "Detailed timestamps provided")
	}
	if strings.Contains(lower, "timeline") {
		strengths = append(strengths, "Dedicated timeline section")
	}
	if textsignal.ContainsAny(lower, "alert", "monitor", "detect") {
		strengths = append(strengths, "Detection methods described")
	}
	if score < 8 {
		if !strings.Contains(lower, "timeline") {
			gaps = append(gaps, "Missing dedicated timeline section")
		}
		if !regexTimestampAny.MatchString(content) {
			gaps = append(gaps, "Lacks specific timestamps")
		}
		if !textsignal.ContainsAny(lower, "detect", "alert", "monitor") {
			gaps = append(gaps, "Detection methods not described")
		}
	}

	return dimension(dimTimeline, 15, score, feedback, strengths, gaps)
}

func (s *Scorer) assessImpact(content string) schemas.QualityDimension {
	lower := strings.ToLower(content)
	score := 0
	var feedback []string

	if regexImpact.MatchString(content) {
		score += 3
		feedback = append(feedback, "Impact section present")

		quantified := false
		for _, re := range userImpactPatterns {
			if re.MatchString(content) {
				quantified = true
				break
			}
		}
		if quantified {
			score += 5
			feedback = append(feedback, "User impact quantified")
		} else {
			feedback = append(feedback, "User impact not quantified")
		}

		if textsignal.ContainsAny(lower, businessKeywords...) {
			score += 4
			feedback = append(feedback, "Business impact addressed")
		} else {
			feedback = append(feedback, "Business impact not clearly addressed")
		}

		durationFound := false
		for _, re := range durationScopePatterns {
			if re.MatchString(content) {
				durationFound = true
				break
			}
		}
		if durationFound {
			score += 3
			feedback = append(feedback, "Impact duration specified")
		} else {
			feedback = append(feedback, "Impact duration not clearly specified")
		}
	} else {
		feedback = append(feedback, "Missing dedicated impact section")
	}

	var strengths, gaps []string
	if userImpactPatterns[0].MatchString(content) {
		strengths = append(strengths, "User impact quantified with numbers")
	}
	if textsignal.ContainsAny(lower, "business", "revenue", "sla") {
		strengths = append(strengths, "Business impact addressed")
	}
	if durationScopePatterns[0].MatchString(content) {
		strengths = append(strengths, "Impact duration specified")
	}
	if score < 8 {
		if !userImpactPatterns[0].MatchString(content) && !userImpactPatterns[1].MatchString(content) {
			gaps = append(gaps, "User impact not quantified")
		}
		if !textsignal.ContainsAny(lower, "business", "revenue", "cost") {
			gaps = append(gaps, "Business impact not addressed")
		}
		if !durationScopePatterns[0].MatchString(content) {
			gaps = append(gaps, "Impact duration not specified")
		}
	}

	return dimension(dimImpact, 15, score, feedback, strengths, gaps)
}

func (s *Scorer) assessRootCause(content string) schemas.QualityDimension {
	lower := strings.ToLower(content)
	score := 0
	var feedback []string

	if textsignal.ContainsAny(lower, rcaSections...) {
		score += 5
		feedback = append(feedback, "Root cause analysis section present")

		methodologyFound := false
		for _, methodology := range methodologies {
			if strings.Contains(lower, methodology) {
				methodologyFound = true
				if methodology == "5 whys" || strings.Count(lower, "why") >= 3 {
					score += 8
					feedback = append(feedback, "Structured methodology (5 Whys) used")
				} else {
					score += 4
					feedback = append(feedback, "Some structured approach attempted")
				}
				break
			}
		}
		if !methodologyFound {
			feedback = append(feedback, "No clear structured RCA methodology used")
		}

		factors := textsignal.CountPresent(lower, factorIndicators...)
		switch {
		case factors >= 3:
			score += 6
			feedback = append(feedback, "Multiple contributing factors identified")
		case factors >= 1:
			score += 3
			feedback = append(feedback, "Some contributing factors identified")
		default:
			feedback = append(feedback, "Limited identification of contributing factors")
		}

		depth := textsignal.CountPresent(lower, technicalKeywords...)
		switch {
		case depth >= 5:
			score += 4
			feedback = append(feedback, "Good technical depth in analysis")
		case depth >= 2:
			score += 2
			feedback = append(feedback, "Adequate technical detail")
		default:
			feedback = append(feedback, "Lacks sufficient technical depth")
		}

		blameCount := textsignal.CountPresent(lower, blameIndicators...)
		systemsCount := textsignal.CountPresent(lower, systemsIndicators...)
		if systemsCount > blameCount && systemsCount >= 2 {
			score += 2
			feedback = append(feedback, "Systems-focused approach, avoids blame")
		} else if blameCount > 0 {
			feedback = append(feedback, "Contains blame-focused language; consider systems approach")
		}
	} else {
		feedback = append(feedback, "Missing dedicated root cause analysis section")
	}

	var strengths, gaps []string
	if strings.Contains(lower, "5 whys") || strings.Count(lower, "why") >= 3 {
		strengths = append(strengths, "Uses structured 5 Whys methodology")
	}
	if textsignal.ContainsAny(lower, "contributing", "immediate", "underlying") {
		strengths = append(strengths, "Identifies multiple contributing factors")
	}
	if textsignal.CountPresent(lower, "process", "system", "automation", "design") >= 2 {
		strengths = append(strengths, "Systems-focused approach, avoids blame")
	}
	if score < 15 {
		if !strings.Contains(lower, "root cause") {
			gaps = append(gaps, "Missing dedicated root cause section")
		}
		if strings.Count(lower, "why") < 2 {
			gaps = append(gaps, "No evidence of structured RCA methodology (e.g., 5 Whys)")
		}
		if textsignal.ContainsAny(lower, "human error", "forgot", "mistake", "should have") {
			gaps = append(gaps, "Contains blame-focused language instead of systems thinking")
		}
		if !textsignal.ContainsAny(lower, "contributing", "immediate") {
			gaps = append(gaps, "Limited identification of contributing factors")
		}
	}

	return dimension(dimRootCause, 25, score, feedback, strengths, gaps)
}

func (s *Scorer) assessCommunication(content string) schemas.QualityDimension {
	lower := strings.ToLower(content)
	score := 0
	var feedback []string

	sectionsFound := textsignal.CountPresent(lower, documentSections...)
	switch {
	case sectionsFound >= 5:
		score += 4
		feedback = append(feedback, "Well-structured document with clear sections")
	case sectionsFound >= 3:
		score += 2
		feedback = append(feedback, "Adequate document structure")
	default:
		feedback = append(feedback, "Poor document structure, missing key sections")
	}

	if regexSummarySection.MatchString(content) {
		score += 3
		feedback = append(feedback, "Executive summary present")
	} else {
		feedback = append(feedback, "Missing executive summary")
	}

	sentences := regexSentenceSplit.Split(content, -1)
	long := 0
	for _, sentence := range sentences {
		if len(strings.Fields(sentence)) > 30 {
			long++
		}
	}
	if float64(long) < float64(len(sentences))*0.2 {
		score += 2
		feedback = append(feedback, "Good readability with appropriate sentence length")
	} else {
		feedback = append(feedback, "Some sentences are too long, affecting readability")
	}

	switch {
	case len(content) >= 1000 && len(content) <= 8000:
		score++
		feedback = append(feedback, "Appropriate level of detail")
	case len(content) < 1000:
		feedback = append(feedback, "Document may be too brief")
	default:
		feedback = append(feedback, "Document may be too verbose")
	}

	var strengths, gaps []string
	if textsignal.CountPresent(lower, requiredSections...) >= 4 {
		strengths = append(strengths, "Well-structured with clear sections")
	}
	if strings.Contains(lower, "summary") {
		strengths = append(strengths, "Includes executive summary")
	}
	if len(content) >= 1000 && len(content) <= 6000 {
		strengths = append(strengths, "Appropriate level of detail")
	}
	if score < 6 {
		if !strings.Contains(lower, "summary") {
			gaps = append(gaps, "Missing executive summary")
		}
		var missing []string
		for _, section := range []string{"timeline", "impact", "cause", "action"} {
			if !strings.Contains(lower, section) {
				missing = append(missing, section)
			}
		}
		if len(missing) > 0 {
			gaps = append(gaps, "Missing key sections: "+strings.Join(missing, ", "))
		}
		if len(content) < 500 {
			gaps = append(gaps, "Document too brief, lacks sufficient detail")
		}
	}

	return dimension(dimCommunication, 10, score, feedback, strengths, gaps)
}

func (s *Scorer) assessActionItems(content string) schemas.QualityDimension {
	lower := strings.ToLower(content)
	score := 0
	var feedback []string

	if textsignal.ContainsAny(lower, actionSections...) {
		score += 4
		feedback = append(feedback, "Action items section present")

		actionable := len(regexActionVerb.FindAllString(content, -1)) +
			len(regexDeadline.FindAllString(content, -1)) +
			len(regexOwnership.FindAllString(content, -1))
		switch {
		case actionable >= 5:
			score += 6
			feedback = append(feedback, "Specific, actionable items with ownership")
		case actionable >= 2:
			score += 3
			feedback = append(feedback, "Some actionable items present")
		default:
			feedback = append(feedback, "Action items lack specificity or ownership")
		}

		prevention := textsignal.CountPresent(lower, preventionKeywords...)
		switch {
		case prevention >= 4:
			score += 6
			feedback = append(feedback, "Strong prevention focus in action items")
		case prevention >= 2:
			score += 3
			feedback = append(feedback, "Some prevention-focused actions")
		default:
			feedback = append(feedback, "Action items focus mainly on fixing, not prevention")
		}

		if textsignal.ContainsAny(lower, priorityKeywords...) {
			score += 2
			feedback = append(feedback, "Action items show prioritization")
		} else {
			feedback = append(feedback, "Action items lack clear prioritization")
		}

		if textsignal.ContainsAny(lower, timelineKeywords...) {
			score += 2
			feedback = append(feedback, "Timelines specified for actions")
		} else {
			feedback = append(feedback, "Missing timelines for action items")
		}
	} else {
		feedback = append(feedback, "Missing action items section")
	}

	var strengths, gaps []string
	if textsignal.ContainsAny(lower, "action", "remediation", "fix") {
		strengths = append(strengths, "Includes action items section")
	}
	if textsignal.ContainsAny(lower, "prevent", "monitor", "automation") {
		strengths = append(strengths, "Prevention-focused actions identified")
	}
	if textsignal.ContainsAny(lower, "owner", "assigned", "responsible") {
		strengths = append(strengths, "Action items have clear ownership")
	}
	if score < 12 {
		if !textsignal.ContainsAny(lower, "action", "remediation", "next") {
			gaps = append(gaps, "Missing action items section")
		}
		if !textsignal.ContainsAny(lower, "prevent", "avoid", "monitor") {
			gaps = append(gaps, "Actions focus on fixing rather than prevention")
		}
		if !textsignal.ContainsAny(lower, "owner", "deadline", "by") {
			gaps = append(gaps, "Action items lack ownership or timelines")
		}
	}

	return dimension(dimActions, 20, score, feedback, strengths, gaps)
}

func (s *Scorer) assessProcessAdherence(content string) schemas.QualityDimension {
	lower := strings.ToLower(content)
	score := 0
	var feedback []string

	present := textsignal.CountPresent(lower, requiredSections...)
	sectionScore := present * 2
	if sectionScore > 8 {
		sectionScore = 8
	}
	score += sectionScore
	if present >= 4 {
		feedback = append(feedback, "Follows structured RCA format")
	} else {
		feedback = append(feedback, fmt.Sprintf("Missing key sections (%d sections missing)", len(requiredSections)-present))
	}

	if textsignal.ContainsAny(lower, severityKeywords...) {
		score++
		feedback = append(feedback, "Incident severity/priority classified")
	} else {
		feedback = append(feedback, "Missing incident severity classification")
	}

	if textsignal.CountPresent(lower, completenessTerms...) >= 2 {
		score++
		feedback = append(feedback, "Shows process completeness (author, dates, review)")
	} else {
		feedback = append(feedback, "Missing process completion indicators")
	}

	var strengths, gaps []string
	if present >= 4 {
		strengths = append(strengths, "Follows structured RCA format")
	}
	if textsignal.ContainsAny(lower, "p1", "p2", "severity", "priority") {
		strengths = append(strengths, "Includes incident classification")
	}
	if score < 6 {
		var missing []string
		for _, section := range []string{"timeline", "impact", "cause", "action"} {
			if !strings.Contains(lower, section) {
				missing = append(missing, section)
			}
		}
		if len(missing) > 0 {
			gaps = append(gaps, "Missing standard sections: "+strings.Join(missing, ", "))
		}
		if !textsignal.ContainsAny(lower, "severity", "priority") {
			gaps = append(gaps, "Missing incident severity classification")
		}
	}

	return dimension(dimProcess, 10, score, feedback, strengths, gaps)
}

func (s *Scorer) assessLearning(content string) schemas.QualityDimension {
	lower := strings.ToLower(content)
	score := 0
	var feedback []string

	if textsignal.ContainsAny(lower, learningSections...) {
		score += 2
		feedback = append(feedback, "Lessons learned section present")
	} else {
		feedback = append(feedback, "Missing explicit lessons learned")
	}

	if textsignal.ContainsAny(lower, broadKeywords...) {
		score += 2
		feedback = append(feedback, "Shows broader organizational learning value")
	} else {
		feedback = append(feedback, "Limited broader learning insights")
	}

	if textsignal.ContainsAny(lower, knowledgeKeywords...) {
		score++
		feedback = append(feedback, "Includes knowledge transfer elements")
	} else {
		feedback = append(feedback, "Missing knowledge transfer considerations")
	}

	var strengths, gaps []string
	if textsignal.ContainsAny(lower, "lesson", "learn", "takeaway") {
		strengths = append(strengths, "Includes lessons learned")
	}
	if textsignal.ContainsAny(lower, "team", "organization", "similar") {
		strengths = append(strengths, "Shows broader organizational value")
	}
	if score < 3 {
		if !textsignal.ContainsAny(lower, "lesson", "learn") {
			gaps = append(gaps, "Missing lessons learned section")
		}
		if !textsignal.ContainsAny(lower, "team", "similar", "future") {
			gaps = append(gaps, "Limited broader learning insights")
		}
	}

	return dimension(dimLearning, 5, score, feedback, strengths, gaps)
}

// dimension clamps score to [0, max] and assembles the result.
func dimension(name string, max, score int, feedback, strengths, gaps []string) schemas.QualityDimension {
	if score > max {
		score = max
	}
	if score < 0 {
		score = 0
	}
	return schemas.QualityDimension{
		Name:      name,
		MaxPoints: max,
		Score:     score,
		Feedback:  strings.Join(feedback, "; "),
		Strengths: strengths,
		Gaps:      gaps,
	}
}

// -- Assessment assembly --

func overallFeedback(total int, grade schemas.Grade) string {
	switch grade {
	case schemas.GradeA:
		return fmt.Sprintf("Exemplary RCA (%d/100) that demonstrates engineering excellence and should serve as a template for future incident analysis.", total)
	case schemas.GradeB:
		return fmt.Sprintf("Good quality RCA (%d/100) with strong foundation and only minor improvements needed.", total)
	case schemas.GradeC:
		return fmt.Sprintf("Adequate RCA (%d/100) that covers basics but has several areas for improvement to reach best practices.", total)
	case schemas.GradeD:
		return fmt.Sprintf("Poor quality RCA (%d/100) with significant gaps that undermine its effectiveness for learning and prevention.", total)
	default:
		return fmt.Sprintf("Inadequate RCA (%d/100) that fails to meet basic incident analysis standards and requires major revision.", total)
	}
}

// topStrengths flattens strengths across dimensions in rubric order and keeps
// the first three, each prefixed with its dimension name.
func topStrengths(dims []schemas.QualityDimension) []string {
	var all []string
	for _, d := range dims {
		for _, strength := range d.Strengths {
			all = append(all, d.Name+": "+strength)
		}
	}
	if len(all) > 3 {
		all = all[:3]
	}
	return all
}

// criticalGaps prioritizes the root-cause dimension (up to two gaps), then
// one gap from each other dimension scoring below 60% of its maximum, capped
// at five overall.
func criticalGaps(dims []schemas.QualityDimension) []string {
	var gaps []string
	for _, d := range dims {
		if strings.Contains(strings.ToLower(d.Name), "root cause") {
			for i, gap := range d.Gaps {
				if i >= 2 {
					break
				}
				gaps = append(gaps, d.Name+": "+gap)
			}
		}
	}
	for _, d := range dims {
		if strings.Contains(strings.ToLower(d.Name), "root cause") {
			continue
		}
		if d.Score < d.MaxPoints*6/10 && len(d.Gaps) > 0 {
			gaps = append(gaps, d.Name+": "+d.Gaps[0])
		}
	}
	if len(gaps) > 5 {
		gaps = gaps[:5]
	}
	return gaps
}

func recommendations(dims []schemas.QualityDimension, grade schemas.Grade) []string {
	var recs []string
	switch grade {
	case schemas.GradeD, schemas.GradeF:
		recs = append(recs,
			"Focus on structured RCA methodology - implement 5 Whys or fishbone analysis",
			"Add dedicated sections: Timeline, Impact, Root Cause, Action Items",
			"Quantify user and business impact with specific numbers")
	case schemas.GradeC:
		recs = append(recs,
			"Deepen root cause analysis - go beyond immediate causes to underlying factors",
			"Add prevention-focused action items with clear ownership and timelines",
			"Include lessons learned section for broader organizational value")
	case schemas.GradeB:
		recs = append(recs,
			"Enhance technical depth in root cause analysis",
			"Strengthen prevention focus in action items",
			"Consider adding executive summary for leadership communication")
	}

	lowest := dims[0]
	lowestRatio := float64(lowest.Score) / float64(lowest.MaxPoints)
	for _, d := range dims[1:] {
		if ratio := float64(d.Score) / float64(d.MaxPoints); ratio < lowestRatio {
			lowest, lowestRatio = d, ratio
		}
	}
	if float64(lowest.Score) < float64(lowest.MaxPoints)*0.7 {
		detail := "needs attention"
		if len(lowest.Gaps) > 0 {
			detail = lowest.Gaps[0]
		}
		recs = append(recs, fmt.Sprintf("Priority improvement area: %s - %s", lowest.Name, detail))
	}

	if len(recs) > 5 {
		recs = recs[:5]
	}
	return recs
}

// confidence is High when at least 6 of 7 dimensions scored and the total
// clears 40, Medium at 4 dimensions and 20 points, Low otherwise.
func confidence(dims []schemas.QualityDimension, total int) string {
	scored := 0
	for _, d := range dims {
		if d.Score > 0 {
			scored++
		}
	}
	switch {
	case scored >= 6 && total > 40:
		return "High"
	case scored >= 4 && total > 20:
		return "Medium"
	default:
		return "Low"
	}
}

// fallbackAssessment is returned when the rubric itself fails.
func fallbackAssessment(ticketKey, cause string) schemas.QualityAssessment {
	return schemas.QualityAssessment{
		TicketKey:  ticketKey,
		TotalScore: 0,
		Grade:      schemas.GradeF,
		Dimensions: []schemas.QualityDimension{{
			Name:      "Analysis Failed",
			MaxPoints: 100,
			Score:     0,
			Feedback:  "Quality assessment failed: " + cause,
			Gaps:      []string{"Unable to assess RCA quality due to analysis failure"},
		}},
		OverallFeedback: "RCA quality assessment failed for " + ticketKey,
		CriticalGaps:    []string{"Analysis system failure"},
		Recommendations: []string{"Retry quality assessment with valid RCA content"},
		Confidence:      "Low",
	}
}
