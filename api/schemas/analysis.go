// File: api/schemas/analysis.go
package schemas

// Grade is the letter grade derived from a quality assessment total score.
type Grade string

const (
	GradeA Grade = "A" // 90-100: exemplary review
	GradeB Grade = "B" // 80-89: good review with minor gaps
	GradeC Grade = "C" // 70-79: adequate review missing key elements
	GradeD Grade = "D" // 60-69: poor review with significant gaps
	GradeF Grade = "F" // 0-59: inadequate review
)

// GradeForScore maps a total score to its letter grade. Boundaries are
// inclusive lower bounds (90, 80, 70, 60).
func GradeForScore(total int) Grade {
	switch {
	case total >= 90:
		return GradeA
	case total >= 80:
		return GradeB
	case total >= 70:
		return GradeC
	case total >= 60:
		return GradeD
	default:
		return GradeF
	}
}

// QualityDimension is one scored rubric dimension of a review document.
type QualityDimension struct {
	Name      string   `json:"name"`
	MaxPoints int      `json:"max_points"`
	Score     int      `json:"score"`
	Feedback  string   `json:"feedback"`
	Strengths []string `json:"strengths"`
	Gaps      []string `json:"gaps"`
}

// QualityAssessment is the full narrative-quality result for one document.
// TotalScore is always the sum of the dimension scores.
type QualityAssessment struct {
	TicketKey       string             `json:"ticket_key"`
	TotalScore      int                `json:"total_score"`
	Grade           Grade              `json:"grade"`
	Dimensions      []QualityDimension `json:"dimensions"`
	OverallFeedback string             `json:"overall_feedback"`
	TopStrengths    []string           `json:"top_strengths"`
	CriticalGaps    []string           `json:"critical_gaps"`
	Recommendations []string           `json:"recommendations"`
	Confidence      string             `json:"confidence"` // High, Medium or Low
}

// BusinessImpact is the leadership-facing impact estimate for one incident.
type BusinessImpact struct {
	ImpactScore     int    `json:"impact_score"` // 1-10
	CustomerCount   string `json:"customer_count_affected"`
	RevenueImpact   string `json:"revenue_impact_est"` // qualitative bucket, never a computed figure
	DowntimeMinutes int    `json:"service_downtime_minutes"`
	Justification   string `json:"severity_justification"`
}

// RootCauseCategory is the fixed technical classification of an incident.
type RootCauseCategory string

const (
	CauseCodeBug        RootCauseCategory = "Code Bug"
	CauseConfiguration  RootCauseCategory = "Configuration Error"
	CauseInfrastructure RootCauseCategory = "Infrastructure Failure"
	CauseDeployment     RootCauseCategory = "Deployment Issue"
	CauseDependency     RootCauseCategory = "External Dependency"
	CauseCapacity       RootCauseCategory = "Capacity/Performance"
	CauseProcess        RootCauseCategory = "Process/Human Error"
	CauseMonitoringGap  RootCauseCategory = "Monitoring/Alerting Gap"
	CauseUnknown        RootCauseCategory = "Unknown/Not Classified"
)

// DebtLevel is the 4-tier technical-debt estimate.
type DebtLevel string

const (
	DebtHigh   DebtLevel = "High - Major refactoring needed"
	DebtMedium DebtLevel = "Medium - Some improvements required"
	DebtLow    DebtLevel = "Low - Minor cleanup needed"
	DebtNone   DebtLevel = "None - Well-architected solution"
)

// TechnicalAnalysis is the engineer-facing classification for one incident.
type TechnicalAnalysis struct {
	Category          RootCauseCategory `json:"root_cause_category"`
	DetectionMinutes  int               `json:"detection_time_minutes"`
	ResolutionMinutes int               `json:"resolution_time_minutes"`
	DebtLevel         DebtLevel         `json:"technical_debt_level"`
	AutomationScore   int               `json:"automation_score"` // 0-5
}

// NarrativeExtraction is the best-effort content summary of a review document.
// Summary and RootCauses are never empty; both fall back to placeholders.
type NarrativeExtraction struct {
	Summary       string   `json:"incident_summary"`
	UsersImpacted string   `json:"users_impacted"`
	RootCauses    []string `json:"root_causes"`
	Quality       string   `json:"analysis_quality"` // high, medium or low content quality
	ContentLength int      `json:"raw_content_length"`
}
