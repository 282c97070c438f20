// File: api/schemas/report.go
package schemas

import "time"

// Sentinel values used when an analysis stage did not run. Downstream
// consumers key off these instead of handling absent fields.
const (
	NotAvailable = "N/A"
	NotFound     = "Not Found"
	NotSpecified = "Not specified"
	NotAnalyzed  = "Not analyzed"
	NoEstimate   = "Unable to estimate"
	UnknownValue = "Unknown"
)

// IncidentReport is the flattened per-incident record handed to the
// exporters. Every field is always populated: stages that did not run leave
// their documented defaults in place.
type IncidentReport struct {
	// Ticket data
	TicketKey    string   `json:"ticket_key"`
	Summary      string   `json:"summary"`
	Priority     Priority `json:"priority"`
	Created      string   `json:"created_date"`
	Status       string   `json:"status"`
	TeamsEngaged string   `json:"teams_engaged"`
	DocumentRef  string   `json:"document_ref"`

	// Narrative extraction
	ReviewSummary   string `json:"review_summary"`
	UsersImpacted   string `json:"users_impacted"`
	RootCauses      string `json:"root_causes"` // semicolon-joined
	AnalysisQuality string `json:"analysis_quality"`

	// Quality assessment
	QualityScore    int    `json:"quality_score"`
	Grade           string `json:"grade"`
	QualityFeedback string `json:"quality_feedback"`
	TopStrengths    string `json:"top_strengths"` // semicolon-joined
	CriticalGaps    string `json:"critical_gaps"` // semicolon-joined

	// Business impact
	BusinessImpactScore int    `json:"business_impact_score"`
	CustomerCount       string `json:"customer_count_affected"`
	RevenueImpact       string `json:"revenue_impact_est"`
	DowntimeMinutes     int    `json:"service_downtime_minutes"`
	Justification       string `json:"severity_justification"`

	// Technical analysis
	RootCauseCategory string `json:"root_cause_category"`
	DetectionMinutes  int    `json:"detection_time_minutes"`
	ResolutionMinutes int    `json:"resolution_time_minutes"`
	TechnicalDebt     string `json:"technical_debt_level"`
	AutomationScore   int    `json:"automation_score"`

	// Optional raw document payload, populated only for JSON exports when
	// content preservation is requested.
	DocumentTitle string `json:"document_title,omitempty"`
	DocumentHTML  string `json:"document_html,omitempty"`
	DocumentText  string `json:"document_text,omitempty"`
}

// NewIncidentReport seeds a report with the ticket fields and the documented
// defaults for every analysis stage.
func NewIncidentReport(inc Incident) IncidentReport {
	docRef := inc.DocumentRef
	if docRef == "" {
		docRef = NotFound
	}
	return IncidentReport{
		TicketKey:    inc.TicketKey,
		Summary:      inc.Summary,
		Priority:     inc.Urgency,
		Created:      inc.Created,
		Status:       inc.Status,
		TeamsEngaged: inc.TeamsEngaged,
		DocumentRef:  docRef,

		ReviewSummary:   "RCA document not available",
		UsersImpacted:   NotSpecified,
		RootCauses:      NotAnalyzed,
		AnalysisQuality: NotAvailable,

		QualityScore:    0,
		Grade:           NotAvailable,
		QualityFeedback: "RCA document not available for quality assessment",
		TopStrengths:    NotAvailable,
		CriticalGaps:    NotAvailable,

		BusinessImpactScore: 1,
		CustomerCount:       NotSpecified,
		RevenueImpact:       NoEstimate,
		DowntimeMinutes:     0,
		Justification:       "RCA document not available",

		RootCauseCategory: UnknownValue,
		DetectionMinutes:  0,
		ResolutionMinutes: 0,
		TechnicalDebt:     UnknownValue,
		AutomationScore:   0,
	}
}

// HasDocument reports whether a review document was resolved for this record.
func (r IncidentReport) HasDocument() bool {
	return r.DocumentRef != "" && r.DocumentRef != NotFound
}

// RunSummary aggregates per-run statistics for the export envelope and the
// end-of-run log line.
type RunSummary struct {
	TotalIncidents    int            `json:"total_incidents"`
	WithDocument      int            `json:"incidents_with_document"`
	Analyzed          int            `json:"analyzed"`
	GradeCounts       map[string]int `json:"grade_distribution"`
	AvgQualityScore   float64        `json:"avg_quality_score"`
	AvgImpactScore    float64        `json:"avg_business_impact_score"`
	HighImpact        int            `json:"high_impact_incidents"`
	TotalDowntimeMins int            `json:"total_downtime_minutes"`
	AvgDetectionMins  float64        `json:"avg_detection_time_minutes"`
	AvgResolutionMins float64        `json:"avg_resolution_time_minutes"`
	AvgAutomation     float64        `json:"avg_automation_score"`
}

// ReportEnvelope wraps one analysis run for the JSON exporter.
type ReportEnvelope struct {
	RunID      string           `json:"run_id"`
	Timestamp  time.Time        `json:"timestamp"`
	ExportType string           `json:"export_type"`
	DateRange  string           `json:"date_range,omitempty"`
	Summary    RunSummary       `json:"summary"`
	Incidents  []IncidentReport `json:"incidents"`
}
