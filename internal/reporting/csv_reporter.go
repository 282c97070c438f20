// -- internal/reporting/csv_reporter.go --
package reporting

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xkilldash9x/postmortem-cli/api/schemas"
)

// csvHeader is the stable 22-column layout consumed by the review
// spreadsheets. Column order is a compatibility contract; append, never
// reorder.
var csvHeader = []string{
	"Ticket Key",
	"Summary",
	"Priority",
	"Created Date",
	"Status",
	"Teams Involved",
	"RCA Link",
	"Business Impact Score",
	"Customer Count Affected",
	"Revenue Impact Est",
	"Service Downtime Minutes",
	"Severity Justification",
	"Root Cause Category",
	"Detection Time Minutes",
	"Resolution Time Minutes",
	"Technical Debt Level",
	"Automation Score",
	"RCA Quality Score",
	"RCA Grade",
	"Quality Feedback",
	"Top 2 Strengths",
	"Top 2 Critical Gaps",
}

// CSVReporter writes one spreadsheet row per incident.
type CSVReporter struct {
	writer io.WriteCloser
	csv    *csv.Writer
}

// NewCSVReporter creates a CSVReporter that takes ownership of the writer.
func NewCSVReporter(w io.WriteCloser) *CSVReporter {
	return &CSVReporter{
		writer: w,
		csv:    csv.NewWriter(w),
	}
}

// Write emits the header followed by every incident row in the envelope.
func (r *CSVReporter) Write(envelope *schemas.ReportEnvelope) error {
	if err := r.csv.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, rec := range envelope.Incidents {
		if err := r.csv.Write(row(rec)); err != nil {
			return fmt.Errorf("writing row for %s: %w", rec.TicketKey, err)
		}
	}
	r.csv.Flush()
	return r.csv.Error()
}

// Close flushes buffered rows and releases the underlying writer.
func (r *CSVReporter) Close() error {
	r.csv.Flush()
	if err := r.csv.Error(); err != nil {
		r.writer.Close()
		return err
	}
	return r.writer.Close()
}

func row(rec schemas.IncidentReport) []string {
	return []string{
		rec.TicketKey,
		rec.Summary,
		string(rec.Priority),
		rec.Created,
		rec.Status,
		rec.TeamsEngaged,
		rec.DocumentRef,
		strconv.Itoa(rec.BusinessImpactScore),
		rec.CustomerCount,
		rec.RevenueImpact,
		strconv.Itoa(rec.DowntimeMinutes),
		rec.Justification,
		rec.RootCauseCategory,
		strconv.Itoa(rec.DetectionMinutes),
		strconv.Itoa(rec.ResolutionMinutes),
		rec.TechnicalDebt,
		strconv.Itoa(rec.AutomationScore),
		strconv.Itoa(rec.QualityScore),
		rec.Grade,
		rec.QualityFeedback,
		rec.TopStrengths,
		rec.CriticalGaps,
	}
}
