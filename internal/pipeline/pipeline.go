// File: internal/pipeline/pipeline.go

// Package pipeline orchestrates one analysis run: pull incidents from the
// tracker, resolve and fetch their review documents, run the analyzers and
// assemble the export envelope.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/postmortem-cli/api/schemas"
	"github.com/xkilldash9x/postmortem-cli/internal/analysis/impact"
	"github.com/xkilldash9x/postmortem-cli/internal/analysis/narrative"
	"github.com/xkilldash9x/postmortem-cli/internal/analysis/quality"
	"github.com/xkilldash9x/postmortem-cli/internal/analysis/technical"
	"github.com/xkilldash9x/postmortem-cli/internal/config"
)

const insufficientContent = "RCA content insufficient for analysis"

// TrackerClient is the tracker surface the pipeline needs.
type TrackerClient interface {
	Ping(ctx context.Context) error
	SearchIncidents(ctx context.Context) ([]schemas.Incident, error)
}

// WikiClient is the wiki surface the pipeline needs.
type WikiClient interface {
	Ping(ctx context.Context) error
	FindDocument(ctx context.Context, ticketKey string) (string, error)
	FetchDocument(ctx context.Context, ref string) (schemas.DocumentContent, error)
}

// Pipeline wires the data sources to the analyzer battery.
type Pipeline struct {
	cfg     *config.Config
	tracker TrackerClient
	wiki    WikiClient
	logger  *zap.Logger

	scorer     *quality.Scorer
	impact     *impact.Analyzer
	technical  *technical.Analyzer
	narratives *narrative.Extractor
}

// New creates a Pipeline.
func New(cfg *config.Config, tracker TrackerClient, wiki WikiClient, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("Pipeline")
	return &Pipeline{
		cfg:        cfg,
		tracker:    tracker,
		wiki:       wiki,
		logger:     logger,
		scorer:     quality.NewScorer(logger),
		impact:     impact.NewAnalyzer(logger),
		technical:  technical.NewAnalyzer(logger),
		narratives: narrative.NewExtractor(logger),
	}
}

// Run executes one full analysis run. It fails only on systemic errors:
// unreachable tracker or an incident set that filters down to nothing.
// Per-incident analyzer failures degrade to defaults and never abort the run.
func (p *Pipeline) Run(ctx context.Context) (schemas.ReportEnvelope, error) {
	incidents, err := p.tracker.SearchIncidents(ctx)
	if err != nil {
		return schemas.ReportEnvelope{}, fmt.Errorf("fetching incidents: %w", err)
	}

	incidents, dateRange, err := p.filterByDate(incidents)
	if err != nil {
		return schemas.ReportEnvelope{}, err
	}
	if len(incidents) == 0 {
		return schemas.ReportEnvelope{}, fmt.Errorf("no incidents to analyze%s", suffixFor(dateRange))
	}

	p.logger.Info("Starting analysis run.",
		zap.Int("incidents", len(incidents)), zap.String("date_range", dateRange))

	reports := make([]schemas.IncidentReport, len(incidents))
	workers := p.cfg.Analysis.Workers
	if workers <= 0 {
		workers = 1
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for i, inc := range incidents {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, inc schemas.Incident) {
			defer wg.Done()
			defer func() { <-sem }()
			reports[i] = p.analyzeIncident(ctx, inc)
		}(i, inc)
	}
	wg.Wait()

	summary := summarize(reports)
	p.logSummary(summary)

	return schemas.ReportEnvelope{
		RunID:      uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		ExportType: "incident_analysis",
		DateRange:  dateRange,
		Summary:    summary,
		Incidents:  reports,
	}, nil
}

// analyzeIncident builds the full report row for one incident. Every step
// degrades to the documented defaults; the row always comes back usable.
func (p *Pipeline) analyzeIncident(ctx context.Context, inc schemas.Incident) schemas.IncidentReport {
	// Resolve the document link: the tracker comment wins, the title
	// convention search is the fallback.
	if inc.DocumentRef == "" {
		ref, err := p.wiki.FindDocument(ctx, inc.TicketKey)
		if err != nil {
			p.logger.Warn("Document search failed.",
				zap.String("ticket", inc.TicketKey), zap.Error(err))
		} else {
			inc.DocumentRef = ref
		}
	}

	report := schemas.NewIncidentReport(inc)
	if inc.DocumentRef == "" {
		p.logger.Warn("No review document; keeping defaults.", zap.String("ticket", inc.TicketKey))
		return report
	}

	doc, err := p.wiki.FetchDocument(ctx, inc.DocumentRef)
	if err != nil {
		p.logger.Warn("Document fetch failed; keeping defaults.",
			zap.String("ticket", inc.TicketKey), zap.Error(err))
		return report
	}

	if p.cfg.Report.PreserveContent {
		report.DocumentTitle = doc.Title
		report.DocumentHTML = doc.RawMarkup
		report.DocumentText = doc.Text
	}

	if len(doc.Text) < p.cfg.Analysis.MinContentChars {
		p.logger.Warn("Document content below analysis threshold.",
			zap.String("ticket", inc.TicketKey), zap.Int("chars", len(doc.Text)))
		report.ReviewSummary = insufficientContent
		return report
	}

	extraction := p.narratives.Extract(inc.TicketKey, doc.Text)
	report.ReviewSummary = extraction.Summary
	report.UsersImpacted = extraction.UsersImpacted
	report.RootCauses = strings.Join(extraction.RootCauses, "; ")
	report.AnalysisQuality = extraction.Quality

	assessment := p.scorer.Assess(doc.Text, inc.TicketKey)
	report.QualityScore = assessment.TotalScore
	report.Grade = string(assessment.Grade)
	report.QualityFeedback = assessment.OverallFeedback
	report.TopStrengths = joinTop(assessment.TopStrengths, 2)
	report.CriticalGaps = joinTop(assessment.CriticalGaps, 2)

	biz := p.impact.Analyze(inc, doc.Text)
	report.BusinessImpactScore = biz.ImpactScore
	report.CustomerCount = biz.CustomerCount
	report.RevenueImpact = biz.RevenueImpact
	report.DowntimeMinutes = biz.DowntimeMinutes
	report.Justification = biz.Justification

	tech := p.technical.Analyze(inc, doc.Text)
	report.RootCauseCategory = string(tech.Category)
	report.DetectionMinutes = tech.DetectionMinutes
	report.ResolutionMinutes = tech.ResolutionMinutes
	report.TechnicalDebt = string(tech.DebtLevel)
	report.AutomationScore = tech.AutomationScore

	return report
}

// filterByDate applies the --since / --recent windows and describes the
// resulting range for the envelope. Incidents without a parseable creation
// date are dropped by an active filter rather than guessed at.
func (p *Pipeline) filterByDate(incidents []schemas.Incident) ([]schemas.Incident, string, error) {
	var cutoff time.Time
	var dateRange string

	switch {
	case p.cfg.Report.Since != "":
		t, err := time.Parse("2006-01-02", p.cfg.Report.Since)
		if err != nil {
			return nil, "", fmt.Errorf("invalid --since date %q, want YYYY-MM-DD: %w", p.cfg.Report.Since, err)
		}
		cutoff = t
		dateRange = "since " + p.cfg.Report.Since
	case p.cfg.Report.RecentDays > 0:
		cutoff = time.Now().AddDate(0, 0, -p.cfg.Report.RecentDays)
		dateRange = fmt.Sprintf("last %d days", p.cfg.Report.RecentDays)
	default:
		return incidents, "", nil
	}

	var kept []schemas.Incident
	for _, inc := range incidents {
		created := inc.CreatedTime()
		if !created.IsZero() && !created.Before(cutoff) {
			kept = append(kept, inc)
		}
	}
	p.logger.Info("Applied date filter.",
		zap.String("range", dateRange),
		zap.Int("kept", len(kept)), zap.Int("dropped", len(incidents)-len(kept)))
	return kept, dateRange, nil
}

// summarize computes run statistics. Averages cover only incidents whose
// document was analyzed; downtime totals cover everything.
func summarize(reports []schemas.IncidentReport) schemas.RunSummary {
	s := schemas.RunSummary{
		TotalIncidents: len(reports),
		GradeCounts:    make(map[string]int),
	}

	var qualitySum, impactSum, detectionSum, resolutionSum, automationSum int
	for _, r := range reports {
		if r.HasDocument() {
			s.WithDocument++
		}
		s.TotalDowntimeMins += r.DowntimeMinutes
		if r.Grade == schemas.NotAvailable {
			continue
		}
		s.Analyzed++
		s.GradeCounts[r.Grade]++
		qualitySum += r.QualityScore
		impactSum += r.BusinessImpactScore
		detectionSum += r.DetectionMinutes
		resolutionSum += r.ResolutionMinutes
		automationSum += r.AutomationScore
		if r.BusinessImpactScore >= 8 {
			s.HighImpact++
		}
	}

	if s.Analyzed > 0 {
		n := float64(s.Analyzed)
		s.AvgQualityScore = float64(qualitySum) / n
		s.AvgImpactScore = float64(impactSum) / n
		s.AvgDetectionMins = float64(detectionSum) / n
		s.AvgResolutionMins = float64(resolutionSum) / n
		s.AvgAutomation = float64(automationSum) / n
	}
	return s
}

// logSummary emits the end-of-run statistics.
func (p *Pipeline) logSummary(s schemas.RunSummary) {
	grades := make([]string, 0, len(s.GradeCounts))
	for g := range s.GradeCounts {
		grades = append(grades, g)
	}
	sort.Strings(grades)
	var dist []string
	for _, g := range grades {
		dist = append(dist, fmt.Sprintf("%s=%d", g, s.GradeCounts[g]))
	}

	p.logger.Info("Analysis run complete.",
		zap.Int("total_incidents", s.TotalIncidents),
		zap.Int("with_document", s.WithDocument),
		zap.Int("analyzed", s.Analyzed),
		zap.String("grade_distribution", strings.Join(dist, " ")),
		zap.Float64("avg_quality_score", s.AvgQualityScore),
		zap.Float64("avg_impact_score", s.AvgImpactScore),
		zap.Int("high_impact", s.HighImpact),
		zap.Int("total_downtime_minutes", s.TotalDowntimeMins),
		zap.Float64("avg_detection_minutes", s.AvgDetectionMins),
		zap.Float64("avg_resolution_minutes", s.AvgResolutionMins),
		zap.Float64("avg_automation_score", s.AvgAutomation))
}

func joinTop(items []string, n int) string {
	if len(items) == 0 {
		return schemas.NotAvailable
	}
	if len(items) > n {
		items = items[:n]
	}
	return strings.Join(items, "; ")
}

func suffixFor(dateRange string) string {
	if dateRange == "" {
		return ""
	}
	return " (" + dateRange + ")"
}
