// File: internal/pipeline/pipeline_test.go
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/postmortem-cli/api/schemas"
	"github.com/xkilldash9x/postmortem-cli/internal/config"
)

// -- Fakes --

type fakeTracker struct {
	incidents []schemas.Incident
	err       error
}

func (f *fakeTracker) Ping(context.Context) error { return nil }
func (f *fakeTracker) SearchIncidents(context.Context) ([]schemas.Incident, error) {
	return f.incidents, f.err
}

type fakeWiki struct {
	docs    map[string]schemas.DocumentContent // keyed by ref
	found   map[string]string                  // ticket key -> ref
	findErr error
}

func (f *fakeWiki) Ping(context.Context) error { return nil }
func (f *fakeWiki) FindDocument(_ context.Context, ticketKey string) (string, error) {
	if f.findErr != nil {
		return "", f.findErr
	}
	return f.found[ticketKey], nil
}
func (f *fakeWiki) FetchDocument(_ context.Context, ref string) (schemas.DocumentContent, error) {
	doc, ok := f.docs[ref]
	if !ok {
		return schemas.DocumentContent{}, fmt.Errorf("no page at %s", ref)
	}
	return doc, nil
}

func testConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Analysis.Workers = 2
	return cfg
}

const richReview = `Summary: Checkout returned errors for 45 minutes after a bad configuration
deploy. Around 2,000 users were affected during the window.

Root Cause:
- A configuration error slipped past pipeline validation

Action Items: add validation. Owner: platform. We will monitor and alert to
prevent recurrence.`

// -- Tests --

func TestRunAnalyzesDocumentedIncident(t *testing.T) {
	t.Parallel()

	tracker := &fakeTracker{incidents: []schemas.Incident{
		{TicketKey: "INC-1", Summary: "Checkout outage", Urgency: schemas.PriorityP1,
			Created: "2024-03-01T14:02:05.000-0800", DocumentRef: "ref-1"},
	}}
	wiki := &fakeWiki{docs: map[string]schemas.DocumentContent{
		"ref-1": {RawMarkup: "<p>ignored</p>", Text: richReview, Title: "RCA INC-1"},
	}}

	envelope, err := New(testConfig(), tracker, wiki, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, envelope.Incidents, 1)
	assert.NotEmpty(t, envelope.RunID)
	assert.Equal(t, "incident_analysis", envelope.ExportType)

	rec := envelope.Incidents[0]
	assert.Equal(t, "INC-1", rec.TicketKey)
	assert.Equal(t, "ref-1", rec.DocumentRef)
	assert.NotEqual(t, "RCA document not available", rec.ReviewSummary)
	assert.Contains(t, rec.RootCauses, "configuration error")
	assert.NotEqual(t, schemas.NotAvailable, rec.Grade)
	assert.Equal(t, 45, rec.DowntimeMinutes)
	assert.Greater(t, rec.BusinessImpactScore, 1)

	assert.Equal(t, 1, envelope.Summary.WithDocument)
	assert.Equal(t, 1, envelope.Summary.Analyzed)
}

func TestRunKeepsDefaultsWithoutDocument(t *testing.T) {
	t.Parallel()

	tracker := &fakeTracker{incidents: []schemas.Incident{
		{TicketKey: "INC-2", Summary: "Mystery incident", Urgency: schemas.PriorityP3},
	}}
	wiki := &fakeWiki{found: map[string]string{}}

	envelope, err := New(testConfig(), tracker, wiki, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, envelope.Incidents, 1)

	rec := envelope.Incidents[0]
	assert.Equal(t, schemas.NotFound, rec.DocumentRef)
	assert.Equal(t, "RCA document not available", rec.ReviewSummary)
	assert.Equal(t, schemas.NotAvailable, rec.Grade)
	assert.Equal(t, 1, rec.BusinessImpactScore)
	assert.Equal(t, schemas.UnknownValue, rec.RootCauseCategory)

	assert.Equal(t, 0, envelope.Summary.WithDocument)
	assert.Equal(t, 0, envelope.Summary.Analyzed)
}

func TestRunResolvesDocumentBySearch(t *testing.T) {
	t.Parallel()

	tracker := &fakeTracker{incidents: []schemas.Incident{
		{TicketKey: "INC-3", Summary: "Login outage", Urgency: schemas.PriorityP2},
	}}
	wiki := &fakeWiki{
		found: map[string]string{"INC-3": "ref-3"},
		docs: map[string]schemas.DocumentContent{
			"ref-3": {Text: richReview, Title: "RCA INC-3"},
		},
	}

	envelope, err := New(testConfig(), tracker, wiki, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ref-3", envelope.Incidents[0].DocumentRef)
	assert.Equal(t, 1, envelope.Summary.Analyzed)
}

func TestRunShortCircuitsThinContent(t *testing.T) {
	t.Parallel()

	tracker := &fakeTracker{incidents: []schemas.Incident{
		{TicketKey: "INC-4", Urgency: schemas.PriorityP2, DocumentRef: "ref-4"},
	}}
	wiki := &fakeWiki{docs: map[string]schemas.DocumentContent{
		"ref-4": {Text: "Too short to analyze."},
	}}

	envelope, err := New(testConfig(), tracker, wiki, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)

	rec := envelope.Incidents[0]
	assert.Equal(t, insufficientContent, rec.ReviewSummary)
	assert.Equal(t, schemas.NotAvailable, rec.Grade, "analyzers must not run on thin content")
}

func TestRunFetchFailureKeepsDefaults(t *testing.T) {
	t.Parallel()

	tracker := &fakeTracker{incidents: []schemas.Incident{
		{TicketKey: "INC-5", Urgency: schemas.PriorityP2, DocumentRef: "missing-ref"},
	}}
	wiki := &fakeWiki{}

	envelope, err := New(testConfig(), tracker, wiki, zap.NewNop()).Run(context.Background())
	require.NoError(t, err, "a fetch failure is per-incident, not systemic")
	assert.Equal(t, "RCA document not available", envelope.Incidents[0].ReviewSummary)
}

func TestRunTrackerFailureIsSystemic(t *testing.T) {
	t.Parallel()

	tracker := &fakeTracker{err: errors.New("connection refused")}
	_, err := New(testConfig(), tracker, &fakeWiki{}, zap.NewNop()).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching incidents")
}

func TestRunNoIncidentsIsAnError(t *testing.T) {
	t.Parallel()

	_, err := New(testConfig(), &fakeTracker{}, &fakeWiki{}, zap.NewNop()).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no incidents")
}

func TestRunDateFilters(t *testing.T) {
	t.Parallel()

	old := schemas.Incident{TicketKey: "INC-OLD", Created: "2020-01-15", Urgency: schemas.PriorityP3}
	recent := schemas.Incident{
		TicketKey: "INC-NEW",
		Created:   time.Now().AddDate(0, 0, -2).Format("2006-01-02"),
		Urgency:   schemas.PriorityP3,
	}
	tracker := &fakeTracker{incidents: []schemas.Incident{old, recent}}

	t.Run("since keeps newer incidents", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.Report.Since = "2023-01-01"
		envelope, err := New(cfg, tracker, &fakeWiki{}, zap.NewNop()).Run(context.Background())
		require.NoError(t, err)
		require.Len(t, envelope.Incidents, 1)
		assert.Equal(t, "INC-NEW", envelope.Incidents[0].TicketKey)
		assert.Equal(t, "since 2023-01-01", envelope.DateRange)
	})

	t.Run("recent window", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.Report.RecentDays = 7
		envelope, err := New(cfg, tracker, &fakeWiki{}, zap.NewNop()).Run(context.Background())
		require.NoError(t, err)
		require.Len(t, envelope.Incidents, 1)
		assert.Equal(t, "last 7 days", envelope.DateRange)
	})

	t.Run("invalid since date", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.Report.Since = "03/01/2024"
		_, err := New(cfg, tracker, &fakeWiki{}, zap.NewNop()).Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid --since date")
	})

	t.Run("filter excluding everything fails the run", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.Report.Since = "2999-01-01"
		_, err := New(cfg, tracker, &fakeWiki{}, zap.NewNop()).Run(context.Background())
		require.Error(t, err)
	})
}

func TestRunPreservesContentWhenAsked(t *testing.T) {
	t.Parallel()

	tracker := &fakeTracker{incidents: []schemas.Incident{
		{TicketKey: "INC-6", Urgency: schemas.PriorityP1, DocumentRef: "ref-6"},
	}}
	wiki := &fakeWiki{docs: map[string]schemas.DocumentContent{
		"ref-6": {RawMarkup: "<p>raw</p>", Text: richReview, Title: "RCA INC-6"},
	}}

	cfg := testConfig()
	cfg.Report.PreserveContent = true
	envelope, err := New(cfg, tracker, wiki, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)

	rec := envelope.Incidents[0]
	assert.Equal(t, "RCA INC-6", rec.DocumentTitle)
	assert.Equal(t, "<p>raw</p>", rec.DocumentHTML)
	assert.Equal(t, richReview, rec.DocumentText)
}

func TestRunPreservesIncidentOrder(t *testing.T) {
	t.Parallel()

	var incidents []schemas.Incident
	for i := 0; i < 20; i++ {
		incidents = append(incidents, schemas.Incident{
			TicketKey: fmt.Sprintf("INC-%02d", i), Urgency: schemas.PriorityP3,
		})
	}
	tracker := &fakeTracker{incidents: incidents}

	envelope, err := New(testConfig(), tracker, &fakeWiki{}, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, envelope.Incidents, 20)
	for i, rec := range envelope.Incidents {
		assert.Equal(t, fmt.Sprintf("INC-%02d", i), rec.TicketKey, "worker pool must keep tracker order")
	}
}
