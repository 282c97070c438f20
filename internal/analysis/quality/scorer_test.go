// File: internal/analysis/quality/scorer_test.go
package quality

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/postmortem-cli/api/schemas"
)

// thoroughDocument exercises every rubric dimension.
const thoroughDocument = `Summary: The checkout service returned errors for 45 minutes after a bad deploy.

Severity: P1. Author: jdoe. Date: 2024-03-01. Reviewed by the platform team.

Timeline:
2024-03-01 14:02 Datadog alert fired for elevated error rate.
2024-03-01 14:05 On-call acknowledged the alert and began triage.
2024-03-01 14:20 Bad configuration identified in the deployment pipeline.
2024-03-01 14:47 Rollback completed and error rate recovered.
Detection time: 3 minutes. Resolution time: 45 minutes.

Impact: Approximately 5,000 users could not complete checkout for 45 minutes.
Revenue and SLA exposure was significant because payment traffic was blocked.

Root Cause: We ran a 5 whys session. Why did the deploy fail? A configuration
value was wrong. Why was it wrong? The pipeline did not validate it. Why was
there no validation? The automation design never included a schema check.
The immediate cause was the bad value; a contributing and underlying factor
was the missing validation in the process. The database and api layers logged
timeout errors, and monitoring caught the exception quickly. The system and
automation gaps were the focus, not any individual.

Action Items:
We will add schema validation to the pipeline by 2024-04-01. Owner: platform.
We must improve monitoring and alerting to prevent recurrence. This is a
critical priority and should land within the current sprint. We need to
automate the rollback procedure and review the documentation.

Lessons Learned: The team will share this pattern in the wiki runbook so
similar future incidents are caught earlier.`

func TestAssessThoroughDocument(t *testing.T) {
	t.Parallel()
	scorer := NewScorer(zap.NewNop())

	got := scorer.Assess(thoroughDocument, "INC-101")

	require.Len(t, got.Dimensions, 7)

	sum := 0
	for _, d := range got.Dimensions {
		assert.LessOrEqual(t, d.Score, d.MaxPoints, d.Name)
		assert.GreaterOrEqual(t, d.Score, 0, d.Name)
		assert.Positive(t, d.Score, "every dimension should score on a thorough document: %s", d.Name)
		sum += d.Score
	}
	assert.Equal(t, sum, got.TotalScore, "total must equal the dimension sum")
	assert.Equal(t, schemas.GradeForScore(got.TotalScore), got.Grade)

	assert.Greater(t, got.TotalScore, 60, "thorough document should grade well")
	assert.Equal(t, "High", got.Confidence)
	assert.Equal(t, "INC-101", got.TicketKey)
	assert.NotEmpty(t, got.OverallFeedback)
	assert.LessOrEqual(t, len(got.TopStrengths), 3)
	assert.NotEmpty(t, got.TopStrengths)
}

func TestAssessSparseDocument(t *testing.T) {
	t.Parallel()
	scorer := NewScorer(zap.NewNop())

	got := scorer.Assess("We had a problem. It got fixed.", "INC-102")

	assert.Equal(t, schemas.GradeF, got.Grade)
	assert.Equal(t, "Low", got.Confidence)
	assert.NotEmpty(t, got.CriticalGaps)
	assert.LessOrEqual(t, len(got.CriticalGaps), 5)
	assert.NotEmpty(t, got.Recommendations)
	assert.LessOrEqual(t, len(got.Recommendations), 5)
}

func TestAssessIsDeterministic(t *testing.T) {
	t.Parallel()
	scorer := NewScorer(zap.NewNop())

	first := scorer.Assess(thoroughDocument, "INC-103")
	second := scorer.Assess(thoroughDocument, "INC-103")

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("assessment should be deterministic (-first +second):\n%s", diff)
	}
}

func TestRootCauseGapsLeadCriticalGaps(t *testing.T) {
	t.Parallel()
	scorer := NewScorer(zap.NewNop())

	// Structured everywhere except the root cause analysis itself.
	doc := strings.ReplaceAll(thoroughDocument, "Root Cause", "Discussion")
	doc = strings.ReplaceAll(doc, "5 whys", "a chat")
	doc = strings.ReplaceAll(doc, "Why", "How")
	doc = strings.ReplaceAll(doc, "why", "how")

	got := scorer.Assess(doc, "INC-104")

	require.NotEmpty(t, got.CriticalGaps)
	assert.Contains(t, got.CriticalGaps[0], "Root Cause Analysis:",
		"root cause gaps should be listed first")
}

func TestGradeForScoreBoundaries(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		score    int
		expected schemas.Grade
	}{
		{100, schemas.GradeA},
		{90, schemas.GradeA},
		{89, schemas.GradeB},
		{80, schemas.GradeB},
		{79, schemas.GradeC},
		{70, schemas.GradeC},
		{69, schemas.GradeD},
		{60, schemas.GradeD},
		{59, schemas.GradeF},
		{0, schemas.GradeF},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, schemas.GradeForScore(tc.score), "score %d", tc.score)
	}
}
