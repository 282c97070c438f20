// File: internal/analysis/technical/technical_test.go
package technical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/xkilldash9x/postmortem-cli/api/schemas"
)

func analyze(t *testing.T, summary, content string) schemas.TechnicalAnalysis {
	t.Helper()
	analyzer := NewAnalyzer(zap.NewNop())
	inc := schemas.Incident{TicketKey: "INC-9", Summary: summary}
	return analyzer.Analyze(inc, content)
}

func TestClassifyRootCause(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		content  string
		expected schemas.RootCauseCategory
	}{
		{
			"code bug",
			"A null pointer exception surfaced a logic error, a classic off by one bug.",
			schemas.CauseCodeBug,
		},
		{
			"configuration",
			"A misconfigured environment variable, the wrong setting shipped as a configuration error.",
			schemas.CauseConfiguration,
		},
		{
			"deployment",
			"The release pipeline pushed a bad build; rollback of the deploy restored the previous version.",
			schemas.CauseDeployment,
		},
		{
			"capacity",
			"Traffic overload caused latency and throughput collapse; scaling hit a bottleneck.",
			schemas.CauseCapacity,
		},
		{
			"monitoring gap",
			"There was no alert for the failure; the observability dashboard lacked the metric and logging coverage.",
			schemas.CauseMonitoringGap,
		},
		{
			"no signal",
			"Something unusual happened yesterday afternoon.",
			schemas.CauseUnknown,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := analyze(t, "", tc.content)
			assert.Equal(t, tc.expected, got.Category)
		})
	}
}

func TestClassifyCapsRepeatedKeywords(t *testing.T) {
	t.Parallel()

	// "bug" repeated ad nauseam scores at most 3; two distinct deployment
	// keywords appearing twice each outrank it.
	content := "bug bug bug bug bug bug. The deploy failed and the rollback of the deploy needed another rollback."
	got := analyze(t, "", content)
	assert.Equal(t, schemas.CauseDeployment, got.Category)
}

func TestTimingExtraction(t *testing.T) {
	t.Parallel()

	got := analyze(t, "", "The issue was detected after 12 minutes and resolved after 2 hours.")
	assert.Equal(t, 12, got.DetectionMinutes)
	assert.Equal(t, 120, got.ResolutionMinutes)

	labelled := analyze(t, "", "Time to detection: 5 minutes. Resolution time: 40 minutes.")
	assert.Equal(t, 5, labelled.DetectionMinutes)
	assert.Equal(t, 40, labelled.ResolutionMinutes)

	none := analyze(t, "", "Timings were not recorded.")
	assert.Equal(t, 0, none.DetectionMinutes)
	assert.Equal(t, 0, none.ResolutionMinutes)
}

func TestDebtLevels(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		content  string
		expected schemas.DebtLevel
	}{
		{
			"high",
			"The legacy service needed a hack on top of a workaround; the technical debt here is real.",
			schemas.DebtHigh,
		},
		{
			"medium",
			"We shipped a quick fix and another workaround pending cleanup.",
			schemas.DebtMedium,
		},
		{"low", "A temporary flag was left in place.", schemas.DebtLow},
		{"none", "The service behaved exactly as intended.", schemas.DebtNone},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := analyze(t, "", tc.content)
			assert.Equal(t, tc.expected, got.DebtLevel)
		})
	}
}

func TestAutomationScore(t *testing.T) {
	t.Parallel()

	// manual process (2) + combination bonus (2) + procedure bonus (1).
	got := analyze(t, "", "Recovery required a manual process following the runbook procedure.")
	assert.Equal(t, 5, got.AutomationScore)

	none := analyze(t, "", "The fix deployed itself and nothing else was needed.")
	assert.Equal(t, 0, none.AutomationScore)
}
