// File: cmd/cmd_test.go
package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/postmortem-cli/api/schemas"
	"github.com/xkilldash9x/postmortem-cli/internal/config"
)

func TestAnalyzeCmdFlags(t *testing.T) {
	t.Parallel()

	cmd := newAnalyzeCmd()
	for _, name := range []string{
		"output", "format", "preserve-content",
		"since", "recent",
		"workers", "project", "space",
	} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag --%s", name)
	}

	format, err := cmd.Flags().GetString("format")
	require.NoError(t, err)
	assert.Equal(t, "csv", format)
}

func TestResolveOutputPath(t *testing.T) {
	t.Parallel()

	cfg := config.NewDefaultConfig()
	cfg.Report.OutputDir = "/reports"

	t.Run("explicit path wins", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "out.csv", resolveOutputPath(cfg, "out.csv", "csv", false))
	})

	t.Run("multi-format swaps extension", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "out.csv", resolveOutputPath(cfg, "out.anything", "csv", true))
		assert.Equal(t, "out.json", resolveOutputPath(cfg, "out.anything", "json", true))
	})

	t.Run("dated default in output dir", func(t *testing.T) {
		t.Parallel()
		want := filepath.Join("/reports", "incident_analysis_"+time.Now().Format("20060102")+".json")
		assert.Equal(t, want, resolveOutputPath(cfg, "", "json", false))
	})
}

func TestWriteReportsBothFormats(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := config.NewDefaultConfig()
	cfg.Report.Format = "both"
	cfg.Report.OutputDir = dir

	envelope := &schemas.ReportEnvelope{
		RunID:      "run-42",
		Timestamp:  time.Now().UTC(),
		ExportType: "incident_analysis",
		Incidents: []schemas.IncidentReport{
			schemas.NewIncidentReport(schemas.Incident{TicketKey: "INC-1"}),
		},
	}

	written, err := writeReports(cfg, "", envelope, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, written, 2)

	for _, path := range written {
		info, err := os.Stat(path)
		require.NoError(t, err, "expected report file at %s", path)
		assert.Greater(t, info.Size(), int64(0))
	}
	assert.Equal(t, ".csv", filepath.Ext(written[0]))
	assert.Equal(t, ".json", filepath.Ext(written[1]))
}
