// -- internal/reporting/json_reporter.go --
package reporting

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/xkilldash9x/postmortem-cli/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONReporter writes the full run envelope as indented JSON.
type JSONReporter struct {
	writer io.WriteCloser
}

// NewJSONReporter creates a JSONReporter that takes ownership of the writer.
func NewJSONReporter(w io.WriteCloser) *JSONReporter {
	return &JSONReporter{writer: w}
}

// Write serializes the envelope.
func (r *JSONReporter) Write(envelope *schemas.ReportEnvelope) error {
	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(envelope); err != nil {
		return fmt.Errorf("encoding report envelope: %w", err)
	}
	return nil
}

// Close releases the underlying writer.
func (r *JSONReporter) Close() error {
	return r.writer.Close()
}
