// Package diagnose orchestrates the fetch-then-diagnose workflow for one run.
package diagnose

import (
	"fmt"
	"strings"
	"time"

	"github.com/nakamasato/dagster-diagnosis-agent/pkg/adk"
)

// Result is the outcome of diagnosing one run.
type Result struct {
	RunID       string         `json:"run_id"`              // Run identifier from the URL
	Endpoint    string         `json:"endpoint"`            // Deployment the run belongs to
	ErrorLines  int            `json:"error_lines"`         // Number of error log lines fetched
	LogText     string         `json:"log_text"`            // Raw error log text (or the no-errors sentinel)
	Diagnosis   *adk.Diagnosis `json:"diagnosis,omitempty"` // nil when the run had no error logs
	GeneratedAt time.Time      `json:"generated_at"`        // When the diagnosis was generated
}

// Text renders the result for human consumption.
func (r *Result) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s (%s)\n", r.RunID, r.Endpoint)

	if r.Diagnosis == nil {
		b.WriteString("No error logs found; nothing to diagnose.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Error log lines: %d\n", r.ErrorLines)
	fmt.Fprintf(&b, "\nSummary: %s\n", r.Diagnosis.Summary)
	b.WriteString("\nPossible causes:\n")
	for _, cause := range r.Diagnosis.PossibleCauses {
		fmt.Fprintf(&b, "- %s\n", cause)
	}
	b.WriteString("\nSuggestions:\n")
	for _, suggestion := range r.Diagnosis.Suggestions {
		fmt.Fprintf(&b, "- %s\n", suggestion)
	}
	return b.String()
}
