package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/diogo-cruz/literature-review/internal/review"
)

// TextWriter outputs a human-readable text report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, report *review.Report) error {
	ew := &errWriter{w: w}
	s := report.Summary

	ew.printf("Literature review (%s/%s), run %s\n", report.Provider, report.Model, report.RunID)
	ew.println(strings.Repeat("─", 60))
	ew.printf("Papers: %d total (%d analyzed, %d cached, %d failed)\n",
		s.Total, s.Counts.Analyzed, s.Counts.Cached, s.Counts.Failed)
	if s.ExtractionIssues > 0 {
		ew.printf("Extraction issues: %d (placeholder text sent)\n", s.ExtractionIssues)
	}
	ew.println(strings.Repeat("─", 60))

	if len(report.Items) == 0 {
		ew.println("\nNo papers processed.")
		return ew.err
	}

	rows := make([][]string, 0, len(report.Items))
	for i, it := range report.Items {
		note := it.Error
		if note == "" && it.ExtractionError != "" {
			note = "extraction: " + it.ExtractionError
		}
		rows = append(rows, []string{fmt.Sprint(i + 1), displayID(it), statusLabel(it.Status), truncate(note, 60)})
	}
	ew.println(RenderTable([]string{"#", "Paper", "Status", "Note"}, rows, []Align{AlignRight}))

	if len(report.Outputs.Summaries) > 0 || report.Outputs.MetaSummary != "" {
		ew.println("\nOutputs:")
		for _, p := range report.Outputs.Summaries {
			ew.printf("  %s\n", p)
		}
		if report.Outputs.MetaSummary != "" {
			ew.printf("  %s (meta-summary)\n", report.Outputs.MetaSummary)
		}
	}

	ew.printf("\n%s\n", strings.Repeat("─", 60))
	ew.printf("Completed in %dms (fetch: %dms, LLM: %dms)\n",
		report.Timing.TotalMs, report.Timing.FetchMs, report.Timing.LLMMs)

	return ew.err
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func displayID(it review.Item) string {
	if it.ID != "" {
		return it.ID
	}
	return it.Link
}

func statusLabel(s review.Status) string {
	switch s {
	case review.StatusAnalyzed:
		return "[ok] analyzed"
	case review.StatusCached:
		return "[ok] cached"
	case review.StatusFailed:
		return "[!!] failed"
	default:
		return "[?] " + string(s)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
