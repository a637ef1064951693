package output

import (
	"io"
	"strings"

	"github.com/diogo-cruz/literature-review/internal/review"
)

// MarkdownWriter outputs the report as markdown tables.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *review.Report) error {
	ew := &errWriter{w: w}
	s := report.Summary

	ew.printf("## Literature Review\n\n")
	ew.printf("Run `%s` with %s / `%s`\n\n", report.RunID, report.Provider, report.Model)

	ew.printf("| Status | Count |\n")
	ew.printf("|--------|-------|\n")
	ew.printf("| Analyzed | %d |\n", s.Counts.Analyzed)
	ew.printf("| Cached | %d |\n", s.Counts.Cached)
	ew.printf("| Failed | %d |\n", s.Counts.Failed)
	ew.printf("| **Total** | **%d** |\n\n", s.Total)

	if len(report.Items) > 0 {
		ew.printf("| # | Paper | Status | Note |\n")
		ew.printf("|---|-------|--------|------|\n")
		for i, it := range report.Items {
			note := it.Error
			if note == "" && it.ExtractionError != "" {
				note = "extraction: " + it.ExtractionError
			}
			ew.printf("| %d | [%s](%s) | %s | %s |\n", i+1, displayID(it), it.Link, it.Status, mdCell(note))
		}
		ew.printf("\n")
	}

	if report.Outputs.MetaSummary != "" {
		ew.printf("Meta-summary: `%s`\n\n", report.Outputs.MetaSummary)
	}

	ew.printf("*Completed in %dms (fetch: %dms, LLM: %dms)*\n",
		report.Timing.TotalMs, report.Timing.FetchMs, report.Timing.LLMMs)
	return ew.err
}

func mdCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
