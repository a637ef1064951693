package gather

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogo-cruz/literature-review/internal/arxiv"
)

const boldSummary = `**Summary of the paper:** The paper proposes sparse attention
for long documents.

It evaluates on three benchmarks.

**Relation to your project:** The retrieval module could reuse the sparse kernels.

**Potential extensions/topics:**
- Apply to code search
- Study memory trade-offs

**Relevance score:** 85/100

The methods map directly onto the planned retrieval work.

Would you like me to expand on any section?
`

func TestParseSummaryBoldLeadIns(t *testing.T) {
	s := ParseSummary([]byte(boldSummary))
	assert.Equal(t, "The paper proposes sparse attention\nfor long documents.\n\nIt evaluates on three benchmarks.", s.Summary)
	assert.Equal(t, "The retrieval module could reuse the sparse kernels.", s.Relation)
	assert.Equal(t, "- Apply to code search\n- Study memory trade-offs", s.Extensions)
	assert.Equal(t, "85", s.Relevance)
	assert.Equal(t, "The methods map directly onto the planned retrieval work.", s.Reasoning)
}

func TestParseSummaryHeadings(t *testing.T) {
	src := `# Analysis

## 1. Summary of the Paper
A survey of retrieval-augmented generation.

## Key findings relevant to your project
Chunk size matters more than model size.

## Potential Extensions
Try hierarchical chunking.

## Relevance Score
Score: **72/100** because the survey is broad.
`
	s := ParseSummary([]byte(src))
	assert.Equal(t, "A survey of retrieval-augmented generation.", s.Summary)
	assert.Equal(t, "Chunk size matters more than model size.", s.Relation)
	assert.Equal(t, "Try hierarchical chunking.", s.Extensions)
	assert.Equal(t, "72", s.Relevance)
	assert.Equal(t, "because the survey is broad.", s.Reasoning)
}

func TestParseSummaryPlainLabels(t *testing.T) {
	src := `Summary: Short paper on tokenizers.

Relevance to the project: Low, different domain.

Relevance: 20/100
`
	s := ParseSummary([]byte(src))
	assert.Equal(t, "Short paper on tokenizers.", s.Summary)
	assert.Equal(t, "Low, different domain.", s.Relation)
	assert.Equal(t, NA, s.Extensions)
	assert.Equal(t, "20", s.Relevance)
	assert.Equal(t, NA, s.Reasoning)
}

func TestParseSummaryColonOutsideBold(t *testing.T) {
	s := ParseSummary([]byte("**Summary**: Inline text.\n\n**Methods**: Not tracked.\n"))
	assert.Equal(t, "Inline text.", s.Summary)
}

func TestParseSummaryNumberedList(t *testing.T) {
	src := `1. **Summary of the paper:** Tight list summary.
2. **Relation to your project:** Tight list relation.
`
	s := ParseSummary([]byte(src))
	assert.Equal(t, "Tight list summary.", s.Summary)
	assert.Equal(t, "Tight list relation.", s.Relation)
}

func TestParseSummaryEmpty(t *testing.T) {
	assert.Equal(t, emptySections(), ParseSummary([]byte("Nothing structured here.")))
}

func writeSummary(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestCollect(t *testing.T) {
	dir := t.TempDir()
	writeSummary(t, dir, "paper_1_20240101_000000.md", "**Summary:** old run.")
	writeSummary(t, dir, "paper_1_20240202_000000.md", boldSummary)
	writeSummary(t, dir, "paper_1_20240202_000000_raw.json", "{}")
	writeSummary(t, dir, "paper_10_20240202_000000.md", "**Summary:** wrong index.")

	meta := func(_ context.Context, id string) (arxiv.Paper, error) {
		if id == "2301.00002" {
			return arxiv.Paper{}, errors.New("not found")
		}
		return arxiv.Paper{ID: id, Title: "Sparse Attention", Authors: []string{"A. One", "B. Two"}}, nil
	}

	links := []string{"https://arxiv.org/abs/2301.00001", "https://arxiv.org/abs/2301.00002"}
	rows, err := Collect(context.Background(), links, dir, meta, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 1, rows[0].Index)
	assert.Equal(t, "2301.00001", rows[0].ArxivID)
	assert.Equal(t, "Sparse Attention", rows[0].Title)
	assert.Equal(t, "A. One, B. Two", rows[0].Authors)
	assert.Equal(t, "85", rows[0].Relevance)

	assert.Equal(t, NA, rows[1].Title)
	assert.Equal(t, NA, rows[1].Summary)

	counts := NACounts(rows)
	assert.Equal(t, []ColumnCount{
		{"Title", 1}, {"Authors", 1}, {"Summary", 1}, {"Relation to project", 1},
		{"Potential Extensions", 1}, {"Relevance", 1}, {"Reasoning", 1},
	}, counts)
}

func TestWriteCSV(t *testing.T) {
	rows := []Row{{Index: 1, ArxivID: "2301.00001", Title: "T, with comma", Authors: "A", Sections: emptySections()}}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, Columns, records[0])
	assert.Equal(t, "T, with comma", records[1][2])
	assert.Equal(t, NA, records[1][8])
}

func TestWritePapersCSV(t *testing.T) {
	papers := []arxiv.Paper{{
		ID:        "2403.00001v1",
		Title:     "Title",
		Authors:   []string{"X", "Y"},
		Abstract:  "Line one\nline two",
		Published: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		URL:       "http://arxiv.org/abs/2403.00001v1",
	}}
	var buf bytes.Buffer
	require.NoError(t, WritePapersCSV(&buf, papers))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, PaperColumns, records[0])
	assert.Equal(t, []string{"Title", "X, Y", "Line one\nline two", "2024-03-01", "2403.00001v1", "http://arxiv.org/abs/2403.00001v1"}, records[1])
}
