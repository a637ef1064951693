package gather

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/diogo-cruz/literature-review/internal/arxiv"
	"github.com/diogo-cruz/literature-review/internal/logging"
)

// Columns is the header of the summaries table.
var Columns = []string{
	"Index", "Arxiv ID", "Title", "Authors", "Summary",
	"Relation to project", "Potential Extensions", "Relevance", "Reasoning",
}

// Row is one paper in the summaries table.
type Row struct {
	Index   int
	ArxivID string
	Title   string
	Authors string
	Sections
}

func (r Row) record() []string {
	return []string{
		strconv.Itoa(r.Index), r.ArxivID, r.Title, r.Authors, r.Summary,
		r.Relation, r.Extensions, r.Relevance, r.Reasoning,
	}
}

// MetadataFunc looks up a paper. (*arxiv.Client).Metadata satisfies it.
type MetadataFunc func(ctx context.Context, id string) (arxiv.Paper, error)

// Collect builds one row per link, in order. The i-th link is matched with
// the newest paper_<i>_*.md in summariesDir. Metadata failures are logged and
// leave Title and Authors as NA.
func Collect(ctx context.Context, links []string, summariesDir string, meta MetadataFunc, logger *slog.Logger) ([]Row, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	rows := make([]Row, 0, len(links))
	for i, link := range links {
		if err := ctx.Err(); err != nil {
			return rows, err
		}
		index := i + 1
		id, err := arxiv.ParseID(link)
		if err != nil {
			id = link[strings.LastIndex(link, "/")+1:]
		}
		row := Row{Index: index, ArxivID: id, Title: NA, Authors: NA, Sections: emptySections()}

		if meta != nil {
			p, err := meta(ctx, id)
			if err != nil {
				logger.Warn("metadata lookup failed", "id", id, "error", err)
			} else {
				row.Title = p.Title
				row.Authors = p.AuthorList()
			}
		}

		path, err := latestSummary(summariesDir, index)
		if err != nil {
			return rows, err
		}
		if path != "" {
			data, err := os.ReadFile(path)
			if err != nil {
				logger.Warn("summary unreadable", "path", path, "error", err)
			} else {
				row.Sections = ParseSummary(data)
			}
		} else {
			logger.Warn("no summary file for paper", "index", index, "id", id)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func latestSummary(dir string, index int) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, fmt.Sprintf("paper_%d_*.md", index)))
	if err != nil {
		return "", fmt.Errorf("listing summaries: %w", err)
	}
	if len(matches) == 0 {
		return "", nil
	}
	slices.Sort(matches)
	return matches[len(matches)-1], nil
}

// WriteCSV writes rows under Columns.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ColumnCount is the number of NA cells in one column.
type ColumnCount struct {
	Column string
	Count  int
}

// NACounts reports, in column order, the columns that have NA cells.
func NACounts(rows []Row) []ColumnCount {
	counts := make([]int, len(Columns))
	for _, r := range rows {
		for i, v := range r.record() {
			if v == NA {
				counts[i]++
			}
		}
	}
	var out []ColumnCount
	for i, c := range counts {
		if c > 0 {
			out = append(out, ColumnCount{Column: Columns[i], Count: c})
		}
	}
	return out
}

// PaperColumns is the header written by WritePapersCSV.
var PaperColumns = []string{"title", "authors", "abstract", "published_date", "arxiv_id", "url"}

// WritePapersCSV writes collected arXiv papers, one per row.
func WritePapersCSV(w io.Writer, papers []arxiv.Paper) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(PaperColumns); err != nil {
		return err
	}
	for _, p := range papers {
		published := ""
		if !p.Published.IsZero() {
			published = p.Published.Format(time.DateOnly)
		}
		if err := cw.Write([]string{p.Title, p.AuthorList(), p.Abstract, published, p.ID, p.URL}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
