package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/diogo-cruz/literature-review/internal/analysis"
)

// TimestampLayout stamps every file of one write.
const TimestampLayout = "20060102_150405"

// SummaryWriter writes per-paper and meta-summary files into a directory.
type SummaryWriter struct {
	dir string
	now func() time.Time
}

// NewSummaryWriter creates dir if needed. now defaults to time.Now.
func NewSummaryWriter(dir string, now func() time.Time) (*SummaryWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating summaries directory: %w", err)
	}
	if now == nil {
		now = time.Now
	}
	return &SummaryWriter{dir: dir, now: now}, nil
}

// Dir returns the output directory.
func (s *SummaryWriter) Dir() string {
	return s.dir
}

// WriteIndividual writes paper_<i>_<ts>.md with the analysis text and
// paper_<i>_<ts>_raw.json with the full result, numbering from 1. It returns
// the markdown paths.
func (s *SummaryWriter) WriteIndividual(results []analysis.Result) ([]string, error) {
	ts := s.now().Format(TimestampLayout)
	paths := make([]string, 0, len(results))
	for i, res := range results {
		base := filepath.Join(s.dir, fmt.Sprintf("paper_%d_%s", i+1, ts))

		if err := os.WriteFile(base+".md", []byte(res.Analysis), 0o644); err != nil {
			return paths, fmt.Errorf("writing summary: %w", err)
		}
		raw, err := encodeRaw(res)
		if err != nil {
			return paths, err
		}
		if err := os.WriteFile(base+"_raw.json", raw, 0o644); err != nil {
			return paths, fmt.Errorf("writing raw result: %w", err)
		}
		paths = append(paths, base+".md")
	}
	return paths, nil
}

// WriteMeta writes meta_summary_<ts>.md.
func (s *SummaryWriter) WriteMeta(text string) (string, error) {
	path := filepath.Join(s.dir, fmt.Sprintf("meta_summary_%s.md", s.now().Format(TimestampLayout)))
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("writing meta-summary: %w", err)
	}
	return path, nil
}

// ReadRaw loads a result written by WriteIndividual.
func ReadRaw(path string) (analysis.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return analysis.Result{}, fmt.Errorf("reading raw result: %w", err)
	}
	var res analysis.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return analysis.Result{}, fmt.Errorf("parsing raw result %s: %w", path, err)
	}
	if res.Analysis == "" {
		return analysis.Result{}, fmt.Errorf("raw result %s has no analysis", path)
	}
	return res, nil
}

func encodeRaw(res analysis.Result) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return nil, fmt.Errorf("encoding raw result: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
