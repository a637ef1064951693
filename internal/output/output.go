package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/diogo-cruz/literature-review/internal/review"
)

// Writer renders a run report.
type Writer interface {
	Write(w io.Writer, report *review.Report) error
}

// Formats lists the accepted report formats.
var Formats = []string{"text", "json", "markdown"}

// GetWriter returns the writer for format. An empty format means text.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "text", "":
		return &TextWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "markdown", "md":
		return &MarkdownWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteReport renders report in format to outPath, or to stdout when outPath
// is empty. Parent directories of outPath are created as needed.
func WriteReport(report *review.Report, format, outPath string) (err error) {
	writer, err := GetWriter(format)
	if err != nil {
		return err
	}
	if outPath == "" {
		return writer.Write(os.Stdout, report)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing output file: %w", cerr)
		}
	}()
	return writer.Write(f, report)
}
