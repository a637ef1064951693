package extract

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SentinelPrefix starts every placeholder produced by Sentinel.
const SentinelPrefix = "[Error:"

// ErrUnsupported is returned for file types Text cannot read.
var ErrUnsupported = errors.New("unsupported document type")

// Text extracts the plain text of the document at path, chosen by extension.
func Text(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return pdfText(path)
	case ".docx":
		return docxText(path)
	case ".txt", ".md", ".markdown":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", path, err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, path)
	}
}

// Context reads the project context document. A missing file yields an error
// wrapping fs.ErrNotExist that tells the user what to create.
func Context(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("project document not found at %s; create it or set files.project_doc: %w", path, err)
		}
		return "", fmt.Errorf("checking project document: %w", err)
	}
	return Text(path)
}

// Sentinel renders err as placeholder text.
func Sentinel(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s %s]", SentinelPrefix, err.Error())
}

// IsSentinel reports whether text is a placeholder produced by Sentinel.
func IsSentinel(text string) bool {
	return strings.HasPrefix(text, SentinelPrefix)
}
