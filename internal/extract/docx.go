package extract

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// docxText returns the body paragraphs of a Word document joined by newlines.
// Paragraphs inside tables are skipped.
func docxText(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("opening docx %s: %w", path, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("opening %s in %s: %w", f.Name, path, err)
		}
		defer rc.Close()
		paragraphs, err := bodyParagraphs(rc)
		if err != nil {
			return "", fmt.Errorf("parsing docx %s: %w", path, err)
		}
		return strings.Join(paragraphs, "\n"), nil
	}
	return "", fmt.Errorf("docx %s: word/document.xml missing", path)
}

func bodyParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)
	var (
		stack      []string
		paragraphs []string
		current    strings.Builder
		inPara     bool
		inText     bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return paragraphs, nil
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNamespace {
				stack = append(stack, "")
				continue
			}
			parent := ""
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			stack = append(stack, t.Name.Local)
			switch t.Name.Local {
			case "p":
				if parent == "body" {
					inPara = true
					current.Reset()
				}
			case "t":
				inText = inPara
			case "tab":
				if inPara {
					current.WriteByte('\t')
				}
			case "br", "cr":
				if inPara {
					current.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			name := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			switch name {
			case "t":
				inText = false
			case "p":
				if inPara && len(stack) > 0 && stack[len(stack)-1] == "body" {
					paragraphs = append(paragraphs, current.String())
					inPara = false
				}
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
}
