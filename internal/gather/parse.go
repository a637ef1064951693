package gather

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// NA marks a field that could not be found.
const NA = "N/A"

// Sections holds the parts of one summary.
type Sections struct {
	Summary    string
	Relation   string
	Extensions string
	Relevance  string
	Reasoning  string
}

func emptySections() Sections {
	return Sections{Summary: NA, Relation: NA, Extensions: NA, Relevance: NA, Reasoning: NA}
}

type sectionKind int

const (
	kindOther sectionKind = iota
	kindSummary
	kindRelation
	kindExtensions
	kindScore
)

// marker is a section lead-in found in the document.
type marker struct {
	kind         sectionKind
	blockStart   int
	contentStart int
}

var (
	plainLabel   = regexp.MustCompile(`^([A-Z][A-Za-z /()-]{1,80}?):(?:\s|$)`)
	numberPrefix = regexp.MustCompile(`^\d+[.)]\s*`)
	scorePattern = regexp.MustCompile(`(?s)(?:\*\*)?(?:Relevance|Score).*?:.*?(?:\*\*)?\s*(\d+)/100\s*(?:\*\*)?(.*)`)
)

// ParseSummary extracts the sections of a markdown summary. Missing parts are NA.
func ParseSummary(src []byte) Sections {
	out := emptySections()

	markers := findMarkers(src)
	for i, m := range markers {
		end := len(src)
		if i+1 < len(markers) {
			end = markers[i+1].blockStart
		}
		if m.contentStart > end {
			continue
		}
		body := strings.TrimSpace(string(src[m.contentStart:end]))
		if body == "" {
			continue
		}
		switch m.kind {
		case kindSummary:
			if out.Summary == NA {
				out.Summary = body
			}
		case kindRelation:
			if out.Relation == NA {
				out.Relation = body
			}
		case kindExtensions:
			if out.Extensions == NA {
				out.Extensions = body
			}
		}
	}

	if m := scorePattern.FindSubmatch(src); m != nil {
		out.Relevance = string(m[1])
		out.Reasoning = reasoning(string(m[2]))
	}
	return out
}

// reasoning trims the text after the score and drops a closing question.
func reasoning(rest string) string {
	rest = strings.TrimSpace(rest)
	paras := strings.Split(rest, "\n\n")
	if len(paras) > 0 && strings.HasSuffix(strings.TrimSpace(paras[len(paras)-1]), "?") {
		rest = strings.Join(paras[:len(paras)-1], "\n\n")
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return NA
	}
	return rest
}

func findMarkers(src []byte) []marker {
	root := goldmark.New().Parser().Parse(text.NewReader(src))
	var markers []marker
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			lines := node.Lines()
			if lines.Len() == 0 {
				return ast.WalkSkipChildren, nil
			}
			first, last := lines.At(0), lines.At(lines.Len()-1)
			label := string(first.Value(src))
			markers = append(markers, marker{
				kind:         classify(label),
				blockStart:   lineStart(src, first.Start),
				contentStart: last.Stop,
			})
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph, *ast.TextBlock:
			if m, ok := paragraphMarker(src, node); ok {
				markers = append(markers, m)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return markers
}

// paragraphMarker recognises "**Label:** text", "**Label**: text" and
// "Label: text" lead-ins at the start of a paragraph or tight list item.
func paragraphMarker(src []byte, p ast.Node) (marker, bool) {
	lines := p.Lines()
	if lines.Len() == 0 {
		return marker{}, false
	}
	first := lines.At(0)
	start := lineStart(src, first.Start)

	if emph, ok := p.FirstChild().(*ast.Emphasis); ok && emph.Level == 2 {
		label := strings.TrimSpace(inlineText(src, emph))
		pos := lastStop(emph)
		if pos < 0 {
			return marker{}, false
		}
		for pos < len(src) && (src[pos] == '*' || src[pos] == '_') {
			pos++
		}
		colonInside := strings.HasSuffix(label, ":")
		if !colonInside {
			if pos >= len(src) || src[pos] != ':' {
				return marker{}, false
			}
			pos++
		}
		return marker{kind: classify(label), blockStart: start, contentStart: pos}, true
	}

	if m := plainLabel.FindSubmatchIndex(first.Value(src)); m != nil {
		label := string(first.Value(src)[m[2]:m[3]])
		return marker{kind: classify(label), blockStart: start, contentStart: first.Start + m[3] + 1}, true
	}
	return marker{}, false
}

func classify(label string) sectionKind {
	l := strings.ToLower(strings.TrimSpace(label))
	l = numberPrefix.ReplaceAllString(l, "")
	l = strings.TrimSpace(strings.TrimRight(l, ":*_ "))
	switch {
	case strings.HasPrefix(l, "summary"):
		return kindSummary
	case strings.HasPrefix(l, "relation to"),
		strings.HasPrefix(l, "key findings relevant to"),
		strings.HasPrefix(l, "relevance to"):
		return kindRelation
	case strings.HasPrefix(l, "potential extensions"), strings.HasPrefix(l, "potential topics"):
		return kindExtensions
	case strings.HasPrefix(l, "relevance"), strings.HasPrefix(l, "score"), strings.Contains(l, "score"):
		return kindScore
	default:
		return kindOther
	}
}

func inlineText(src []byte, n ast.Node) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
			continue
		}
		b.WriteString(inlineText(src, c))
	}
	return b.String()
}

// lastStop returns the end offset of the last text segment under n.
func lastStop(n ast.Node) int {
	for c := n.LastChild(); c != nil; c = c.PreviousSibling() {
		if t, ok := c.(*ast.Text); ok {
			return t.Segment.Stop
		}
		if s := lastStop(c); s >= 0 {
			return s
		}
	}
	return -1
}

func lineStart(src []byte, off int) int {
	return bytes.LastIndexByte(src[:off], '\n') + 1
}
