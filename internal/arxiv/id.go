package arxiv

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	linkPattern = regexp.MustCompile(`arxiv\.org/(?:abs|pdf)/(\d+\.\d+)(v\d+)?`)
	barePattern = regexp.MustCompile(`^(\d{4}\.\d{4,5})(v\d+)?$`)
)

// ParseID extracts the arXiv identifier from an abs or pdf link, or accepts a
// bare identifier. Version suffixes are dropped.
func ParseID(link string) (string, error) {
	link = strings.TrimSpace(link)
	if m := linkPattern.FindStringSubmatch(link); m != nil {
		return m[1], nil
	}
	if m := barePattern.FindStringSubmatch(link); m != nil {
		return m[1], nil
	}
	return "", fmt.Errorf("could not extract arXiv ID from %q", link)
}

// ReadLinks returns the non-empty, non-comment lines of a paper list.
func ReadLinks(data string) []string {
	var links []string
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		links = append(links, line)
	}
	return links
}
