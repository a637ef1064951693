package analysis

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

//go:embed instructions.txt
var defaultInstructions string

// DefaultInstructions returns the built-in instruction template appended to
// every analysis request.
func DefaultInstructions() string {
	return defaultInstructions
}

// LoadInstructions reads an instruction template from path. An empty path
// returns the built-in template.
func LoadInstructions(path string) (string, error) {
	if path == "" {
		return defaultInstructions, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading prompt file: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("prompt file %s is empty", path)
	}
	return string(data), nil
}

// BuildContent assembles the request sent for one paper. The result doubles
// as the cache key material, so the layout must stay stable.
func BuildContent(contextText, sourceText, instructions string) string {
	var b strings.Builder
	b.Grow(len(contextText) + len(sourceText) + len(instructions) + 40)
	b.WriteString("Project Context:\n")
	b.WriteString(contextText)
	b.WriteString("\n\nPaper Content:\n")
	b.WriteString(sourceText)
	b.WriteString("\n\n")
	b.WriteString(instructions)
	return b.String()
}

// BuildMetaContent assembles the aggregate request over every analysis, in
// order, numbering papers from 1.
func BuildMetaContent(analyses []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I have analyzed %d papers for my literature review. Below are the individual analyses. Please provide a comprehensive meta-summary that:\n", len(analyses))
	b.WriteString("1. Identifies common themes and patterns\n")
	b.WriteString("2. Highlights key differences and contradictions\n")
	b.WriteString("3. Suggests potential research directions based on gaps in the literature\n")
	b.WriteString("4. Provides a structured overview of the current state of research in this area\n")
	b.WriteString("\nIndividual Paper Analyses:\n\n")
	for i, a := range analyses {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Paper %d:\n%s\n", i+1, a)
	}
	return b.String()
}
