package review

import "time"

// Status is the outcome of one paper.
type Status string

const (
	StatusAnalyzed Status = "analyzed"
	StatusCached   Status = "cached"
	StatusFailed   Status = "failed"
)

// Item describes what happened to one input link.
type Item struct {
	Link   string `json:"link"`
	ID     string `json:"id,omitempty"`
	Status Status `json:"status"`
	PDF    string `json:"pdf,omitempty"`
	// ExtractionError is set when the paper text was replaced by a placeholder.
	ExtractionError string `json:"extractionError,omitempty"`
	Error           string `json:"error,omitempty"`
}

// Counts holds per-status item counts.
type Counts struct {
	Analyzed int `json:"analyzed"`
	Cached   int `json:"cached"`
	Failed   int `json:"failed"`
}

// Summary provides an overview of a run.
type Summary struct {
	Total            int    `json:"total"`
	Counts           Counts `json:"counts"`
	ExtractionIssues int    `json:"extractionIssues"`
}

// Outputs lists the files a run wrote.
type Outputs struct {
	Summaries   []string `json:"summaries,omitempty"`
	MetaSummary string   `json:"metaSummary,omitempty"`
}

// Timing contains performance metrics.
type Timing struct {
	FetchMs int64 `json:"fetchMs"`
	LLMMs   int64 `json:"llmMs"`
	TotalMs int64 `json:"totalMs"`
}

// Report is the record of one pipeline run.
type Report struct {
	Tool      string    `json:"tool"`
	Version   string    `json:"version"`
	RunID     string    `json:"runId"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	StartedAt time.Time `json:"startedAt"`
	Summary   Summary   `json:"summary"`
	Items     []Item    `json:"items"`
	Outputs   Outputs   `json:"outputs"`
	Timing    Timing    `json:"timing"`
}

// ComputeSummary calculates the summary from items.
func ComputeSummary(items []Item) Summary {
	s := Summary{Total: len(items)}
	for _, it := range items {
		switch it.Status {
		case StatusAnalyzed:
			s.Counts.Analyzed++
		case StatusCached:
			s.Counts.Cached++
		case StatusFailed:
			s.Counts.Failed++
		}
		if it.ExtractionError != "" {
			s.ExtractionIssues++
		}
	}
	return s
}
