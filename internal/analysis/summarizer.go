package analysis

import (
	"context"

	"github.com/diogo-cruz/literature-review/internal/providers"
	"github.com/diogo-cruz/literature-review/internal/ratelimit"
)

// Summarizer produces one meta-summary over a batch of analyses.
type Summarizer struct {
	client
}

// NewSummarizer creates a Summarizer. Pass the same caller as the Analyzer so
// both share one pacing budget.
func NewSummarizer(p providers.Provider, caller *ratelimit.Caller, store Store, opts Options) *Summarizer {
	return &Summarizer{client: newClient(p, caller, store, opts)}
}

// Summarize returns the meta-summary of results, in order. An empty batch
// fails with ErrEmptyBatch without contacting the provider.
func (s *Summarizer) Summarize(ctx context.Context, results []Result) (string, error) {
	if len(results) == 0 {
		return "", ErrEmptyBatch
	}
	analyses := make([]string, len(results))
	for i, r := range results {
		analyses[i] = r.Analysis
	}
	content := BuildMetaContent(analyses)

	if entry, ok := s.store.Get(MetaItemID, content); ok {
		var rec metaRecord
		if err := entry.Decode(&rec); err == nil && rec.Summary != "" {
			s.logger.Info("using cached meta-summary", "papers", len(results))
			return rec.Summary, nil
		}
	}

	s.logger.Info("generating meta-summary", "papers", len(results))
	text, err := s.complete(ctx, MetaItemID, content)
	if err != nil {
		return "", &ItemError{ItemID: MetaItemID, Err: err}
	}
	if text == "" {
		s.logger.Warn("provider returned an empty meta-summary, not caching it")
		return text, nil
	}
	_ = s.store.Save(MetaItemID, content, metaRecord{Summary: text, Papers: len(results)})
	return text, nil
}
