package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/diogo-cruz/literature-review/internal/analysis"
	"github.com/diogo-cruz/literature-review/internal/arxiv"
	"github.com/diogo-cruz/literature-review/internal/extract"
	"github.com/diogo-cruz/literature-review/internal/logging"
	"github.com/diogo-cruz/literature-review/internal/redact"
)

const (
	toolName    = "litreview"
	toolVersion = "1.0.0"
)

// Fetcher resolves a paper link to a local PDF. *arxiv.Client satisfies it.
type Fetcher interface {
	Download(ctx context.Context, link string) (string, error)
}

// Analyzer produces the analysis of one paper. *analysis.Analyzer satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, itemID, sourceText, contextText string) (analysis.Result, error)
}

// Summarizer aggregates analyses. *analysis.Summarizer satisfies it.
type Summarizer interface {
	Summarize(ctx context.Context, results []analysis.Result) (string, error)
}

// Sink persists the outputs of a run. *output.SummaryWriter satisfies it.
type Sink interface {
	WriteIndividual(results []analysis.Result) ([]string, error)
	WriteMeta(text string) (string, error)
}

// Options controls a Pipeline.
type Options struct {
	ContinueOnError  bool
	StrictExtraction bool
	SkipMetaSummary  bool
	RedactSecrets    bool

	// Provider and Model are recorded in the report.
	Provider string
	Model    string

	// Extract reads a downloaded paper; defaults to extract.Text.
	Extract func(path string) (string, error)
	Logger  *slog.Logger
}

// Pipeline runs batches of papers through fetch, extract, analyze and write.
type Pipeline struct {
	fetcher    Fetcher
	analyzer   Analyzer
	summarizer Summarizer
	sink       Sink
	opts       Options
	logger     *slog.Logger
}

// New creates a Pipeline.
func New(f Fetcher, a Analyzer, s Summarizer, sink Sink, opts Options) *Pipeline {
	if opts.Extract == nil {
		opts.Extract = extract.Text
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{fetcher: f, analyzer: a, summarizer: s, sink: sink, opts: opts, logger: logger}
}

// Run processes links in order against the project context. The returned
// report is never nil; when an error aborts the batch it records how far the
// run got.
func (p *Pipeline) Run(ctx context.Context, links []string, contextText string) (*Report, error) {
	start := time.Now()
	report := p.newReport(start)

	if p.opts.RedactSecrets {
		contextText = redact.Secrets(contextText)
	}

	var (
		results       []analysis.Result
		fetchDuration time.Duration
		llmDuration   time.Duration
	)
	finish := func() {
		report.Summary = ComputeSummary(report.Items)
		report.Timing = Timing{
			FetchMs: fetchDuration.Milliseconds(),
			LLMMs:   llmDuration.Milliseconds(),
			TotalMs: time.Since(start).Milliseconds(),
		}
	}

	for i, link := range links {
		item := Item{Link: link}
		logger := p.logger.With("paper", i+1, "link", link)

		fetchStart := time.Now()
		text, err := p.source(ctx, &item)
		fetchDuration += time.Since(fetchStart)
		if err != nil {
			if abort := p.fail(report, &item, logger, err); abort != nil {
				finish()
				return report, abort
			}
			continue
		}

		llmStart := time.Now()
		res, err := p.analyzer.Analyze(ctx, item.ID, text, contextText)
		llmDuration += time.Since(llmStart)
		if err != nil {
			if abort := p.fail(report, &item, logger, err); abort != nil {
				finish()
				return report, abort
			}
			continue
		}

		item.Status = StatusAnalyzed
		if res.Cached {
			item.Status = StatusCached
		}
		logger.Info("paper analyzed", "id", item.ID, "cached", res.Cached)
		report.Items = append(report.Items, item)
		results = append(results, res)
	}

	if len(results) > 0 {
		paths, err := p.sink.WriteIndividual(results)
		report.Outputs.Summaries = paths
		if err != nil {
			finish()
			return report, fmt.Errorf("writing summaries: %w", err)
		}
	}

	if !p.opts.SkipMetaSummary {
		llmStart := time.Now()
		path, err := p.meta(ctx, results)
		llmDuration += time.Since(llmStart)
		report.Outputs.MetaSummary = path
		if err != nil {
			finish()
			return report, err
		}
	}

	finish()
	return report, nil
}

// Summarize writes a meta-summary for previously produced results.
func (p *Pipeline) Summarize(ctx context.Context, results []analysis.Result) (string, error) {
	return p.meta(ctx, results)
}

func (p *Pipeline) meta(ctx context.Context, results []analysis.Result) (string, error) {
	text, err := p.summarizer.Summarize(ctx, results)
	if errors.Is(err, analysis.ErrEmptyBatch) {
		p.logger.Warn("no analyses to summarize, skipping meta-summary")
		return "", nil
	}
	if err != nil {
		return "", err
	}
	path, err := p.sink.WriteMeta(text)
	if err != nil {
		return "", fmt.Errorf("writing meta-summary: %w", err)
	}
	p.logger.Info("meta-summary written", "path", path)
	return path, nil
}

// source fetches and extracts the paper behind item.Link.
func (p *Pipeline) source(ctx context.Context, item *Item) (string, error) {
	id, err := arxiv.ParseID(item.Link)
	if err != nil {
		return "", err
	}
	item.ID = id

	path, err := p.fetcher.Download(ctx, item.Link)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", id, err)
	}
	item.PDF = path

	text, err := p.opts.Extract(path)
	if err != nil {
		if p.opts.StrictExtraction {
			return "", fmt.Errorf("extracting %s: %w", id, err)
		}
		p.logger.Warn("text extraction failed, sending placeholder", "id", id, "path", path, "error", err)
		item.ExtractionError = err.Error()
		text = extract.Sentinel(err)
	}
	if p.opts.RedactSecrets {
		text = redact.Secrets(text)
	}
	return text, nil
}

// fail records a failed item and returns a non-nil error when the batch must stop.
func (p *Pipeline) fail(report *Report, item *Item, logger *slog.Logger, err error) error {
	item.Status = StatusFailed
	item.Error = err.Error()
	report.Items = append(report.Items, *item)
	if !p.opts.ContinueOnError || ctxDone(err) {
		logger.Error("paper failed, aborting batch", "error", err)
		return err
	}
	logger.Warn("paper failed, continuing", "error", err)
	return nil
}

func ctxDone(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (p *Pipeline) newReport(start time.Time) *Report {
	return &Report{
		Tool:      toolName,
		Version:   toolVersion,
		RunID:     uuid.NewString(),
		Provider:  p.opts.Provider,
		Model:     p.opts.Model,
		StartedAt: start.UTC(),
		Items:     []Item{},
	}
}
