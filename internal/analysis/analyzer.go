package analysis

import (
	"context"
	"log/slog"

	"github.com/diogo-cruz/literature-review/internal/logging"
	"github.com/diogo-cruz/literature-review/internal/providers"
	"github.com/diogo-cruz/literature-review/internal/ratelimit"
)

// Options tunes the requests sent by Analyzer and Summarizer.
type Options struct {
	MaxTokens   int
	Temperature float64

	// Instructions is appended to every paper request. Empty means the
	// built-in template.
	Instructions string

	// ContextTokenLimit triggers a warning when a request is estimated to
	// exceed it. Zero disables the check.
	ContextTokenLimit int

	Logger *slog.Logger
}

// client is the request path shared by Analyzer and Summarizer.
type client struct {
	provider providers.Provider
	caller   *ratelimit.Caller
	store    Store
	opts     Options
	logger   *slog.Logger
}

func newClient(p providers.Provider, caller *ratelimit.Caller, store Store, opts Options) client {
	if store == nil {
		store = noStore{}
	}
	if caller == nil {
		caller = ratelimit.New(ratelimit.DefaultConfig())
	}
	if opts.Instructions == "" {
		opts.Instructions = defaultInstructions
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return client{provider: p, caller: caller, store: store, opts: opts, logger: logger}
}

// complete sends content through the rate-limited caller.
func (c *client) complete(ctx context.Context, itemID, content string) (string, error) {
	if c.opts.ContextTokenLimit > 0 || c.logger.Enabled(ctx, slog.LevelDebug) {
		est := EstimateTokens(content, c.provider.Name())
		c.logger.Debug("sending request", "item", itemID, "provider", c.provider.Name(), "estimated_tokens", est)
		if c.opts.ContextTokenLimit > 0 && est > c.opts.ContextTokenLimit {
			c.logger.Warn("request may exceed the model context window",
				"item", itemID,
				"estimated_tokens", est,
				"limit", c.opts.ContextTokenLimit,
			)
		}
	}

	var text string
	err := c.caller.Do(ctx, itemID, func(ctx context.Context) error {
		resp, err := c.provider.Complete(ctx, providers.Request{
			Prompt:      content,
			MaxTokens:   c.opts.MaxTokens,
			Temperature: c.opts.Temperature,
		})
		if err != nil {
			return err
		}
		text = resp.Content
		return nil
	})
	return text, err
}

// Analyzer produces the analysis of a single paper.
type Analyzer struct {
	client
}

// NewAnalyzer creates an Analyzer. The caller should be the run-wide shared
// instance; store may be nil to disable caching.
func NewAnalyzer(p providers.Provider, caller *ratelimit.Caller, store Store, opts Options) *Analyzer {
	return &Analyzer{client: newClient(p, caller, store, opts)}
}

// Analyze returns the analysis of sourceText in the light of contextText,
// from the cache when available. Provider failures, exhausted retries
// included, are returned as *ItemError and nothing is cached.
func (a *Analyzer) Analyze(ctx context.Context, itemID, sourceText, contextText string) (Result, error) {
	content := BuildContent(contextText, sourceText, a.opts.Instructions)

	if entry, ok := a.store.Get(itemID, content); ok {
		var res Result
		if err := entry.Decode(&res); err == nil && res.Analysis != "" {
			res.Cached = true
			a.logger.Info("using cached analysis", "item", itemID, "legacy_key", entry.Legacy)
			return res, nil
		}
		a.logger.Warn("cached analysis has unexpected shape, requesting a new one", "item", itemID, "path", entry.Path)
	}

	a.logger.Info("analyzing", "item", itemID)
	text, err := a.complete(ctx, itemID, content)
	if err != nil {
		return Result{}, &ItemError{ItemID: itemID, Err: err}
	}

	res := Result{
		Analysis:    text,
		SourceText:  sourceText,
		ContextText: contextText,
	}
	if text == "" {
		a.logger.Warn("provider returned an empty analysis, not caching it", "item", itemID)
		return res, nil
	}
	// Save failures are logged by the store and never fail the analysis.
	_ = a.store.Save(itemID, content, res)
	return res, nil
}
