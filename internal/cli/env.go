package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/diogo-cruz/literature-review/internal/analysis"
	"github.com/diogo-cruz/literature-review/internal/arxiv"
	"github.com/diogo-cruz/literature-review/internal/cache"
	"github.com/diogo-cruz/literature-review/internal/config"
	"github.com/diogo-cruz/literature-review/internal/logging"
	"github.com/diogo-cruz/literature-review/internal/output"
	"github.com/diogo-cruz/literature-review/internal/providers"
	"github.com/diogo-cruz/literature-review/internal/ratelimit"
	"github.com/diogo-cruz/literature-review/internal/review"
)

// Shared analysis flags
var (
	flagProvider         string
	flagModel            string
	flagContinueOnError  bool
	flagNoMeta           bool
	flagStrictExtraction bool
)

// buildOverrides maps set flags onto config keys.
func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["llm.provider"] = flagProvider
	}
	if flagModel != "" {
		m["llm.model"] = flagModel
	}
	if flagLogLevel != "" {
		m["logging.level"] = flagLogLevel
	}
	if flagLogFormat != "" {
		m["logging.format"] = flagLogFormat
	}
	if flagContinueOnError {
		m["review.continue_on_error"] = strconv.FormatBool(true)
	}
	if flagNoMeta {
		m["review.skip_meta_summary"] = strconv.FormatBool(true)
	}
	if flagStrictExtraction {
		m["review.strict_extraction"] = strconv.FormatBool(true)
	}
	return m
}

// env is the configuration and logger shared by one command invocation.
type env struct {
	cfg      config.Config
	logger   *slog.Logger
	closeLog func() error
}

func loadEnv() (*env, error) {
	cfg, err := config.Load(flagConfig, buildOverrides())
	if err != nil {
		return nil, err
	}
	logger, closeLog, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
	if err != nil {
		return nil, err
	}
	if cfg.Source != "" {
		logger.Debug("config loaded", "path", cfg.Source)
	}
	return &env{cfg: cfg, logger: logger, closeLog: closeLog}, nil
}

func (e *env) close() {
	if err := e.closeLog(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing log file: %v\n", err)
	}
}

func (e *env) arxivClient() *arxiv.Client {
	return arxiv.New(e.cfg.Files.PapersDir, arxiv.WithLogger(e.logger))
}

func (e *env) openCache() (*cache.Cache, error) {
	opts := []cache.Option{
		cache.WithLogger(e.logger),
		cache.WithMemoryEntries(e.cfg.Cache.MemoryEntries),
	}
	if !e.cfg.Cache.Enabled {
		opts = append(opts, cache.Disabled())
	}
	c, err := cache.New(e.cfg.Cache.Dir, opts...)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return c, nil
}

// pipeline builds the provider, rate-limited caller, cache and writers for a
// batch run.
func (e *env) pipeline() (*review.Pipeline, error) {
	cfg := e.cfg
	p, err := providers.New(cfg.LLM.Provider, cfg.LLM.Model, providers.WithRegion(cfg.Bedrock.Region))
	if err != nil {
		return nil, err
	}
	store, err := e.openCache()
	if err != nil {
		return nil, err
	}
	instructions, err := analysis.LoadInstructions(cfg.LLM.PromptFile)
	if err != nil {
		return nil, err
	}

	caller := ratelimit.New(ratelimit.Config{
		MinInterval: cfg.RateLimit.MinInterval(),
		MaxRetries:  cfg.RateLimit.MaxRetries,
		BaseBackoff: cfg.RateLimit.BaseBackoff(),
	}, ratelimit.WithLogger(e.logger))

	opts := analysis.Options{
		MaxTokens:         cfg.LLM.MaxTokens,
		Temperature:       cfg.LLM.Temperature,
		Instructions:      instructions,
		ContextTokenLimit: cfg.LLM.ContextTokenLimit,
		Logger:            e.logger,
	}
	sink, err := output.NewSummaryWriter(cfg.Files.SummariesDir, time.Now)
	if err != nil {
		return nil, err
	}

	return review.New(
		e.arxivClient(),
		analysis.NewAnalyzer(p, caller, store, opts),
		analysis.NewSummarizer(p, caller, store, opts),
		sink,
		review.Options{
			ContinueOnError:  cfg.Review.ContinueOnError,
			StrictExtraction: cfg.Review.StrictExtraction,
			SkipMetaSummary:  cfg.Review.SkipMetaSummary,
			RedactSecrets:    cfg.Privacy.RedactSecrets,
			Provider:         p.Name(),
			Model:            cfg.LLM.Model,
			Logger:           e.logger,
		},
	), nil
}

// paperLinks returns args, or the links listed in the paper list file.
func (e *env) paperLinks(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	data, err := os.ReadFile(e.cfg.Files.PaperList)
	if err != nil {
		return nil, fmt.Errorf("reading paper list: %w", err)
	}
	links := arxiv.ReadLinks(string(data))
	if len(links) == 0 {
		return nil, fmt.Errorf("paper list %s has no links", e.cfg.Files.PaperList)
	}
	return links, nil
}

// reportError prints err and sets the exit code for it.
func reportError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	exitCode = exitCodeFor(err)
}

func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case providers.IsAuthError(err):
		return ExitAuthError
	default:
		return ExitRuntimeError
	}
}
