package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the config file name looked up in the working directory and the
// per-user config directory.
const FileName = "config.toml"

var knownProviders = []string{"anthropic", "openai", "gemini", "google", "ollama", "lmstudio", "bedrock"}

// Config represents the litreview configuration.
type Config struct {
	LLM       LLMConfig       `toml:"llm"`
	Files     FilesConfig     `toml:"files"`
	Cache     CacheConfig     `toml:"cache"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Review    ReviewConfig    `toml:"review"`
	Privacy   PrivacyConfig   `toml:"privacy"`
	Logging   LoggingConfig   `toml:"logging"`
	Bedrock   BedrockConfig   `toml:"bedrock"`

	// Source is the file the config was read from, if any.
	Source string `toml:"-"`
}

// LLMConfig selects the provider and request parameters.
type LLMConfig struct {
	Provider          string  `toml:"provider"`
	Model             string  `toml:"model"`
	MaxTokens         int     `toml:"max_tokens"`
	Temperature       float64 `toml:"temperature"`
	ContextTokenLimit int     `toml:"context_token_limit"`
	PromptFile        string  `toml:"prompt_file,omitempty"`
}

// FilesConfig names the inputs and output directories.
type FilesConfig struct {
	ProjectDoc   string `toml:"project_doc"`
	PaperList    string `toml:"paper_list"`
	SummariesDir string `toml:"summaries_dir"`
	PapersDir    string `toml:"papers_dir"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled       bool   `toml:"enabled"`
	Dir           string `toml:"dir"`
	MemoryEntries int    `toml:"memory_entries"`
}

// RateLimitConfig holds pacing and retry parameters, in seconds.
type RateLimitConfig struct {
	MinIntervalSeconds float64 `toml:"min_interval_seconds"`
	MaxRetries         int     `toml:"max_retries"`
	BaseBackoffSeconds float64 `toml:"base_backoff_seconds"`
}

// MinInterval returns the pacing interval as a duration.
func (r RateLimitConfig) MinInterval() time.Duration {
	return seconds(r.MinIntervalSeconds)
}

// BaseBackoff returns the first retry wait as a duration.
func (r RateLimitConfig) BaseBackoff() time.Duration {
	return seconds(r.BaseBackoffSeconds)
}

// ReviewConfig controls the batch pipeline.
type ReviewConfig struct {
	ContinueOnError  bool `toml:"continue_on_error"`
	StrictExtraction bool `toml:"strict_extraction"`
	SkipMetaSummary  bool `toml:"skip_meta_summary"`
}

// PrivacyConfig controls redaction behavior.
type PrivacyConfig struct {
	RedactSecrets bool `toml:"redact_secrets"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file,omitempty"`
}

// BedrockConfig holds AWS Bedrock settings.
type BedrockConfig struct {
	Region string `toml:"region,omitempty"`
}

// legacyLLM is the [claude] table of older config files.
type legacyLLM struct {
	Model       *string  `toml:"model"`
	MaxTokens   *int     `toml:"max_tokens"`
	Temperature *float64 `toml:"temperature"`
}

// fileConfig is what a config file may contain.
type fileConfig struct {
	LLM       LLMConfig       `toml:"llm"`
	Claude    *legacyLLM      `toml:"claude"`
	Files     FilesConfig     `toml:"files"`
	Cache     CacheConfig     `toml:"cache"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Review    ReviewConfig    `toml:"review"`
	Privacy   PrivacyConfig   `toml:"privacy"`
	Logging   LoggingConfig   `toml:"logging"`
	Bedrock   BedrockConfig   `toml:"bedrock"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		LLM: LLMConfig{
			Provider:          "anthropic",
			Model:             "claude-3-5-haiku-latest",
			MaxTokens:         4000,
			Temperature:       0,
			ContextTokenLimit: 180000,
		},
		Files: FilesConfig{
			ProjectDoc:   "project.docx",
			PaperList:    "paper_list.txt",
			SummariesDir: "summaries",
			PapersDir:    "papers",
		},
		Cache: CacheConfig{
			Enabled:       true,
			Dir:           ".cache",
			MemoryEntries: 256,
		},
		RateLimit: RateLimitConfig{
			MinIntervalSeconds: 2,
			MaxRetries:         5,
			BaseBackoffSeconds: 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for litreview.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "litreview"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "litreview"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "litreview"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "litreview"), nil
	default:
		return filepath.Join(home, ".config", "litreview"), nil
	}
}

// ConfigPath returns the full path to the per-user config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Discover returns the config file to use when none is given: ./config.toml
// if present, else the per-user path (which may not exist).
func Discover() (string, error) {
	if _, err := os.Stat(FileName); err == nil {
		return FileName, nil
	}
	return ConfigPath()
}

// LoadFile applies the file at path on top of cfg. A missing file is not an
// error and leaves cfg untouched.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	fc := fileConfig{
		LLM:       cfg.LLM,
		Files:     cfg.Files,
		Cache:     cfg.Cache,
		RateLimit: cfg.RateLimit,
		Review:    cfg.Review,
		Privacy:   cfg.Privacy,
		Logging:   cfg.Logging,
		Bedrock:   cfg.Bedrock,
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("parsing config file %s: %s", path, strict.String())
		}
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	cfg.LLM = fc.LLM
	if fc.Claude != nil && !hasTable(data, "llm") {
		applyLegacy(&cfg.LLM, *fc.Claude)
	}
	cfg.Files = fc.Files
	cfg.Cache = fc.Cache
	cfg.RateLimit = fc.RateLimit
	cfg.Review = fc.Review
	cfg.Privacy = fc.Privacy
	cfg.Logging = fc.Logging
	cfg.Bedrock = fc.Bedrock
	cfg.Source = path
	return nil
}

func hasTable(data []byte, name string) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}
	_, ok := raw[name]
	return ok
}

func applyLegacy(dst *LLMConfig, src legacyLLM) {
	if src.Model != nil {
		dst.Model = *src.Model
	}
	if src.MaxTokens != nil {
		dst.MaxTokens = *src.MaxTokens
	}
	if src.Temperature != nil {
		dst.Temperature = *src.Temperature
	}
}

// Save writes cfg to path as TOML, creating parent directories.
func Save(cfg Config, path string) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// path selects the file; empty means Discover. The overrides map comes from
// CLI flags and uses SetField keys.
func Load(path string, overrides map[string]string) (Config, error) {
	cfg := Default()

	if path == "" {
		p, err := Discover()
		if err != nil {
			return Config{}, err
		}
		path = p
	}
	if err := LoadFile(&cfg, path); err != nil {
		return Config{}, err
	}
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var envKeys = map[string]string{
	"LITREVIEW_PROVIDER":    "llm.provider",
	"LITREVIEW_MODEL":       "llm.model",
	"LITREVIEW_MAX_TOKENS":  "llm.max_tokens",
	"LITREVIEW_TEMPERATURE": "llm.temperature",
	"LITREVIEW_CACHE_DIR":   "cache.dir",
	"LITREVIEW_LOG_LEVEL":   "logging.level",
}

func mergeEnv(cfg *Config) error {
	names := make([]string, 0, len(envKeys))
	for name := range envKeys {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		if err := SetField(cfg, envKeys[name], v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	keys := make([]string, 0, len(overrides))
	for k, v := range overrides {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := SetField(cfg, k, overrides[k]); err != nil {
			return err
		}
	}
	return nil
}

type setter func(cfg *Config, value string) error

func stringField(get func(*Config) *string) setter {
	return func(cfg *Config, v string) error {
		*get(cfg) = v
		return nil
	}
}

func intField(key string, get func(*Config) *int) setter {
	return func(cfg *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", key, err)
		}
		*get(cfg) = n
		return nil
	}
}

func floatField(key string, get func(*Config) *float64) setter {
	return func(cfg *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s must be a number: %w", key, err)
		}
		*get(cfg) = f
		return nil
	}
}

func boolField(key string, get func(*Config) *bool) setter {
	return func(cfg *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s must be true or false: %w", key, err)
		}
		*get(cfg) = b
		return nil
	}
}

var fields = map[string]setter{
	"llm.provider":                    stringField(func(c *Config) *string { return &c.LLM.Provider }),
	"llm.model":                       stringField(func(c *Config) *string { return &c.LLM.Model }),
	"llm.max_tokens":                  intField("llm.max_tokens", func(c *Config) *int { return &c.LLM.MaxTokens }),
	"llm.temperature":                 floatField("llm.temperature", func(c *Config) *float64 { return &c.LLM.Temperature }),
	"llm.context_token_limit":         intField("llm.context_token_limit", func(c *Config) *int { return &c.LLM.ContextTokenLimit }),
	"llm.prompt_file":                 stringField(func(c *Config) *string { return &c.LLM.PromptFile }),
	"files.project_doc":               stringField(func(c *Config) *string { return &c.Files.ProjectDoc }),
	"files.paper_list":                stringField(func(c *Config) *string { return &c.Files.PaperList }),
	"files.summaries_dir":             stringField(func(c *Config) *string { return &c.Files.SummariesDir }),
	"files.papers_dir":                stringField(func(c *Config) *string { return &c.Files.PapersDir }),
	"cache.enabled":                   boolField("cache.enabled", func(c *Config) *bool { return &c.Cache.Enabled }),
	"cache.dir":                       stringField(func(c *Config) *string { return &c.Cache.Dir }),
	"cache.memory_entries":            intField("cache.memory_entries", func(c *Config) *int { return &c.Cache.MemoryEntries }),
	"rate_limit.min_interval_seconds": floatField("rate_limit.min_interval_seconds", func(c *Config) *float64 { return &c.RateLimit.MinIntervalSeconds }),
	"rate_limit.max_retries":          intField("rate_limit.max_retries", func(c *Config) *int { return &c.RateLimit.MaxRetries }),
	"rate_limit.base_backoff_seconds": floatField("rate_limit.base_backoff_seconds", func(c *Config) *float64 { return &c.RateLimit.BaseBackoffSeconds }),
	"review.continue_on_error":        boolField("review.continue_on_error", func(c *Config) *bool { return &c.Review.ContinueOnError }),
	"review.strict_extraction":        boolField("review.strict_extraction", func(c *Config) *bool { return &c.Review.StrictExtraction }),
	"review.skip_meta_summary":        boolField("review.skip_meta_summary", func(c *Config) *bool { return &c.Review.SkipMetaSummary }),
	"privacy.redact_secrets":          boolField("privacy.redact_secrets", func(c *Config) *bool { return &c.Privacy.RedactSecrets }),
	"logging.level":                   stringField(func(c *Config) *string { return &c.Logging.Level }),
	"logging.format":                  stringField(func(c *Config) *string { return &c.Logging.Format }),
	"logging.file":                    stringField(func(c *Config) *string { return &c.Logging.File }),
	"bedrock.region":                  stringField(func(c *Config) *string { return &c.Bedrock.Region }),
}

// short names accepted by SetField for the most common keys
var aliases = map[string]string{
	"provider": "llm.provider",
	"model":    "llm.model",
}

// Keys returns every key SetField accepts, sorted.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	if full, ok := aliases[key]; ok {
		key = full
	}
	set, ok := fields[key]
	if !ok {
		return fmt.Errorf("unknown config key: %s", key)
	}
	return set(cfg, value)
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if !slices.Contains(knownProviders, c.LLM.Provider) {
		return fmt.Errorf("unknown provider %q (valid: %s)", c.LLM.Provider, strings.Join(knownProviders, ", "))
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be positive, got %d", c.LLM.MaxTokens)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2, got %g", c.LLM.Temperature)
	}
	if c.RateLimit.MinIntervalSeconds < 0 || c.RateLimit.BaseBackoffSeconds < 0 || c.RateLimit.MaxRetries < 0 {
		return fmt.Errorf("rate_limit values must not be negative")
	}
	if c.Cache.MemoryEntries < 0 {
		return fmt.Errorf("cache.memory_entries must not be negative")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
