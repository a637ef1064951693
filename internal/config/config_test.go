package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for name := range envKeys {
		t.Setenv(name, "")
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.LLM.Provider != "anthropic" {
		t.Errorf("Default provider = %q, want %q", cfg.LLM.Provider, "anthropic")
	}
	if cfg.LLM.MaxTokens != 4000 {
		t.Errorf("Default max_tokens = %d, want 4000", cfg.LLM.MaxTokens)
	}
	if cfg.LLM.Temperature != 0 {
		t.Errorf("Default temperature = %g, want 0", cfg.LLM.Temperature)
	}
	if cfg.Files.SummariesDir != "summaries" {
		t.Errorf("Default summaries_dir = %q, want %q", cfg.Files.SummariesDir, "summaries")
	}
	if !cfg.Cache.Enabled {
		t.Error("Default cache should be enabled")
	}
	if cfg.RateLimit.MinInterval() != 2*time.Second {
		t.Errorf("Default min interval = %v, want 2s", cfg.RateLimit.MinInterval())
	}
	if cfg.RateLimit.BaseBackoff() != time.Minute {
		t.Errorf("Default base backoff = %v, want 1m", cfg.RateLimit.BaseBackoff())
	}
	if cfg.RateLimit.MaxRetries != 5 {
		t.Errorf("Default max retries = %d, want 5", cfg.RateLimit.MaxRetries)
	}
	if cfg.Privacy.RedactSecrets {
		t.Error("Default redact_secrets should be false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config invalid: %v", err)
	}
}

func TestMergeEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("LITREVIEW_PROVIDER", "openai")
	t.Setenv("LITREVIEW_MODEL", "gpt-4o")
	t.Setenv("LITREVIEW_MAX_TOKENS", "2048")
	t.Setenv("LITREVIEW_TEMPERATURE", "0.5")
	t.Setenv("LITREVIEW_CACHE_DIR", "/tmp/lr-cache")
	t.Setenv("LITREVIEW_LOG_LEVEL", "debug")

	cfg := Default()
	if err := mergeEnv(&cfg); err != nil {
		t.Fatalf("mergeEnv error: %v", err)
	}

	if cfg.LLM.Provider != "openai" {
		t.Errorf("Provider = %q, want %q", cfg.LLM.Provider, "openai")
	}
	if cfg.LLM.Model != "gpt-4o" {
		t.Errorf("Model = %q, want %q", cfg.LLM.Model, "gpt-4o")
	}
	if cfg.LLM.MaxTokens != 2048 {
		t.Errorf("MaxTokens = %d, want 2048", cfg.LLM.MaxTokens)
	}
	if cfg.LLM.Temperature != 0.5 {
		t.Errorf("Temperature = %g, want 0.5", cfg.LLM.Temperature)
	}
	if cfg.Cache.Dir != "/tmp/lr-cache" {
		t.Errorf("Cache.Dir = %q, want %q", cfg.Cache.Dir, "/tmp/lr-cache")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestMergeEnv_InvalidMaxTokens(t *testing.T) {
	clearEnv(t)
	t.Setenv("LITREVIEW_MAX_TOKENS", "lots")

	cfg := Default()
	err := mergeEnv(&cfg)
	if err == nil {
		t.Fatal("expected error for non-integer LITREVIEW_MAX_TOKENS")
	}
	if !strings.Contains(err.Error(), "LITREVIEW_MAX_TOKENS") {
		t.Errorf("error should name the variable, got %v", err)
	}
}

func TestMergeOverrides(t *testing.T) {
	cfg := Default()
	overrides := map[string]string{
		"provider":                 "gemini",
		"model":                    "gemini-2.0-flash",
		"review.continue_on_error": "true",
		"llm.max_tokens":           "",
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		t.Fatalf("mergeOverrides error: %v", err)
	}
	if cfg.LLM.Provider != "gemini" {
		t.Errorf("Provider = %q, want %q", cfg.LLM.Provider, "gemini")
	}
	if cfg.LLM.Model != "gemini-2.0-flash" {
		t.Errorf("Model = %q, want %q", cfg.LLM.Model, "gemini-2.0-flash")
	}
	if !cfg.Review.ContinueOnError {
		t.Error("ContinueOnError should be true")
	}
	if cfg.LLM.MaxTokens != 4000 {
		t.Errorf("empty override changed MaxTokens to %d", cfg.LLM.MaxTokens)
	}
}

func TestMergeOverrides_Nil(t *testing.T) {
	cfg := Default()
	if err := mergeOverrides(&cfg, nil); err != nil {
		t.Fatalf("mergeOverrides(nil) error: %v", err)
	}
	if cfg != Default() {
		t.Error("nil overrides should leave config unchanged")
	}
}

func TestSetField(t *testing.T) {
	tests := []struct {
		key   string
		value string
		check func(Config) bool
	}{
		{"llm.provider", "ollama", func(c Config) bool { return c.LLM.Provider == "ollama" }},
		{"model", "llama3", func(c Config) bool { return c.LLM.Model == "llama3" }},
		{"llm.temperature", "0.7", func(c Config) bool { return c.LLM.Temperature == 0.7 }},
		{"files.papers_dir", "pdfs", func(c Config) bool { return c.Files.PapersDir == "pdfs" }},
		{"cache.enabled", "false", func(c Config) bool { return !c.Cache.Enabled }},
		{"rate_limit.max_retries", "3", func(c Config) bool { return c.RateLimit.MaxRetries == 3 }},
		{"rate_limit.min_interval_seconds", "0.5", func(c Config) bool { return c.RateLimit.MinInterval() == 500*time.Millisecond }},
		{"privacy.redact_secrets", "true", func(c Config) bool { return c.Privacy.RedactSecrets }},
		{"bedrock.region", "eu-west-1", func(c Config) bool { return c.Bedrock.Region == "eu-west-1" }},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cfg := Default()
			if err := SetField(&cfg, tt.key, tt.value); err != nil {
				t.Fatalf("SetField(%q, %q) error: %v", tt.key, tt.value, err)
			}
			if !tt.check(cfg) {
				t.Errorf("SetField(%q, %q) did not apply", tt.key, tt.value)
			}
		})
	}
}

func TestSetField_UnknownKey(t *testing.T) {
	cfg := Default()
	if err := SetField(&cfg, "claude.model", "x"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestSetField_InvalidValues(t *testing.T) {
	cfg := Default()
	if err := SetField(&cfg, "llm.max_tokens", "abc"); err == nil {
		t.Error("expected error for non-integer max_tokens")
	}
	if err := SetField(&cfg, "llm.temperature", "warm"); err == nil {
		t.Error("expected error for non-numeric temperature")
	}
	if err := SetField(&cfg, "cache.enabled", "maybe"); err == nil {
		t.Error("expected error for non-bool cache.enabled")
	}
}

func TestKeys(t *testing.T) {
	keys := Keys()
	if len(keys) != len(fields) {
		t.Fatalf("Keys() returned %d keys, want %d", len(keys), len(fields))
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			t.Fatalf("Keys() not sorted at %d: %q > %q", i, keys[i-1], keys[i])
		}
	}
}

func TestConfigPrecedence(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
[llm]
provider = "openai"
model = "file-model"
max_tokens = 1000
`)
	t.Setenv("LITREVIEW_MODEL", "env-model")

	cfg, err := Load(path, map[string]string{"llm.max_tokens": "3000"})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.LLM.Provider != "openai" {
		t.Errorf("Provider = %q, want file value %q", cfg.LLM.Provider, "openai")
	}
	if cfg.LLM.Model != "env-model" {
		t.Errorf("Model = %q, want env value %q", cfg.LLM.Model, "env-model")
	}
	if cfg.LLM.MaxTokens != 3000 {
		t.Errorf("MaxTokens = %d, want override 3000", cfg.LLM.MaxTokens)
	}
	if cfg.Source != path {
		t.Errorf("Source = %q, want %q", cfg.Source, path)
	}
}

func TestLoadFile_PartialKeepsDefaults(t *testing.T) {
	path := writeFile(t, `
[files]
paper_list = "reading.txt"

[cache]
enabled = false
`)
	cfg := Default()
	if err := LoadFile(&cfg, path); err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if cfg.Files.PaperList != "reading.txt" {
		t.Errorf("PaperList = %q, want %q", cfg.Files.PaperList, "reading.txt")
	}
	if cfg.Files.ProjectDoc != "project.docx" {
		t.Errorf("ProjectDoc = %q, want default", cfg.Files.ProjectDoc)
	}
	if cfg.Cache.Enabled {
		t.Error("Cache.Enabled should be false")
	}
	if cfg.Cache.Dir != ".cache" {
		t.Errorf("Cache.Dir = %q, want default", cfg.Cache.Dir)
	}
	if cfg.LLM.Model != "claude-3-5-haiku-latest" {
		t.Errorf("Model = %q, want default", cfg.LLM.Model)
	}
}

func TestLoadFile_LegacyClaudeTable(t *testing.T) {
	path := writeFile(t, `
[claude]
model = "claude-3-opus-20240229"
max_tokens = 8000
temperature = 0.3

[files]
project_doc = "context.docx"
`)
	cfg := Default()
	if err := LoadFile(&cfg, path); err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if cfg.LLM.Model != "claude-3-opus-20240229" {
		t.Errorf("Model = %q, want legacy value", cfg.LLM.Model)
	}
	if cfg.LLM.MaxTokens != 8000 {
		t.Errorf("MaxTokens = %d, want 8000", cfg.LLM.MaxTokens)
	}
	if cfg.LLM.Temperature != 0.3 {
		t.Errorf("Temperature = %g, want 0.3", cfg.LLM.Temperature)
	}
	if cfg.LLM.Provider != "anthropic" {
		t.Errorf("Provider = %q, want default", cfg.LLM.Provider)
	}
	if cfg.Files.ProjectDoc != "context.docx" {
		t.Errorf("ProjectDoc = %q, want %q", cfg.Files.ProjectDoc, "context.docx")
	}
}

func TestLoadFile_LLMTableWinsOverLegacy(t *testing.T) {
	path := writeFile(t, `
[claude]
model = "old-model"

[llm]
model = "new-model"
`)
	cfg := Default()
	if err := LoadFile(&cfg, path); err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if cfg.LLM.Model != "new-model" {
		t.Errorf("Model = %q, want %q", cfg.LLM.Model, "new-model")
	}
}

func TestLoadFile_UnknownKey(t *testing.T) {
	path := writeFile(t, `
[llm]
modle = "typo"
`)
	cfg := Default()
	err := LoadFile(&cfg, path)
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "modle") {
		t.Errorf("error should name the unknown key, got %v", err)
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	path := writeFile(t, "[llm\nprovider = ")
	cfg := Default()
	if err := LoadFile(&cfg, path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadFile_NoFile(t *testing.T) {
	cfg := Default()
	if err := LoadFile(&cfg, filepath.Join(t.TempDir(), "missing.toml")); err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if cfg != Default() {
		t.Error("missing file should leave config unchanged")
	}
}

func TestConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir error: %v", err)
	}
	if dir != "/tmp/xdg-test/litreview" {
		t.Errorf("ConfigDir = %q, want %q", dir, "/tmp/xdg-test/litreview")
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath error: %v", err)
	}
	if path != "/tmp/xdg-test/litreview/config.toml" {
		t.Errorf("ConfigPath = %q, want %q", path, "/tmp/xdg-test/litreview/config.toml")
	}
}

func TestDiscover_PrefersWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	path, err := Discover()
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}
	if path != filepath.Join(dir, "xdg", "litreview", FileName) {
		t.Errorf("Discover = %q, want per-user path", path)
	}

	if err := os.WriteFile(FileName, []byte("[llm]\n"), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	path, err = Discover()
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}
	if path != FileName {
		t.Errorf("Discover = %q, want %q", path, FileName)
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	cfg := Default()
	cfg.LLM.Provider = "openai"
	cfg.LLM.Model = "gpt-4o"
	cfg.LLM.Temperature = 0.25
	cfg.Review.StrictExtraction = true

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	loaded := Default()
	if err := LoadFile(&loaded, path); err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	loaded.Source = ""
	if loaded != cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown provider", func(c *Config) { c.LLM.Provider = "mystery" }},
		{"zero max tokens", func(c *Config) { c.LLM.MaxTokens = 0 }},
		{"temperature too high", func(c *Config) { c.LLM.Temperature = 3 }},
		{"negative retries", func(c *Config) { c.RateLimit.MaxRetries = -1 }},
		{"negative memory entries", func(c *Config) { c.Cache.MemoryEntries = -1 }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoad_Integration(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), FileName)

	// No config file: defaults + overrides
	cfg, err := Load(path, map[string]string{"provider": "bedrock"})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.LLM.Provider != "bedrock" {
		t.Errorf("Provider = %q, want %q", cfg.LLM.Provider, "bedrock")
	}
	if cfg.LLM.MaxTokens != 4000 {
		t.Errorf("MaxTokens = %d, want 4000 (default)", cfg.LLM.MaxTokens)
	}
	if cfg.Source != "" {
		t.Errorf("Source = %q, want empty for missing file", cfg.Source)
	}
}

func TestLoad_InvalidOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), FileName)
	if _, err := Load(path, map[string]string{"provider": "mystery"}); err == nil {
		t.Fatal("expected validation error")
	}
}
