// Package config loads and merges litreview configuration from multiple
// sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (LITREVIEW_PROVIDER, LITREVIEW_MODEL, LITREVIEW_CACHE_DIR, etc.)
//  3. Config file (--config, ./config.toml, or $XDG_CONFIG_HOME/litreview/config.toml)
//  4. Built-in defaults
//
// The file is TOML. Keys left out of the file keep their defaults. A legacy
// [claude] table (model, max_tokens, temperature) is honoured when the file
// has no [llm] table.
//
// Use [Load] to obtain a merged [Config], [Save] to write one, and [SetField]
// to update a single dotted key such as "llm.model".
package config
