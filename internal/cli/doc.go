// Package cli wires together the Cobra command tree for the litreview binary.
//
// It defines the root command and all subcommands (analyze, summarize,
// fetch, gather, collect, config, models, cache, version), binds flags, reads
// configuration, builds the review pipeline, and returns deterministic exit
// codes.
package cli
