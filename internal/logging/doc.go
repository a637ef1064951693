// Package logging builds the slog loggers used across litreview.
//
// Two formats are supported: "console", a single-line key=value layout that
// is coloured when writing to a terminal, and "json". Log records go to
// stderr so that command output on stdout stays machine readable. An
// optional log file receives the same records.
package logging
