// Package review runs a literature review batch.
//
// A [Pipeline] takes paper links in order and, for each one, fetches the PDF,
// extracts its text, optionally redacts secrets, and asks the analyzer for a
// result. Once every paper is done the results are handed to a [Sink] as
// individual summaries and, unless disabled, summarized into a meta-summary.
//
// By default the first failed paper aborts the batch. With ContinueOnError the
// failure is recorded in the [Report] and the paper is left out of the
// outputs and the meta-summary. Extraction failures become placeholder text
// unless StrictExtraction is set.
package review
