// Package extract turns downloaded papers and the project context document
// into plain text.
//
// PDF, Word (.docx) and plain text or markdown files are supported. Failures
// are returned as errors; [Sentinel] renders one as the "[Error: ...]" text
// that lenient pipelines send to the model in place of the paper.
package extract
