// Package output writes review results to disk and renders run reports.
//
// [SummaryWriter] produces the files a review leaves behind: one markdown
// file and one raw JSON file per paper, plus the meta-summary, all stamped
// with the run time.
//
// Run reports come in three formats:
//   - text     human-readable terminal output (default)
//   - json     full structured JSON report
//   - markdown a table per run, suitable for notes or issue comments
//
// Use [GetWriter] to obtain a [Writer] for a format string, or [WriteReport]
// to render straight to a file or stdout.
package output
