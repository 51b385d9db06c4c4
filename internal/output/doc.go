// Package output formats review reports for display or machine consumption.
//
// Four formats are supported:
//   - text     — human-readable terminal output (default)
//   - json     — full structured JSON report
//   - markdown — PR-comment-friendly with collapsible sections per category
//   - sarif    — SARIF v2.1.0 for upload to GitHub Advanced Security and other CI tools
//
// Use [GetWriter] to obtain a [Writer] for a given format string, then call
// [Writer.Write] with an [io.Writer] and a [*review.Report].  [WriteReport]
// is a convenience helper that handles destination selection.
//
// Writers are total over any valid report: a report whose build and test
// stages were all skipped still renders, with those sections marked
// NOT APPLICABLE.
package output
