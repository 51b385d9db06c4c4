// Precheck is a local-first CLI for reviewing pending changes before submission.
//
// It extracts the working-tree change-set, runs deterministic analysis tasks
// concurrently, scores findings on a 0-100 confidence scale, optionally builds
// and tests detected .NET and Angular projects, and emits a tri-state verdict
// with deterministic exit codes suitable for CI gating and git hooks.
//
// Usage:
//
//	precheck run                      # review pending changes
//	precheck run --with-tests         # also run detected test suites
//	precheck run --threshold 65       # surface lower-confidence findings
//	precheck history                  # show recorded runs for this repo
//	precheck hook install             # gate commits on the review verdict
//
// See https://github.com/dshills/precheck for full documentation.
package main
