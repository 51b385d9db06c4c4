// Package review orchestrates the change-review pipeline and owns its
// terminal artifact, the Report.
//
// A run extracts the change-set, detects project kinds, then fans out
// analysis (with scoring) and build/test stages concurrently. The aggregator
// is the single writer of the Report: it waits for every stage to reach a
// terminal state, deduplicates and threshold-filters scored findings, and
// derives the tri-state verdict (passed, needsAttention, failed).
package review
