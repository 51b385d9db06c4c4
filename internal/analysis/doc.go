// Package analysis defines the pluggable analysis-task capability and the
// dispatcher that fans tasks out concurrently over a change-set.
//
// Every task implements the same contract: consume the (read-only) change-set
// and project context, produce findings, and succeed or fail without
// affecting sibling tasks. A failed or timed-out task contributes zero
// findings and is recorded as a degraded source in the final report.
//
// The shipped tasks are deterministic line heuristics over diff hunks;
// anything smarter plugs in behind the same Task interface.
package analysis
