// Package store persists run history in a local SQLite database.
//
// Each completed review run is recorded with its verdict and summary
// counts so `precheck history` can show how a repository has trended.
// The store is append-only from the pipeline's point of view; pruning
// happens only through [Store.Clear].
package store
