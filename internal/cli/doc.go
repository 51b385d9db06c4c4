// Package cli wires together the Cobra command tree for the precheck binary.
//
// It defines the root command and all subcommands (run, config, tasks,
// history, hook, version), binds flags, reads configuration, invokes the
// review pipeline, and returns deterministic exit codes for CI gating.
package cli
