// Package gitctx extracts the change-set under review from a git working
// tree. It shells out to the git binary through a narrow Runner interface,
// parses status and unified-diff output into structured FileChange values,
// and reports terminal sentinel errors for clean trees and non-repositories.
//
// All operations are read-only with respect to the working tree.
package gitctx
