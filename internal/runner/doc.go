// Package runner invokes external build and test toolchains (dotnet, the
// Angular CLI) and maps their exit status and console output to structured
// results. Failures are recorded as data; nothing in this package aborts the
// review pipeline. Commands run through a narrow Exec interface so tests can
// substitute canned output.
package runner
