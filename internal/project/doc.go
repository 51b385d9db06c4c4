// Package project detects the project kinds present in a working tree:
// .NET solutions, Angular workspaces, and test projects. Detection is
// bounded (a fixed number of ancestor directories, the change-set's
// directory tree) and purely observational; an empty result means the run
// degrades to analysis-only review.
package project
