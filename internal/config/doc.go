// Package config loads and merges precheck configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (PRECHECK_THRESHOLD, PRECHECK_FORMAT, etc.)
//  3. Config file ($XDG_CONFIG_HOME/precheck/config.yaml)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config], [Save] to persist one, and
// [SetField] to update a single key by name.
package config
