// Package score assigns final confidence values to raw findings. The rubric
// keeps each task's raw confidence as the base and applies deterministic
// adjustments against five anchors (false positive, unverified, minor,
// verified, certain). Scoring is a pure function per finding, run
// concurrently across findings; it never drops a finding and never fails
// the run.
package score
