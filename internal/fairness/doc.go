// Package fairness decides whether a meeting place splits the travel burden
// acceptably between two people and how it should be scored.
//
// Thresholds and the scoring formula are expressed as named Policies so they
// can be swapped per request or recalibrated from a file without code changes.
package fairness
