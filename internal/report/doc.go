// Package report derives per-slide duration summaries from build state
// and writes them as CSV.
package report
