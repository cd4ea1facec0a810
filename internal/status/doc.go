// Package status persists per-slide artifact state and the locked
// build configuration for a project. The store is read once at build
// start, mutated in memory as artifacts resolve, and written back
// atomically (write-new-then-replace) so an interrupted run can never
// leave a half-written file behind. A file that exists but fails
// structural validation is a fatal CorruptError, never silently
// treated as a first run.
package status
