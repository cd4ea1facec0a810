// Package logging builds the slog logger used across slidemovie. Two
// handler formats are supported: a compact console format for
// interactive use and JSON for log files and non-TTY output. The
// component attribute is rendered as a message prefix in console mode.
package logging
