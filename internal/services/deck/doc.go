// Package deck wraps the external script-to-deck converter (pandoc).
package deck
