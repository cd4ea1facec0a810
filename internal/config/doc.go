// Package config loads, normalizes, and validates slidemovie
// configuration from TOML. The merged result of defaults, the config
// file, and CLI overrides is the effective configuration handed to the
// build planner; it is never mutated after Load returns.
package config
