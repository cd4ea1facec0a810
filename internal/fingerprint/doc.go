// Package fingerprint computes the deterministic content hashes that
// drive reuse-versus-regenerate decisions. Digests depend only on
// content and settings, never on timestamps, file paths, or slide
// position, so they are stable across runs and machines.
package fingerprint
