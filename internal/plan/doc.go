// Package plan turns fresh fingerprints plus stored artifact state
// into a per-(slide, kind) decision: reuse, regenerate, or skip. It is
// also the gate that locks load-bearing format settings for a project
// and refuses to mix incompatible frame geometries.
package plan
