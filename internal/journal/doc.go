// Package journal records build run history in a per-project SQLite
// database. The journal is advisory: losing it never affects what the
// next build regenerates.
package journal
