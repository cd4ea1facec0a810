// Package project resolves the on-disk layout of a slidemovie project
// (script, deck, status file, output tree) and guards the status file
// and output tree against concurrent build runs with a file lock.
package project
