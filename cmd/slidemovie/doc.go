// Command slidemovie turns a structured Markdown script into a
// narrated video, regenerating only the slides whose inputs changed.
package main
