// Package script parses the Markdown narration script into an ordered
// list of slides. Each top-level heading starts a slide; HTML-comment
// markers carry the stable slide id and an optional pre-made video
// override, and "::: notes" blocks carry the narration text. Missing
// slide ids are generated and written back to the source atomically so
// identity is stable across runs.
package script
