// Package build orchestrates a full incremental run: ensuring slide
// ids, planning against stored state, regenerating narration, images,
// and clips, and concatenating the final movie. Build state is
// persisted exactly once per run, at the end or at the first fatal
// failure.
package build
