package build

import (
	"fmt"

	"slidemovie/internal/status"
)

// ArtifactGenerationError reports a slide artifact that could not be
// produced after the retry budget was spent. The run stops, but state
// recorded for other slides is kept.
type ArtifactGenerationError struct {
	SlideID string
	Kind    status.Kind
	Detail  string
	Err     error
}

func (e *ArtifactGenerationError) Error() string {
	return fmt.Sprintf("slide %s: %s generation failed: %s", e.SlideID, e.Kind, e.Detail)
}

func (e *ArtifactGenerationError) Unwrap() error { return e.Err }

// SlideSyncError reports a deck whose page count does not match the
// script. Positional image assignment would silently attach the wrong
// picture to a slide, so the run refuses to continue.
type SlideSyncError struct {
	ScriptSlides int
	DeckPages    int
}

func (e *SlideSyncError) Error() string {
	return fmt.Sprintf(
		"script has %d slides but the deck rendered %d pages; regenerate the deck from the current script before building",
		e.ScriptSlides, e.DeckPages)
}
