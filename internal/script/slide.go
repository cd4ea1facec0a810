package script

import "fmt"

// Slide is one narrated unit of the output. Position determines final
// movie order; ID is the stable identity artifacts are keyed by and
// carries no ordering meaning.
type Slide struct {
	Position      int
	ID            string
	Title         string
	Body          string
	Notes         string
	VideoOverride string
}

// HasOverride reports whether a pre-made clip replaces generated
// audio and image for this slide.
func (s Slide) HasOverride() bool {
	return s.VideoOverride != ""
}

// DuplicateIDError reports two slides declaring the same id. The
// document is ambiguous, so no artifact work may begin.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate slide id %q: slide ids must be unique within the document; edit the script so each slide-id marker is distinct", e.ID)
}
