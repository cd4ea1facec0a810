package plan

import (
	"fmt"
	"path/filepath"
	"strings"

	"slidemovie/internal/config"
	"slidemovie/internal/fileutil"
	"slidemovie/internal/fingerprint"
	"slidemovie/internal/project"
	"slidemovie/internal/script"
	"slidemovie/internal/status"
)

// Action is the planned treatment of one artifact.
type Action string

const (
	ActionReuse      Action = "reuse"
	ActionRegenerate Action = "regenerate"
	ActionSkip       Action = "skip"
)

// Decision is the plan entry for one (slide, kind) pair. Hash is the
// freshly computed fingerprint the artifact must carry after the run.
type Decision struct {
	SlideID string
	Kind    status.Kind
	Action  Action
	Hash    string
	Reason  string
}

// SlidePlan groups the three decisions for one slide in position order.
type SlidePlan struct {
	Slide script.Slide
	Audio Decision
	Image Decision
	Video Decision
}

// Plan is the full decision set for a build run.
type Plan struct {
	Slides []SlidePlan
}

// Decisions flattens the plan in slide order.
func (p *Plan) Decisions() []Decision {
	out := make([]Decision, 0, len(p.Slides)*3)
	for _, sp := range p.Slides {
		out = append(out, sp.Audio, sp.Image, sp.Video)
	}
	return out
}

// CountRegenerate returns the number of artifacts that will be rebuilt.
func (p *Plan) CountRegenerate() int {
	n := 0
	for _, d := range p.Decisions() {
		if d.Action == ActionRegenerate {
			n++
		}
	}
	return n
}

// CountReuse returns the number of artifacts reused as-is.
func (p *Plan) CountReuse() int {
	n := 0
	for _, d := range p.Decisions() {
		if d.Action == ActionReuse {
			n++
		}
	}
	return n
}

// ConfigMismatchError reports a load-bearing format change against a
// project whose configuration is already locked.
type ConfigMismatchError struct {
	Diffs []string
}

func (e *ConfigMismatchError) Error() string {
	return fmt.Sprintf(
		"build configuration changed for a partially built project (%s); changing resolution or frame timing mid-project is not supported — delete the status file and output directory to rebuild with the new settings",
		strings.Join(e.Diffs, ", "))
}

// Inputs collects everything the planner reads. SlideImageHashes, when
// non-empty, supplies one opaque render digest per slide position from
// the rasterization collaborator; otherwise the whole-deck DeckHash
// stands in for every slide, forcing whole-deck re-export on any deck
// change.
type Inputs struct {
	Slides           []script.Slide
	Store            *status.Store
	Config           *config.Config
	Project          *project.Project
	DeckHash         string
	SlideImageHashes []string
}

// Build produces the plan for a run. Step one locks or verifies the
// format snapshot; step two fingerprints every (slide, kind) and
// compares against stored state; overrides suppress audio and image
// work for their slide.
func Build(in Inputs) (*Plan, error) {
	stored := in.Store.BuildConfig
	snapshot := status.SnapshotConfig(in.Config)
	if !stored.IsZero() {
		if diffs := stored.LoadBearingDiff(snapshot); len(diffs) > 0 {
			return nil, &ConfigMismatchError{Diffs: diffs}
		}
	}
	// First build adopts the snapshot; later builds refresh advisory
	// fields only, which the diff above has already allowed through.
	in.Store.BuildConfig = snapshot

	voice := in.Config.GetVoice()
	result := &Plan{Slides: make([]SlidePlan, 0, len(in.Slides))}

	for _, slide := range in.Slides {
		sp := SlidePlan{Slide: slide}

		if slide.HasOverride() {
			overridePath := OverridePath(in.Project, slide)
			if !fileutil.FileExists(overridePath) {
				return nil, fmt.Errorf("slide %s: override video %s not found; restore the file or remove the video-file marker", slide.ID, overridePath)
			}
			overrideHash, err := fingerprint.File(overridePath)
			if err != nil {
				return nil, fmt.Errorf("slide %s: hash override video: %w", slide.ID, err)
			}
			sp.Audio = Decision{SlideID: slide.ID, Kind: status.KindAudio, Action: ActionSkip, Reason: "video override"}
			sp.Image = Decision{SlideID: slide.ID, Kind: status.KindImage, Action: ActionSkip, Reason: "video override"}
			sp.Video = decide(in.Store, slide.ID, status.KindVideo, overrideHash, in.Project.ClipPath(slide.ID))
			result.Slides = append(result.Slides, sp)
			continue
		}

		audioHash := fingerprint.Audio(slide.Notes, in.Store.AdditionalPrompt(slide.ID), voice)
		sp.Audio = decide(in.Store, slide.ID, status.KindAudio, audioHash, in.Project.AudioPath(slide.ID))
		if sp.Audio.Action == ActionRegenerate && fingerprint.NormalizeNotes(slide.Notes) == "" {
			return nil, fmt.Errorf("slide %s: no narration notes found; add a \"::: notes\" block before building", slide.ID)
		}

		imageHash := in.DeckHash
		if len(in.SlideImageHashes) > slide.Position {
			imageHash = in.SlideImageHashes[slide.Position]
		}
		sp.Image = decide(in.Store, slide.ID, status.KindImage, imageHash, in.Project.ImagePath(slide.ID))

		clipHash := fingerprint.Clip(audioHash, imageHash)
		sp.Video = decide(in.Store, slide.ID, status.KindVideo, clipHash, in.Project.ClipPath(slide.ID))

		result.Slides = append(result.Slides, sp)
	}

	return result, nil
}

// OverridePath resolves a slide's replacement video location. Relative
// paths are taken from the script's source directory.
func OverridePath(p *project.Project, slide script.Slide) string {
	overridePath := slide.VideoOverride
	if !filepath.IsAbs(overridePath) {
		overridePath = filepath.Join(p.SourceDir, overridePath)
	}
	return overridePath
}

// decide applies the reuse rule: a stored record counts only when it
// is generated, its hash matches the fresh fingerprint, and the file
// it references still exists on disk. The store is a hint, not a
// source of truth for file existence.
func decide(store *status.Store, slideID string, kind status.Kind, freshHash, assetPath string) Decision {
	d := Decision{SlideID: slideID, Kind: kind, Hash: freshHash}

	rec, ok := store.Get(slideID, kind)
	if !ok {
		d.Action = ActionRegenerate
		d.Reason = "no prior record"
		return d
	}
	switch {
	case rec.Status == status.StatusError:
		d.Action = ActionRegenerate
		d.Reason = "previous attempt failed"
	case rec.Status != status.StatusGenerated:
		d.Action = ActionRegenerate
		d.Reason = fmt.Sprintf("status %s", rec.Status)
	case rec.Hash != freshHash:
		d.Action = ActionRegenerate
		d.Reason = "fingerprint changed"
	case !fileutil.FileExists(assetPath):
		d.Action = ActionRegenerate
		d.Reason = "asset missing on disk"
	default:
		d.Action = ActionReuse
	}
	return d
}
