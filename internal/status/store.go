package status

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"slidemovie/internal/fileutil"
)

const schemaVersion = "1.0"

// TaskRecord tracks a whole-document derived asset (the deck built
// from the script, the final concatenated movie).
type TaskRecord struct {
	Status     ArtifactStatus `json:"status"`
	SourceHash string         `json:"source_hash,omitempty"`
	FileName   string         `json:"file_name,omitempty"`
}

// Store is the persisted build state of one project. Mutating methods
// are safe for concurrent use; persistence happens only through Save.
type Store struct {
	mu sync.Mutex

	SchemaVersion string                 `json:"schema_version"`
	ProjectID     string                 `json:"project_id,omitempty"`
	BuildConfig   BuildConfig            `json:"build_config,omitzero"`
	PptxHash      string                 `json:"pptx_hash,omitempty"`
	DeckTask      TaskRecord             `json:"deck_task,omitzero"`
	FinalMovie    TaskRecord             `json:"final_movie,omitzero"`
	Slides        map[string]*SlideState `json:"slides"`
}

// CorruptError reports a status file that exists but fails structural
// validation. It is deliberately distinct from a missing file so an
// accidental reset is never masked.
type CorruptError struct {
	Path   string
	Reason string
	Err    error
}

func (e *CorruptError) Error() string {
	msg := fmt.Sprintf("status file %s is corrupt (%s); fix it or delete it together with the output directory to start over", e.Path, e.Reason)
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *CorruptError) Unwrap() error { return e.Err }

// NewStore returns an empty store for a project's first build.
func NewStore(projectID string) *Store {
	return &Store{
		SchemaVersion: schemaVersion,
		ProjectID:     projectID,
		Slides:        make(map[string]*SlideState),
	}
}

// Load reads the status file at path. A missing file yields a fresh
// empty store; a file that cannot be parsed or fails validation yields
// a CorruptError.
func Load(path, projectID string) (*Store, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewStore(projectID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read status file: %w", err)
	}

	store := &Store{}
	if err := json.Unmarshal(data, store); err != nil {
		return nil, &CorruptError{Path: path, Reason: "invalid JSON", Err: err}
	}
	if store.Slides == nil {
		store.Slides = make(map[string]*SlideState)
	}
	if store.SchemaVersion == "" {
		store.SchemaVersion = schemaVersion
	}
	if store.ProjectID == "" {
		store.ProjectID = projectID
	}
	if err := store.validate(path); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) validate(path string) error {
	for id, slide := range s.Slides {
		if slide == nil {
			return &CorruptError{Path: path, Reason: fmt.Sprintf("slide %q has no record body", id)}
		}
		for _, kind := range Kinds() {
			rec := slide.record(kind)
			if !validStatus(rec.Status) {
				return &CorruptError{Path: path, Reason: fmt.Sprintf("slide %q %s has unknown status %q", id, kind, rec.Status)}
			}
			if rec.Status == StatusGenerated && rec.Hash == "" {
				return &CorruptError{Path: path, Reason: fmt.Sprintf("slide %q %s is generated but has no hash", id, kind)}
			}
			if rec.Status == StatusError && rec.ErrorDetail == "" {
				return &CorruptError{Path: path, Reason: fmt.Sprintf("slide %q %s is in error state without detail", id, kind)}
			}
		}
	}
	return nil
}

// Save writes the store to path atomically.
func (s *Store) Save(path string) error {
	s.mu.Lock()
	data, err := json.MarshalIndent(s, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}
	return fileutil.WriteFileAtomic(path, append(data, '\n'), 0o644)
}

// Get returns the artifact record for a slide and kind.
func (s *Store) Get(slideID string, kind Kind) (ArtifactRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slide, ok := s.Slides[slideID]
	if !ok {
		return ArtifactRecord{}, false
	}
	return slide.record(kind), true
}

// Put replaces the artifact record for a slide and kind, creating the
// slide entry when absent. Updates for distinct (slide, kind) pairs
// are independent, so concurrent writers never conflict on a key.
func (s *Store) Put(slideID string, kind Kind, rec ArtifactRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slide := s.ensureSlideLocked(slideID)
	slide.setRecord(kind, rec)
}

// Invalidate marks a slide's artifact stale so the next plan
// regenerates it. This is the supported alternative to editing the
// status file by hand. Kind handling is deterministic: only the named
// kind changes.
func (s *Store) Invalidate(slideID string, kind Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	slide, ok := s.Slides[slideID]
	if !ok {
		return fmt.Errorf("slide %q has no recorded state", slideID)
	}
	rec := slide.record(kind)
	rec.Status = StatusStale
	slide.setRecord(kind, rec)
	return nil
}

// AdditionalPrompt returns the user-maintained extra synthesis prompt
// for a slide, empty when unset.
func (s *Store) AdditionalPrompt(slideID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slide, ok := s.Slides[slideID]; ok {
		return slide.Audio.AdditionalPrompt
	}
	return ""
}

// SetAudioDetail records audio-specific fields that the generic
// ArtifactRecord view does not carry.
func (s *Store) SetAudioDetail(slideID string, durationSec float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slide := s.ensureSlideLocked(slideID)
	slide.Audio.DurationSec = durationSec
}

// SetVideoDetail records clip duration alongside the video record.
func (s *Store) SetVideoDetail(slideID string, durationSec float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slide := s.ensureSlideLocked(slideID)
	slide.Video.DurationSec = durationSec
}

// SyncSlide refreshes document-derived metadata (title, position) for
// a slide id, creating the entry when new. Artifact records are left
// untouched; removing a slide from the script never deletes its
// records here.
func (s *Store) SyncSlide(slideID, title string, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slide := s.ensureSlideLocked(slideID)
	slide.Title = title
	slide.SlideIndex = index
}

func (s *Store) ensureSlideLocked(slideID string) *SlideState {
	slide, ok := s.Slides[slideID]
	if !ok {
		slide = &SlideState{
			Audio: AudioRecord{Status: StatusMissing},
			Image: ImageRecord{Status: StatusMissing},
			Video: VideoRecord{Status: StatusMissing},
		}
		s.Slides[slideID] = slide
	}
	return slide
}

func (st *SlideState) record(kind Kind) ArtifactRecord {
	switch kind {
	case KindAudio:
		return ArtifactRecord{Status: st.Audio.Status, Hash: st.Audio.Hash, FilePath: st.Audio.WavFile, ErrorDetail: st.Audio.Error}
	case KindImage:
		return ArtifactRecord{Status: st.Image.Status, Hash: st.Image.Hash, ErrorDetail: st.Image.Error}
	case KindVideo:
		return ArtifactRecord{Status: st.Video.Status, Hash: st.Video.Hash, FilePath: st.Video.MP4File, ErrorDetail: st.Video.Error}
	}
	return ArtifactRecord{}
}

func (st *SlideState) setRecord(kind Kind, rec ArtifactRecord) {
	switch kind {
	case KindAudio:
		st.Audio.Status = rec.Status
		st.Audio.Hash = rec.Hash
		st.Audio.WavFile = rec.FilePath
		st.Audio.Error = rec.ErrorDetail
	case KindImage:
		st.Image.Status = rec.Status
		st.Image.Hash = rec.Hash
		st.Image.Error = rec.ErrorDetail
	case KindVideo:
		st.Video.Status = rec.Status
		st.Video.Hash = rec.Hash
		st.Video.MP4File = rec.FilePath
		st.Video.Error = rec.ErrorDetail
	}
}
