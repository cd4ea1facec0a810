package status

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestLoadMissingFileYieldsFreshStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	store, err := Load(path, "talk")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if store.ProjectID != "talk" {
		t.Fatalf("unexpected project id %q", store.ProjectID)
	}
	if len(store.Slides) != 0 {
		t.Fatalf("fresh store must be empty, got %d slides", len(store.Slides))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	store := NewStore("talk")
	store.Put("talk-a", KindAudio, ArtifactRecord{Status: StatusGenerated, Hash: "sha256:aa", FilePath: "talk-a.wav"})
	store.Put("talk-a", KindVideo, ArtifactRecord{Status: StatusGenerated, Hash: "sha256:vv", FilePath: "talk-a.mp4"})
	store.SetAudioDetail("talk-a", 12.5)
	store.SyncSlide("talk-a", "Intro", 0)
	store.PptxHash = "sha256:deck"

	if err := store.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path, "talk")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rec, ok := loaded.Get("talk-a", KindAudio)
	if !ok || rec.Status != StatusGenerated || rec.Hash != "sha256:aa" || rec.FilePath != "talk-a.wav" {
		t.Fatalf("audio record did not round-trip: %+v", rec)
	}
	slide := loaded.Slides["talk-a"]
	if slide.Audio.DurationSec != 12.5 || slide.Title != "Intro" || slide.SlideIndex != 0 {
		t.Fatalf("slide metadata did not round-trip: %+v", slide)
	}
	if loaded.PptxHash != "sha256:deck" {
		t.Fatalf("deck hash did not round-trip: %q", loaded.PptxHash)
	}
}

func TestLoadInvalidJSONIsCorruptNotMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	if err := os.WriteFile(path, []byte("{truncated"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := Load(path, "talk")
	var corrupt *CorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected CorruptError, got %v", err)
	}
	if corrupt.Path != path {
		t.Fatalf("unexpected path in error: %q", corrupt.Path)
	}
}

func TestLoadRejectsGeneratedWithoutHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	payload := `{
  "schema_version": "1.0",
  "slides": {
    "talk-a": {
      "slide_index": 0,
      "audio": {"status": "generated"},
      "image": {"status": "missing"},
      "video": {"status": "missing"}
    }
  }
}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	var corrupt *CorruptError
	if _, err := Load(path, "talk"); !errors.As(err, &corrupt) {
		t.Fatalf("expected CorruptError for generated-without-hash, got %v", err)
	}
}

func TestLoadRejectsErrorWithoutDetail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	payload := `{
  "schema_version": "1.0",
  "slides": {
    "talk-a": {
      "slide_index": 0,
      "audio": {"status": "error"},
      "image": {"status": "missing"},
      "video": {"status": "missing"}
    }
  }
}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	var corrupt *CorruptError
	if _, err := Load(path, "talk"); !errors.As(err, &corrupt) {
		t.Fatalf("expected CorruptError for error-without-detail, got %v", err)
	}
}

func TestLoadRejectsUnknownStatus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	payload := `{
  "schema_version": "1.0",
  "slides": {
    "talk-a": {
      "slide_index": 0,
      "audio": {"status": "sideways"},
      "image": {"status": "missing"},
      "video": {"status": "missing"}
    }
  }
}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	var corrupt *CorruptError
	if _, err := Load(path, "talk"); !errors.As(err, &corrupt) {
		t.Fatalf("expected CorruptError for unknown status, got %v", err)
	}
}

func TestInvalidateMarksStale(t *testing.T) {
	store := NewStore("talk")
	store.Put("talk-a", KindAudio, ArtifactRecord{Status: StatusGenerated, Hash: "sha256:aa"})

	if err := store.Invalidate("talk-a", KindAudio); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	rec, _ := store.Get("talk-a", KindAudio)
	if rec.Status != StatusStale {
		t.Fatalf("expected stale, got %s", rec.Status)
	}
	// Other kinds untouched.
	img, _ := store.Get("talk-a", KindImage)
	if img.Status == StatusStale {
		t.Fatal("invalidate must only touch the named kind")
	}
}

func TestInvalidateUnknownSlideFails(t *testing.T) {
	store := NewStore("talk")
	if err := store.Invalidate("nope", KindAudio); err == nil {
		t.Fatal("expected error for unknown slide id")
	}
}

func TestConcurrentPutsAreIndependent(t *testing.T) {
	store := NewStore("talk")
	ids := []string{"talk-a", "talk-b", "talk-c", "talk-d"}

	var wg sync.WaitGroup
	for _, id := range ids {
		for _, kind := range Kinds() {
			wg.Add(1)
			go func(id string, kind Kind) {
				defer wg.Done()
				store.Put(id, kind, ArtifactRecord{Status: StatusGenerated, Hash: "sha256:" + id + string(kind)})
			}(id, kind)
		}
	}
	wg.Wait()

	for _, id := range ids {
		for _, kind := range Kinds() {
			rec, ok := store.Get(id, kind)
			if !ok || rec.Hash != "sha256:"+id+string(kind) {
				t.Fatalf("lost update for %s/%s: %+v", id, kind, rec)
			}
		}
	}
}

func TestAdditionalPromptSurvivesSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	store := NewStore("talk")
	store.Put("talk-a", KindAudio, ArtifactRecord{Status: StatusGenerated, Hash: "sha256:aa"})
	store.Slides["talk-a"].Audio.AdditionalPrompt = "speak slowly"
	if err := store.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path, "talk")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := loaded.AdditionalPrompt("talk-a"); got != "speak slowly" {
		t.Fatalf("additional prompt lost: %q", got)
	}
}

func TestLoadBearingDiff(t *testing.T) {
	base := BuildConfig{ScreenSize: [2]int{1280, 720}, VideoFPS: 30, Timescale: 90000, SampleRate: 44100, AudioChannels: 2, VideoCodec: "libx264"}

	same := base
	same.VideoCodec = "libx265"
	same.PixFmt = "yuv444p"
	if diffs := base.LoadBearingDiff(same); len(diffs) != 0 {
		t.Fatalf("codec and pix_fmt are advisory, got diffs %v", diffs)
	}

	changed := base
	changed.ScreenSize = [2]int{1920, 1080}
	changed.VideoFPS = 60
	if diffs := base.LoadBearingDiff(changed); len(diffs) != 2 {
		t.Fatalf("expected 2 load-bearing diffs, got %v", diffs)
	}

	padded := base
	padded.SilenceSec = 0.5
	diffs := base.LoadBearingDiff(padded)
	if len(diffs) != 1 {
		t.Fatalf("silence prefix shifts clip timing and must be locked, got diffs %v", diffs)
	}
	if !strings.Contains(diffs[0], "silence_sec") {
		t.Fatalf("diff must name silence_sec, got %q", diffs[0])
	}
}
