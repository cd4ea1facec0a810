package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"slidemovie/internal/status"
)

func seededStore() *status.Store {
	store := status.NewStore("talk")
	store.SyncSlide("talk-b", "Second", 1)
	store.SyncSlide("talk-a", "First", 0)
	store.Put("talk-a", status.KindAudio, status.ArtifactRecord{Status: status.StatusGenerated, Hash: "sha256:a"})
	store.Put("talk-b", status.KindAudio, status.ArtifactRecord{Status: status.StatusGenerated, Hash: "sha256:b"})
	store.SetAudioDetail("talk-a", 10)
	store.SetAudioDetail("talk-b", 20)
	store.SetVideoDetail("talk-a", 12)
	store.SetVideoDetail("talk-b", 22)
	return store
}

func TestRowsOrderedByPosition(t *testing.T) {
	rows := Rows(seededStore())
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].SlideID != "talk-a" || rows[1].SlideID != "talk-b" {
		t.Fatalf("rows must follow slide position, got %s then %s", rows[0].SlideID, rows[1].SlideID)
	}
	if rows[0].Title != "First" || rows[0].AudioSec != 10 || rows[0].VideoSec != 12 {
		t.Fatalf("unexpected first row %+v", rows[0])
	}
}

func TestTotalSec(t *testing.T) {
	if total := TotalSec(Rows(seededStore())); total != 34 {
		t.Fatalf("expected total 34, got %v", total)
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "video_length.csv")
	if err := WriteCSV(path, Rows(seededStore())); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "index,slide_id,title,audio_sec,video_sec" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "0,talk-a,First,10.00,12.00") {
		t.Fatalf("unexpected first row %q", lines[1])
	}
}
