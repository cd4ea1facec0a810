package script

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeScript(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "talk.md")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestEnsureIDsAssignsMissing(t *testing.T) {
	path := writeScript(t, "# One\n\n# Two\n<!-- slide-id: talk-keep -->\n")

	changed, err := EnsureIDs(path, "talk")
	if err != nil {
		t.Fatalf("EnsureIDs: %v", err)
	}
	if !changed {
		t.Fatal("expected rewrite for the untagged slide")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	slides, err := Parse(string(data))
	if err != nil {
		t.Fatalf("Parse rewritten script: %v", err)
	}
	if len(slides) != 2 {
		t.Fatalf("expected 2 slides, got %d", len(slides))
	}
	if slides[0].ID == "" || !strings.HasPrefix(slides[0].ID, "talk-") {
		t.Fatalf("expected generated id with prefix, got %q", slides[0].ID)
	}
	if slides[1].ID != "talk-keep" {
		t.Fatalf("existing id must be preserved, got %q", slides[1].ID)
	}
}

func TestEnsureIDsFixedPoint(t *testing.T) {
	path := writeScript(t, "# One\n\n::: notes\nhello\n:::\n\n# Two\n")

	if _, err := EnsureIDs(path, "talk"); err != nil {
		t.Fatalf("first EnsureIDs: %v", err)
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read after first pass: %v", err)
	}

	changed, err := EnsureIDs(path, "talk")
	if err != nil {
		t.Fatalf("second EnsureIDs: %v", err)
	}
	if changed {
		t.Fatal("second pass must be a no-op")
	}
	final, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read after second pass: %v", err)
	}
	if string(after) != string(final) {
		t.Fatal("script content changed on a no-op pass")
	}
}

func TestEnsureIDsNoChangeWhenAllTagged(t *testing.T) {
	original := "<!-- slide-id: talk-a -->\n# One\n\n# Two\n<!-- slide-id: talk-b -->\n"
	path := writeScript(t, original)

	changed, err := EnsureIDs(path, "talk")
	if err != nil {
		t.Fatalf("EnsureIDs: %v", err)
	}
	if changed {
		t.Fatal("expected no rewrite when every slide has an id")
	}
	data, _ := os.ReadFile(path)
	if string(data) != original {
		t.Fatal("file must be untouched when nothing is missing")
	}
}

func TestEnsureIDsRejectsDuplicates(t *testing.T) {
	path := writeScript(t, "<!-- slide-id: dup -->\n# One\n\n<!-- slide-id: dup -->\n# Two\n")
	if _, err := EnsureIDs(path, "talk"); err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestEnsureIDsAvoidsExistingIDs(t *testing.T) {
	// All generated ids must be unique against each other and the
	// document's existing ids.
	var b strings.Builder
	for i := 0; i < 20; i++ {
		b.WriteString("# Slide\n\n")
	}
	path := writeScript(t, b.String())

	if _, err := EnsureIDs(path, "talk"); err != nil {
		t.Fatalf("EnsureIDs: %v", err)
	}
	data, _ := os.ReadFile(path)
	slides, err := Parse(string(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	seen := make(map[string]bool)
	for _, s := range slides {
		if s.ID == "" {
			t.Fatal("slide left without id")
		}
		if seen[s.ID] {
			t.Fatalf("duplicate generated id %q", s.ID)
		}
		seen[s.ID] = true
	}
}
