package services

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("exit status 1")
	err := Wrap(ErrExternalTool, "media", "compose clip", "ffmpeg failed", base)

	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("marker lost: %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("cause lost: %v", err)
	}
	want := "external tool error: media: compose clip: ffmpeg failed: exit status 1"
	if err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := Wrap(ErrValidation, "tts", "synthesize", "narration text is empty", nil)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("marker lost: %v", err)
	}
	if errors.Unwrap(err) == nil {
		t.Fatalf("marker must remain unwrappable: %v", err)
	}
}

func TestWrapNilMarkerDefaultsTransient(t *testing.T) {
	err := Wrap(nil, "tts", "synthesize", "timeout", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected transient default, got %v", err)
	}
}

func TestWrapBlankContext(t *testing.T) {
	err := Wrap(ErrNotFound, "  ", "", "", nil)
	want := "not found: service failure"
	if err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"validation", Wrap(ErrValidation, "tts", "synthesize", "empty", nil), false},
		{"configuration", Wrap(ErrConfiguration, "config", "load", "bad fps", nil), false},
		{"external tool", Wrap(ErrExternalTool, "media", "concat", "exit 1", nil), true},
		{"transient", Wrap(ErrTransient, "tts", "synthesize", "quota", nil), true},
		{"plain", fmt.Errorf("something else"), true},
		{"wrapped validation", fmt.Errorf("outer: %w", Wrap(ErrValidation, "", "", "inner", nil)), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRetryable(tc.err); got != tc.want {
				t.Fatalf("IsRetryable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
