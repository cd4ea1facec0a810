package fingerprint

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"

	"slidemovie/internal/config"
)

const prefix = "sha256:"

// NormalizeNotes canonicalizes narration text before hashing: Unicode
// NFC, trimmed lines, blank lines dropped. Editors and platforms that
// disagree on composition or trailing whitespace produce the same
// digest.
func NormalizeNotes(text string) string {
	var lines []string
	for _, line := range strings.Split(norm.NFC.String(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// Audio digests every input that determines a slide's narration bytes:
// the normalized notes, the per-slide additional prompt, and the
// shared voice settings. Changing the voice invalidates all slides.
func Audio(notes, additionalPrompt string, voice config.VoiceConfig) string {
	h := sha256.New()
	writeField(h, NormalizeNotes(notes))
	writeField(h, norm.NFC.String(additionalPrompt))
	writeField(h, voice.Provider)
	writeField(h, voice.Model)
	writeField(h, voice.Voice)
	if voice.UsePrompt {
		writeField(h, "prompt")
		writeField(h, norm.NFC.String(voice.Prompt))
	} else {
		writeField(h, "no-prompt")
	}
	return finish(h)
}

// File digests a file's contents.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for hashing: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return finish(h), nil
}

// Clip digests a generated clip's inputs: the slide's current audio
// and image digests. Slides with identical narration and identical
// visuals yield identical clip digests.
func Clip(audioHash, imageHash string) string {
	h := sha256.New()
	writeField(h, audioHash)
	writeField(h, imageHash)
	return finish(h)
}

// Sequence digests an ordered list of digests; used for the final
// movie, which must be rebuilt when any clip or the order changes.
func Sequence(hashes []string) string {
	h := sha256.New()
	for _, value := range hashes {
		writeField(h, value)
	}
	return finish(h)
}

// Bytes digests a byte slice.
func Bytes(data []byte) string {
	sum := sha256.Sum256(data)
	return prefix + hex.EncodeToString(sum[:])
}

// writeField length-prefixes each input so adjacent fields cannot
// alias ("ab"+"c" vs "a"+"bc").
func writeField(h hash.Hash, value string) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(len(value)))
	h.Write(buf[:])
	io.WriteString(h, value)
}

func finish(h hash.Hash) string {
	return prefix + hex.EncodeToString(h.Sum(nil))
}
