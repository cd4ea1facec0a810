package script

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	idMarkerRe    = regexp.MustCompile(`^<!--\s*slide-id:\s*(.+?)\s*-->\s*$`)
	videoMarkerRe = regexp.MustCompile(`^<!--\s*video-file:\s*(.+?)\s*-->\s*$`)
)

// ParseFile reads and parses a script file.
func ParseFile(path string) ([]Slide, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return Parse(string(data))
}

// Parse turns script text into an ordered slide list. A top-level
// heading starts a new slide; slide-id and video-file markers are
// accepted in either order, before or after the heading they belong
// to. Returns DuplicateIDError when two slides declare the same id.
func Parse(text string) ([]Slide, error) {
	var (
		slides  []Slide
		current *Slide
		pending Slide // markers seen before the next heading
		inNotes bool
		notes   []string
		body    []string
	)
	seen := make(map[string]struct{})

	flush := func() {
		if current == nil {
			return
		}
		current.Notes = strings.TrimSpace(strings.Join(notes, "\n"))
		current.Body = strings.TrimSpace(strings.Join(body, "\n"))
		slides = append(slides, *current)
		current = nil
		notes = notes[:0]
		body = body[:0]
	}

	recordID := func(id string) error {
		if _, dup := seen[id]; dup {
			return &DuplicateIDError{ID: id}
		}
		seen[id] = struct{}{}
		return nil
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if m := idMarkerRe.FindStringSubmatch(trimmed); m != nil {
			id := m[1]
			if err := recordID(id); err != nil {
				return nil, err
			}
			if current != nil && current.ID == "" {
				current.ID = id
			} else {
				flush()
				pending.ID = id
			}
			continue
		}

		if m := videoMarkerRe.FindStringSubmatch(trimmed); m != nil {
			if current != nil {
				current.VideoOverride = m[1]
			} else {
				pending.VideoOverride = m[1]
			}
			continue
		}

		if isTopLevelHeading(line) {
			flush()
			slide := pending
			pending = Slide{}
			slide.Position = len(slides)
			slide.Title = strings.TrimSpace(strings.TrimPrefix(line, "# "))
			current = &slide
			continue
		}

		if trimmed == "::: notes" {
			inNotes = true
			notes = notes[:0]
			continue
		}
		if trimmed == ":::" && inNotes {
			inNotes = false
			continue
		}

		if current == nil {
			continue
		}
		if inNotes {
			notes = append(notes, line)
		} else {
			body = append(body, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan script: %w", err)
	}
	flush()

	for i := range slides {
		slides[i].Position = i
	}
	return slides, nil
}

func isTopLevelHeading(line string) bool {
	return strings.HasPrefix(line, "# ")
}
