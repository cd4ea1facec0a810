package script

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"slidemovie/internal/fileutil"
)

// EnsureIDs assigns a stable id to every slide that lacks one and
// writes the result back to path atomically. Inserted ids are
// "<prefix>-<token>" where the token is uuid-derived and checked
// against every id already present, so a collision with an existing or
// previously deleted id cannot occur. Returns true when the file was
// rewritten. Running EnsureIDs on its own output is a no-op.
func EnsureIDs(path, prefix string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read script: %w", err)
	}

	rewritten, changed, err := assignIDs(string(data), prefix)
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}

	if err := fileutil.WriteFileAtomic(path, []byte(rewritten), 0o644); err != nil {
		return false, fmt.Errorf("rewrite script: %w", err)
	}
	return true, nil
}

func assignIDs(text, prefix string) (string, bool, error) {
	lines := strings.Split(text, "\n")

	existing := make(map[string]struct{})
	for _, line := range lines {
		if m := idMarkerRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			id := m[1]
			if _, dup := existing[id]; dup {
				return "", false, &DuplicateIDError{ID: id}
			}
			existing[id] = struct{}{}
		}
	}

	// Mirror the parser's marker association: an id marker before a
	// heading pends for it, an id marker after a heading attaches to it.
	type heading struct {
		line  int
		hasID bool
	}
	var headings []heading
	openWithoutID := -1
	pendingID := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if idMarkerRe.MatchString(trimmed) {
			if openWithoutID >= 0 {
				headings[openWithoutID].hasID = true
				openWithoutID = -1
			} else {
				pendingID = true
			}
			continue
		}
		if isTopLevelHeading(line) {
			headings = append(headings, heading{line: i, hasID: pendingID})
			if pendingID {
				openWithoutID = -1
			} else {
				openWithoutID = len(headings) - 1
			}
			pendingID = false
		}
	}

	missing := 0
	for _, h := range headings {
		if !h.hasID {
			missing++
		}
	}
	if missing == 0 {
		return text, false, nil
	}

	out := make([]string, 0, len(lines)+missing)
	next := 0
	for i, line := range lines {
		if next < len(headings) && headings[next].line == i {
			if !headings[next].hasID {
				id := freshID(prefix, existing)
				existing[id] = struct{}{}
				out = append(out, fmt.Sprintf("<!-- slide-id: %s -->", id))
			}
			next++
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n"), true, nil
}

func freshID(prefix string, existing map[string]struct{}) string {
	for {
		token := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		id := prefix + "-" + token
		if _, taken := existing[id]; !taken {
			return id
		}
	}
}
