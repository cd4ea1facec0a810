package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"slidemovie/internal/config"
)

// Requirement defines an external tool the pipeline relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a tool.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists every binary a full build invokes, derived from
// the effective configuration.
func Requirements(cfg *config.Config) []Requirement {
	ttsBinary := cfg.TTS.Binary
	if ttsBinary == "" {
		ttsBinary = "multiai-tts"
	}
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for clip composition and concatenation",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required for duration probing",
		},
		{
			Name:        "Pandoc",
			Command:     cfg.PandocBinary(),
			Description: "Required for script-to-deck conversion",
		},
		{
			Name:        "LibreOffice",
			Command:     cfg.SofficeBinary(),
			Description: "Required for deck-to-PDF rasterization",
		},
		{
			Name:        "pdftoppm",
			Command:     "pdftoppm",
			Description: "Required for rendering PDF pages to images",
		},
		{
			Name:        "TTS backend",
			Command:     ttsBinary,
			Description: "Required for narration synthesis",
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the non-optional tools that are unavailable.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s)
		}
	}
	return missing
}
