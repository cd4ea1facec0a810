package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"slidemovie/internal/config"
)

// Project describes the resolved file layout of one build target.
// The source directory holds the script, the deck, and the status
// file; the movie directory holds every generated asset plus the
// final concatenated movie.
type Project struct {
	Name       string
	SourceDir  string
	MovieDir   string
	ScriptPath string
	DeckPath   string
	StatusPath string
	ReportPath string
	MoviePath  string
}

// Resolve builds a Project from a name and source directory. outputName
// overrides the final movie filename (without extension); when empty
// the project name is used. The movie directory is
// <output_root>/<name>, falling back to <source_dir>/movie/<name> when
// no output root is configured.
func Resolve(cfg *config.Config, name, sourceDir, outputName string) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("project name required")
	}

	sourceDir, err := config.ExpandPath(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("resolve source dir: %w", err)
	}
	if info, err := os.Stat(sourceDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("source directory %s does not exist", sourceDir)
	}

	outputRoot := cfg.Paths.OutputRoot
	if outputRoot == "" {
		outputRoot = filepath.Join(sourceDir, "movie")
	}

	if outputName == "" {
		outputName = name
	}

	movieDir := filepath.Join(outputRoot, name)
	return &Project{
		Name:       name,
		SourceDir:  sourceDir,
		MovieDir:   movieDir,
		ScriptPath: filepath.Join(sourceDir, name+".md"),
		DeckPath:   filepath.Join(sourceDir, name+".pptx"),
		StatusPath: filepath.Join(sourceDir, "status.json"),
		ReportPath: filepath.Join(sourceDir, "video_length.csv"),
		MoviePath:  filepath.Join(movieDir, outputName+".mp4"),
	}, nil
}

// EnsureDirs creates the movie output directory.
func (p *Project) EnsureDirs() error {
	if err := os.MkdirAll(p.MovieDir, 0o755); err != nil {
		return fmt.Errorf("create movie directory %q: %w", p.MovieDir, err)
	}
	return nil
}

// AudioPath returns the narration file path for a slide id.
func (p *Project) AudioPath(slideID string) string {
	return filepath.Join(p.MovieDir, slideID+".wav")
}

// ImagePath returns the rendered image path for a slide id.
func (p *Project) ImagePath(slideID string) string {
	return filepath.Join(p.MovieDir, slideID+".png")
}

// ClipPath returns the composed clip path for a slide id.
func (p *Project) ClipPath(slideID string) string {
	return filepath.Join(p.MovieDir, slideID+".mp4")
}

// JournalPath returns the build journal database path.
func (p *Project) JournalPath() string {
	return filepath.Join(p.MovieDir, "journal.db")
}

// LockPath returns the build lock file path.
func (p *Project) LockPath() string {
	return filepath.Join(p.SourceDir, ".slidemovie.lock")
}
