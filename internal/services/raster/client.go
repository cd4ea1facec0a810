package raster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"slidemovie/internal/services"
)

var commandContext = exec.CommandContext

// Rasterizer renders a deck file into ordered page images.
type Rasterizer interface {
	Rasterize(ctx context.Context, deckPath, outDir string) ([]string, error)
}

// Option configures the CLI client.
type Option func(*CLI)

// WithSofficeBinary overrides the LibreOffice binary name.
func WithSofficeBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.soffice = binary
		}
	}
}

// WithPdftoppmBinary overrides the poppler binary name.
func WithPdftoppmBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.pdftoppm = binary
		}
	}
}

// CLI renders decks via soffice and pdftoppm.
type CLI struct {
	soffice  string
	pdftoppm string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{soffice: "soffice", pdftoppm: "pdftoppm"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Rasterize converts the deck to PDF and then to one PNG per page,
// returning the image paths in page order. Images land in outDir as
// slide_<n>.png.
func (c *CLI) Rasterize(ctx context.Context, deckPath, outDir string) ([]string, error) {
	if deckPath == "" || outDir == "" {
		return nil, errors.New("deck path and output directory required")
	}

	tmpDir, err := os.MkdirTemp("", "slidemovie-raster-*")
	if err != nil {
		return nil, fmt.Errorf("create raster temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	if err := c.run(ctx, "convert to pdf", c.soffice, "--headless", "--convert-to", "pdf", "--outdir", tmpDir, deckPath); err != nil {
		return nil, err
	}

	base := strings.TrimSuffix(filepath.Base(deckPath), filepath.Ext(deckPath))
	pdfPath := filepath.Join(tmpDir, base+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "raster", "convert to pdf", fmt.Sprintf("expected %s was not produced", pdfPath), err)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create image output dir: %w", err)
	}
	prefix := filepath.Join(outDir, "slide")
	if err := c.run(ctx, "render pages", c.pdftoppm, "-png", "-r", "150", pdfPath, prefix); err != nil {
		return nil, err
	}

	return collectPages(outDir)
}

func (c *CLI) run(ctx context.Context, operation, binary string, args ...string) error {
	cmd := commandContext(ctx, binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return services.Wrap(services.ErrExternalTool, "raster", operation, detail, err)
	}
	return nil
}

// collectPages gathers slide-*.png output sorted by page number.
// pdftoppm zero-pads page numbers, so a numeric sort keeps 10 after 9.
func collectPages(dir string) ([]string, error) {
	entries, err := filepath.Glob(filepath.Join(dir, "slide-*.png"))
	if err != nil {
		return nil, fmt.Errorf("glob rendered pages: %w", err)
	}
	if len(entries) == 0 {
		return nil, services.Wrap(services.ErrExternalTool, "raster", "render pages", "no page images were produced", nil)
	}

	type page struct {
		num  int
		path string
	}
	pages := make([]page, 0, len(entries))
	for _, path := range entries {
		name := strings.TrimSuffix(filepath.Base(path), ".png")
		numPart := strings.TrimPrefix(name, "slide-")
		num, err := strconv.Atoi(numPart)
		if err != nil {
			continue
		}
		pages = append(pages, page{num: num, path: path})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].num < pages[j].num })

	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.path
	}
	return out, nil
}

var _ Rasterizer = (*CLI)(nil)
