package deck

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"slidemovie/internal/services"
)

var commandContext = exec.CommandContext

// Converter builds a slide deck file from the narration script.
type Converter interface {
	Convert(ctx context.Context, scriptPath, deckPath, resourceDir string) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the pandoc command-line converter.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "pandoc"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Convert renders the script into a deck with one slide per top-level
// heading.
func (c *CLI) Convert(ctx context.Context, scriptPath, deckPath, resourceDir string) error {
	if scriptPath == "" || deckPath == "" {
		return errors.New("script and deck paths required")
	}

	args := []string{scriptPath, "--slide-level=1", "-o", deckPath}
	if resourceDir != "" {
		args = append(args, "--resource-path="+resourceDir)
	}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return services.Wrap(services.ErrExternalTool, "deck", "convert", detail, err)
	}
	return nil
}

var _ Converter = (*CLI)(nil)
