package tts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"slidemovie/internal/config"
	"slidemovie/internal/services"
)

var commandContext = exec.CommandContext

// Synthesizer converts narration text into an audio file.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, additionalPrompt string, voice config.VoiceConfig, outPath string) error
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

// WithAPIKey sets the backend API key passed via environment.
func WithAPIKey(key string) Option {
	return func(c *CLI) {
		c.apiKey = key
	}
}

// CLI wraps the multiai-tts command-line synthesizer.
type CLI struct {
	binary string
	apiKey string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "multiai-tts"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Synthesize runs the TTS binary, feeding the prompt and narration on
// stdin and writing the synthesized audio to outPath.
func (c *CLI) Synthesize(ctx context.Context, text, additionalPrompt string, voice config.VoiceConfig, outPath string) error {
	if strings.TrimSpace(text) == "" {
		return services.Wrap(services.ErrValidation, "tts", "synthesize", "narration text is empty", nil)
	}
	if outPath == "" {
		return errors.New("output path required")
	}

	input := text
	if voice.UsePrompt {
		input = voice.Prompt + additionalPrompt + "\n" + text
	}

	args := []string{
		"--provider", voice.Provider,
		"--model", voice.Model,
		"--voice", voice.Voice,
		"--out", outPath,
	}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	cmd.Stdin = strings.NewReader(input)
	if c.apiKey != "" {
		cmd.Env = append(os.Environ(), "TTS_API_KEY="+c.apiKey)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		marker := services.ErrExternalTool
		if strings.Contains(detail, "RESOURCE_EXHAUSTED") {
			marker = services.ErrTransient
		}
		return services.Wrap(marker, "tts", "synthesize", detail, err)
	}

	if info, err := os.Stat(outPath); err != nil || info.Size() == 0 {
		return services.Wrap(services.ErrExternalTool, "tts", "synthesize", fmt.Sprintf("backend produced no audio at %s", outPath), nil)
	}
	return nil
}

var _ Synthesizer = (*CLI)(nil)
