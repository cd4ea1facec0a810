package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputRoot string `toml:"output_root"`
	LogDir     string `toml:"log_dir"`
}

// TTS contains configuration for the text-to-speech backend.
type TTS struct {
	Binary    string `toml:"binary"`
	Provider  string `toml:"provider"`
	Model     string `toml:"model"`
	Voice     string `toml:"voice"`
	UsePrompt bool   `toml:"use_prompt"`
	Prompt    string `toml:"prompt"`
	APIKey    string `toml:"api_key"`
	Workers   int    `toml:"workers"`
}

// Video contains the output video format settings. ScreenWidth,
// ScreenHeight, and FPS are load-bearing: once a project has generated
// its first artifact they are locked and cannot change.
type Video struct {
	ScreenWidth  int    `toml:"screen_width"`
	ScreenHeight int    `toml:"screen_height"`
	FPS          int    `toml:"fps"`
	Timescale    int    `toml:"timescale"`
	PixFmt       string `toml:"pix_fmt"`
	Codec        string `toml:"codec"`
}

// Audio contains the output audio format settings.
type Audio struct {
	Codec      string  `toml:"codec"`
	SampleRate int     `toml:"sample_rate"`
	Bitrate    string  `toml:"bitrate"`
	Channels   int     `toml:"channels"`
	SilenceSec float64 `toml:"silence_sec"`
}

// Build contains incremental build behaviour settings.
type Build struct {
	MaxRetry       int    `toml:"max_retry"`
	ShowSkip       bool   `toml:"show_skip"`
	FFmpegLogLevel string `toml:"ffmpeg_loglevel"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for slidemovie.
//
// Sections by subsystem:
//   - Paths: output root and log directory
//   - TTS: narration synthesis backend and voice settings
//   - Video / Audio: output format (partially locked per project)
//   - Build: retry budget, skip logging, ffmpeg verbosity
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	TTS     TTS     `toml:"tts"`
	Video   Video   `toml:"video"`
	Audio   Audio   `toml:"audio"`
	Build   Build   `toml:"build"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/slidemovie/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("slidemovie.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureLogDir creates the log directory when one is configured.
func (c *Config) EnsureLogDir() error {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return nil
	}
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create log directory %q: %w", c.Paths.LogDir, err)
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used for clip composition.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for duration probing.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// PandocBinary returns the pandoc executable name used for deck conversion.
func (c *Config) PandocBinary() string {
	return "pandoc"
}

// SofficeBinary returns the LibreOffice executable name used for deck rasterization.
func (c *Config) SofficeBinary() string {
	return "soffice"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// VoiceConfig contains the TTS settings that feed every slide's audio
// fingerprint. Changing any field invalidates all generated narration.
type VoiceConfig struct {
	Provider  string
	Model     string
	Voice     string
	UsePrompt bool
	Prompt    string
}

// GetVoice returns the voice settings shared across all slides.
func (c *Config) GetVoice() VoiceConfig {
	return VoiceConfig{
		Provider:  strings.TrimSpace(c.TTS.Provider),
		Model:     strings.TrimSpace(c.TTS.Model),
		Voice:     strings.TrimSpace(c.TTS.Voice),
		UsePrompt: c.TTS.UsePrompt,
		Prompt:    c.TTS.Prompt,
	}
}
