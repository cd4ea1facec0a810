package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"slidemovie/internal/config"
	"slidemovie/internal/fileutil"
	"slidemovie/internal/services"
)

var commandContext = exec.CommandContext

// Format describes the output encoding parameters shared by every clip
// in a movie. All clips must agree on these values or the final concat
// produces broken timestamps.
type Format struct {
	Width      int
	Height     int
	FPS        int
	Timescale  int
	PixFmt     string
	VideoCodec string
	AudioCodec string
	SampleRate int
	Bitrate    string
	Channels   int
	LogLevel   string
}

// FormatFromConfig builds the encoding format from configuration.
func FormatFromConfig(cfg *config.Config) Format {
	return Format{
		Width:      cfg.Video.ScreenWidth,
		Height:     cfg.Video.ScreenHeight,
		FPS:        cfg.Video.FPS,
		Timescale:  cfg.Video.Timescale,
		PixFmt:     cfg.Video.PixFmt,
		VideoCodec: cfg.Video.Codec,
		AudioCodec: cfg.Audio.Codec,
		SampleRate: cfg.Audio.SampleRate,
		Bitrate:    cfg.Audio.Bitrate,
		Channels:   cfg.Audio.Channels,
		LogLevel:   cfg.Build.FFmpegLogLevel,
	}
}

// scaleFilter letterboxes arbitrary input into the target frame.
func (f Format) scaleFilter() string {
	return fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2",
		f.Width, f.Height, f.Width, f.Height)
}

func (f Format) channelLayout() string {
	if f.Channels == 1 {
		return "mono"
	}
	return "stereo"
}

// Encoder produces and assembles the per-slide video clips.
type Encoder interface {
	ComposeStill(ctx context.Context, imagePath, audioPath, outPath string) error
	ConvertClip(ctx context.Context, srcPath, outPath string) error
	PrependSilence(ctx context.Context, audioPath string, seconds float64) error
	Concat(ctx context.Context, clipPaths []string, outPath string) error
	Probe(ctx context.Context, path string) (float64, error)
}

// Option configures the CLI client.
type Option func(*CLI)

// WithFFmpegBinary overrides the ffmpeg binary name.
func WithFFmpegBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.ffmpeg = binary
		}
	}
}

// WithFFprobeBinary overrides the ffprobe binary name.
func WithFFprobeBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.ffprobe = binary
		}
	}
}

// CLI drives ffmpeg and ffprobe subprocesses.
type CLI struct {
	ffmpeg  string
	ffprobe string
	format  Format
}

// NewCLI constructs a CLI client for the given output format.
func NewCLI(format Format, opts ...Option) *CLI {
	cli := &CLI{ffmpeg: "ffmpeg", ffprobe: "ffprobe", format: format}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// ComposeStill renders a single slide clip from one still image and its
// narration audio. The clip length follows the audio track.
func (c *CLI) ComposeStill(ctx context.Context, imagePath, audioPath, outPath string) error {
	if imagePath == "" || audioPath == "" || outPath == "" {
		return errors.New("image, audio, and output paths required")
	}

	args := c.baseArgs()
	args = append(args,
		"-loop", "1",
		"-i", imagePath,
		"-i", audioPath,
		"-c:v", c.format.VideoCodec,
		"-tune", "stillimage",
		"-vf", c.format.scaleFilter(),
		"-r", strconv.Itoa(c.format.FPS),
		"-video_track_timescale", strconv.Itoa(c.format.Timescale),
		"-pix_fmt", c.format.PixFmt,
	)
	args = append(args, c.audioArgs()...)
	args = append(args, "-shortest", outPath)

	return c.run(ctx, "compose clip", args)
}

// ConvertClip re-encodes an override video into the shared output
// format so it can be stream-copied during concatenation.
func (c *CLI) ConvertClip(ctx context.Context, srcPath, outPath string) error {
	if srcPath == "" || outPath == "" {
		return errors.New("source and output paths required")
	}

	args := c.baseArgs()
	args = append(args,
		"-i", srcPath,
		"-c:v", c.format.VideoCodec,
		"-vf", c.format.scaleFilter(),
		"-r", strconv.Itoa(c.format.FPS),
		"-video_track_timescale", strconv.Itoa(c.format.Timescale),
		"-pix_fmt", c.format.PixFmt,
	)
	args = append(args, c.audioArgs()...)
	args = append(args, outPath)

	return c.run(ctx, "convert override", args)
}

// PrependSilence rewrites the audio file with a stretch of silence in
// front of the narration, replacing it in place.
func (c *CLI) PrependSilence(ctx context.Context, audioPath string, seconds float64) error {
	if seconds <= 0 {
		return nil
	}
	if audioPath == "" {
		return errors.New("audio path required")
	}

	tmpPath := audioPath + ".pad.wav"
	defer os.Remove(tmpPath)

	source := fmt.Sprintf("anullsrc=r=%d:cl=%s", c.format.SampleRate, c.format.channelLayout())
	args := c.baseArgs()
	args = append(args,
		"-t", strconv.FormatFloat(seconds, 'f', -1, 64),
		"-f", "lavfi",
		"-i", source,
		"-i", audioPath,
		"-filter_complex", "[0:a][1:a]concat=n=2:v=0:a=1",
		tmpPath,
	)
	if err := c.run(ctx, "prepend silence", args); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, audioPath); err != nil {
		return fmt.Errorf("replace padded audio: %w", err)
	}
	return nil
}

// Concat joins the finished clips into the final movie with a concat
// demuxer stream copy. Clips must already share the output format.
func (c *CLI) Concat(ctx context.Context, clipPaths []string, outPath string) error {
	if len(clipPaths) == 0 {
		return errors.New("at least one clip required")
	}
	if outPath == "" {
		return errors.New("output path required")
	}

	var list strings.Builder
	for _, clip := range clipPaths {
		abs, err := filepath.Abs(clip)
		if err != nil {
			return fmt.Errorf("resolve clip path %q: %w", clip, err)
		}
		fmt.Fprintf(&list, "file '%s'\n", strings.ReplaceAll(abs, "'", `'\''`))
	}

	listPath := outPath + ".concat.txt"
	if err := fileutil.WriteFileAtomic(listPath, []byte(list.String()), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	defer os.Remove(listPath)

	args := c.baseArgs()
	args = append(args,
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outPath,
	)
	return c.run(ctx, "concat clips", args)
}

// Probe returns the container duration of a media file in seconds.
func (c *CLI) Probe(ctx context.Context, path string) (float64, error) {
	if path == "" {
		return 0, errors.New("path required")
	}

	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
	cmd := commandContext(ctx, c.ffprobe, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return 0, services.Wrap(services.ErrExternalTool, "media", "probe duration", detail, err)
	}

	raw := strings.TrimSpace(stdout.String())
	duration, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "media", "probe duration", fmt.Sprintf("unexpected ffprobe output %q", raw), err)
	}
	return duration, nil
}

func (c *CLI) baseArgs() []string {
	level := c.format.LogLevel
	if level == "" {
		level = "error"
	}
	return []string{"-y", "-loglevel", level}
}

func (c *CLI) audioArgs() []string {
	return []string{
		"-c:a", c.format.AudioCodec,
		"-b:a", c.format.Bitrate,
		"-ar", strconv.Itoa(c.format.SampleRate),
		"-ac", strconv.Itoa(c.format.Channels),
	}
}

func (c *CLI) run(ctx context.Context, operation string, args []string) error {
	cmd := commandContext(ctx, c.ffmpeg, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return services.Wrap(services.ErrExternalTool, "media", operation, detail, err)
	}
	return nil
}

var _ Encoder = (*CLI)(nil)
