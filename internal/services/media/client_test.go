package media

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"slidemovie/internal/services"
)

func testFormat() Format {
	return Format{
		Width:      1280,
		Height:     720,
		FPS:        30,
		Timescale:  90000,
		PixFmt:     "yuv420p",
		VideoCodec: "libx264",
		AudioCodec: "aac",
		SampleRate: 44100,
		Bitrate:    "192k",
		Channels:   2,
	}
}

func setHelperCommand(t *testing.T, mode string, capture *[]string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		if capture != nil {
			*capture = append([]string(nil), args...)
		}
		create := ""
		if mode == "create-last" && len(args) > 0 {
			create = args[len(args)-1]
		}
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(),
			"GO_WANT_HELPER_PROCESS=1",
			"MEDIA_HELPER_MODE="+mode,
			"MEDIA_HELPER_CREATE="+create,
		)
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestCLIComposeStillArgs(t *testing.T) {
	var capturedArgs []string
	setHelperCommand(t, "success", &capturedArgs)

	format := testFormat()
	cli := NewCLI(format)
	err := cli.ComposeStill(context.Background(), "slide.png", "narration.wav", "clip.mp4")
	if err != nil {
		t.Fatalf("ComposeStill: %v", err)
	}

	loopIdx := findArg(capturedArgs, "-loop")
	if loopIdx == -1 || capturedArgs[loopIdx+1] != "1" {
		t.Fatalf("missing -loop 1 in %v", capturedArgs)
	}
	if findArg(capturedArgs, "stillimage") == -1 {
		t.Fatalf("missing stillimage tune in %v", capturedArgs)
	}
	if findArg(capturedArgs, "-shortest") == -1 {
		t.Fatalf("missing -shortest in %v", capturedArgs)
	}
	vfIdx := findArg(capturedArgs, "-vf")
	wantFilter := "scale=1280:720:force_original_aspect_ratio=decrease,pad=1280:720:(ow-iw)/2:(oh-ih)/2"
	if vfIdx == -1 || capturedArgs[vfIdx+1] != wantFilter {
		t.Fatalf("unexpected scale filter in %v", capturedArgs)
	}
	tsIdx := findArg(capturedArgs, "-video_track_timescale")
	if tsIdx == -1 || capturedArgs[tsIdx+1] != strconv.Itoa(format.Timescale) {
		t.Fatalf("missing timescale in %v", capturedArgs)
	}
	for flag, want := range map[string]string{
		"-c:v":     "libx264",
		"-c:a":     "aac",
		"-b:a":     "192k",
		"-ar":      "44100",
		"-ac":      "2",
		"-pix_fmt": "yuv420p",
		"-r":       "30",
	} {
		idx := findArg(capturedArgs, flag)
		if idx == -1 || capturedArgs[idx+1] != want {
			t.Fatalf("%s = missing or wrong in %v, want %s", flag, capturedArgs, want)
		}
	}
	if capturedArgs[len(capturedArgs)-1] != "clip.mp4" {
		t.Fatalf("output must be last arg, got %v", capturedArgs)
	}
}

func TestCLIConvertClipArgs(t *testing.T) {
	var capturedArgs []string
	setHelperCommand(t, "success", &capturedArgs)

	cli := NewCLI(testFormat())
	if err := cli.ConvertClip(context.Background(), "premade.mp4", "clip.mp4"); err != nil {
		t.Fatalf("ConvertClip: %v", err)
	}

	inIdx := findArg(capturedArgs, "-i")
	if inIdx == -1 || capturedArgs[inIdx+1] != "premade.mp4" {
		t.Fatalf("missing input in %v", capturedArgs)
	}
	if findArg(capturedArgs, "-loop") != -1 || findArg(capturedArgs, "-shortest") != -1 {
		t.Fatalf("still-image flags leaked into conversion: %v", capturedArgs)
	}
	if findArg(capturedArgs, "-vf") == -1 {
		t.Fatalf("conversion must normalize frame size: %v", capturedArgs)
	}
}

func TestCLIPrependSilence(t *testing.T) {
	var capturedArgs []string
	setHelperCommand(t, "create-last", &capturedArgs)

	audioPath := filepath.Join(t.TempDir(), "narration.wav")
	if err := os.WriteFile(audioPath, []byte("original"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}

	cli := NewCLI(testFormat())
	if err := cli.PrependSilence(context.Background(), audioPath, 2.5); err != nil {
		t.Fatalf("PrependSilence: %v", err)
	}

	tIdx := findArg(capturedArgs, "-t")
	if tIdx == -1 || capturedArgs[tIdx+1] != "2.5" {
		t.Fatalf("missing silence duration in %v", capturedArgs)
	}
	if findArg(capturedArgs, "anullsrc=r=44100:cl=stereo") == -1 {
		t.Fatalf("missing silence source in %v", capturedArgs)
	}
	fcIdx := findArg(capturedArgs, "-filter_complex")
	if fcIdx == -1 || capturedArgs[fcIdx+1] != "[0:a][1:a]concat=n=2:v=0:a=1" {
		t.Fatalf("missing concat filter in %v", capturedArgs)
	}

	data, err := os.ReadFile(audioPath)
	if err != nil {
		t.Fatalf("read padded audio: %v", err)
	}
	if string(data) != "helper output" {
		t.Fatalf("padded audio did not replace original, got %q", data)
	}
	if _, err := os.Stat(audioPath + ".pad.wav"); !os.IsNotExist(err) {
		t.Fatal("temp pad file must be cleaned up")
	}
}

func TestCLIPrependSilenceMonoLayout(t *testing.T) {
	var capturedArgs []string
	setHelperCommand(t, "create-last", &capturedArgs)

	format := testFormat()
	format.Channels = 1
	audioPath := filepath.Join(t.TempDir(), "narration.wav")
	if err := os.WriteFile(audioPath, []byte("original"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}

	cli := NewCLI(format)
	if err := cli.PrependSilence(context.Background(), audioPath, 1); err != nil {
		t.Fatalf("PrependSilence: %v", err)
	}
	if findArg(capturedArgs, "anullsrc=r=44100:cl=mono") == -1 {
		t.Fatalf("mono layout missing in %v", capturedArgs)
	}
}

func TestCLIPrependSilenceZeroIsNoop(t *testing.T) {
	invoked := false
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		invoked = true
		return exec.CommandContext(ctx, os.Args[0])
	}
	t.Cleanup(func() {
		commandContext = original
	})

	cli := NewCLI(testFormat())
	if err := cli.PrependSilence(context.Background(), "narration.wav", 0); err != nil {
		t.Fatalf("PrependSilence: %v", err)
	}
	if invoked {
		t.Fatal("ffmpeg must not run for zero silence")
	}
}

func TestCLIConcatWritesListAndStreamCopies(t *testing.T) {
	var capturedArgs []string
	var listContents string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		capturedArgs = append([]string(nil), args...)
		if idx := findArg(args, "-i"); idx != -1 {
			data, _ := os.ReadFile(args[idx+1])
			listContents = string(data)
		}
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "MEDIA_HELPER_MODE=success")
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})

	dir := t.TempDir()
	clips := []string{filepath.Join(dir, "a.mp4"), filepath.Join(dir, "b.mp4")}
	outPath := filepath.Join(dir, "movie.mp4")

	cli := NewCLI(testFormat())
	if err := cli.Concat(context.Background(), clips, outPath); err != nil {
		t.Fatalf("Concat: %v", err)
	}

	if findArg(capturedArgs, "concat") == -1 || findArg(capturedArgs, "copy") == -1 {
		t.Fatalf("missing concat demuxer stream copy in %v", capturedArgs)
	}
	safeIdx := findArg(capturedArgs, "-safe")
	if safeIdx == -1 || capturedArgs[safeIdx+1] != "0" {
		t.Fatalf("missing -safe 0 in %v", capturedArgs)
	}
	want := "file '" + clips[0] + "'\nfile '" + clips[1] + "'\n"
	if listContents != want {
		t.Fatalf("concat list = %q, want %q", listContents, want)
	}
	if _, err := os.Stat(outPath + ".concat.txt"); !os.IsNotExist(err) {
		t.Fatal("concat list must be cleaned up")
	}
}

func TestCLIConcatRequiresClips(t *testing.T) {
	cli := NewCLI(testFormat())
	if err := cli.Concat(context.Background(), nil, "movie.mp4"); err == nil {
		t.Fatal("expected error for empty clip list")
	}
}

func TestCLIProbe(t *testing.T) {
	setHelperCommand(t, "probe", nil)

	cli := NewCLI(testFormat())
	duration, err := cli.Probe(context.Background(), "clip.mp4")
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if duration != 12.345678 {
		t.Fatalf("duration = %v, want 12.345678", duration)
	}
}

func TestCLIProbeBadOutputFails(t *testing.T) {
	setHelperCommand(t, "probe-bad", nil)

	cli := NewCLI(testFormat())
	_, err := cli.Probe(context.Background(), "clip.mp4")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "N/A") {
		t.Fatalf("unparsable output missing from error: %v", err)
	}
}

func TestCLIProbeFailure(t *testing.T) {
	setHelperCommand(t, "failure", nil)

	cli := NewCLI(testFormat())
	_, err := cli.Probe(context.Background(), "clip.mp4")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("MEDIA_HELPER_MODE") {
	case "success":
		os.Exit(0)
	case "create-last":
		if path := os.Getenv("MEDIA_HELPER_CREATE"); path != "" {
			_ = os.WriteFile(path, []byte("helper output"), 0o644)
		}
		os.Exit(0)
	case "probe":
		os.Stdout.WriteString("12.345678\n")
		os.Exit(0)
	case "probe-bad":
		os.Stdout.WriteString("N/A\n")
		os.Exit(0)
	case "failure":
		os.Stderr.WriteString("ffmpeg: invalid input\n")
		os.Exit(1)
	default:
		os.Exit(0)
	}
}

func findArg(args []string, target string) int {
	for i, arg := range args {
		if arg == target {
			return i
		}
	}
	return -1
}
