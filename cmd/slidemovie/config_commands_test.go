package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("unexpected output %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("second init without --overwrite must fail")
	}
	if _, err := runCLI(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("init with --overwrite: %v", err)
	}
}

func TestConfigInitProducesLoadableFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if _, err := runCLI(t, "config", "init", "--path", target); err != nil {
		t.Fatalf("config init: %v", err)
	}

	out, err := runCLI(t, "-c", target, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "[video]") || !strings.Contains(out, "[tts]") {
		t.Fatalf("rendered config missing sections: %q", out)
	}
}

func TestConfigShowMasksAPIKey(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	contents := "[tts]\napi_key = \"super-secret\"\n"
	if err := os.WriteFile(target, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, err := runCLI(t, "-c", target, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "super-secret") {
		t.Fatal("api key leaked into output")
	}
	if !strings.Contains(out, "(set)") {
		t.Fatalf("masked key marker missing: %q", out)
	}
}

func TestConfigPathReportsMissingFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nope.toml")

	out, err := runCLI(t, "-c", target, "config", "path")
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("path missing from output %q", out)
	}
	if !strings.Contains(out, "defaults are in effect") {
		t.Fatalf("missing-file note absent: %q", out)
	}
}

func TestInvalidateRejectsUnknownKind(t *testing.T) {
	dir := t.TempDir()
	script := "<!-- slide-id: talk-a -->\n# Intro\n\n::: notes\nHello.\n:::\n"
	if err := os.WriteFile(filepath.Join(dir, "talk.md"), []byte(script), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	cfgPath := filepath.Join(dir, "config.toml")
	cfg := "[paths]\noutput_root = \"" + filepath.Join(dir, "movie") + "\"\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := runCLI(t, "-c", cfgPath, "-p", "talk", "-d", dir, "invalidate", "talk-a", "--kind", "bogus")
	if err == nil || !strings.Contains(err.Error(), "unknown kind") {
		t.Fatalf("expected unknown kind error, got %v", err)
	}
}
