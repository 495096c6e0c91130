package deps

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"speakerscribe/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	notExec := filepath.Join(binDir, "plain")
	if err := os.WriteFile(notExec, script, 0o644); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset", Command: "  "},
		{Name: "Plain", Command: notExec, Optional: true},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Path != present || results[0].Detail != "" {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("expected unset command to be reported, got %#v", results[2])
	}
	if results[3].Available {
		t.Fatalf("expected non-executable file to be unavailable")
	}

	missing := Missing(results)
	if len(missing) != 2 || missing[0].Name != "Missing" || missing[1].Name != "Unset" {
		t.Fatalf("unexpected missing set: %#v", missing)
	}
}

func names(reqs []Requirement) []string {
	out := make([]string, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, r.Name)
	}
	return out
}

func TestRequirementsFollowBackends(t *testing.T) {
	cfg := config.Default()
	if got := names(Requirements(&cfg)); !slices.Equal(got, []string{"yt-dlp", "FFmpeg", "uvx", "uv"}) {
		t.Fatalf("unexpected default requirements: %v", got)
	}

	cfg.Acquisition.Strategy = config.StrategyFile
	cfg.Transcription.Backend = config.BackendSidecar
	cfg.Diarization.UseUVX = false
	cfg.Diarization.PythonCommand = "python3"
	reqs := Requirements(&cfg)
	if got := names(reqs); !slices.Equal(got, []string{"FFmpeg", "Python"}) {
		t.Fatalf("unexpected requirements: %v", got)
	}
	if reqs[1].Command != "python3" {
		t.Fatalf("expected configured interpreter, got %q", reqs[1].Command)
	}
}

func TestRequirementsYTDLPOptionalForAuto(t *testing.T) {
	cfg := config.Default()
	cfg.Acquisition.Strategy = config.StrategyYTDLP
	if reqs := Requirements(&cfg); reqs[0].Optional {
		t.Fatal("yt-dlp must be required for the ytdlp strategy")
	}
	cfg.Acquisition.Strategy = config.StrategyAuto
	if reqs := Requirements(&cfg); !reqs[0].Optional {
		t.Fatal("yt-dlp should be optional for the auto strategy")
	}
}
