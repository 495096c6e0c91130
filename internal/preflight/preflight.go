package preflight

import (
	"context"
	"fmt"
	"os"
	"strings"

	"speakerscribe/internal/config"
	"speakerscribe/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every check applicable to cfg. outputDir is checked only
// when it already exists; a run creates it on demand.
func RunAll(ctx context.Context, cfg *config.Config, outputDir string) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	if cfg.Pipeline.History {
		results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	}
	if dir := strings.TrimSpace(outputDir); dir != "" {
		if _, err := os.Stat(dir); err == nil {
			results = append(results, CheckDirectoryAccess("Output directory", dir))
		}
	}

	if cfg.Transcription.Backend == config.BackendSidecar {
		results = append(results, CheckSidecar(ctx, "Whisper sidecar", cfg.Transcription.SidecarURL))
	}
	if cfg.Diarization.Backend == config.BackendSidecar {
		results = append(results, CheckSidecar(ctx, "Pyannote sidecar", cfg.Diarization.SidecarURL))
	}

	for _, status := range deps.Missing(deps.Check(cfg)) {
		results = append(results, Result{
			Name:   status.Name,
			Detail: fmt.Sprintf("%s (%s)", status.Detail, status.Description),
		})
	}
	return results
}

// Failed returns the checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
