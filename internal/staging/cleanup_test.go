package staging

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"speakerscribe/internal/logging"
)

func mkdirAged(t *testing.T, path string, age time.Duration) {
	t.Helper()
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if age > 0 {
		when := time.Now().Add(-age)
		if err := os.Chtimes(path, when, when); err != nil {
			t.Fatalf("chtimes %s: %v", path, err)
		}
	}
}

func TestCleanStaleInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := CleanStale(context.Background(), dir, ScratchPrefixes, time.Hour, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func TestCleanStaleRemovesOnlyOldScratchDirectories(t *testing.T) {
	dir := t.TempDir()
	oldWhisper := filepath.Join(dir, ".whisper-123")
	oldPyannote := filepath.Join(dir, ".pyannote-456")
	recent := filepath.Join(dir, ".whisper-789")
	unrelated := filepath.Join(dir, "episodes")
	mkdirAged(t, oldWhisper, 2*time.Hour)
	mkdirAged(t, oldPyannote, 2*time.Hour)
	mkdirAged(t, recent, 0)
	mkdirAged(t, unrelated, 2*time.Hour)
	if err := os.WriteFile(filepath.Join(dir, ".whisper-file"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	result := CleanStale(context.Background(), dir, ScratchPrefixes, time.Hour, logging.NewNop())
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Removed) != 2 {
		t.Fatalf("expected 2 removed, got %v", result.Removed)
	}
	for _, gone := range []string{oldWhisper, oldPyannote} {
		if _, err := os.Stat(gone); !os.IsNotExist(err) {
			t.Errorf("%s should have been removed", gone)
		}
	}
	for _, kept := range []string{recent, unrelated, filepath.Join(dir, ".whisper-file")} {
		if _, err := os.Stat(kept); err != nil {
			t.Errorf("%s should still exist: %v", kept, err)
		}
	}
}

func TestCleanStaleZeroAgeRemovesEverythingMatching(t *testing.T) {
	dir := t.TempDir()
	scratch := filepath.Join(dir, ".pyannote-1")
	mkdirAged(t, scratch, time.Minute)
	if err := os.WriteFile(filepath.Join(scratch, "turns.json"), []byte("[]"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	result := CleanStale(context.Background(), dir, ScratchPrefixes, 0, nil)
	if len(result.Removed) != 1 || result.Removed[0] != scratch {
		t.Fatalf("unexpected removal set: %v", result.Removed)
	}
}

func TestCleanStaleNoPrefixes(t *testing.T) {
	dir := t.TempDir()
	mkdirAged(t, filepath.Join(dir, ".whisper-1"), time.Hour)
	result := CleanStale(context.Background(), dir, nil, 0, nil)
	if len(result.Removed) != 0 {
		t.Fatalf("expected nothing removed, got %v", result.Removed)
	}
}
