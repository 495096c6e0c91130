package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"speakerscribe/internal/history"
	"speakerscribe/internal/testsupport"
)

func TestOpenAppliesMigrations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if store.Path() != cfg.HistoryPath() {
		t.Fatalf("unexpected store path %q", store.Path())
	}

	ctx := context.Background()
	run, err := store.Begin(ctx, history.Run{
		Source:    "https://www.youtube.com/watch?v=abc",
		Model:     "large",
		OutputDir: "/tmp/out",
	})
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if run.ID == "" {
		t.Fatal("expected run ID to be assigned")
	}
	if run.Status != history.StatusPending {
		t.Fatalf("expected pending status, got %s", run.Status)
	}

	fetched, err := store.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if fetched.Source != run.Source || fetched.Model != "large" || fetched.FinishedAt != nil {
		t.Fatalf("unexpected fetched run: %#v", fetched)
	}
}

func TestReopenKeepsExistingRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	run, err := store.Begin(context.Background(), history.Run{Source: "a.mp3", Model: "base", OutputDir: "/out"})
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := history.OpenPath(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.Get(context.Background(), run.ID); err != nil {
		t.Fatalf("expected run to survive reopen: %v", err)
	}
}

func TestOpenStampsSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	for range 2 {
		store, err := history.OpenPath(path)
		if err != nil {
			t.Fatalf("OpenPath failed: %v", err)
		}
		version, err := store.SchemaVersion(context.Background())
		_ = store.Close()
		if err != nil {
			t.Fatalf("SchemaVersion failed: %v", err)
		}
		if version != 1 {
			t.Fatalf("expected schema v1, got v%d", version)
		}
	}
}

func TestOpenRefusesNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 42"); err != nil {
		t.Fatalf("stamp version: %v", err)
	}
	_ = db.Close()

	_, err = history.OpenPath(path)
	if !errors.Is(err, history.ErrSchemaTooNew) {
		t.Fatalf("expected ErrSchemaTooNew, got %v", err)
	}
	if !strings.Contains(err.Error(), "v42") {
		t.Fatalf("expected recorded version in error, got %v", err)
	}
}

func TestBeginRequiresSource(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	if _, err := store.Begin(context.Background(), history.Run{Model: "large"}); err == nil {
		t.Fatal("expected error when source missing")
	}
}

func TestFinishRecordsOutcome(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	tests := []struct {
		name    string
		outcome history.Outcome
		want    history.Status
		wantErr string
	}{
		{
			name: "success",
			outcome: history.Outcome{
				SegmentCount:   12,
				TurnCount:      7,
				SpeakerCount:   2,
				UnknownCount:   1,
				TranscriptPath: "/out/transcription.json",
				AnnotatedPath:  "/out/annotated_transcription.txt",
			},
			want: history.StatusSucceeded,
		},
		{
			name:    "error defaults to failed",
			outcome: history.Outcome{Err: errors.New("yt-dlp exited 1")},
			want:    history.StatusFailed,
			wantErr: "yt-dlp exited 1",
		},
		{
			name:    "explicit rejected",
			outcome: history.Outcome{Status: history.StatusRejected, Err: errors.New("busy")},
			want:    history.StatusRejected,
			wantErr: "busy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run, err := store.Begin(ctx, history.Run{Source: "src", Model: "large", OutputDir: "/out"})
			if err != nil {
				t.Fatalf("Begin failed: %v", err)
			}
			if err := store.Finish(ctx, run.ID, tt.outcome); err != nil {
				t.Fatalf("Finish failed: %v", err)
			}
			got, err := store.Get(ctx, run.ID)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if got.Status != tt.want {
				t.Fatalf("status = %s, want %s", got.Status, tt.want)
			}
			if got.ErrorMessage != tt.wantErr {
				t.Fatalf("error message = %q, want %q", got.ErrorMessage, tt.wantErr)
			}
			if got.FinishedAt == nil {
				t.Fatal("expected finished timestamp")
			}
			if got.SegmentCount != tt.outcome.SegmentCount || got.UnknownCount != tt.outcome.UnknownCount {
				t.Fatalf("unexpected counts: %#v", got)
			}
			if got.AnnotatedPath != tt.outcome.AnnotatedPath {
				t.Fatalf("unexpected annotated path %q", got.AnnotatedPath)
			}
		})
	}
}

func TestFinishRejectsPendingAndUnknownRun(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if err := store.Finish(ctx, "missing", history.Outcome{}); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	run, err := store.Begin(ctx, history.Run{Source: "src", Model: "large", OutputDir: "/out"})
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := store.Finish(ctx, run.ID, history.Outcome{Status: history.StatusPending}); err == nil {
		t.Fatal("expected pending outcome to be rejected")
	}
}

func TestListNewestFirstWithLimit(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, source := range []string{"first", "second", "third"} {
		if _, err := store.Begin(ctx, history.Run{
			Source:    source,
			Model:     "large",
			OutputDir: "/out",
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("Begin %s failed: %v", source, err)
		}
	}

	runs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Source != "third" || runs[1].Source != "second" {
		t.Fatalf("unexpected order: %s, %s", runs[0].Source, runs[1].Source)
	}

	all, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(all))
	}
}

func TestFailAbandoned(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	stale, err := store.Begin(ctx, history.Run{Source: "stale", Model: "large", OutputDir: "/out", StartedAt: time.Now().Add(-48 * time.Hour)})
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	fresh, err := store.Begin(ctx, history.Run{Source: "fresh", Model: "large", OutputDir: "/out"})
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	affected, err := store.FailAbandoned(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("FailAbandoned failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 abandoned run, got %d", affected)
	}
	if got, _ := store.Get(ctx, stale.ID); got.Status != history.StatusFailed {
		t.Fatalf("expected stale run failed, got %s", got.Status)
	}
	if got, _ := store.Get(ctx, fresh.ID); got.Status != history.StatusPending {
		t.Fatalf("expected fresh run pending, got %s", got.Status)
	}
}

func TestRunDuration(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	run := history.Run{StartedAt: start}
	if run.Duration() != 0 {
		t.Fatal("expected zero duration while pending")
	}
	finished := start.Add(90 * time.Second)
	run.FinishedAt = &finished
	if run.Duration() != 90*time.Second {
		t.Fatalf("unexpected duration %s", run.Duration())
	}
}
