package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"speakerscribe/internal/history"
	"speakerscribe/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "transcription", "whisper", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"transcription", "whisper", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestFailureStatusMapping(t *testing.T) {
	validationErr := services.Wrap(services.ErrValidation, "pipeline", "lock", "busy", nil)
	if status := services.FailureStatus(validationErr); status != history.StatusRejected {
		t.Fatalf("expected rejected for validation error, got %s", status)
	}

	acquisitionErr := services.Wrap(services.ErrAcquisition, "acquisition", "yt-dlp", "download failed", errors.New("exit 1"))
	if status := services.FailureStatus(acquisitionErr); status != history.StatusFailed {
		t.Fatalf("expected failed for acquisition error, got %s", status)
	}

	if status := services.FailureStatus(nil); status != history.StatusFailed {
		t.Fatalf("expected failed for nil error, got %s", status)
	}
}

func TestStageOf(t *testing.T) {
	err := fmt.Errorf("run: %w", services.Wrap(services.ErrExternalTool, "diarization", "pyannote", "run diarization", errors.New("exit 1")))
	if got := services.StageOf(err); got != "diarization" {
		t.Fatalf("StageOf = %q, want diarization", got)
	}
	if got := services.StageOf(errors.New("plain")); got != "" {
		t.Fatalf("expected empty stage for plain error, got %q", got)
	}
	want := "external tool error: diarization: pyannote: run diarization: exit 1"
	if got := errors.Unwrap(err).Error(); got != want {
		t.Fatalf("message = %q, want %q", got, want)
	}
}
