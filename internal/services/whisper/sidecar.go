package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"speakerscribe/internal/config"
	"speakerscribe/internal/services"
	"speakerscribe/internal/services/upload"
	"speakerscribe/internal/transcript"
)

const defaultSidecarTimeout = 30 * time.Minute

// Sidecar posts audio to a faster-whisper HTTP service.
type Sidecar struct {
	cfg    config.Transcription
	client *http.Client
}

// NewSidecar creates a sidecar engine.
func NewSidecar(cfg config.Transcription) *Sidecar {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = defaultSidecarTimeout
	}
	return &Sidecar{cfg: cfg, client: &http.Client{Timeout: timeout}}
}

// Name identifies the engine in logs.
func (s *Sidecar) Name() string { return "whisper-sidecar" }

// Transcribe uploads audioPath to /transcribe and parses the response body
// as a whisper result document.
func (s *Sidecar) Transcribe(ctx context.Context, audioPath string) (transcript.Transcription, error) {
	fields := map[string]string{"model": s.cfg.Model}
	if s.cfg.Language != "" {
		fields["language"] = s.cfg.Language
	}
	if s.cfg.Device != "" {
		fields["device"] = s.cfg.Device
	}

	body, contentType, err := upload.AudioForm(audioPath, fields)
	if err != nil {
		return transcript.Transcription{}, services.Wrap(services.ErrValidation, "transcription", "sidecar", "open audio", err)
	}
	defer body.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.SidecarURL+"/transcribe", body)
	if err != nil {
		return transcript.Transcription{}, services.Wrap(services.ErrConfiguration, "transcription", "sidecar", "create request", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.client.Do(req)
	if err != nil {
		return transcript.Transcription{}, services.Wrap(services.ErrExternalTool, "transcription", "sidecar", "whisper request", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return transcript.Transcription{}, services.Wrap(services.ErrExternalTool, "transcription", "sidecar", "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return transcript.Transcription{}, services.Wrap(services.ErrExternalTool, "transcription", "sidecar",
			fmt.Sprintf("whisper error (status %d)", resp.StatusCode), errors.New(truncate(string(data), 512)))
	}
	parsed, err := ParseResult(data)
	if err != nil {
		return transcript.Transcription{}, services.Wrap(services.ErrExternalTool, "transcription", "sidecar", "decode response", err)
	}
	return parsed, nil
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit] + "..."
}
