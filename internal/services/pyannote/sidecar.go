package pyannote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"speakerscribe/internal/config"
	"speakerscribe/internal/services"
	"speakerscribe/internal/services/upload"
	"speakerscribe/internal/transcript"
)

const defaultSidecarTimeout = 30 * time.Minute

// Sidecar posts audio to a pyannote HTTP service.
type Sidecar struct {
	cfg    config.Diarization
	client *http.Client
}

// NewSidecar creates a sidecar engine.
func NewSidecar(cfg config.Diarization) *Sidecar {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = defaultSidecarTimeout
	}
	return &Sidecar{cfg: cfg, client: &http.Client{Timeout: timeout}}
}

// Name identifies the engine in logs.
func (s *Sidecar) Name() string { return "pyannote-sidecar" }

// Diarize uploads audioPath to /diarize. The token, when configured, is sent
// as a bearer credential so the sidecar can fetch gated models.
func (s *Sidecar) Diarize(ctx context.Context, audioPath string) ([]transcript.Turn, error) {
	fields := map[string]string{}
	for key, value := range map[string]int{
		"num_speakers": s.cfg.NumSpeakers,
		"min_speakers": s.cfg.MinSpeakers,
		"max_speakers": s.cfg.MaxSpeakers,
	} {
		if value > 0 {
			fields[key] = strconv.Itoa(value)
		}
	}

	body, contentType, err := upload.AudioForm(audioPath, fields)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "diarization", "sidecar", "open audio", err)
	}
	defer body.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.SidecarURL+"/diarize", body)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "diarization", "sidecar", "create request", err)
	}
	req.Header.Set("Content-Type", contentType)
	if s.cfg.HFToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.HFToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "diarization", "sidecar", "diarization request", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "diarization", "sidecar", "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		detail := string(data)
		if len(detail) > 512 {
			detail = detail[:512] + "..."
		}
		return nil, services.Wrap(services.ErrExternalTool, "diarization", "sidecar",
			fmt.Sprintf("diarization error (status %d)", resp.StatusCode), errors.New(detail))
	}
	turns, err := ParseTurns(data)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "diarization", "sidecar", "decode response", err)
	}
	return turns, nil
}
