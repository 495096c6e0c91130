package pyannote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"speakerscribe/internal/config"
	"speakerscribe/internal/transcript"
)

// Engine diarizes a local audio file.
type Engine interface {
	Name() string
	Diarize(ctx context.Context, audioPath string) ([]transcript.Turn, error)
}

// New builds the engine selected by cfg.Backend.
func New(cfg config.Diarization) (Engine, error) {
	switch cfg.Backend {
	case config.BackendScript, "":
		return NewScript(cfg), nil
	case config.BackendSidecar:
		return NewSidecar(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported diarization backend %q", cfg.Backend)
	}
}

type scriptTurn struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

type sidecarResponse struct {
	Segments    []sidecarSegment `json:"segments"`
	NumSpeakers int              `json:"num_speakers"`
	Error       string           `json:"error,omitempty"`
}

type sidecarSegment struct {
	SpeakerID string  `json:"speaker_id"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

// ParseTurns decodes diarization output. It accepts the script's array of
// {start,end,speaker} objects and the sidecar's {"segments": [...]} object.
// Turn order is preserved.
func ParseTurns(data []byte) ([]transcript.Turn, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("parse diarization json: empty document")
	}
	if trimmed[0] == '{' {
		var resp sidecarResponse
		if err := json.Unmarshal(trimmed, &resp); err != nil {
			return nil, fmt.Errorf("parse diarization json: %w", err)
		}
		if resp.Error != "" {
			return nil, fmt.Errorf("diarization error: %s", resp.Error)
		}
		turns := make([]transcript.Turn, len(resp.Segments))
		for i, seg := range resp.Segments {
			turns[i] = transcript.Turn{Start: seg.StartTime, End: seg.EndTime, Speaker: seg.SpeakerID}
		}
		return turns, nil
	}

	var raw []scriptTurn
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("parse diarization json: %w", err)
	}
	turns := make([]transcript.Turn, len(raw))
	for i, turn := range raw {
		turns[i] = transcript.Turn{Start: turn.Start, End: turn.End, Speaker: turn.Speaker}
	}
	return turns, nil
}
