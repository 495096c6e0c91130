package whisper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"speakerscribe/internal/config"
	"speakerscribe/internal/transcript"
)

// Engine transcribes a local audio file.
type Engine interface {
	Name() string
	Transcribe(ctx context.Context, audioPath string) (transcript.Transcription, error)
}

// New builds the engine selected by cfg.Backend.
func New(cfg config.Transcription) (Engine, error) {
	switch cfg.Backend {
	case config.BackendCLI, "":
		return NewCLI(cfg), nil
	case config.BackendSidecar:
		return NewSidecar(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported transcription backend %q", cfg.Backend)
	}
}

type result struct {
	Text     string    `json:"text"`
	Segments []segment `json:"segments"`
	Language string    `json:"language"`
}

type segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// ParseResult decodes a whisper result document. The document is kept
// verbatim in Raw; segments keep the engine's order and text untouched.
func ParseResult(data []byte) (transcript.Transcription, error) {
	var payload result
	if err := json.Unmarshal(data, &payload); err != nil {
		return transcript.Transcription{}, fmt.Errorf("parse whisper json: %w", err)
	}
	if payload.Segments == nil {
		return transcript.Transcription{}, errors.New("parse whisper json: missing segments")
	}
	segments := make([]transcript.Segment, len(payload.Segments))
	for i, seg := range payload.Segments {
		segments[i] = transcript.Segment{Start: seg.Start, End: seg.End, Text: seg.Text}
	}
	raw := make(json.RawMessage, len(data))
	copy(raw, data)
	return transcript.Transcription{
		Segments: segments,
		Language: payload.Language,
		Raw:      raw,
	}, nil
}
