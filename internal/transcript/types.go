package transcript

import "encoding/json"

// UnknownSpeaker labels segments whose start time falls inside no turn.
const UnknownSpeaker = "Unknown"

// Segment is a contiguous span of audio paired with the text spoken in it.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Turn is a contiguous span of audio attributed to one speaker label.
type Turn struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// AnnotatedSegment is a transcribed segment carrying its resolved speaker.
type AnnotatedSegment struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
}

// Transcription is the result of one transcription engine invocation.
// Raw holds the engine's full result document, untouched, so it can be
// persisted verbatim alongside the merged output.
type Transcription struct {
	Segments []Segment
	Language string
	Raw      json.RawMessage
}
