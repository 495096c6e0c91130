// Package whisper transcribes audio into timed text segments.
//
// Two backends are available. The CLI backend runs the openai-whisper
// command (through uvx unless disabled) and reads the JSON document it
// writes next to a scratch directory. The sidecar backend posts the audio to
// a faster-whisper HTTP service. Both return the engine's full result
// document alongside the parsed segments so callers can persist it as-is.
package whisper
