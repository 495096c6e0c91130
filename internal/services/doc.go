// Package services defines shared utilities consumed by the pipeline stages
// and the external engine integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and media sources for
//     logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent history statuses (failed vs rejected).
//   - A substitutable command runner so subprocess-backed engines (yt-dlp,
//     whisper, pyannote) are testable without the real binaries.
//
// Engine implementations live in subpackages: whisper for transcription and
// pyannote for diarization.
package services
