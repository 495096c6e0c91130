// Package output serializes a run's results into the output directory.
//
// transcription.json (the engine's raw result, re-indented) and
// annotated_transcription.txt are always written. SRT subtitles and the
// merged sequence as JSON are opt-in through output.extra_formats.
package output
