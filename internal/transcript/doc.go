// Package transcript holds the timed segment types shared by the
// transcription and diarization engines and the merge that attributes each
// transcribed segment to a speaker.
//
// Merge is a pure function: it reads the segment and turn slices, never
// mutates them, and returns a freshly allocated annotated slice with exactly
// one entry per input segment, in input order.
package transcript
