// Package pipeline runs one transcription job end to end.
//
// A run locks its output directory, fetches the source audio, transcribes
// and diarizes it (concurrently when pipeline.parallel is set), merges the
// two results by segment start time, writes the artifacts, removes the
// intermediate audio, and records the outcome in run history. Engines are
// built per run from the request's effective configuration; tests swap the
// factories for fakes.
package pipeline
