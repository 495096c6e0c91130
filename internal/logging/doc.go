// Package logging assembles the structured slog loggers used across
// speakerscribe.
//
// It owns the console and JSON handlers, the optional daily log file that
// receives a JSON copy of every record, and context helpers that tag log
// lines with run IDs and pipeline stages. NewNop provides a silent logger for
// tests and wiring code that cannot fail.
package logging
