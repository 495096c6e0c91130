// Package logs reads the daily JSON log files written by the logging package.
//
// Latest locates the newest file in the log directory, LastLines returns the
// final N lines with bounded memory, and Follow polls for appended lines until
// the context is cancelled. The `speakerscribe logs` command is built on these.
package logs
