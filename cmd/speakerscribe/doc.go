// Package main hosts the speakerscribe CLI entrypoint and command graph.
//
// The root command runs the full pipeline for one source: download, transcribe,
// diarize, merge, write. Subcommands cover offline merging of saved engine
// output, run history, dependency checks, and configuration scaffolding.
// Configuration is resolved lazily so commands that never need it (merge,
// config init) work on a machine without a config file.
//
// Keep this package lean: behaviour lives in the internal packages and is
// only surfaced through flags here.
package main
