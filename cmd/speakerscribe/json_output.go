package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"speakerscribe/internal/history"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// runJSON is the machine-readable form of a history row.
type runJSON struct {
	ID              string     `json:"id"`
	Source          string     `json:"source"`
	Model           string     `json:"model,omitempty"`
	Language        string     `json:"language,omitempty"`
	OutputDir       string     `json:"output_dir,omitempty"`
	Status          string     `json:"status"`
	Segments        int        `json:"segments"`
	Turns           int        `json:"turns"`
	Speakers        int        `json:"speakers"`
	Unknown         int        `json:"unknown_segments"`
	TranscriptPath  string     `json:"transcript_path,omitempty"`
	AnnotatedPath   string     `json:"annotated_path,omitempty"`
	Error           string     `json:"error,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
	DurationSeconds float64    `json:"duration_seconds,omitempty"`
}

func toRunJSON(run history.Run) runJSON {
	return runJSON{
		ID:              run.ID,
		Source:          run.Source,
		Model:           run.Model,
		Language:        run.Language,
		OutputDir:       run.OutputDir,
		Status:          string(run.Status),
		Segments:        run.SegmentCount,
		Turns:           run.TurnCount,
		Speakers:        run.SpeakerCount,
		Unknown:         run.UnknownCount,
		TranscriptPath:  run.TranscriptPath,
		AnnotatedPath:   run.AnnotatedPath,
		Error:           run.ErrorMessage,
		StartedAt:       run.StartedAt,
		FinishedAt:      run.FinishedAt,
		DurationSeconds: run.Duration().Seconds(),
	}
}
