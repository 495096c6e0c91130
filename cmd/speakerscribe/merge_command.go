package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"speakerscribe/internal/output"
	"speakerscribe/internal/services/pyannote"
	"speakerscribe/internal/services/whisper"
	"speakerscribe/internal/transcript"
)

func newMergeCommand() *cobra.Command {
	var transcriptPath string
	var diarizationPath string
	var outputPath string

	cmd := &cobra.Command{
		Use:         "merge",
		Short:       "Merge saved whisper and diarization output without running the engines",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			annotated, err := mergeFiles(transcriptPath, diarizationPath)
			if err != nil {
				return err
			}
			if target := strings.TrimSpace(outputPath); target != "" && target != "-" {
				if err := output.WriteText(target, annotated); err != nil {
					return fmt.Errorf("write %s: %w", target, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d segments to %s\n", len(annotated), target)
				return nil
			}
			return output.FormatText(cmd.OutOrStdout(), annotated)
		},
	}

	cmd.Flags().StringVar(&transcriptPath, "transcript", "", "Whisper JSON result (e.g. transcription.json)")
	cmd.Flags().StringVar(&diarizationPath, "diarization", "", "Diarization turns JSON (script or sidecar format)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write annotated text here instead of stdout")
	_ = cmd.MarkFlagRequired("transcript")
	_ = cmd.MarkFlagRequired("diarization")
	return cmd
}

func mergeFiles(transcriptPath, diarizationPath string) ([]transcript.AnnotatedSegment, error) {
	data, err := os.ReadFile(transcriptPath)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	transcription, err := whisper.ParseResult(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", transcriptPath, err)
	}

	data, err = os.ReadFile(diarizationPath)
	if err != nil {
		return nil, fmt.Errorf("read diarization: %w", err)
	}
	turns, err := pyannote.ParseTurns(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", diarizationPath, err)
	}
	return transcript.Merge(transcription.Segments, turns), nil
}
