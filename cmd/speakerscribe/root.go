package main

import (
	"github.com/spf13/cobra"
)

type runOptions struct {
	url       string
	model     string
	outputDir string
	hfToken   string
	language  string
	keepAudio bool
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string
	var opts runOptions

	ctx := newCommandContext(&configFlag, &logLevelFlag)

	rootCmd := &cobra.Command{
		Use:   "speakerscribe --url <video-url> --hf-token <token>",
		Short: "Transcribe a video and label each segment with its speaker",
		Long: `speakerscribe downloads a video's audio with yt-dlp, transcribes it with
Whisper, runs pyannote speaker diarization, and writes transcription.json plus
annotated_transcription.txt with one "<speaker> (<start>-<end>s): <text>" line
per segment.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, ctx, opts)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&opts.url, "url", "", "Video URL (or a local media file with the auto/file strategy)")
	flags.StringVar(&opts.model, "model", "", "Whisper model size (default from config, \"large\")")
	flags.StringVar(&opts.outputDir, "output-dir", "", "Directory for output files (default from config, \".\")")
	flags.StringVar(&opts.hfToken, "hf-token", "", "Hugging Face token for pyannote; required unless diarization.hf_token, HF_TOKEN or HUGGING_FACE_HUB_TOKEN supplies one (the sidecar backend may run without it)")
	flags.StringVar(&opts.language, "language", "", "Spoken language hint, e.g. en or German (default: auto-detect)")
	flags.BoolVar(&opts.keepAudio, "keep-audio", false, "Keep the intermediate audio file")
	_ = rootCmd.MarkFlagRequired("url")

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level override (debug, info, warn, error)")

	rootCmd.AddCommand(newMergeCommand())
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newDepsCommand(ctx))
	rootCmd.AddCommand(newLogsCommand(ctx))
	rootCmd.AddCommand(newTestNotifyCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
