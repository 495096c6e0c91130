package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"speakerscribe/internal/language"
	"speakerscribe/internal/logging"
	"speakerscribe/internal/pipeline"
)

func runPipeline(cmd *cobra.Command, ctx *commandContext, opts runOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	store, err := ctx.openStore(cmd)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	runner, err := pipeline.NewRunner(cfg,
		pipeline.WithStore(store),
		pipeline.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	result, err := runner.Run(cmd.Context(), pipeline.Request{
		Source:    opts.url,
		OutputDir: opts.outputDir,
		Model:     opts.model,
		Language:  opts.language,
		HFToken:   opts.hfToken,
		KeepAudio: opts.keepAudio,
	})
	if err != nil {
		return err
	}

	logger.Debug("run summary",
		logging.String(logging.FieldRunID, result.RunID),
		logging.String("language", result.Language),
	)

	out := cmd.OutOrStdout()
	for _, path := range result.Outputs.All() {
		fmt.Fprintf(out, "Wrote %s\n", path)
	}
	if result.AudioPath != "" {
		fmt.Fprintf(out, "Kept audio %s\n", result.AudioPath)
	}
	speakers := "none"
	if len(result.Summary.Speakers) > 0 {
		speakers = strings.Join(result.Summary.Speakers, ", ")
	}
	fmt.Fprintf(out, "%d segments, language %s, speakers: %s (%d unattributed)\n",
		result.Segments,
		language.DisplayName(result.Language),
		speakers,
		result.Summary.Unknown,
	)
	return nil
}
