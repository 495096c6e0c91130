package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"speakerscribe/internal/config"
	"speakerscribe/internal/history"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check the speakerscribe configuration",
	}
	configCmd.AddCommand(newConfigInitCommand(), newConfigValidateCommand(ctx))
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented sample configuration",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(targetPath)
			if err != nil {
				return err
			}
			if err := guardExisting(target, overwrite); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("write sample config: %w", err)
			}

			cfg, _, _, err := config.Load(target)
			if err != nil {
				return fmt.Errorf("reload sample config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			describeLocations(out, cfg)
			fmt.Fprintln(out, "Next: set diarization.hf_token (or export HF_TOKEN) and accept the pyannote model terms on Hugging Face.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Where to write the file (default ~/.config/speakerscribe/config.toml)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the configuration and report what a run would use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			if ctx.configExists {
				fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			} else {
				fmt.Fprintf(out, "Config path: %s (not found, using defaults)\n", ctx.configPath)
			}
			fmt.Fprintf(out, "Acquisition: %s\n", cfg.Acquisition.Strategy)
			fmt.Fprintf(out, "Transcription: %s (model %s)\n", cfg.Transcription.Backend, cfg.Transcription.Model)
			fmt.Fprintf(out, "Diarization: %s (%s)\n", cfg.Diarization.Backend, cfg.Diarization.Pipeline)
			fmt.Fprintf(out, "HF token configured: %s\n", yesNo(cfg.RequireHFToken() == nil))
			describeLocations(out, cfg)
			if err := checkHistorySchema(cmd, cfg); err != nil {
				return err
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func initTarget(flagValue string) (string, error) {
	if strings.TrimSpace(flagValue) == "" {
		target, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("determine default config path: %w", err)
		}
		return target, nil
	}
	target, err := config.ExpandPath(flagValue)
	if err != nil {
		return "", fmt.Errorf("resolve --path: %w", err)
	}
	return target, nil
}

func guardExisting(target string, overwrite bool) error {
	info, err := os.Stat(target)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("check %s: %w", target, err)
	case info.IsDir():
		return fmt.Errorf("%s is a directory", target)
	case !overwrite:
		return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
	}
	return nil
}

func describeLocations(out io.Writer, cfg *config.Config) {
	if cfg.Pipeline.History {
		fmt.Fprintf(out, "History database: %s\n", cfg.HistoryPath())
	} else {
		fmt.Fprintln(out, "History database: disabled")
	}
	fmt.Fprintf(out, "Log directory: %s\n", cfg.Paths.LogDir)
	fmt.Fprintf(out, "Output directory: %s\n", cfg.Output.Dir)
}

// checkHistorySchema opens an existing history database so a file written by
// a newer build is reported here rather than at the start of a run.
func checkHistorySchema(cmd *cobra.Command, cfg *config.Config) error {
	if !cfg.Pipeline.History {
		return nil
	}
	if _, err := os.Stat(cfg.HistoryPath()); err != nil {
		return nil
	}
	store, err := history.OpenPath(cfg.HistoryPath())
	if err != nil {
		return fmt.Errorf("history database: %w", err)
	}
	defer store.Close()
	version, err := store.SchemaVersion(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "History schema: v%d\n", version)
	return nil
}
