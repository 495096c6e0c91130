package whisper

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"speakerscribe/internal/config"
	"speakerscribe/internal/services"
	"speakerscribe/internal/transcript"
)

// OutputFormat is the whisper output format the CLI backend reads back.
const OutputFormat = "json"

// CLI runs the openai-whisper command line tool.
type CLI struct {
	cfg    config.Transcription
	runner services.CommandRunner
}

// NewCLI creates a CLI engine with the given configuration.
func NewCLI(cfg config.Transcription) *CLI {
	return &CLI{cfg: cfg, runner: services.ExecRunner}
}

// WithCommandRunner sets a custom command runner (for testing).
func (c *CLI) WithCommandRunner(runner services.CommandRunner) *CLI {
	if runner != nil {
		c.runner = runner
	}
	return c
}

// Name identifies the engine in logs.
func (c *CLI) Name() string { return "whisper-cli" }

// Transcribe runs whisper on audioPath in a scratch directory beside it and
// parses the JSON document whisper writes there.
func (c *CLI) Transcribe(ctx context.Context, audioPath string) (transcript.Transcription, error) {
	if strings.TrimSpace(audioPath) == "" {
		return transcript.Transcription{}, services.Wrap(services.ErrValidation, "transcription", "whisper", "audio path required", nil)
	}
	workDir, err := os.MkdirTemp(filepath.Dir(audioPath), ".whisper-")
	if err != nil {
		return transcript.Transcription{}, services.Wrap(services.ErrTransient, "transcription", "whisper", "create work dir", err)
	}
	defer os.RemoveAll(workDir)

	if _, err := c.runner(ctx, c.Command(audioPath, workDir)); err != nil {
		return transcript.Transcription{}, services.Wrap(services.ErrExternalTool, "transcription", "whisper", "run whisper", err)
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	resultPath := filepath.Join(workDir, base+"."+OutputFormat)
	data, err := os.ReadFile(resultPath)
	if err != nil {
		return transcript.Transcription{}, services.Wrap(services.ErrExternalTool, "transcription", "whisper", "read result", err)
	}
	parsed, err := ParseResult(data)
	if err != nil {
		return transcript.Transcription{}, services.Wrap(services.ErrExternalTool, "transcription", "whisper", "decode result", err)
	}
	return parsed, nil
}

// Command builds the whisper invocation for audioPath writing into outputDir.
func (c *CLI) Command(audioPath, outputDir string) services.Command {
	args := make([]string, 0, 16)
	name := c.cfg.Command
	if name == "" {
		name = "whisper"
	}
	if c.cfg.UseUVX {
		pkg := c.cfg.Package
		if pkg == "" {
			pkg = "openai-whisper"
		}
		args = append(args, "--from", pkg, name)
		name = config.UVXCommand
	}

	model := c.cfg.Model
	if model == "" {
		model = "large"
	}
	args = append(args,
		audioPath,
		"--model", model,
		"--output_format", OutputFormat,
		"--output_dir", outputDir,
		"--verbose", "False",
	)
	if c.cfg.Language != "" {
		args = append(args, "--language", c.cfg.Language)
	}
	if c.cfg.Device != "" {
		args = append(args, "--device", c.cfg.Device)
		if c.cfg.Device == "cpu" {
			args = append(args, "--fp16", "False")
		}
	}
	return services.Command{Name: name, Args: args}
}
