package pyannote

import (
	"context"
	_ "embed"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"speakerscribe/internal/config"
	"speakerscribe/internal/services"
	"speakerscribe/internal/transcript"
)

//go:embed diarize.py
var diarizeScript []byte

const (
	scriptName = "diarize.py"
	resultName = "turns.json"
)

// Script runs the bundled pyannote helper as a subprocess.
type Script struct {
	cfg    config.Diarization
	runner services.CommandRunner
}

// NewScript creates a script engine with the given configuration.
func NewScript(cfg config.Diarization) *Script {
	return &Script{cfg: cfg, runner: services.ExecRunner}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Script) WithCommandRunner(runner services.CommandRunner) *Script {
	if runner != nil {
		s.runner = runner
	}
	return s
}

// Name identifies the engine in logs.
func (s *Script) Name() string { return "pyannote-script" }

// Diarize writes the helper next to audioPath, runs it, and parses the turns
// it leaves in its scratch directory.
func (s *Script) Diarize(ctx context.Context, audioPath string) ([]transcript.Turn, error) {
	if strings.TrimSpace(s.cfg.HFToken) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "diarization", "pyannote", "hugging face token required", nil)
	}
	if strings.TrimSpace(audioPath) == "" {
		return nil, services.Wrap(services.ErrValidation, "diarization", "pyannote", "audio path required", nil)
	}
	workDir, err := os.MkdirTemp(filepath.Dir(audioPath), ".pyannote-")
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "diarization", "pyannote", "create work dir", err)
	}
	defer os.RemoveAll(workDir)

	scriptPath := filepath.Join(workDir, scriptName)
	if err := os.WriteFile(scriptPath, diarizeScript, 0o600); err != nil {
		return nil, services.Wrap(services.ErrTransient, "diarization", "pyannote", "write helper script", err)
	}
	resultPath := filepath.Join(workDir, resultName)

	if _, err := s.runner(ctx, s.Command(scriptPath, audioPath, resultPath)); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "diarization", "pyannote", "run diarization", err)
	}

	data, err := os.ReadFile(resultPath)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "diarization", "pyannote", "read result", err)
	}
	turns, err := ParseTurns(data)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "diarization", "pyannote", "decode result", err)
	}
	return turns, nil
}

// Command builds the helper invocation. The token travels in Env only.
func (s *Script) Command(scriptPath, audioPath, resultPath string) services.Command {
	python := s.cfg.PythonCommand
	if python == "" {
		python = "python"
	}
	args := make([]string, 0, 20)
	name := python
	if s.cfg.UseUVX {
		pkg := s.cfg.Package
		if pkg == "" {
			pkg = "pyannote.audio"
		}
		name = config.UVCommand
		args = append(args, "run", "--no-project", "--with", pkg, python)
	}

	pipeline := s.cfg.Pipeline
	if pipeline == "" {
		pipeline = "pyannote/speaker-diarization"
	}
	args = append(args, scriptPath, audioPath, "--pipeline", pipeline, "--output", resultPath)
	for _, opt := range []struct {
		flag  string
		value int
	}{
		{"--num-speakers", s.cfg.NumSpeakers},
		{"--min-speakers", s.cfg.MinSpeakers},
		{"--max-speakers", s.cfg.MaxSpeakers},
	} {
		if opt.value > 0 {
			args = append(args, opt.flag, strconv.Itoa(opt.value))
		}
	}

	env := []string{"HF_TOKEN=" + s.cfg.HFToken}
	// Torch 2.6 changed torch.load default to weights_only=true, breaking
	// older pyannote checkpoints.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		env = append(env, "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}
	return services.Command{Name: name, Args: args, Env: env}
}
