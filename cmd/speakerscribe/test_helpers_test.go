package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"speakerscribe/internal/config"
	"speakerscribe/internal/testsupport"
)

const ytdlpStub = `#!/bin/sh
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then out="$2"; shift; fi
  shift
done
printf 'ID3 stub audio' > "$out"
`

const ytdlpFailingStub = `#!/bin/sh
echo "ERROR: [youtube] abc: Video unavailable" >&2
exit 1
`

// Mimics "uvx --from openai-whisper whisper <audio> ... --output_dir <dir>".
const whisperStub = `#!/bin/sh
audio="$4"
dir=""
prev=""
for arg in "$@"; do
  if [ "$prev" = "--output_dir" ]; then dir="$arg"; fi
  prev="$arg"
done
name=$(basename "$audio")
name="${name%.*}"
cat > "$dir/$name.json" <<'JSON'
{"text": " Hello there. General Kenobi.", "segments": [{"id": 0, "start": 0.0, "end": 1.5, "text": " Hello there."}, {"id": 1, "start": 2.0, "end": 3.5, "text": " General Kenobi."}], "language": "en"}
JSON
`

// Mimics "uv run ... python diarize.py <audio> ... --output <file>".
const pyannoteStub = `#!/bin/sh
case "$*" in *hf_test*) echo "token leaked into argv" >&2; exit 4;; esac
if [ -z "$HF_TOKEN" ]; then echo "missing token" >&2; exit 3; fi
out=""
prev=""
for arg in "$@"; do
  if [ "$prev" = "--output" ]; then out="$arg"; fi
  prev="$arg"
done
printf '[{"start": 0.0, "end": 1.9, "speaker": "SPEAKER_00"}, {"start": 1.9, "end": 4.0, "speaker": "SPEAKER_01"}]' > "$out"
`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	binDir     string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("HF_TOKEN", "")
	t.Setenv("HUGGING_FACE_HUB_TOKEN", "")

	env := &cliTestEnv{
		cfg:        cfg,
		configPath: filepath.Join(base, "config.toml"),
		baseDir:    base,
		binDir:     filepath.Join(base, "stubs"),
	}
	env.writeConfig(t)

	env.stub(t, "yt-dlp", ytdlpStub)
	env.stub(t, config.UVXCommand, whisperStub)
	env.stub(t, config.UVCommand, pyannoteStub)
	env.stub(t, "ffmpeg", "#!/bin/sh\nexit 0\n")
	t.Setenv("PATH", env.binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return env
}

func (e *cliTestEnv) writeConfig(t *testing.T) {
	t.Helper()
	data, err := toml.Marshal(e.cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(e.configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func (e *cliTestEnv) stub(t *testing.T, name, script string) {
	t.Helper()
	if err := os.MkdirAll(e.binDir, 0o755); err != nil {
		t.Fatalf("mkdir stubs: %v", err)
	}
	if err := os.WriteFile(filepath.Join(e.binDir, name), []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
