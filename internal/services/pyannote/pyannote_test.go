package pyannote_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"speakerscribe/internal/config"
	"speakerscribe/internal/services"
	"speakerscribe/internal/services/pyannote"
	"speakerscribe/internal/transcript"
)

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meeting_audio.mp3")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path
}

func scriptConfig() config.Diarization {
	cfg := config.Default().Diarization
	cfg.HFToken = "hf_secret"
	return cfg
}

func TestParseTurnsFormats(t *testing.T) {
	want := []transcript.Turn{
		{Start: 0.5, End: 3.2, Speaker: "SPEAKER_00"},
		{Start: 3.2, End: 7, Speaker: "SPEAKER_01"},
	}
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "script array",
			input: `[{"start": 0.5, "end": 3.2, "speaker": "SPEAKER_00"}, {"start": 3.2, "end": 7.0, "speaker": "SPEAKER_01"}]`,
		},
		{
			name:  "sidecar object",
			input: ` {"segments": [{"speaker_id": "SPEAKER_00", "start_time": 0.5, "end_time": 3.2}, {"speaker_id": "SPEAKER_01", "start_time": 3.2, "end_time": 7.0}], "num_speakers": 2}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pyannote.ParseTurns([]byte(tt.input))
			if err != nil {
				t.Fatalf("ParseTurns returned error: %v", err)
			}
			if !slices.Equal(got, want) {
				t.Fatalf("got %+v, want %+v", got, want)
			}
		})
	}
}

func TestParseTurnsErrors(t *testing.T) {
	for _, input := range []string{"", "  ", "nope", `{"error": "pipeline not loaded"}`} {
		if _, err := pyannote.ParseTurns([]byte(input)); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
	turns, err := pyannote.ParseTurns([]byte("[]"))
	if err != nil || turns == nil || len(turns) != 0 {
		t.Fatalf("expected empty non-nil turns, got %v %v", turns, err)
	}
}

func TestScriptCommandKeepsTokenOutOfArgs(t *testing.T) {
	cfg := scriptConfig()
	cfg.MinSpeakers = 2
	cfg.MaxSpeakers = 5

	cmd := pyannote.NewScript(cfg).Command("/w/diarize.py", "/out/a.mp3", "/w/turns.json")
	if cmd.Name != config.UVCommand {
		t.Fatalf("expected uv launcher, got %q", cmd.Name)
	}
	want := []string{
		"run", "--no-project", "--with", "pyannote.audio", "python",
		"/w/diarize.py", "/out/a.mp3",
		"--pipeline", "pyannote/speaker-diarization",
		"--output", "/w/turns.json",
		"--min-speakers", "2",
		"--max-speakers", "5",
	}
	if !slices.Equal(cmd.Args, want) {
		t.Fatalf("unexpected args:\n got %v\nwant %v", cmd.Args, want)
	}
	if strings.Contains(cmd.String(), "hf_secret") {
		t.Fatal("token leaked into command line")
	}
	if !slices.Contains(cmd.Env, "HF_TOKEN=hf_secret") {
		t.Fatalf("expected token in env, got %v", cmd.Env)
	}
}

func TestScriptCommandDirectPython(t *testing.T) {
	cfg := scriptConfig()
	cfg.UseUVX = false
	cfg.PythonCommand = "/venv/bin/python"
	cmd := pyannote.NewScript(cfg).Command("s.py", "a.mp3", "r.json")
	if cmd.Name != "/venv/bin/python" || cmd.Args[0] != "s.py" {
		t.Fatalf("unexpected command: %s", cmd)
	}
}

func TestScriptDiarize(t *testing.T) {
	audio := writeAudio(t)
	var sawScript bool
	engine := pyannote.NewScript(scriptConfig()).WithCommandRunner(func(_ context.Context, cmd services.Command) ([]byte, error) {
		scriptPath := cmd.Args[slices.Index(cmd.Args, "python")+1]
		data, err := os.ReadFile(scriptPath)
		if err != nil {
			return nil, err
		}
		sawScript = strings.Contains(string(data), "itertracks")
		output := cmd.Args[slices.Index(cmd.Args, "--output")+1]
		return nil, os.WriteFile(output, []byte(`[{"start": 0, "end": 2, "speaker": "SPEAKER_00"}]`), 0o644)
	})

	turns, err := engine.Diarize(context.Background(), audio)
	if err != nil {
		t.Fatalf("Diarize returned error: %v", err)
	}
	if !sawScript {
		t.Fatal("expected bundled script to be written before running")
	}
	if len(turns) != 1 || turns[0].Speaker != "SPEAKER_00" {
		t.Fatalf("unexpected turns: %+v", turns)
	}
	entries, err := os.ReadDir(filepath.Dir(audio))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected scratch dir removed, found %d entries", len(entries))
	}
}

func TestScriptDiarizeRequiresToken(t *testing.T) {
	cfg := scriptConfig()
	cfg.HFToken = ""
	called := false
	engine := pyannote.NewScript(cfg).WithCommandRunner(func(context.Context, services.Command) ([]byte, error) {
		called = true
		return nil, nil
	})
	_, err := engine.Diarize(context.Background(), writeAudio(t))
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if called {
		t.Fatal("runner should not be invoked without a token")
	}
}

func TestScriptDiarizeWrapsFailure(t *testing.T) {
	boom := errors.New("401 Client Error")
	engine := pyannote.NewScript(scriptConfig()).WithCommandRunner(func(context.Context, services.Command) ([]byte, error) {
		return nil, boom
	})
	_, err := engine.Diarize(context.Background(), writeAudio(t))
	if !errors.Is(err, services.ErrExternalTool) || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped external tool error, got %v", err)
	}
}

func TestSidecarDiarize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/diarize" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer hf_secret" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.FormValue("num_speakers") != "3" {
			http.Error(w, "expected num_speakers", http.StatusBadRequest)
			return
		}
		_, _ = io.WriteString(w, `{"segments": [{"speaker_id": "A", "start_time": 0, "end_time": 1.5}], "num_speakers": 1}`)
	}))
	defer server.Close()

	cfg := scriptConfig()
	cfg.Backend = config.BackendSidecar
	cfg.SidecarURL = server.URL
	cfg.NumSpeakers = 3
	engine := pyannote.NewSidecar(cfg)
	turns, err := engine.Diarize(context.Background(), writeAudio(t))
	if err != nil {
		t.Fatalf("Diarize returned error: %v", err)
	}
	if len(turns) != 1 || turns[0] != (transcript.Turn{Start: 0, End: 1.5, Speaker: "A"}) {
		t.Fatalf("unexpected turns: %+v", turns)
	}
}

func TestNewSelectsBackend(t *testing.T) {
	cfg := scriptConfig()
	if engine, err := pyannote.New(cfg); err != nil || engine.Name() != "pyannote-script" {
		t.Fatalf("expected script engine, got %v", err)
	}
	cfg.Backend = config.BackendSidecar
	if engine, err := pyannote.New(cfg); err != nil || engine.Name() != "pyannote-sidecar" {
		t.Fatalf("expected sidecar engine, got %v", err)
	}
	cfg.Backend = "cli"
	if _, err := pyannote.New(cfg); err == nil {
		t.Fatal("expected unsupported backend error")
	}
}
