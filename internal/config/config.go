package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Acquisition controls how source audio is obtained.
type Acquisition struct {
	// Strategy is "auto", "ytdlp", or "file".
	Strategy      string `toml:"strategy"`
	YTDLPCommand  string `toml:"ytdlp_command"`
	AudioFormat   string `toml:"audio_format"`
	AudioFileName string `toml:"audio_file_name"`
}

// Transcription configures the speech-to-text engine.
type Transcription struct {
	// Backend is "cli" (openai-whisper command) or "sidecar" (HTTP service).
	Backend        string `toml:"backend"`
	Model          string `toml:"model"`
	Language       string `toml:"language"`
	Device         string `toml:"device"`
	Command        string `toml:"command"`
	UseUVX         bool   `toml:"use_uvx"`
	Package        string `toml:"package"`
	SidecarURL     string `toml:"sidecar_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Diarization configures the speaker diarization engine.
type Diarization struct {
	// Backend is "script" (embedded pyannote script) or "sidecar" (HTTP service).
	Backend        string `toml:"backend"`
	HFToken        string `toml:"hf_token"`
	Pipeline       string `toml:"pipeline"`
	PythonCommand  string `toml:"python_command"`
	UseUVX         bool   `toml:"use_uvx"`
	Package        string `toml:"package"`
	NumSpeakers    int    `toml:"num_speakers"`
	MinSpeakers    int    `toml:"min_speakers"`
	MaxSpeakers    int    `toml:"max_speakers"`
	SidecarURL     string `toml:"sidecar_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Output controls where and how results are written.
type Output struct {
	Dir string `toml:"dir"`
	// ExtraFormats lists optional artifacts beyond the raw JSON and annotated
	// text: "srt" and "annotated_json".
	ExtraFormats []string `toml:"extra_formats"`
	KeepAudio    bool     `toml:"keep_audio"`
}

// Pipeline contains run orchestration settings.
type Pipeline struct {
	// Parallel runs transcription and diarization concurrently.
	Parallel bool `toml:"parallel"`
	// History records every run in the SQLite history database.
	History bool `toml:"history"`
}

// Notifications configures ntfy alerts when a run finishes.
type Notifications struct {
	// NtfyTopic is the full topic URL; empty disables notifications.
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Launchers used when an engine runs through uv instead of a preinstalled tool.
const (
	UVXCommand = "uvx"
	UVCommand  = "uv"
)

// Config encapsulates all configuration values for speakerscribe.
//
// Configuration sections by subsystem:
//   - Paths: state (history database) and log directories
//   - Acquisition: downloader strategy and intermediate audio naming
//   - Transcription: whisper model, device, and backend
//   - Diarization: pyannote pipeline, credential, and backend
//   - Output: output directory and optional artifact formats
//   - Pipeline: concurrency and history toggles
//   - Notifications: optional ntfy topic for completion alerts
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Acquisition   Acquisition   `toml:"acquisition"`
	Transcription Transcription `toml:"transcription"`
	Diarization   Diarization   `toml:"diarization"`
	Output        Output        `toml:"output"`
	Pipeline      Pipeline      `toml:"pipeline"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HistoryPath returns the SQLite history database location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// Timeout returns the sidecar request timeout.
func (t Transcription) Timeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}

// Timeout returns the sidecar request timeout.
func (d Diarization) Timeout() time.Duration {
	return time.Duration(d.TimeoutSeconds) * time.Second
}

// NotificationTimeout returns the ntfy request timeout.
func (c *Config) NotificationTimeout() time.Duration {
	return time.Duration(c.Notifications.RequestTimeoutSeconds) * time.Second
}

// WantsFormat reports whether an optional output format is enabled.
func (o Output) WantsFormat(format string) bool {
	for _, f := range o.ExtraFormats {
		if f == format {
			return true
		}
	}
	return false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
