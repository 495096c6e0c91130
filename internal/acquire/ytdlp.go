package acquire

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"speakerscribe/internal/config"
	"speakerscribe/internal/fileutil"
	"speakerscribe/internal/services"
)

// YTDLP downloads and extracts audio with yt-dlp.
type YTDLP struct {
	command string
	format  string
	runner  services.CommandRunner
}

// NewYTDLP creates a yt-dlp fetcher from the acquisition config.
func NewYTDLP(cfg config.Acquisition) *YTDLP {
	command := strings.TrimSpace(cfg.YTDLPCommand)
	if command == "" {
		command = "yt-dlp"
	}
	format := strings.TrimSpace(cfg.AudioFormat)
	if format == "" {
		format = "mp3"
	}
	return &YTDLP{command: command, format: format, runner: services.ExecRunner}
}

// WithCommandRunner sets a custom command runner (for testing).
func (y *YTDLP) WithCommandRunner(runner services.CommandRunner) *YTDLP {
	if runner != nil {
		y.runner = runner
	}
	return y
}

// Name identifies the fetcher in logs.
func (y *YTDLP) Name() string { return "yt-dlp" }

// Command builds the yt-dlp invocation for url.
func (y *YTDLP) Command(url, dest string) services.Command {
	return services.Command{
		Name: y.command,
		Args: []string{"-x", "--audio-format", y.format, "-o", dest, url},
	}
}

// Fetch runs yt-dlp and confirms the extracted audio landed at dest.
func (y *YTDLP) Fetch(ctx context.Context, source, dest string) error {
	url := strings.TrimSpace(source)
	if url == "" {
		return fail(source, errors.New("source url required"))
	}
	if strings.HasPrefix(url, "-") {
		return fail(source, errors.New("source url must not start with '-'"))
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fail(source, err)
	}
	if _, err := y.runner(ctx, y.Command(url, dest)); err != nil {
		return fail(source, err)
	}
	if err := fileutil.RequireNonEmpty(dest); err != nil {
		return fail(source, err)
	}
	return nil
}
