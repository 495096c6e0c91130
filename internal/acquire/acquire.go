package acquire

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"speakerscribe/internal/config"
	"speakerscribe/internal/services"
)

// Fetcher obtains audio for source and writes it to dest.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, source, dest string) error
}

// AcquisitionError reports a failed fetch. It unwraps to the underlying
// cause and also matches services.ErrAcquisition.
type AcquisitionError struct {
	Source string
	Err    error
}

func (e *AcquisitionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("acquire %s: failed", e.Source)
	}
	return fmt.Sprintf("acquire %s: %v", e.Source, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

// Is reports whether target is services.ErrAcquisition.
func (e *AcquisitionError) Is(target error) bool {
	return target == services.ErrAcquisition
}

func fail(source string, err error) error {
	var existing *AcquisitionError
	if errors.As(err, &existing) {
		return err
	}
	return &AcquisitionError{Source: source, Err: err}
}

// New builds the fetcher selected by cfg.Strategy.
func New(cfg config.Acquisition) (Fetcher, error) {
	ytdlp := NewYTDLP(cfg)
	switch cfg.Strategy {
	case config.StrategyYTDLP:
		return ytdlp, nil
	case config.StrategyFile:
		return LocalFile{}, nil
	case config.StrategyAuto, "":
		return &Auto{Remote: ytdlp, Local: LocalFile{}}, nil
	default:
		return nil, fmt.Errorf("unsupported acquisition strategy %q", cfg.Strategy)
	}
}

// Auto copies sources that name an existing local file and downloads
// everything else.
type Auto struct {
	Remote Fetcher
	Local  Fetcher
}

// Name identifies the fetcher in logs.
func (a *Auto) Name() string { return "auto" }

// Fetch dispatches source to the local or remote fetcher.
func (a *Auto) Fetch(ctx context.Context, source, dest string) error {
	return a.pick(source).Fetch(ctx, source, dest)
}

func (a *Auto) pick(source string) Fetcher {
	if IsLocal(source) {
		return a.Local
	}
	return a.Remote
}

// IsLocal reports whether source names an existing regular file.
func IsLocal(source string) bool {
	source = strings.TrimSpace(source)
	if source == "" || strings.Contains(source, "://") {
		return false
	}
	expanded, err := config.ExpandPath(source)
	if err != nil {
		return false
	}
	info, err := os.Stat(expanded)
	return err == nil && info.Mode().IsRegular()
}
