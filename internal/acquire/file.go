package acquire

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"speakerscribe/internal/config"
	"speakerscribe/internal/fileutil"
)

// LocalFile copies an existing recording into the run's work path.
type LocalFile struct{}

// Name identifies the fetcher in logs.
func (LocalFile) Name() string { return "file" }

// Fetch copies source to dest. Copying a file onto itself is refused so the
// audio cleanup at the end of a run cannot delete the user's original.
func (LocalFile) Fetch(ctx context.Context, source, dest string) error {
	if err := ctx.Err(); err != nil {
		return fail(source, err)
	}
	path := strings.TrimSpace(source)
	if path == "" {
		return fail(source, errors.New("source path required"))
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return fail(source, err)
	}
	if err := fileutil.RequireNonEmpty(expanded); err != nil {
		return fail(source, err)
	}
	if same, err := samePath(expanded, dest); err != nil {
		return fail(source, err)
	} else if same {
		return fail(source, errors.New("source is the intermediate audio path; copy it elsewhere first"))
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fail(source, err)
	}
	if err := fileutil.CopyFile(expanded, dest); err != nil {
		return fail(source, err)
	}
	return nil
}

func samePath(a, b string) (bool, error) {
	infoA, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	infoB, err := os.Stat(b)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return os.SameFile(infoA, infoB), nil
}
