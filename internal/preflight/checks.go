package preflight

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

const sidecarProbeTimeout = 5 * time.Second

// CheckSidecar probes baseURL's /health endpoint once. Any 2xx answer passes.
func CheckSidecar(ctx context.Context, name, baseURL string) Result {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing url"}
	}

	ctx, cancel := context.WithTimeout(ctx, sidecarProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/health", nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s: invalid url (%v)", base, err)}
	}
	started := time.Now()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s: %s", base, describeProbeError(err))}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{Name: name, Detail: fmt.Sprintf("%s: /health returned %d", base, resp.StatusCode)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (healthy in %s)", base, time.Since(started).Round(time.Millisecond))}
}

// CheckDirectoryAccess verifies that path is a directory the current user can
// list, read, and create files in.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return Result{Name: name, Detail: path + ": does not exist"}
	case err != nil:
		return Result{Name: name, Detail: fmt.Sprintf("%s: %v", path, err)}
	case !info.IsDir():
		return Result{Name: name, Detail: path + ": not a directory"}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s: not writable by this user (%v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path + " (writable)"}
}

func describeProbeError(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Sprintf("no answer within %s", sidecarProbeTimeout)
	case errors.Is(err, unix.ECONNREFUSED):
		return "connection refused (is the sidecar running?)"
	default:
		return err.Error()
	}
}
