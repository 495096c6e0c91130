package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// stderrTailLimit caps how much subprocess stderr is folded into errors.
const stderrTailLimit = 2048

// Command describes one external process invocation.
type Command struct {
	Name string
	Args []string
	// Env holds extra KEY=VALUE entries appended to the current environment.
	// Secrets belong here rather than in Args so they never show up in ps.
	Env []string
	Dir string
}

// String renders the command line for logging. Env is omitted.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// CommandRunner executes a command and returns its standard output.
// Tests substitute their own runner to avoid spawning processes.
type CommandRunner func(ctx context.Context, cmd Command) ([]byte, error)

// ExecRunner runs commands with os/exec. The process is killed when ctx is
// cancelled; stderr is captured and attached to the returned error.
func ExecRunner(ctx context.Context, c Command) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...) //nolint:gosec
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", c.Name, ctxErr)
		}
		return nil, fmt.Errorf("%s: %w: %s", c.Name, err, tail(stderr.String(), stderrTailLimit))
	}
	return stdout.Bytes(), nil
}

func tail(value string, limit int) string {
	value = strings.TrimSpace(value)
	if len(value) <= limit {
		return value
	}
	return "..." + value[len(value)-limit:]
}
