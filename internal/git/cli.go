// Package git reads file versions and ref metadata through the git CLI.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrGitNotFound = errors.New("git not found - is git installed?")
	ErrNotARepo    = errors.New("not a git repository")
)

// CommandError is a git invocation that exited non-zero.
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("git %s failed (exit %d): %s", strings.Join(e.Args, " "), e.ExitCode, strings.TrimSpace(e.Stderr))
}

// run executes git -C dir args and returns stdout.
func run(ctx context.Context, logger *zap.Logger, dir string, args ...string) ([]byte, error) {
	full := append([]string{"-C", dir}, args...)
	cmd := exec.CommandContext(ctx, "git", full...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("running git", zap.Strings("args", args), zap.String("dir", dir))

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, ErrGitNotFound
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("running git: %w", err)
		}
		if strings.Contains(stderr.String(), "not a git repository") {
			return nil, fmt.Errorf("%w: %s", ErrNotARepo, dir)
		}
		return nil, &CommandError{Args: args, ExitCode: exitErr.ExitCode(), Stderr: stderr.String()}
	}
	return stdout.Bytes(), nil
}

func runString(ctx context.Context, logger *zap.Logger, dir string, args ...string) (string, error) {
	out, err := run(ctx, logger, dir, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// exitCode returns the exit status carried by a CommandError, or -1.
func exitCode(err error) int {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	return -1
}
