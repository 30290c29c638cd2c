package adapters

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/h44z/wg-agent/internal/domain"
)

// CommandObserver gets notified about every executed command.
type CommandObserver interface {
	ObserveCommand(command string, duration time.Duration, err error)
}

// ExecRunner executes external tools as child processes.
// A command fails if it exits with a non-zero status or if it writes anything to stderr.
type ExecRunner struct {
	useSudo  bool
	timeout  time.Duration
	observer CommandObserver
}

type ExecRunnerOption func(r *ExecRunner)

// WithSudo prefixes all commands with sudo.
func WithSudo(useSudo bool) ExecRunnerOption {
	return func(r *ExecRunner) {
		r.useSudo = useSudo
	}
}

// WithTimeout limits the runtime of each command. A timeout of 0 disables the limit.
func WithTimeout(timeout time.Duration) ExecRunnerOption {
	return func(r *ExecRunner) {
		r.timeout = timeout
	}
}

// WithObserver registers an observer that is notified after each command.
func WithObserver(observer CommandObserver) ExecRunnerOption {
	return func(r *ExecRunner) {
		r.observer = observer
	}
}

// NewExecRunner creates a new ExecRunner.
func NewExecRunner(opts ...ExecRunnerOption) *ExecRunner {
	r := &ExecRunner{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the given command and returns its stdout.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	return r.run(ctx, nil, name, args...)
}

// RunWithInput executes the given command with the given stdin content and returns its stdout.
func (r *ExecRunner) RunWithInput(ctx context.Context, input string, name string, args ...string) (string, error) {
	return r.run(ctx, strings.NewReader(input), name, args...)
}

func (r *ExecRunner) run(ctx context.Context, stdin *strings.Reader, name string, args ...string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmdName, cmdArgs := name, args
	if r.useSudo {
		cmdName = "sudo"
		cmdArgs = append([]string{"-n", name}, args...)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, cmdName, cmdArgs...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != nil {
		cmd.Stdin = stdin
	}

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	var err error
	if runErr != nil || stderr.Len() > 0 {
		exitCode := -1
		var exitErr *exec.ExitError
		switch {
		case runErr == nil:
			exitCode = 0
		case errors.As(runErr, &exitErr):
			exitCode = exitErr.ExitCode()
		}
		err = &domain.CommandError{
			Command:  name,
			Args:     args,
			ExitCode: exitCode,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			Err:      runErr,
		}
	}

	if r.observer != nil {
		r.observer.ObserveCommand(name, duration, err)
	}

	if err != nil {
		slog.Warn("failed to execute command",
			"command", name, "args", args, "stderr", strings.TrimSpace(stderr.String()), "duration", duration,
			"error", runErr)
		return stdout.String(), err
	}

	slog.Debug("executed command", "command", name, "args", args, "duration", duration)

	return stdout.String(), nil
}
