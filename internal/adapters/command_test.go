package adapters

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h44z/wg-agent/internal/domain"
)

type recordingObserver struct {
	commands []string
	errs     []error
}

func (o *recordingObserver) ObserveCommand(command string, _ time.Duration, err error) {
	o.commands = append(o.commands, command)
	o.errs = append(o.errs, err)
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecRunner_Run(t *testing.T) {
	requireShell(t)
	observer := &recordingObserver{}
	r := NewExecRunner(WithObserver(observer))

	out, err := r.Run(context.Background(), "sh", "-c", "echo hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
	assert.Equal(t, []string{"sh"}, observer.commands)
	assert.Equal(t, []error{nil}, observer.errs)
}

func TestExecRunner_RunWithInput(t *testing.T) {
	requireShell(t)
	r := NewExecRunner()

	out, err := r.RunWithInput(context.Background(), "private-key", "sh", "-c", "cat")
	require.NoError(t, err)
	assert.Equal(t, "private-key", out)
}

func TestExecRunner_Failures(t *testing.T) {
	requireShell(t)
	r := NewExecRunner()

	tests := []struct {
		name     string
		script   string
		exitCode int
		stderr   string
	}{
		{name: "non-zero exit", script: "exit 3", exitCode: 3},
		{name: "stderr only", script: "echo 'Cannot find device \"wg9\"' >&2", exitCode: 0, stderr: "Cannot find device \"wg9\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Run(context.Background(), "sh", "-c", tt.script)

			var cmdErr *domain.CommandError
			require.True(t, errors.As(err, &cmdErr))
			assert.Equal(t, "sh", cmdErr.Command)
			assert.Equal(t, tt.exitCode, cmdErr.ExitCode)
			assert.Equal(t, tt.stderr, cmdErr.Stderr)
		})
	}
}

func TestExecRunner_Timeout(t *testing.T) {
	requireShell(t)
	r := NewExecRunner(WithTimeout(50 * time.Millisecond))

	_, err := r.Run(context.Background(), "sh", "-c", "sleep 5")

	var cmdErr *domain.CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.NotEqual(t, 0, cmdErr.ExitCode)
}

func TestExecRunner_MissingBinary(t *testing.T) {
	r := NewExecRunner()

	_, err := r.Run(context.Background(), "wg-agent-does-not-exist")

	var cmdErr *domain.CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, -1, cmdErr.ExitCode)
}
