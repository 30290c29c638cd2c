package domain

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("record not found")
var ErrInvalidData = errors.New("invalid data")

// absentMarkers are stderr fragments of ip, wg and systemctl that indicate a missing object.
var absentMarkers = []string{
	"cannot find device",
	"does not exist",
	"no such device",
	"no such file or directory",
	"not loaded",
	"unable to access interface",
}

// CommandError is returned if an external command exits with a non-zero status or writes to stderr.
type CommandError struct {
	Command  string
	Args     []string
	ExitCode int // -1 if the process did not exit normally
	Stdout   string
	Stderr   string
	Err      error // the underlying process error, may be nil if only stderr was written
}

func (e *CommandError) Error() string {
	cmdLine := strings.TrimSpace(e.Command + " " + strings.Join(e.Args, " "))
	stderr := strings.TrimSpace(e.Stderr)
	switch {
	case e.Err != nil && stderr != "":
		return fmt.Sprintf("command %q failed (exit code %d): %v: %s", cmdLine, e.ExitCode, e.Err, stderr)
	case e.Err != nil:
		return fmt.Sprintf("command %q failed (exit code %d): %v", cmdLine, e.ExitCode, e.Err)
	default:
		return fmt.Sprintf("command %q wrote to stderr: %s", cmdLine, stderr)
	}
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// IsAbsent returns true if the command failed because the addressed object does not exist.
func (e *CommandError) IsAbsent() bool {
	stderr := strings.ToLower(e.Stderr)
	for _, marker := range absentMarkers {
		if strings.Contains(stderr, marker) {
			return true
		}
	}
	return false
}

// Is makes errors.Is(err, ErrNotFound) work for commands that failed on a missing object.
func (e *CommandError) Is(target error) bool {
	return target == ErrNotFound && e.IsAbsent()
}

// ParseError is returned if command output does not match the expected grammar.
type ParseError struct {
	Source string // the command or element whose output was parsed
	Line   string // offending line, may be empty
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("failed to parse %s output: %s", e.Source, e.Reason)
	if e.Line != "" {
		msg += fmt.Sprintf(" (line %q)", e.Line)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IoError is returned if a key or configuration file could not be read, written or removed.
type IoError struct {
	Op   string
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IoError) Unwrap() error {
	return e.Err
}

// StepError is returned if one step of a multi-step operation failed.
type StepError struct {
	Step       string
	State      InterfaceState // last state that was reached before the failure
	RolledBack bool           // true if all completed steps were compensated successfully
	Cleanup    []error        // errors of failed compensations
	Err        error
}

func (e *StepError) Error() string {
	msg := fmt.Sprintf("step %s failed in state %s: %v", e.Step, e.State, e.Err)
	if e.RolledBack {
		msg += " (rolled back)"
	}
	if len(e.Cleanup) > 0 {
		msg += fmt.Sprintf(" (%d cleanup errors: %v)", len(e.Cleanup), errors.Join(e.Cleanup...))
	}
	return msg
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// IgnoreNotFound returns nil if the error signals a missing object, otherwise the error itself.
func IgnoreNotFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
