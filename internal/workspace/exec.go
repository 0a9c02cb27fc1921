package workspace

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// ExecSpec defines the input for a command execution.
type ExecSpec struct {
	// Argv is the command and its arguments. Argv[0] is the command name.
	// There is no shell string execution.
	Argv []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Timeout bounds the execution. 0 means no timeout.
	Timeout time.Duration
}

// ExecResult captures the output of a command execution.
type ExecResult struct {
	Stdout []byte
	Stderr string

	ExitCode int

	// ErrorKind classifies the failure reason.
	// "" (success), "exit", "timeout", "spawn", "canceled"
	ErrorKind string
}

// Failed reports whether the command did not exit cleanly.
func (r ExecResult) Failed() bool {
	return r.ErrorKind != "" || r.ExitCode != 0
}

// ExecRunner is the interface for executing commands.
// It allows swapping the real runner with a fake one for testing.
type ExecRunner interface {
	Run(ctx context.Context, spec ExecSpec) ExecResult
}

var _ ExecRunner = (*ProdExecRunner)(nil)

// ProdExecRunner is the production implementation of ExecRunner.
type ProdExecRunner struct{}

func (r *ProdExecRunner) Run(ctx context.Context, spec ExecSpec) ExecResult {
	if len(spec.Argv) == 0 {
		return ExecResult{
			ErrorKind: "spawn",
			Stderr:    "empty argv",
			ExitCode:  -1,
		}
	}

	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, spec.Argv[0], spec.Argv[1:]...)
	cmd.Dir = spec.Dir

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()

	res := ExecResult{
		Stdout: stdoutBuf.Bytes(),
		Stderr: strings.TrimSpace(stderrBuf.String()),
	}

	// A killed process also surfaces as *exec.ExitError, so check the context first.
	switch {
	case err == nil:
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		res.ExitCode = -1
		res.ErrorKind = "timeout"
	case errors.Is(ctx.Err(), context.Canceled):
		res.ExitCode = -1
		res.ErrorKind = "canceled"
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			res.ErrorKind = "exit"
		} else {
			res.ExitCode = -1
			res.ErrorKind = "spawn"
			if res.Stderr == "" {
				res.Stderr = err.Error()
			}
		}
	}

	return res
}
