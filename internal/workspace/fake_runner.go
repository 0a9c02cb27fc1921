package workspace

import (
	"context"
	"sync"
)

var _ ExecRunner = (*FakeExecRunner)(nil)

// FakeExecRunner is a fake implementation of ExecRunner for testing.
type FakeExecRunner struct {
	// Handler is a function that determines the result for a given spec.
	Handler func(spec ExecSpec) ExecResult

	mu    sync.Mutex
	Specs []ExecSpec
}

func (f *FakeExecRunner) Run(ctx context.Context, spec ExecSpec) ExecResult {
	f.mu.Lock()
	f.Specs = append(f.Specs, spec)
	f.mu.Unlock()

	if f.Handler == nil {
		return ExecResult{
			ExitCode:  -1,
			ErrorKind: "spawn",
			Stderr:    "fake runner: no handler defined",
		}
	}
	return f.Handler(spec)
}
