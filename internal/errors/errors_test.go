package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"diff", DiffUnavailable("a", "b", "fatal: bad revision"), ExitEnvironment},
		{"blob", BlobUnavailable("abc", "missing"), ExitEnvironment},
		{"malformed", MalformedDiffRecord("M", 1), ExitEnvironment},
		{"input", InvalidInput("no ref update"), ExitDataErr},
		{"config", ConfigInvalid(stderrors.New("bad")), ExitConfig},
		{"plain", stderrors.New("boom"), ExitEnvironment},
		{"wrapped", fmt.Errorf("run: %w", InvalidInput("x")), ExitDataErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExitCode(tt.err)
			if got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
			if got == 2 {
				t.Errorf("fatal exit code must never be 2")
			}
		})
	}
}

func TestDiffUnavailableCarriesStderr(t *testing.T) {
	err := DiffUnavailable("aaa", "bbb", "fatal: ambiguous argument 'bbb'")
	if CodeOf(err) != ErrCodeDiffUnavailable {
		t.Fatalf("CodeOf() = %s", CodeOf(err))
	}
	if !strings.Contains(err.Error(), "fatal: ambiguous argument 'bbb'") {
		t.Errorf("stderr not propagated: %v", err)
	}
}
