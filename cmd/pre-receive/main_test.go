package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/0muji4/push-gate/internal/audit"
	"github.com/0muji4/push-gate/internal/config"
	apperrors "github.com/0muji4/push-gate/internal/errors"
	"github.com/0muji4/push-gate/internal/gate"
	"github.com/0muji4/push-gate/internal/logger"
	"github.com/0muji4/push-gate/internal/workspace"
)

var (
	zero = strings.Repeat("0", 40)
	revA = strings.Repeat("a", 40)
	revB = strings.Repeat("b", 40)
)

type memSink struct {
	records []audit.Record
	err     error
}

func (s *memSink) Record(_ context.Context, rec audit.Record) error {
	s.records = append(s.records, rec)
	return s.err
}

func (s *memSink) Close() error { return nil }

func newHook(repo *workspace.MemRepo, sink audit.Sink) *hook {
	return &hook{
		gate:  gate.NewFromConfig(config.Default(), repo, logger.Nop()),
		sink:  sink,
		log:   logger.Nop(),
		runID: "run-1",
		now:   func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	}
}

func runHook(h *hook, input string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := h.run(context.Background(), strings.NewReader(input), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_BranchCreation(t *testing.T) {
	repo := workspace.NewMemRepo()
	code, stdout, _ := runHook(newHook(repo, nil), zero+" "+revB+" refs/heads/main\n")
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if !strings.Contains(stdout, "Branch creation detected") {
		t.Errorf("stdout = %q", stdout)
	}
	if repo.Calls("diff") != 0 {
		t.Errorf("creation must not diff")
	}
}

func TestRun_RejectedWithTwoGroups(t *testing.T) {
	repo := workspace.NewMemRepo()
	repo.Commit(revA, map[string]string{"bad.go": "package p\n", "ws.go": "package p\n"})
	repo.Commit(revB, map[string]string{
		"bad.go": "package p\n\nfunc f() {\n\tg(1\n}\n",
		"ws.go":  "package p\n\nvar x = 1 \n",
	})
	sink := &memSink{}

	code, stdout, stderr := runHook(newHook(repo, sink), "\n"+revA+" "+revB+" refs/heads/main\n")
	if code != 2 {
		t.Fatalf("exit code = %d, want 2 (stderr %q)", code, stderr)
	}
	if !strings.Contains(stdout, "Syntax errors (SyntaxError):") || !strings.Contains(stdout, "Style violations (StyleRule):") {
		t.Errorf("stdout missing groups:\n%s", stdout)
	}

	if len(sink.records) != 1 {
		t.Fatalf("audit records = %d", len(sink.records))
	}
	rec := sink.records[0]
	rec.Report = ""
	want := audit.Record{
		RunID: "run-1", Branch: "refs/heads/main", OldRevision: revA, NewRevision: revB,
		State: "rejected", ExitCode: 2, Violations: 2, CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Errorf("audit record (-want +got):\n%s", diff)
	}
}

func TestRun_OnlyFirstUpdateChecked(t *testing.T) {
	repo := workspace.NewMemRepo()
	repo.Commit(revA, map[string]string{"a.go": "package p\n"})
	repo.Commit(revB, map[string]string{"a.go": "package p\n\nfunc f() {}\n"})

	input := revA + " " + revB + " refs/heads/main\n" + revA + " " + zero + " refs/heads/old\n"
	code, stdout, _ := runHook(newHook(repo, nil), input)
	if code != 0 || stdout != "" {
		t.Errorf("code=%d stdout=%q", code, stdout)
	}
	if repo.Calls("diff") != 1 {
		t.Errorf("diff calls = %d, want 1", repo.Calls("diff"))
	}
}

func TestRun_GarbageAfterFirstUpdateIgnored(t *testing.T) {
	repo := workspace.NewMemRepo()
	repo.Commit(revA, map[string]string{"a.go": "package p\n"})
	repo.Commit(revB, map[string]string{"a.go": "package p\n\nvar x = 1 \n"})

	input := revA + " " + revB + " refs/heads/main\nnot a ref update\n"
	code, stdout, stderr := runHook(newHook(repo, nil), input)
	if code != gate.ExitRejected {
		t.Errorf("exit code = %d, want %d (stderr=%q)", code, gate.ExitRejected, stderr)
	}
	if repo.Calls("diff") != 1 || !strings.Contains(stdout, "W291 trailing whitespace") {
		t.Errorf("first update not evaluated: diff calls=%d stdout=%q", repo.Calls("diff"), stdout)
	}
}

func TestRun_InvalidInput(t *testing.T) {
	for name, input := range map[string]string{
		"empty":      "",
		"blank only": "\n  \n",
		"two fields": revA + " " + revB + "\n",
	} {
		t.Run(name, func(t *testing.T) {
			code, stdout, stderr := runHook(newHook(workspace.NewMemRepo(), nil), input)
			if code != apperrors.ExitDataErr {
				t.Errorf("exit code = %d, want %d", code, apperrors.ExitDataErr)
			}
			if stdout != "" || !strings.Contains(stderr, "INVALID_INPUT") {
				t.Errorf("stdout=%q stderr=%q", stdout, stderr)
			}
		})
	}
}

func TestRun_EnvironmentFailureHasNoReport(t *testing.T) {
	repo := workspace.NewMemRepo()
	repo.FailDiff("fatal: bad object " + revB)
	sink := &memSink{}

	code, stdout, stderr := runHook(newHook(repo, sink), revA+" "+revB+" refs/heads/main\n")
	if code == 0 || code == 2 {
		t.Errorf("exit code = %d, want fatal code", code)
	}
	if stdout != "" {
		t.Errorf("no report expected on environment failure, got %q", stdout)
	}
	if !strings.Contains(stderr, "fatal: bad object") {
		t.Errorf("stderr should carry the git message: %q", stderr)
	}
	if len(sink.records) != 0 {
		t.Errorf("aborted runs are not audited")
	}
}

func TestRun_AuditFailureKeepsDecision(t *testing.T) {
	repo := workspace.NewMemRepo()
	sink := &memSink{err: errors.New("db down")}
	code, _, _ := runHook(newHook(repo, sink), revA+" "+zero+" refs/heads/main\n")
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
}
