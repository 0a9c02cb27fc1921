// Command pre-receive is a git server hook that rejects pushes whose
// changed files fail syntax or style validation.
//
// Exit status: 0 accepted or bypassed, 2 rejected, anything else means the
// check itself could not run.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/0muji4/push-gate/internal/advisory"
	"github.com/0muji4/push-gate/internal/audit"
	"github.com/0muji4/push-gate/internal/change"
	"github.com/0muji4/push-gate/internal/config"
	apperrors "github.com/0muji4/push-gate/internal/errors"
	"github.com/0muji4/push-gate/internal/gate"
	"github.com/0muji4/push-gate/internal/logger"
	"github.com/0muji4/push-gate/internal/validate"
	"github.com/0muji4/push-gate/internal/workspace"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "push-gate: %v\n", err)
		return apperrors.ExitCode(apperrors.ConfigInvalid(err))
	}

	runID := uuid.NewString()
	log := logger.NewWithWriter(stderr, cfg.Log.Level, cfg.Log.Format).With("run_id", runID)

	var extra []validate.Validator
	if cfg.Advisory.Enabled {
		v, err := advisory.New(ctx, cfg.Advisory.APIKey, cfg.Advisory.Model, cfg.Advisory.SystemPrompt, log)
		if err != nil {
			log.Error("advisory review disabled", err)
		} else {
			extra = append(extra, v)
		}
	}

	sinks, err := audit.Open(ctx, cfg)
	if err != nil {
		log.Error("audit disabled", err)
	}
	defer func() {
		if err := sinks.Close(); err != nil {
			log.Error("closing audit sinks", err)
		}
	}()

	svc := workspace.NewGitService(&workspace.ProdExecRunner{}, cfg.Git.Dir, cfg.Git.Timeout)
	h := &hook{
		gate:  gate.NewFromConfig(cfg, svc, log, extra...),
		sink:  sinks,
		log:   log,
		runID: runID,
		now:   time.Now,
	}
	return h.run(ctx, stdin, stdout, stderr)
}

type hook struct {
	gate  *gate.Gate
	sink  audit.Sink
	log   *logger.Logger
	runID string
	now   func() time.Time
}

// run checks the first ref update of stdin. Later lines are not parsed.
func (h *hook) run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) int {
	u, ignored, err := change.ReadRefUpdate(stdin)
	if err != nil {
		return h.fail(stderr, err)
	}
	if ignored > 0 {
		h.log.Warnf("received %d ref updates, only %s is checked", ignored+1, u.Branch)
	}

	out, err := h.gate.Evaluate(ctx, u)
	if err != nil {
		return h.fail(stderr, err)
	}

	fmt.Fprint(stdout, out.Output())
	h.record(ctx, u, out)
	return out.ExitCode
}

func (h *hook) fail(stderr io.Writer, err error) int {
	h.log.Error("push check aborted", err)
	fmt.Fprintf(stderr, "push-gate: %v\n", err)
	return apperrors.ExitCode(err)
}

func (h *hook) record(ctx context.Context, u change.RefUpdate, out *gate.Outcome) {
	if h.sink == nil {
		return
	}
	err := h.sink.Record(ctx, audit.Record{
		RunID:       h.runID,
		Branch:      u.Branch,
		OldRevision: u.OldRevision,
		NewRevision: u.NewRevision,
		State:       out.State.String(),
		ExitCode:    out.ExitCode,
		Violations:  out.Violations,
		Report:      out.Report,
		CreatedAt:   h.now(),
	})
	if err != nil {
		h.log.Warnf("audit record failed: %v", err)
	}
}
