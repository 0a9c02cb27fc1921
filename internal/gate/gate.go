package gate

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/0muji4/push-gate/internal/change"
	"github.com/0muji4/push-gate/internal/logger"
	"github.com/0muji4/push-gate/internal/report"
	"github.com/0muji4/push-gate/internal/source"
	"github.com/0muji4/push-gate/internal/validate"
)

// Gate decides whether a ref update may be accepted.
type Gate struct {
	resolver   *change.Resolver
	fetcher    *source.Fetcher
	validators []validate.Validator
	workers    int
	log        *logger.Logger
}

func New(resolver *change.Resolver, fetcher *source.Fetcher, validators []validate.Validator, workers int, log *logger.Logger) *Gate {
	if workers < 1 {
		workers = 1
	}
	return &Gate{
		resolver:   resolver,
		fetcher:    fetcher,
		validators: validators,
		workers:    workers,
		log:        log,
	}
}

// Evaluate runs the decision for one update. Branch creation and deletion
// are accepted without touching the repository. An error means the
// environment failed and no decision was reached.
func (g *Gate) Evaluate(ctx context.Context, u change.RefUpdate) (*Outcome, error) {
	switch {
	case u.IsCreate():
		g.log.Infof("branch %s created, skipping checks", u.Branch)
		return &Outcome{
			State:    BypassedCreate,
			Accepted: true,
			ExitCode: ExitAccepted,
			Notices:  []string{fmt.Sprintf("Branch creation detected for %s, skipping checks.", u.Branch)},
		}, nil
	case u.IsDelete():
		g.log.Infof("branch %s deleted, skipping checks", u.Branch)
		return &Outcome{
			State:    BypassedDelete,
			Accepted: true,
			ExitCode: ExitAccepted,
			Notices:  []string{fmt.Sprintf("Branch deletion detected for %s, skipping checks.", u.Branch)},
		}, nil
	}

	rep, notices, err := g.Check(ctx, u.OldRevision, u.NewRevision)
	if err != nil {
		return nil, err
	}

	out := &Outcome{Notices: notices, Violations: rep.Count()}
	if rep.Empty() {
		out.State = Accepted
		out.Accepted = true
		out.ExitCode = ExitAccepted
		g.log.Infof("push to %s accepted", u.Branch)
		return out, nil
	}

	out.State = Rejected
	out.ExitCode = ExitRejected
	out.Report = report.Render(rep)
	g.log.Warnf("push to %s rejected with %d violations", u.Branch, out.Violations)
	return out, nil
}

// Check resolves the change set between two existing revisions and
// validates every in-scope file. Files are processed by up to g.workers
// goroutines; results are aggregated in tree order afterwards, so the
// report does not depend on scheduling.
func (g *Gate) Check(ctx context.Context, oldRev, newRev string) (report.Report, []string, error) {
	records, err := g.resolver.Resolve(ctx, oldRev, newRev)
	if err != nil {
		return report.Report{}, nil, err
	}
	g.log.Debugf("resolved %d changed paths", len(records))

	plan, err := g.fetcher.Plan(ctx, newRev, change.Paths(records))
	if err != nil {
		return report.Report{}, nil, err
	}

	results := make([][][]validate.Violation, len(plan.Entries))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i, entry := range plan.Entries {
		eg.Go(func() error {
			unit, err := g.fetcher.Load(egCtx, entry)
			if err != nil {
				return err
			}
			found := make([][]validate.Violation, len(g.validators))
			for j, v := range g.validators {
				if found[j], err = v.Validate(egCtx, unit); err != nil {
					return fmt.Errorf("%s validator on %s: %w", v.Kind(), unit.Path, err)
				}
			}
			results[i] = found
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return report.Report{}, nil, err
	}

	agg := report.NewAggregator()
	for i, entry := range plan.Entries {
		for j, v := range g.validators {
			agg.Add(v.Kind(), entry.Path, results[i][j])
		}
	}
	return agg.Report(), plan.Notices, nil
}
