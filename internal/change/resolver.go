package change

import (
	"context"
	"strings"

	apperrors "github.com/0muji4/push-gate/internal/errors"
	"github.com/0muji4/push-gate/internal/workspace"
)

// Resolver turns a revision pair into ordered change records.
type Resolver struct {
	svc workspace.RevisionService
}

func NewResolver(svc workspace.RevisionService) *Resolver {
	return &Resolver{svc: svc}
}

// Resolve diffs oldRev..newRev. Any record with an unexpected field count
// aborts the whole resolution.
func (r *Resolver) Resolve(ctx context.Context, oldRev, newRev string) ([]Record, error) {
	lines, err := r.svc.Diff(ctx, oldRev, newRev)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		rec, err := ParseRecord(line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// ParseRecord parses "<status>\t<path>[\t<new_path>]". Similarity scores
// such as R087 are dropped, keeping only the status letter.
func ParseRecord(line string) (Record, error) {
	fields := strings.Split(line, "\t")
	if fields[0] == "" {
		return Record{}, apperrors.MalformedDiffRecord(line, len(fields))
	}

	rec := Record{Status: Status(fields[0][:1])}
	switch len(fields) {
	case 2:
		rec.OldPath = fields[1]
	case 3:
		rec.OldPath = fields[1]
		rec.NewPath = fields[2]
	default:
		return Record{}, apperrors.MalformedDiffRecord(line, len(fields))
	}
	if rec.Path() == "" {
		return Record{}, apperrors.MalformedDiffRecord(line, len(fields))
	}
	return rec, nil
}
