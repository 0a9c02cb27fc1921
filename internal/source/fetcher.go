package source

import (
	"context"
	"fmt"
	"path"
	"strings"

	apperrors "github.com/0muji4/push-gate/internal/errors"
	"github.com/0muji4/push-gate/internal/workspace"
)

// Scope is the classification of a changed path.
type Scope int

const (
	InScope Scope = iota
	Exempt
	OutOfScope
)

// Entry is one line of a recursive tree listing.
type Entry struct {
	Mode     string
	Type     string
	ObjectID string
	Path     string
}

// Plan is the result of matching the changed paths against the new tree.
type Plan struct {
	// Entries are the in-scope blobs to fetch, in tree-listing order.
	Entries []Entry
	// Notices are the exemption messages, in tree-listing order.
	Notices []string
}

// Fetcher selects in-scope changed files and reads their content.
type Fetcher struct {
	svc        workspace.RevisionService
	exempt     []string
	extensions map[string]struct{}
}

func NewFetcher(svc workspace.RevisionService, exemptPrefixes, extensions []string) *Fetcher {
	exts := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		exts[ext] = struct{}{}
	}
	return &Fetcher{svc: svc, exempt: exemptPrefixes, extensions: exts}
}

// Classify decides whether p is validated, exempt, or silently ignored.
func (f *Fetcher) Classify(p string) Scope {
	for _, prefix := range f.exempt {
		if strings.HasPrefix(p, prefix) {
			return Exempt
		}
	}
	if _, ok := f.extensions[path.Ext(p)]; !ok {
		return OutOfScope
	}
	return InScope
}

// Plan lists the tree of rev and keeps the entries whose path is a
// candidate. Deleted paths are not in the tree and so never appear.
func (f *Fetcher) Plan(ctx context.Context, rev string, candidates map[string]struct{}) (*Plan, error) {
	lines, err := f.svc.ListTree(ctx, rev)
	if err != nil {
		return nil, err
	}

	plan := &Plan{}
	for _, line := range lines {
		if line == "" {
			continue
		}
		entry, err := ParseEntry(line)
		if err != nil {
			return nil, err
		}
		if _, ok := candidates[entry.Path]; !ok {
			continue
		}
		// Submodule commits and other non-blob entries carry no content.
		if entry.Type != "blob" {
			continue
		}

		switch f.Classify(entry.Path) {
		case Exempt:
			plan.Notices = append(plan.Notices, fmt.Sprintf("Skipping exempt path: %s", entry.Path))
		case InScope:
			plan.Entries = append(plan.Entries, entry)
		}
	}
	return plan, nil
}

// Load reads the content of one planned entry.
func (f *Fetcher) Load(ctx context.Context, entry Entry) (Unit, error) {
	data, err := f.svc.ReadBlob(ctx, entry.ObjectID)
	if err != nil {
		return Unit{}, err
	}
	return NewUnit(entry.Path, data), nil
}

// ParseEntry parses "<mode> <type> <object_id>\t<path>".
func ParseEntry(line string) (Entry, error) {
	meta, p, ok := strings.Cut(line, "\t")
	fields := strings.Fields(meta)
	if !ok || len(fields) != 3 || p == "" {
		return Entry{}, apperrors.Newf(apperrors.ErrCodeTreeUnavailable, "malformed tree entry %q", line)
	}
	return Entry{Mode: fields[0], Type: fields[1], ObjectID: fields[2], Path: p}, nil
}
