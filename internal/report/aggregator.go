package report

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/0muji4/push-gate/internal/validate"
)

// FileGroup holds the display lines of one path, in line order.
type FileGroup struct {
	Path  string
	Lines []string
}

// Group holds everything one validator kind found, in path-encounter order.
type Group struct {
	Kind  validate.Kind
	Files []FileGroup
}

// Report is the ordered list of non-empty groups.
type Report struct {
	Groups []Group
}

// Empty reports whether nothing was found.
func (r Report) Empty() bool { return len(r.Groups) == 0 }

// Count returns the total number of violations.
func (r Report) Count() int {
	n := 0
	for _, g := range r.Groups {
		for _, f := range g.Files {
			n += len(f.Lines)
		}
	}
	return n
}

type pathLines = orderedmap.OrderedMap[string, []string]

// Aggregator collects violations keyed by kind then path, keeping first-seen
// order for both. It is not safe for concurrent use.
type Aggregator struct {
	kinds *orderedmap.OrderedMap[validate.Kind, *pathLines]
}

func NewAggregator() *Aggregator {
	return &Aggregator{kinds: orderedmap.New[validate.Kind, *pathLines]()}
}

// Add records the violations of one path. An empty set leaves no trace.
func (a *Aggregator) Add(kind validate.Kind, path string, violations []validate.Violation) {
	if len(violations) == 0 {
		return
	}

	paths, ok := a.kinds.Get(kind)
	if !ok {
		paths = orderedmap.New[string, []string]()
		a.kinds.Set(kind, paths)
	}

	lines, _ := paths.Get(path)
	for _, v := range violations {
		lines = append(lines, v.Display())
	}
	paths.Set(path, lines)
}

// Report snapshots the collected violations.
func (a *Aggregator) Report() Report {
	var r Report
	for k := a.kinds.Oldest(); k != nil; k = k.Next() {
		g := Group{Kind: k.Key}
		for p := k.Value.Oldest(); p != nil; p = p.Next() {
			g.Files = append(g.Files, FileGroup{Path: p.Key, Lines: append([]string(nil), p.Value...)})
		}
		r.Groups = append(r.Groups, g)
	}
	return r
}
