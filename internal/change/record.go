package change

// Status is the single-letter change code reported by the revision diff.
type Status string

const (
	Added       Status = "A"
	Copied      Status = "C"
	Deleted     Status = "D"
	Modified    Status = "M"
	Renamed     Status = "R"
	TypeChanged Status = "T"
	Unmerged    Status = "U"
	Unknown     Status = "X"
)

// Record describes how one path changed between two revisions.
type Record struct {
	Status  Status
	OldPath string
	// NewPath is set only for renames and copies.
	NewPath string
}

// Path returns the path the change lives at in the new revision.
func (r Record) Path() string {
	if r.NewPath != "" {
		return r.NewPath
	}
	return r.OldPath
}

// Paths returns the effective paths of records as a set.
func Paths(records []Record) map[string]struct{} {
	set := make(map[string]struct{}, len(records))
	for _, r := range records {
		set[r.Path()] = struct{}{}
	}
	return set
}
