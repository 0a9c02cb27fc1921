package workspace

import "context"

// RevisionService exposes the three revision-control operations the gate
// needs. Output is returned as unquoted text records (Diff, ListTree) or bytes
// (ReadBlob). A failing operation returns an *errors.AppError carrying the
// service's stderr text.
type RevisionService interface {
	// Diff returns "<status>\t<path>[\t<new_path>]" lines between two revisions.
	Diff(ctx context.Context, oldRev, newRev string) ([]string, error)
	// ListTree returns "<mode> <type> <object_id>\t<path>" lines, recursively.
	ListTree(ctx context.Context, rev string) ([]string, error)
	// ReadBlob returns the raw content of one object.
	ReadBlob(ctx context.Context, objectID string) ([]byte, error)
}

// FileReader defines operations for reading working-tree files.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}
