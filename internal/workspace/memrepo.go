package workspace

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"

	apperrors "github.com/0muji4/push-gate/internal/errors"
)

var _ RevisionService = (*MemRepo)(nil)

// MemRepo is an in-memory RevisionService for tests. Revisions are
// registered with Commit; diffs are derived from the two trees unless
// overridden with SetDiff.
type MemRepo struct {
	mu     sync.Mutex
	trees  map[string]map[string]string // rev -> path -> object id
	blobs  map[string][]byte
	diffs  map[[2]string][]string
	failed map[string]string // operation key -> stderr

	calls map[string]int
}

func NewMemRepo() *MemRepo {
	return &MemRepo{
		trees:  make(map[string]map[string]string),
		blobs:  make(map[string][]byte),
		diffs:  make(map[[2]string][]string),
		failed: make(map[string]string),
		calls:  make(map[string]int),
	}
}

// Commit registers rev with the given path -> content tree.
func (m *MemRepo) Commit(rev string, files map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tree := make(map[string]string, len(files))
	for path, content := range files {
		id := BlobID([]byte(content))
		m.blobs[id] = []byte(content)
		tree[path] = id
	}
	m.trees[rev] = tree
}

// SetDiff overrides the derived diff output for (oldRev, newRev).
func (m *MemRepo) SetDiff(oldRev, newRev string, lines ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.diffs[[2]string{oldRev, newRev}] = lines
}

// FailDiff makes Diff fail with stderr.
func (m *MemRepo) FailDiff(stderr string) { m.fail("diff", stderr) }

// FailTree makes ListTree fail with stderr.
func (m *MemRepo) FailTree(stderr string) { m.fail("ls-tree", stderr) }

// FailBlob makes ReadBlob of objectID fail with stderr.
func (m *MemRepo) FailBlob(objectID, stderr string) { m.fail("cat-file "+objectID, stderr) }

func (m *MemRepo) fail(key, stderr string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed[key] = stderr
}

// Calls returns how many times op ("diff", "ls-tree", "cat-file") was invoked.
func (m *MemRepo) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *MemRepo) Diff(_ context.Context, oldRev, newRev string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["diff"]++

	if stderr, ok := m.failed["diff"]; ok {
		return nil, apperrors.DiffUnavailable(oldRev, newRev, stderr)
	}
	if lines, ok := m.diffs[[2]string{oldRev, newRev}]; ok {
		return lines, nil
	}

	oldTree, okOld := m.trees[oldRev]
	newTree, okNew := m.trees[newRev]
	if !okOld || !okNew {
		return nil, apperrors.DiffUnavailable(oldRev, newRev, "fatal: bad revision")
	}

	paths := make(map[string]struct{})
	for p := range oldTree {
		paths[p] = struct{}{}
	}
	for p := range newTree {
		paths[p] = struct{}{}
	}

	var lines []string
	for _, p := range sortedKeys(paths) {
		oldID, inOld := oldTree[p]
		newID, inNew := newTree[p]
		switch {
		case !inOld:
			lines = append(lines, "A\t"+p)
		case !inNew:
			lines = append(lines, "D\t"+p)
		case oldID != newID:
			lines = append(lines, "M\t"+p)
		}
	}
	return lines, nil
}

func (m *MemRepo) ListTree(_ context.Context, rev string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["ls-tree"]++

	if stderr, ok := m.failed["ls-tree"]; ok {
		return nil, apperrors.TreeUnavailable(rev, stderr)
	}
	tree, ok := m.trees[rev]
	if !ok {
		return nil, apperrors.TreeUnavailable(rev, "fatal: not a tree object")
	}

	paths := make(map[string]struct{}, len(tree))
	for p := range tree {
		paths[p] = struct{}{}
	}
	lines := make([]string, 0, len(tree))
	for _, p := range sortedKeys(paths) {
		lines = append(lines, fmt.Sprintf("100644 blob %s\t%s", tree[p], p))
	}
	return lines, nil
}

func (m *MemRepo) ReadBlob(_ context.Context, objectID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["cat-file"]++

	if stderr, ok := m.failed["cat-file "+objectID]; ok {
		return nil, apperrors.BlobUnavailable(objectID, stderr)
	}
	data, ok := m.blobs[objectID]
	if !ok {
		return nil, apperrors.BlobUnavailable(objectID, "fatal: Not a valid object name "+objectID)
	}
	return append([]byte(nil), data...), nil
}

// BlobID returns the git blob object id of content.
func BlobID(content []byte) string {
	h := sha1.New()
	fmt.Fprintf(h, "blob %d\x00", len(content))
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
