package workspace

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/0muji4/push-gate/internal/errors"
)

var _ RevisionService = (*GitService)(nil)

// GitService implements RevisionService with the git plumbing commands.
type GitService struct {
	runner  ExecRunner
	dir     string
	timeout time.Duration
}

// NewGitService returns a GitService running git in dir (empty means the
// current directory, which is the repository inside a server hook).
func NewGitService(runner ExecRunner, dir string, timeout time.Duration) *GitService {
	return &GitService{runner: runner, dir: dir, timeout: timeout}
}

func (g *GitService) Diff(ctx context.Context, oldRev, newRev string) ([]string, error) {
	res := g.git(ctx, "diff", "--name-status", "--no-color", "-M", "-z", oldRev, newRev)
	if res.Failed() {
		return nil, apperrors.DiffUnavailable(oldRev, newRev, g.describe(res))
	}
	return diffRecords(splitNUL(res.Stdout), oldRev, newRev)
}

func (g *GitService) ListTree(ctx context.Context, rev string) ([]string, error) {
	res := g.git(ctx, "ls-tree", "-r", "--full-tree", "-z", rev)
	if res.Failed() {
		return nil, apperrors.TreeUnavailable(rev, g.describe(res))
	}
	return splitNUL(res.Stdout), nil
}

func (g *GitService) ReadBlob(ctx context.Context, objectID string) ([]byte, error) {
	res := g.git(ctx, "cat-file", "blob", objectID)
	if res.Failed() {
		return nil, apperrors.BlobUnavailable(objectID, g.describe(res))
	}
	return res.Stdout, nil
}

func (g *GitService) git(ctx context.Context, args ...string) ExecResult {
	argv := []string{"git"}
	if g.dir != "" {
		argv = append(argv, "-C", g.dir)
	}
	argv = append(argv, args...)

	return g.runner.Run(ctx, ExecSpec{Argv: argv, Timeout: g.timeout})
}

func (g *GitService) describe(res ExecResult) string {
	switch {
	case res.ErrorKind == "timeout":
		return fmt.Sprintf("timed out after %s", g.timeout)
	case res.Stderr != "":
		return res.Stderr
	default:
		return fmt.Sprintf("exit status %d", res.ExitCode)
	}
}

// splitNUL splits -z output. Paths come back verbatim, without C quoting.
func splitNUL(out []byte) []string {
	text := strings.TrimSuffix(string(out), "\x00")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\x00")
}

// diffRecords regroups "-z --name-status" fields into tab-joined records.
// Renames and copies carry two paths, every other status one.
func diffRecords(fields []string, oldRev, newRev string) ([]string, error) {
	var records []string
	for i := 0; i < len(fields); {
		status := fields[i]
		paths := 1
		if strings.HasPrefix(status, "R") || strings.HasPrefix(status, "C") {
			paths = 2
		}
		end := i + 1 + paths
		if end > len(fields) {
			return nil, apperrors.DiffUnavailable(oldRev, newRev, fmt.Sprintf("truncated record for status %q", status))
		}
		for _, p := range fields[i+1 : end] {
			if strings.Contains(p, "\t") {
				return nil, apperrors.Newf(apperrors.ErrCodeMalformedDiffRecord, "path %q contains a tab", p)
			}
		}
		records = append(records, strings.Join(fields[i:end], "\t"))
		i = end
	}
	return records, nil
}
