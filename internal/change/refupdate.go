package change

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	apperrors "github.com/0muji4/push-gate/internal/errors"
)

// RefUpdate is one "<old> <new> <ref>" line from the push notification stream.
type RefUpdate struct {
	OldRevision string
	NewRevision string
	Branch      string
}

// IsCreate reports whether the update creates the branch.
func (u RefUpdate) IsCreate() bool { return IsZero(u.OldRevision) }

// IsDelete reports whether the update deletes the branch.
func (u RefUpdate) IsDelete() bool { return IsZero(u.NewRevision) }

// IsZero reports whether rev is the all-zero "does not exist" identifier.
func IsZero(rev string) bool {
	return rev != "" && strings.Trim(rev, "0") == ""
}

// ValidRevision reports whether rev is a full SHA-1 or SHA-256 hex object name.
func ValidRevision(rev string) bool {
	if len(rev) != 40 && len(rev) != 64 {
		return false
	}
	for _, c := range rev {
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}

// ReadRefUpdate parses the first non-blank line of r. Later lines are not
// parsed; the number of further non-blank lines is returned so callers can
// report them.
func ReadRefUpdate(r io.Reader) (RefUpdate, int, error) {
	var (
		first  RefUpdate
		found  bool
		ignore int
	)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if found {
			ignore++
			continue
		}
		u, err := ParseRefUpdate(line)
		if err != nil {
			return RefUpdate{}, 0, apperrors.Wrapf(err, apperrors.ErrCodeInvalidInput, "line %d", lineNo)
		}
		first, found = u, true
	}
	if err := scanner.Err(); err != nil {
		return RefUpdate{}, 0, apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "read ref updates")
	}
	if !found {
		return RefUpdate{}, 0, apperrors.InvalidInput("no ref update on standard input")
	}
	return first, ignore, nil
}

// ParseRefUpdate parses a single whitespace-separated triple.
func ParseRefUpdate(line string) (RefUpdate, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return RefUpdate{}, apperrors.InvalidInput(fmt.Sprintf("expected \"<old> <new> <ref>\", got %d fields", len(fields)))
	}
	u := RefUpdate{OldRevision: fields[0], NewRevision: fields[1], Branch: fields[2]}
	for _, rev := range []string{u.OldRevision, u.NewRevision} {
		if !ValidRevision(rev) {
			return RefUpdate{}, apperrors.InvalidInput(fmt.Sprintf("invalid revision %q", rev))
		}
	}
	return u, nil
}
