package validate

import (
	"context"
	"fmt"
	"strings"

	"github.com/0muji4/push-gate/internal/source"
)

// Kind names the validator that produced a Violation.
type Kind string

const (
	KindSyntax Kind = "SyntaxError"
	KindStyle  Kind = "StyleRule"
)

// Violation is one finding about one file. Line and Column are 1-based;
// zero means the position is unknown.
type Violation struct {
	Kind    Kind
	Path    string
	Line    int
	Column  int
	Message string
}

// Display renders the violation as a single report line. Line breaks in
// the message are folded into spaces.
func (v Violation) Display() string {
	msg := oneLine(v.Message)
	switch {
	case v.Line > 0 && v.Column > 0:
		return fmt.Sprintf("line %d, col %d: %s", v.Line, v.Column, msg)
	case v.Line > 0:
		return fmt.Sprintf("line %d: %s", v.Line, msg)
	default:
		return msg
	}
}

func oneLine(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	var parts []string
	for _, p := range strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' }) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Validator inspects one source unit. Findings are returned as data; an
// error means the validator itself could not run.
type Validator interface {
	Kind() Kind
	Validate(ctx context.Context, unit source.Unit) ([]Violation, error)
}
