package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/0muji4/push-gate/internal/source"
)

func isBlank(r rune) bool { return r == ' ' || r == '\t' }

type TrailingWhitespaceRule struct{}

func (TrailingWhitespaceRule) Code() string        { return "W291" }
func (TrailingWhitespaceRule) Description() string { return "Flags whitespace after the last character of a line." }

func (r TrailingWhitespaceRule) Check(unit source.Unit) []Violation {
	var out []Violation
	for i, line := range unit.Lines {
		trimmed := strings.TrimRightFunc(line, isBlank)
		if trimmed == line || trimmed == "" {
			continue
		}
		out = append(out, Violation{
			Line:    i + 1,
			Column:  utf8.RuneCountInString(trimmed) + 1,
			Message: r.Code() + " trailing whitespace",
		})
	}
	return out
}

type WhitespaceBlankLineRule struct{}

func (WhitespaceBlankLineRule) Code() string        { return "W293" }
func (WhitespaceBlankLineRule) Description() string { return "Flags lines holding only whitespace." }

func (r WhitespaceBlankLineRule) Check(unit source.Unit) []Violation {
	var out []Violation
	for i, line := range unit.Lines {
		if line != "" && strings.TrimFunc(line, isBlank) == "" {
			out = append(out, Violation{Line: i + 1, Column: 1, Message: r.Code() + " whitespace on blank line"})
		}
	}
	return out
}

// MixedIndentRule flags a space followed by a tab in leading indentation.
// Tab indentation followed by alignment spaces is allowed.
type MixedIndentRule struct{}

func (MixedIndentRule) Code() string        { return "E101" }
func (MixedIndentRule) Description() string { return "Flags indentation that puts spaces before tabs." }

func (r MixedIndentRule) Check(unit source.Unit) []Violation {
	var out []Violation
	for i, line := range unit.Lines {
		rest := strings.TrimLeftFunc(line, isBlank)
		if rest == "" {
			continue
		}
		if strings.Contains(line[:len(line)-len(rest)], " \t") {
			out = append(out, Violation{Line: i + 1, Column: 1, Message: r.Code() + " indentation contains mixed spaces and tabs"})
		}
	}
	return out
}

type LineLengthRule struct {
	Max int
}

func (LineLengthRule) Code() string        { return "E501" }
func (LineLengthRule) Description() string { return "Flags lines longer than the configured limit." }

func (r LineLengthRule) Check(unit source.Unit) []Violation {
	var out []Violation
	for i, line := range unit.Lines {
		n := utf8.RuneCountInString(line)
		if n <= r.Max {
			continue
		}
		out = append(out, Violation{
			Line:    i + 1,
			Column:  r.Max + 1,
			Message: fmt.Sprintf("%s line too long (%d > %d characters)", r.Code(), n, r.Max),
		})
	}
	return out
}

type MissingFinalNewlineRule struct{}

func (MissingFinalNewlineRule) Code() string        { return "W292" }
func (MissingFinalNewlineRule) Description() string { return "Flags files whose last line has no terminator." }

func (r MissingFinalNewlineRule) Check(unit source.Unit) []Violation {
	if len(unit.Lines) == 0 || unit.EndsWithNewline() {
		return nil
	}
	last := unit.Lines[len(unit.Lines)-1]
	return []Violation{{
		Line:    len(unit.Lines),
		Column:  utf8.RuneCountInString(last) + 1,
		Message: r.Code() + " no newline at end of file",
	}}
}

// TrailingBlankLineRule reports once, at the last of the trailing blank lines.
type TrailingBlankLineRule struct{}

func (TrailingBlankLineRule) Code() string        { return "W391" }
func (TrailingBlankLineRule) Description() string { return "Flags blank lines at the end of a file." }

func (r TrailingBlankLineRule) Check(unit source.Unit) []Violation {
	n := len(unit.Lines)
	if n == 0 || strings.TrimFunc(unit.Lines[n-1], isBlank) != "" {
		return nil
	}
	return []Violation{{Line: n, Column: 1, Message: r.Code() + " blank line at end of file"}}
}
