package source

import "strings"

// Unit is one in-scope file at the new revision.
type Unit struct {
	Path    string
	Content []byte
	// Lines holds the newline-normalized text lines without terminators.
	Lines []string
}

// NewUnit builds a Unit, splitting content into lines.
func NewUnit(path string, content []byte) Unit {
	return Unit{Path: path, Content: content, Lines: SplitLines(content)}
}

// EndsWithNewline reports whether the raw content ends in a line terminator.
func (u Unit) EndsWithNewline() bool {
	n := len(u.Content)
	return n > 0 && (u.Content[n-1] == '\n' || u.Content[n-1] == '\r')
}

// SplitLines normalizes CRLF and CR to LF and splits into lines. A final
// terminator does not start an extra empty line.
func SplitLines(content []byte) []string {
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
