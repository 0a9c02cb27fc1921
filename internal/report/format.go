package report

import (
	"fmt"
	"strings"

	"github.com/0muji4/push-gate/internal/validate"
)

const separatorWidth = 72

var separator = strings.Repeat("=", separatorWidth)

// Render lays out a report for the pusher. The same report always renders
// to the same bytes; an empty report renders to "".
func Render(r Report) string {
	if r.Empty() {
		return ""
	}

	var b strings.Builder
	b.WriteString(separator + "\n")
	b.WriteString("Push rejected: problems were found in the changed files.\n")
	for _, g := range r.Groups {
		b.WriteString("\n" + header(g.Kind) + "\n")
		for _, f := range g.Files {
			fmt.Fprintf(&b, "    %s\n", f.Path)
			for _, line := range f.Lines {
				fmt.Fprintf(&b, "        %s\n", line)
			}
		}
	}
	b.WriteString("\nFix the problems above and push again.\n")
	b.WriteString(separator + "\n")
	return b.String()
}

func header(kind validate.Kind) string {
	switch kind {
	case validate.KindSyntax:
		return "Syntax errors (SyntaxError):"
	case validate.KindStyle:
		return "Style violations (StyleRule):"
	default:
		return fmt.Sprintf("%s:", kind)
	}
}
