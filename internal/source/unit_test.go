package source

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"terminated", "a\nb\n", []string{"a", "b"}},
		{"unterminated", "a\nb", []string{"a", "b"}},
		{"crlf", "a\r\nb\r\n", []string{"a", "b"}},
		{"lone cr", "a\rb", []string{"a", "b"}},
		{"trailing blank", "a\n\n", []string{"a", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, SplitLines([]byte(tt.in))); diff != "" {
				t.Errorf("SplitLines (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnit_EndsWithNewline(t *testing.T) {
	if NewUnit("a.go", []byte("x")).EndsWithNewline() {
		t.Error("no terminator expected")
	}
	if !NewUnit("a.go", []byte("x\r\n")).EndsWithNewline() {
		t.Error("CRLF terminator expected")
	}
}
