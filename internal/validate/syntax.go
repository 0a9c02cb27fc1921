package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"go/parser"
	"go/scanner"
	"go/token"
	"io"
	"path"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/0muji4/push-gate/internal/source"
)

var _ Validator = (*SyntaxValidator)(nil)

// SyntaxValidator reports the first parse error of a file. Go, YAML and
// JSON are understood; other extensions pass.
type SyntaxValidator struct{}

func NewSyntaxValidator() *SyntaxValidator {
	return &SyntaxValidator{}
}

func (s *SyntaxValidator) Kind() Kind { return KindSyntax }

func (s *SyntaxValidator) Validate(_ context.Context, unit source.Unit) ([]Violation, error) {
	var v *Violation
	switch path.Ext(unit.Path) {
	case ".go":
		v = checkGo(unit)
	case ".yaml", ".yml":
		v = checkYAML(unit)
	case ".json":
		v = checkJSON(unit)
	}
	if v == nil {
		return nil, nil
	}
	v.Kind = KindSyntax
	v.Path = unit.Path
	return []Violation{*v}, nil
}

func checkGo(unit source.Unit) *Violation {
	fset := token.NewFileSet()
	_, err := parser.ParseFile(fset, unit.Path, unit.Content, 0)
	if err == nil {
		return nil
	}

	var list scanner.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		list.Sort()
		first := list[0]
		return &Violation{Line: first.Pos.Line, Column: first.Pos.Column, Message: first.Msg}
	}
	return &Violation{Message: err.Error()}
}

var yamlLinePattern = regexp.MustCompile(`^yaml: line (\d+): (.*)$`)

func checkYAML(unit source.Unit) *Violation {
	dec := yaml.NewDecoder(bytes.NewReader(unit.Content))
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			msg := err.Error()
			if m := yamlLinePattern.FindStringSubmatch(msg); m != nil {
				line, _ := strconv.Atoi(m[1])
				return &Violation{Line: line, Message: m[2]}
			}
			// yaml.v3 drops the "line N:" prefix for errors on the first line.
			if rest, ok := strings.CutPrefix(msg, "yaml: "); ok {
				return &Violation{Line: 1, Message: rest}
			}
			return &Violation{Message: msg}
		}
	}
}

func checkJSON(unit source.Unit) *Violation {
	var v any
	err := json.Unmarshal(unit.Content, &v)
	if err == nil {
		return nil
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := position(unit.Content, syntaxErr.Offset)
		return &Violation{Line: line, Column: col, Message: syntaxErr.Error()}
	}
	return &Violation{Message: err.Error()}
}

// position converts a byte offset to a 1-based line and column. The column
// of an offset pointing past a newline is that of the last byte read.
func position(content []byte, offset int64) (int, int) {
	if offset > int64(len(content)) {
		offset = int64(len(content))
	}
	if offset < 1 {
		return 1, 1
	}
	before := content[:offset-1]
	line := bytes.Count(before, []byte("\n")) + 1
	col := len(before) - bytes.LastIndexByte(before, '\n')
	return line, col
}
