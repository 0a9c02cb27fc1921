package validate

import (
	"context"
	"sort"

	"github.com/0muji4/push-gate/internal/source"
)

var _ Validator = (*StyleValidator)(nil)

// Rule is one style check. Violations it returns need only Line, Column
// and Message; the validator fills in the rest.
type Rule interface {
	Code() string
	Description() string
	Check(unit source.Unit) []Violation
}

// StyleValidator runs a fixed rule set over a unit.
type StyleValidator struct {
	rules []Rule
}

// DefaultRules returns every built-in rule.
func DefaultRules(maxLineLength int) []Rule {
	return []Rule{
		MixedIndentRule{},
		LineLengthRule{Max: maxLineLength},
		TrailingWhitespaceRule{},
		MissingFinalNewlineRule{},
		WhitespaceBlankLineRule{},
		TrailingBlankLineRule{},
	}
}

// NewStyleValidator drops the ignored rule codes once, up front. An empty
// ignore list enforces every rule.
func NewStyleValidator(rules []Rule, ignore []string) *StyleValidator {
	ignored := make(map[string]struct{}, len(ignore))
	for _, code := range ignore {
		ignored[code] = struct{}{}
	}

	active := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if _, skip := ignored[r.Code()]; !skip {
			active = append(active, r)
		}
	}
	return &StyleValidator{rules: active}
}

func (s *StyleValidator) Kind() Kind { return KindStyle }

// Rules returns the active rules.
func (s *StyleValidator) Rules() []Rule { return s.rules }

func (s *StyleValidator) Validate(_ context.Context, unit source.Unit) ([]Violation, error) {
	var out []Violation
	for _, rule := range s.rules {
		for _, v := range rule.Check(unit) {
			v.Kind = KindStyle
			v.Path = unit.Path
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Column < out[j].Column
	})
	return out, nil
}
