package advisory

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/genai"

	"github.com/0muji4/push-gate/internal/logger"
	"github.com/0muji4/push-gate/internal/source"
	"github.com/0muji4/push-gate/internal/validate"
)

type fakeGenerator struct {
	replies []string
	errs    []error
	calls   int
	prompts []string
}

func (f *fakeGenerator) GenerateContent(_ context.Context, _ string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	i := f.calls
	f.calls++
	f.prompts = append(f.prompts, contents[0].Parts[0].Text)
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: f.replies[i]}}},
		}},
	}, nil
}

func newValidator(gen Generator) *Validator {
	v := NewWithGenerator(gen, "test-model", "review", logger.Nop())
	v.retryWait = time.Millisecond
	return v
}

func TestValidate_Findings(t *testing.T) {
	gen := &fakeGenerator{replies: []string{
		`[{"line":3,"column":2,"message":"x is never used"},{"line":99,"message":"off the end"},{"line":1,"message":"  "}]`,
	}}
	unit := source.NewUnit("a.go", []byte("package p\n\nvar x = 1\n"))

	got, err := newValidator(gen).Validate(context.Background(), unit)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	want := []validate.Violation{
		{Kind: KindAdvisory, Path: "a.go", Message: "off the end"},
		{Kind: KindAdvisory, Path: "a.go", Line: 3, Column: 2, Message: "x is never used"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("violations (-want +got):\n%s", diff)
	}
	if !strings.Contains(gen.prompts[0], "3: var x = 1\n") {
		t.Errorf("prompt should carry numbered lines:\n%s", gen.prompts[0])
	}
}

func TestValidate_RetriesRateLimit(t *testing.T) {
	gen := &fakeGenerator{
		errs:    []error{errors.New("Error 429, quota exceeded"), nil},
		replies: []string{"", "[]"},
	}
	got, err := newValidator(gen).Validate(context.Background(), source.NewUnit("a.go", []byte("package p\n")))
	if err != nil || len(got) != 0 {
		t.Fatalf("Validate = %v, %v", got, err)
	}
	if gen.calls != 2 {
		t.Errorf("calls = %d, want 2", gen.calls)
	}
}

func TestValidate_FailsOpen(t *testing.T) {
	tests := map[string]*fakeGenerator{
		"api error":    {errs: []error{errors.New("500 internal")}, replies: []string{""}},
		"invalid json": {replies: []string{"not json"}},
	}
	for name, gen := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := newValidator(gen).Validate(context.Background(), source.NewUnit("a.go", []byte("package p\n")))
			if err != nil || got != nil {
				t.Errorf("Validate = %v, %v; want no findings and no error", got, err)
			}
		})
	}
}

func TestValidate_EmptyFileSkipsCall(t *testing.T) {
	gen := &fakeGenerator{}
	if _, err := newValidator(gen).Validate(context.Background(), source.NewUnit("a.go", nil)); err != nil {
		t.Fatal(err)
	}
	if gen.calls != 0 {
		t.Errorf("empty file should not be sent")
	}
}
