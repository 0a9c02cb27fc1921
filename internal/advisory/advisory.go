package advisory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/0muji4/push-gate/internal/logger"
	"github.com/0muji4/push-gate/internal/source"
	"github.com/0muji4/push-gate/internal/validate"
)

// KindAdvisory groups findings reported by the model.
const KindAdvisory validate.Kind = "Advisory"

// Generator is the part of the genai client the validator uses.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

var _ validate.Validator = (*Validator)(nil)

// Validator asks an LLM to review one file. It fails open: API or decoding
// failures are logged and produce no findings.
type Validator struct {
	gen          Generator
	model        string
	systemPrompt string
	log          *logger.Logger
	retryWait    time.Duration
}

// New creates a Validator backed by the Gemini API.
func New(ctx context.Context, apiKey, model, systemPrompt string, log *logger.Logger) (*Validator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return NewWithGenerator(client.Models, model, systemPrompt, log), nil
}

func NewWithGenerator(gen Generator, model, systemPrompt string, log *logger.Logger) *Validator {
	return &Validator{
		gen:          gen,
		model:        model,
		systemPrompt: systemPrompt,
		log:          log,
		retryWait:    5 * time.Second,
	}
}

func (v *Validator) Kind() validate.Kind { return KindAdvisory }

type finding struct {
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
}

func (v *Validator) Validate(ctx context.Context, unit source.Unit) ([]validate.Violation, error) {
	if len(unit.Lines) == 0 {
		return nil, nil
	}

	resp, err := v.generate(ctx, unit)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		v.log.Warnf("advisory review of %s skipped: %v", unit.Path, err)
		return nil, nil
	}

	var findings []finding
	if err := json.Unmarshal([]byte(resp.Text()), &findings); err != nil {
		v.log.Warnf("advisory review of %s returned invalid JSON: %v", unit.Path, err)
		return nil, nil
	}

	var out []validate.Violation
	for _, f := range findings {
		msg := strings.TrimSpace(f.Message)
		if msg == "" {
			continue
		}
		line, col := f.Line, f.Column
		if line < 1 || line > len(unit.Lines) {
			line, col = 0, 0
		}
		if col < 0 {
			col = 0
		}
		out = append(out, validate.Violation{
			Kind:    KindAdvisory,
			Path:    unit.Path,
			Line:    line,
			Column:  col,
			Message: msg,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Column < out[j].Column
	})
	return out, nil
}

func (v *Validator) generate(ctx context.Context, unit source.Unit) (*genai.GenerateContentResponse, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt(unit), "user")}
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(v.systemPrompt)},
		},
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"line":    {Type: genai.TypeInteger, Description: "1-based line number"},
					"column":  {Type: genai.TypeInteger, Description: "1-based column, 0 if unknown"},
					"message": {Type: genai.TypeString, Description: "one-sentence description of the defect"},
				},
				Required: []string{"line", "message"},
			},
		},
	}

	// Rate limits (429) are retried twice.
	var lastErr error
	for retry := 0; retry < 3; retry++ {
		resp, err := v.gen.GenerateContent(ctx, v.model, contents, config)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !strings.Contains(err.Error(), "429") || retry == 2 {
			break
		}
		wait := v.retryWait * time.Duration(retry+1)
		v.log.Debugf("rate limited, waiting %v", wait)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("advisory: generate content: %w", lastErr)
}

func prompt(unit source.Unit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Review the file %s. Reply with a JSON array of findings; reply [] if there are none.\n\n", unit.Path)
	for i, line := range unit.Lines {
		fmt.Fprintf(&b, "%d: %s\n", i+1, line)
	}
	return b.String()
}
