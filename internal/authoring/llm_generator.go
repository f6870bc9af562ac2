package authoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abhisek/skiquiz/internal/content"
	"github.com/abhisek/skiquiz/internal/llm"
)

// Config tunes the LLMGenerator.
type Config struct {
	// Validators run in order; the first failure rejects the draft.
	Validators []Validator

	// MaxRetries is how many extra drafts follow a retryable rejection.
	MaxRetries int

	MaxTokens   int
	Temperature float64

	// MaxAvoid caps how many Input.Avoid texts are quoted in the prompt.
	// Dedup still checks all of them.
	MaxAvoid int
}

// DefaultConfig checks structure and uniqueness against pool.
func DefaultConfig(pool []content.Question) Config {
	return Config{
		Validators: []Validator{
			StructuralValidator{},
			NewDedupValidator(pool),
		},
		MaxRetries:  2,
		MaxTokens:   400,
		Temperature: 0.9,
		MaxAvoid:    40,
	}
}

// LLMGenerator drafts questions through an llm.Provider.
type LLMGenerator struct {
	provider llm.Provider
	cfg      Config
}

func NewLLMGenerator(p llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: p, cfg: cfg}
}

type draftOutput struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
	Answer  string   `json:"answer"`
}

// Generate drafts until the validators pass or retries run out. Each retry
// quotes the previous rejection in the prompt.
func (g *LLMGenerator) Generate(ctx context.Context, in Input) (*content.Question, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestionDraft)

	var feedback string
	var lastErr error
	for attempt := 0; attempt <= g.cfg.MaxRetries; attempt++ {
		q, err := g.draft(ctx, in, feedback)
		if err == nil {
			return q, nil
		}
		var verr *ValidationError
		if !errors.As(err, &verr) || !verr.Retryable {
			return nil, err
		}
		lastErr, feedback = err, verr.Message
	}
	return nil, lastErr
}

func (g *LLMGenerator) draft(ctx context.Context, in Input, feedback string) (*content.Question, error) {
	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: userPrompt(in, g.cfg.MaxAvoid, feedback)}},
		Schema:      QuestionSchema,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("draft question: %w", err)
	}

	var out draftOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	q := &content.Question{Text: out.Text, Options: out.Options, Answer: out.Answer}
	for _, v := range g.cfg.Validators {
		if verr := v.Validate(q, in); verr != nil {
			return nil, verr
		}
	}
	return q, nil
}
