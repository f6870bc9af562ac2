package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/abhisek/skiquiz/internal/store"
)

// Journal receives one record per vendor call.
type Journal interface {
	AppendLLMRequest(ctx context.Context, data store.LLMRequestEventData) error
}

type purposeKey struct{}

// PurposeQuestionDraft tags calls made while drafting new trivia questions.
const PurposeQuestionDraft = "question-draft"

// WithPurpose tags ctx so journaled calls can be grouped by purpose.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the purpose set by WithPurpose, or "".
func PurposeFrom(ctx context.Context) string {
	p, _ := ctx.Value(purposeKey{}).(string)
	return p
}

// JournalProvider records every call, successful or not.
type JournalProvider struct {
	inner   Provider
	journal Journal
	now     func() time.Time
}

// WithJournal wraps p so each Generate call lands in journal.
func WithJournal(p Provider, journal Journal) Provider {
	return &JournalProvider{inner: p, journal: journal, now: time.Now}
}

func (j *JournalProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := j.now()
	resp, err := j.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:    providerName(j.inner),
		Model:       j.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   j.now().Sub(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: transcript(req),
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
		data.ResponseBody = string(resp.Content)
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	// A failed journal write never fails the request.
	if jerr := j.journal.AppendLLMRequest(context.WithoutCancel(ctx), data); jerr != nil {
		log.Printf("llm: journal request: %v", jerr)
	}
	return resp, err
}

func (j *JournalProvider) ModelID() string { return j.inner.ModelID() }

func (j *JournalProvider) ProviderName() string { return providerName(j.inner) }

func providerName(p Provider) string {
	if n, ok := p.(Namer); ok {
		return n.ProviderName()
	}
	return "unknown"
}

// transcript renders req the way `skiquiz llm view` prints it.
func transcript(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
