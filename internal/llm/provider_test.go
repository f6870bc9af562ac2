package llm

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/abhisek/skiquiz/internal/store"
)

type memJournal struct {
	mu     sync.Mutex
	events []store.LLMRequestEventData
	err    error
}

func (j *memJournal) AppendLLMRequest(_ context.Context, d store.LLMRequestEventData) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, d)
	return j.err
}

func TestMockProvider_Script(t *testing.T) {
	m := NewMockProvider(MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 3}})
	m.Push(MockResponse{Err: errors.New("scripted")})

	resp, err := m.Generate(context.Background(), Request{System: "first"})
	if err != nil || string(resp.Content) != `{"a":1}` || resp.Usage.InputTokens != 3 {
		t.Fatalf("first = %+v, %v", resp, err)
	}
	if _, err := m.Generate(context.Background(), Request{}); err == nil || err.Error() != "scripted" {
		t.Fatalf("second err = %v", err)
	}
	var un *ErrProviderUnavailable
	if _, err := m.Generate(context.Background(), Request{}); !errors.As(err, &un) {
		t.Fatalf("empty script err = %v", err)
	}
	if calls := m.Calls(); len(calls) != 3 || calls[0].System != "first" {
		t.Fatalf("calls = %+v", calls)
	}
}

func TestPurposeContext(t *testing.T) {
	if got := PurposeFrom(context.Background()); got != "" {
		t.Fatalf("empty ctx purpose = %q", got)
	}
	ctx := WithPurpose(context.Background(), PurposeQuestionDraft)
	if got := PurposeFrom(ctx); got != PurposeQuestionDraft {
		t.Fatalf("purpose = %q", got)
	}
}

func TestJournalProvider_RecordsSuccessAndFailure(t *testing.T) {
	j := &memJournal{}
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`"hi"`), Usage: Usage{InputTokens: 10, OutputTokens: 4}},
		MockResponse{Err: &ErrRateLimit{}},
	)
	p := WithJournal(mock, j)
	ctx := WithPurpose(context.Background(), PurposeQuestionDraft)
	req := Request{System: "sys", Messages: []Message{{Role: RoleUser, Content: "hello"}}}

	if _, err := p.Generate(ctx, req); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := p.Generate(ctx, req); err == nil {
		t.Fatal("expected scripted error")
	}

	if len(j.events) != 2 {
		t.Fatalf("journaled %d events, want 2", len(j.events))
	}
	ok, failed := j.events[0], j.events[1]
	if !ok.Success || ok.Provider != ProviderMock || ok.Purpose != PurposeQuestionDraft {
		t.Errorf("success event = %+v", ok)
	}
	if ok.InputTokens != 10 || ok.OutputTokens != 4 || ok.ResponseBody != `"hi"` {
		t.Errorf("usage not recorded: %+v", ok)
	}
	if !strings.Contains(ok.RequestBody, "[system]\nsys") || !strings.Contains(ok.RequestBody, "[user]\nhello") {
		t.Errorf("RequestBody = %q", ok.RequestBody)
	}
	if failed.Success || failed.ErrorMessage == "" {
		t.Errorf("failure event = %+v", failed)
	}
}

func TestJournalProvider_JournalErrorDoesNotFailRequest(t *testing.T) {
	j := &memJournal{err: errors.New("disk full")}
	p := WithJournal(NewMockProvider(MockResponse{Content: json.RawMessage(`1`)}), j)
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
}

func TestConfigFromEnv(t *testing.T) {
	tests := []struct {
		name         string
		env          map[string]string
		wantProvider string
		wantKey      string
	}{
		{"defaults", nil, ProviderAnthropic, ""},
		{"explicit key", map[string]string{"SKIQUIZ_LLM_PROVIDER": "gemini", "SKIQUIZ_LLM_API_KEY": "g"}, ProviderGemini, "g"},
		{"vendor discovery order", map[string]string{"OPENAI_API_KEY": "o", "GEMINI_API_KEY": "g"}, ProviderOpenAI, "o"},
		{"explicit provider picks its vendor key", map[string]string{
			"SKIQUIZ_LLM_PROVIDER": "openrouter", "ANTHROPIC_API_KEY": "a", "OPENROUTER_API_KEY": "r",
		}, ProviderOpenRouter, "r"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := configFrom(func(k string) string { return tt.env[k] })
			if cfg.Provider != tt.wantProvider || cfg.APIKey != tt.wantKey {
				t.Fatalf("got provider=%q key=%q", cfg.Provider, cfg.APIKey)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		cfg     Config
		wantErr bool
	}{
		{Config{Provider: ProviderAnthropic, APIKey: "k"}, false},
		{Config{Provider: ProviderMock}, false},
		{Config{Provider: ProviderOpenAI}, true},
		{Config{Provider: "carrier-pigeon", APIKey: "k"}, true},
	}
	for _, tt := range tests {
		if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
			t.Errorf("%s: err = %v, wantErr %v", tt.cfg.Provider, err, tt.wantErr)
		}
	}
}

func TestNewProvider_MockWrapped(t *testing.T) {
	j := &memJournal{}
	p, err := NewProvider(context.Background(), Config{Provider: ProviderMock, Retry: fastRetry()}, j)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if p.ModelID() != ProviderMock {
		t.Errorf("ModelID = %q", p.ModelID())
	}
	// Empty script: every attempt fails and is journaled.
	if _, err := p.Generate(context.Background(), Request{}); err == nil {
		t.Fatal("expected error from empty mock")
	}
	if len(j.events) != 3 {
		t.Errorf("journaled %d attempts, want 3", len(j.events))
	}
}

func TestLookupCost(t *testing.T) {
	c := LookupCost("gpt-4o-mini")
	if c == nil {
		t.Fatal("gpt-4o-mini missing from pricing table")
	}
	if got := c.Cost(1_000_000, 1_000_000); math.Abs(got-0.75) > 1e-9 {
		t.Errorf("Cost = %v, want 0.75", got)
	}
	if LookupCost("unknown-model") != nil {
		t.Error("unknown model should have no cost")
	}
}
