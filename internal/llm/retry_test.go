package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func fastRetry() RetryConfig {
	return RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond, Multiplier: 2}
}

var (
	okReply   = MockResponse{Content: json.RawMessage(`{"ok":true}`)}
	downReply = MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}}
)

func TestRetry_Attempts(t *testing.T) {
	tests := []struct {
		name      string
		script    []MockResponse
		wantErr   bool
		wantCalls int
	}{
		{"first try", []MockResponse{okReply}, false, 1},
		{"transient then ok", []MockResponse{downReply, okReply}, false, 2},
		{"gives up after max attempts", []MockResponse{downReply, downReply, downReply, okReply}, true, 3},
		{"rate limit is retried", []MockResponse{{Err: &ErrRateLimit{}}, okReply}, false, 2},
		{"truncation is final", []MockResponse{{Err: &ErrMaxTokensExceeded{}}, okReply}, true, 1},
		{"invalid output retried once", []MockResponse{
			{Err: &ErrInvalidResponse{Err: errors.New("bad")}},
			{Err: &ErrInvalidResponse{Err: errors.New("bad")}},
			okReply,
		}, true, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.script...)
			_, err := WithRetry(mock, fastRetry()).Generate(context.Background(), Request{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got := len(mock.Calls()); got != tt.wantCalls {
				t.Errorf("calls = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestRetry_ContextCanceledDuringBackoff(t *testing.T) {
	mock := NewMockProvider(downReply, okReply)
	cfg := fastRetry()
	cfg.InitialWait = time.Hour
	cfg.MaxWait = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := WithRetry(mock, cfg).Generate(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if got := len(mock.Calls()); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestRetry_RetryAfterOverridesBackoff(t *testing.T) {
	r := &RetryProvider{cfg: RetryConfig{InitialWait: time.Hour, MaxWait: time.Hour, Multiplier: 2}}
	if got := r.wait(0, &ErrRateLimit{RetryAfter: 3 * time.Second}); got != 3*time.Second {
		t.Fatalf("wait = %s, want 3s", got)
	}
}

func TestRetry_BackoffCapped(t *testing.T) {
	r := &RetryProvider{cfg: RetryConfig{InitialWait: time.Second, MaxWait: 4 * time.Second, Multiplier: 2}}
	for attempt := 0; attempt < 6; attempt++ {
		if got := r.wait(attempt, errors.New("x")); got > 4800*time.Millisecond {
			t.Fatalf("attempt %d: wait %s exceeds cap plus jitter", attempt, got)
		}
	}
}

func TestRetry_ZeroAttemptsStillCallsOnce(t *testing.T) {
	mock := NewMockProvider(okReply)
	if _, err := WithRetry(mock, RetryConfig{}).Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
}
