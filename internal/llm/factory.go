package llm

import (
	"context"
	"fmt"
)

// NewProvider builds the configured provider and wraps it so callers see
// retry -> journal -> vendor. A nil journal skips journaling.
func NewProvider(ctx context.Context, cfg Config, journal Journal) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error
	switch cfg.Provider {
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg)
	case ProviderMock:
		base = NewMockProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("init %s provider: %w", cfg.Provider, err)
	}

	if journal != nil {
		base = WithJournal(base, journal)
	}
	return WithRetry(base, cfg.Retry), nil
}
