package llm

import (
	"errors"
	"fmt"
	"os"
	"time"
)

const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// ErrMissingAPIKey is returned when the selected provider has no key.
var ErrMissingAPIKey = errors.New("API key is required")

var defaultModels = map[string]string{
	ProviderAnthropic:  "claude-haiku-4-5",
	ProviderOpenAI:     "gpt-4o-mini",
	ProviderGemini:     "gemini-2.0-flash",
	ProviderOpenRouter: "google/gemini-2.0-flash-001",
	ProviderMock:       "mock",
}

// vendorKeys are the conventional key variables checked when
// SKIQUIZ_LLM_API_KEY is unset, in discovery order.
var vendorKeys = []struct{ provider, env string }{
	{ProviderAnthropic, "ANTHROPIC_API_KEY"},
	{ProviderOpenAI, "OPENAI_API_KEY"},
	{ProviderGemini, "GEMINI_API_KEY"},
	{ProviderOpenRouter, "OPENROUTER_API_KEY"},
}

// Config selects and configures one provider.
type Config struct {
	Provider string
	Model    string // empty picks the provider default
	APIKey   string
	BaseURL  string // optional endpoint override
	Retry    RetryConfig

	// Timeout bounds one Generate call including retries.
	Timeout time.Duration
}

// RetryConfig controls backoff for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

func DefaultConfig() Config {
	return Config{
		Provider: ProviderAnthropic,
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 60 * time.Second,
	}
}

// ConfigFromEnv reads SKIQUIZ_LLM_PROVIDER, SKIQUIZ_LLM_MODEL,
// SKIQUIZ_LLM_API_KEY and SKIQUIZ_LLM_BASE_URL. Without an explicit provider
// the first vendor key found (ANTHROPIC_API_KEY, OPENAI_API_KEY, ...) decides.
func ConfigFromEnv() Config {
	return configFrom(os.Getenv)
}

func configFrom(getenv func(string) string) Config {
	cfg := DefaultConfig()
	explicit := getenv("SKIQUIZ_LLM_PROVIDER")
	if explicit != "" {
		cfg.Provider = explicit
	}
	cfg.Model = getenv("SKIQUIZ_LLM_MODEL")
	cfg.BaseURL = getenv("SKIQUIZ_LLM_BASE_URL")
	cfg.APIKey = getenv("SKIQUIZ_LLM_API_KEY")
	if cfg.APIKey != "" {
		return cfg
	}
	for _, vk := range vendorKeys {
		if explicit != "" && vk.provider != explicit {
			continue
		}
		if k := getenv(vk.env); k != "" {
			cfg.Provider = vk.provider
			cfg.APIKey = k
			break
		}
	}
	return cfg
}

// Validate reports a missing key or an unknown provider.
func (c Config) Validate() error {
	if _, ok := defaultModels[c.Provider]; !ok {
		return fmt.Errorf("unknown LLM provider %q", c.Provider)
	}
	if c.Provider != ProviderMock && c.APIKey == "" {
		return fmt.Errorf("%s: %w (set SKIQUIZ_LLM_API_KEY)", c.Provider, ErrMissingAPIKey)
	}
	return nil
}

func modelOrDefault(model, provider string) string {
	if model != "" {
		return model
	}
	return defaultModels[provider]
}
