package llm

import (
	"fmt"

	"go.uber.org/zap"
)

// Provider names accepted by NewFromProvider.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// NewFromProvider creates an LLM client for the named provider.
// "openai" covers any OpenAI-compatible endpoint (vLLM, Ollama, etc.).
func NewFromProvider(provider string, cfg *Config, logger *zap.Logger) (LLMClient, error) {
	switch provider {
	case ProviderOpenAI, "":
		return NewClient(cfg, logger)
	case ProviderAnthropic:
		return NewAnthropicClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", provider)
	}
}
