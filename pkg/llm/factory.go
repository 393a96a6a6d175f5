package llm

import (
	"fmt"

	"go.uber.org/zap"
)

// Provider names accepted by NewChatClient.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// NewChatClient creates a completion gateway for the configured provider.
// "openai" covers any OpenAI-compatible endpoint (the common case for
// self-hosted gateways); "anthropic" uses the Messages API.
func NewChatClient(provider string, cfg *Config, logger *zap.Logger) (ChatClient, error) {
	switch provider {
	case ProviderOpenAI:
		return NewClient(cfg, logger)
	case ProviderAnthropic:
		return NewAnthropicClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported completion provider: %s", provider)
	}
}

// NewEmbeddingClient creates the embedding gateway. Embeddings always go
// through an OpenAI-compatible endpoint.
func NewEmbeddingClient(cfg *Config, logger *zap.Logger) (EmbeddingClient, error) {
	return NewClient(cfg, logger)
}
