// Package llm provides the completion and embedding gateway clients.
package llm

import (
	"context"
)

// ChatClient is the completion gateway: one prompt in, one text completion
// out. Single-turn, no conversation state. Use this interface for dependency
// injection to enable mocking in tests.
type ChatClient interface {
	// Complete sends a single-turn prompt and returns the completion text.
	Complete(ctx context.Context, prompt string) (string, error)

	// GetModel returns the configured model name.
	GetModel() string
}

// EmbeddingClient is the embedding gateway: texts in, one fixed-length
// vector per text, in input order.
type EmbeddingClient interface {
	// CreateEmbeddings generates embeddings for multiple inputs.
	CreateEmbeddings(ctx context.Context, inputs []string) ([][]float32, error)
}

// Ensure the concrete clients satisfy the interfaces at compile time.
var (
	_ ChatClient      = (*Client)(nil)
	_ EmbeddingClient = (*Client)(nil)
	_ ChatClient      = (*AnthropicClient)(nil)
)
