package llm

import (
	"context"
)

// MockChatClient is a configurable mock for testing completion consumers.
// Set the function fields to control behavior in tests.
type MockChatClient struct {
	// CompleteFunc is called when Complete is invoked.
	// If nil, returns empty string and nil error.
	CompleteFunc func(ctx context.Context, prompt string) (string, error)

	// Model is returned by GetModel. Defaults to "mock-model".
	Model string

	// Call tracking for verification
	CompleteCalls int
	// Prompts records every prompt passed to Complete, in order.
	Prompts []string
}

// NewMockChatClient creates a new mock with sensible defaults.
func NewMockChatClient() *MockChatClient {
	return &MockChatClient{Model: "mock-model"}
}

// Complete implements ChatClient.
func (m *MockChatClient) Complete(ctx context.Context, prompt string) (string, error) {
	m.CompleteCalls++
	m.Prompts = append(m.Prompts, prompt)
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}
	return "", nil
}

// GetModel implements ChatClient.
func (m *MockChatClient) GetModel() string {
	if m.Model == "" {
		return "mock-model"
	}
	return m.Model
}

// Reset clears call tracking.
func (m *MockChatClient) Reset() {
	m.CompleteCalls = 0
	m.Prompts = nil
}

// MockEmbeddingClient is a configurable mock for testing embedding consumers.
type MockEmbeddingClient struct {
	// CreateEmbeddingsFunc is called when CreateEmbeddings is invoked.
	// If nil, returns one zero-valued 4-dimensional vector per input.
	CreateEmbeddingsFunc func(ctx context.Context, inputs []string) ([][]float32, error)

	// Call tracking for verification
	CreateEmbeddingsCalls int
}

// NewMockEmbeddingClient creates a new mock embedding client.
func NewMockEmbeddingClient() *MockEmbeddingClient {
	return &MockEmbeddingClient{}
}

// CreateEmbeddings implements EmbeddingClient.
func (m *MockEmbeddingClient) CreateEmbeddings(ctx context.Context, inputs []string) ([][]float32, error) {
	m.CreateEmbeddingsCalls++
	if m.CreateEmbeddingsFunc != nil {
		return m.CreateEmbeddingsFunc(ctx, inputs)
	}
	out := make([][]float32, len(inputs))
	for i := range out {
		out[i] = make([]float32, 4)
	}
	return out, nil
}

// Ensure the mocks implement the interfaces at compile time.
var (
	_ ChatClient      = (*MockChatClient)(nil)
	_ EmbeddingClient = (*MockEmbeddingClient)(nil)
)
