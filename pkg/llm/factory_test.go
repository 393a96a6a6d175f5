package llm

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func validConfig() *Config {
	return &Config{
		Endpoint: "https://api.openai.com/v1",
		Model:    "gpt-4o",
		APIKey:   "test-key",
	}
}

func TestNewChatClient(t *testing.T) {
	logger := zap.NewNop()

	openaiClient, err := NewChatClient(ProviderOpenAI, validConfig(), logger)
	if err != nil {
		t.Fatalf("openai provider failed: %v", err)
	}
	if _, ok := openaiClient.(*Client); !ok {
		t.Errorf("expected *Client for openai, got %T", openaiClient)
	}

	anthropicClient, err := NewChatClient(ProviderAnthropic, validConfig(), logger)
	if err != nil {
		t.Fatalf("anthropic provider failed: %v", err)
	}
	if _, ok := anthropicClient.(*AnthropicClient); !ok {
		t.Errorf("expected *AnthropicClient for anthropic, got %T", anthropicClient)
	}

	if _, err := NewChatClient("palm", validConfig(), logger); err == nil {
		t.Error("expected an error for an unsupported provider")
	}
}

func TestNewClientValidation(t *testing.T) {
	logger := zap.NewNop()

	cfg := validConfig()
	cfg.Endpoint = ""
	if _, err := NewClient(cfg, logger); err == nil {
		t.Error("expected an error for a missing endpoint")
	}

	cfg = validConfig()
	cfg.Model = ""
	if _, err := NewClient(cfg, logger); err == nil {
		t.Error("expected an error for a missing model")
	}
}

func TestNewAnthropicClientValidation(t *testing.T) {
	cfg := validConfig()
	cfg.APIKey = ""
	if _, err := NewAnthropicClient(cfg, zap.NewNop()); err == nil {
		t.Error("expected an error for a missing api key")
	}
}

func TestMockChatClientDefaults(t *testing.T) {
	mock := NewMockChatClient()

	out, err := mock.Complete(context.Background(), "hello")
	if err != nil || out != "" {
		t.Errorf("default mock should return empty completion, got %q %v", out, err)
	}
	if mock.CompleteCalls != 1 || len(mock.Prompts) != 1 {
		t.Error("mock should track calls and prompts")
	}
	if mock.GetModel() != "mock-model" {
		t.Errorf("unexpected model %q", mock.GetModel())
	}

	mock.Reset()
	if mock.CompleteCalls != 0 || mock.Prompts != nil {
		t.Error("Reset should clear tracking")
	}
}
