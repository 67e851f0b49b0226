package ai

import (
	"context"
	"errors"
	"strings"
)

// ChatMessage is one turn of a conversation forwarded to the backend.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client forwards a chat conversation to an LLM backend and returns the
// assistant reply.
type Client interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

// Provider is enumeration of supported AI providers
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
	ProviderStub   Provider = "stub"
)

// ClientConfig holds configuration for AI clients
type ClientConfig struct {
	APIKey    string
	ChatModel string
	BaseURL   string
	ProjectID string
	Location  string
	Provider  Provider
}

// NewClient creates a new AI client based on configuration
func NewClient(config *ClientConfig) (Client, error) {
	if config == nil {
		return nil, errors.New("client config is required")
	}

	switch config.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(config), nil
	case ProviderGemini:
		return NewGeminiClient(context.Background(), config)
	case ProviderStub:
		return NewStubClient(), nil
	default:
		return nil, errors.New("unsupported provider: " + string(config.Provider))
	}
}

// StubClient is a stub implementation of the Client interface for testing
type StubClient struct{}

// NewStubClient creates a new StubClient
func NewStubClient() *StubClient {
	return &StubClient{}
}

// Complete echoes a deterministic reply derived from the last user turn.
func (s *StubClient) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			last := messages[i].Content
			if len(last) > 80 {
				last = last[:80]
			}
			return "stub reply to: " + strings.TrimSpace(last), nil
		}
	}
	return "stub reply", nil
}
