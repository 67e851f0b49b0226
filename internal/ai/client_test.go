package ai

import (
	"context"
	"strings"
	"testing"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name      string
		config    *ClientConfig
		expectErr bool
	}{
		{name: "nil config", config: nil, expectErr: true},
		{name: "stub provider", config: &ClientConfig{Provider: ProviderStub}, expectErr: false},
		{name: "openai provider", config: &ClientConfig{Provider: ProviderOpenAI, APIKey: "sk-test"}, expectErr: false},
		{name: "unknown provider", config: &ClientConfig{Provider: "llama9000"}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.config)
			if tt.expectErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c == nil {
				t.Error("expected client, got nil")
			}
		})
	}
}

func TestStubClient_Complete(t *testing.T) {
	c := NewStubClient()

	got, err := c.Complete(context.Background(), []ChatMessage{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "what is phishing"},
		{Role: "assistant", Content: "an attack"},
		{Role: "user", Content: "give an example"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "give an example") {
		t.Errorf("reply %q does not echo the last user turn", got)
	}
}

func TestStubClient_Complete_NoUserTurn(t *testing.T) {
	c := NewStubClient()
	got, err := c.Complete(context.Background(), []ChatMessage{{Role: "system", Content: "x"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == "" {
		t.Error("expected non-empty fallback reply")
	}
}

func TestStubClient_Deterministic(t *testing.T) {
	c := NewStubClient()
	msgs := []ChatMessage{{Role: "user", Content: "hello"}}

	first, _ := c.Complete(context.Background(), msgs)
	for i := 0; i < 10; i++ {
		again, _ := c.Complete(context.Background(), msgs)
		if again != first {
			t.Fatalf("reply changed between calls: %q vs %q", first, again)
		}
	}
}
