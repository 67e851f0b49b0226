package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAIClient_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("authorization header = %q", got)
		}

		var payload struct {
			Model    string        `json:"model"`
			Messages []ChatMessage `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if payload.Model != "gpt-4o-mini" {
			t.Errorf("model = %q", payload.Model)
		}
		if len(payload.Messages) != 2 || payload.Messages[1].Content != "what is phishing" {
			t.Errorf("messages not forwarded: %+v", payload.Messages)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "  Phishing is credential theft.  "}},
			},
		})
	}))
	defer srv.Close()

	c := NewOpenAIClient(&ClientConfig{
		Provider: ProviderOpenAI,
		APIKey:   "sk-test",
		BaseURL:  srv.URL,
	})

	got, err := c.Complete(context.Background(), []ChatMessage{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "what is phishing"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Phishing is credential theft." {
		t.Errorf("reply = %q", got)
	}
}

func TestOpenAIClient_Complete_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{
			name:    "api error message surfaced",
			status:  http.StatusBadRequest,
			body:    `{"error":{"message":"model overloaded"}}`,
			wantErr: "model overloaded",
		},
		{
			name:    "plain non-200",
			status:  http.StatusBadGateway,
			body:    `{}`,
			wantErr: "502",
		},
		{
			name:    "no choices",
			status:  http.StatusOK,
			body:    `{"choices":[]}`,
			wantErr: "no choices",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewOpenAIClient(&ClientConfig{APIKey: "sk-test", BaseURL: srv.URL})
			_, err := c.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestOpenAIClient_Complete_MissingKey(t *testing.T) {
	c := NewOpenAIClient(&ClientConfig{})
	if _, err := c.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}}); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestOpenAIClient_Complete_EmptyMessages(t *testing.T) {
	c := NewOpenAIClient(&ClientConfig{APIKey: "sk-test"})
	if _, err := c.Complete(context.Background(), nil); err == nil {
		t.Error("expected error for empty messages")
	}
}
