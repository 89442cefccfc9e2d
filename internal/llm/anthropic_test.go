package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func anthropicTestRequest() CruxRequest {
	return CruxRequest{
		Model:    "claude-3-5-haiku-latest",
		Subtopic: "Transit → Buses",
		Claims: []AnonymizedClaim{
			{SpeakerID: "0", Text: "More night buses"},
			{SpeakerID: "1", Text: "Night buses waste money"},
		},
	}
}

func TestAnthropicProvider_ExtractCrux_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("expected path /v1/messages, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("expected x-api-key test-key, got %s", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("missing anthropic-version header")
		}

		var apiReq anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&apiReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if apiReq.System == "" {
			t.Error("system prompt should default when unset")
		}

		resp := anthropicResponse{
			ID:   "msg_123",
			Type: "message",
			Role: "assistant",
			Content: []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			}{
				{Type: "text", Text: `{"crux":{"cruxClaim":"X","agree":["0"],"disagree":["1"]}}`},
			},
			Model: "claude-3-5-haiku-latest",
		}
		resp.Usage.InputTokens = 80
		resp.Usage.OutputTokens = 30
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "claude-3-5-haiku-latest",
		Timeout: 5,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	resp, err := provider.ExtractCrux(context.Background(), anthropicTestRequest())
	if err != nil {
		t.Fatalf("ExtractCrux failed: %v", err)
	}
	if resp.Raw == "" {
		t.Error("expected raw response text")
	}
	if resp.Usage.InputTokens != 80 || resp.Usage.OutputTokens != 30 || resp.Usage.TotalTokens != 110 {
		t.Errorf("usage = %+v", resp.Usage)
	}
}

func TestAnthropicProvider_ExtractCrux_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"type": "error",
			"error": map[string]string{
				"type":    "rate_limit_error",
				"message": "slow down",
			},
		})
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	_, err = provider.ExtractCrux(context.Background(), anthropicTestRequest())
	if !errors.Is(err, ErrAPICall) {
		t.Errorf("got %v, want ErrAPICall", err)
	}
}

func TestAnthropicProvider_ExtractCrux_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(anthropicResponse{ID: "msg_1", Type: "message"})
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	_, err = provider.ExtractCrux(context.Background(), anthropicTestRequest())
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("got %v, want ErrEmptyResponse", err)
	}
}

func TestNewAnthropicProvider_RequiresKey(t *testing.T) {
	if _, err := NewAnthropicProvider(Config{}); err == nil {
		t.Error("expected error without API key")
	}
}
