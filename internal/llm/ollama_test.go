package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaProvider_ExtractCrux_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("expected path /api/generate, got %s", r.URL.Path)
		}

		var apiReq ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&apiReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if apiReq.Stream {
			t.Error("streaming must be disabled")
		}
		if apiReq.Format != "json" {
			t.Errorf("format = %q, want json", apiReq.Format)
		}

		_ = json.NewEncoder(w).Encode(ollamaResponse{
			Model:           apiReq.Model,
			Response:        `{"crux":{"cruxClaim":"X","agree":["0"],"disagree":["1"]}}`,
			Done:            true,
			PromptEvalCount: 120,
			EvalCount:       40,
		})
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3.1", Timeout: 5})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	resp, err := provider.ExtractCrux(context.Background(), CruxRequest{
		Subtopic: "Transit → Buses",
		Claims:   []AnonymizedClaim{{SpeakerID: "0", Text: "More buses"}},
	})
	if err != nil {
		t.Fatalf("ExtractCrux failed: %v", err)
	}
	if resp.Usage.TotalTokens != 160 {
		t.Errorf("usage = %+v, want 160 total", resp.Usage)
	}
}

func TestOllamaProvider_ExtractCrux_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(ollamaError{Error: "model not found"})
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	_, err = provider.ExtractCrux(context.Background(), CruxRequest{Subtopic: "x"})
	if !errors.Is(err, ErrAPICall) {
		t.Errorf("got %v, want ErrAPICall", err)
	}
}

func TestOllamaProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	if !provider.IsAvailable(context.Background()) {
		t.Error("expected provider to be available")
	}

	down, _ := NewOllamaProvider(Config{BaseURL: "http://127.0.0.1:1", Timeout: 1})
	if down.IsAvailable(context.Background()) {
		t.Error("unreachable endpoint should not be available")
	}
}
