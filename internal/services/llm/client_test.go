package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cinesearch/internal/services"
)

func completionServer(t *testing.T, content string, check func(*http.Request, chatCompletionRequest)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if check != nil {
			check(r, req)
		}
		payload := map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"content": content}, "finish_reason": "stop"},
			},
		}
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
}

func TestCompleteJSONSendsConfiguredRequest(t *testing.T) {
	server := completionServer(t, `{"ok":true}`, func(r *http.Request, req chatCompletionRequest) {
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("unexpected auth header %q", got)
		}
		if req.Model != "llama" || req.Temperature != 0.2 || req.MaxTokens != 256 {
			t.Errorf("unexpected request settings: %+v", req)
		}
		if req.ResponseFormat["type"] != jsonResponseType {
			t.Errorf("expected json response format, got %v", req.ResponseFormat)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Content != "user prompt" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
	})
	defer server.Close()

	client := NewClient(Config{APIKey: "key", BaseURL: server.URL, Model: "llama", Temperature: 0.2, MaxTokens: 256})
	content, err := client.CompleteJSON(context.Background(), "system prompt", "user prompt")
	if err != nil {
		t.Fatalf("CompleteJSON returned error: %v", err)
	}
	if content != `{"ok":true}` {
		t.Fatalf("unexpected content %q", content)
	}
}

func TestCompleteJSONHTTPFailureIsExternal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "bad", BaseURL: server.URL, Model: "demo"})
	_, err := client.CompleteJSON(context.Background(), "s", "u")
	if !errors.Is(err, services.ErrExternal) {
		t.Fatalf("expected external error, got %v", err)
	}
	var statusErr *httpStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected wrapped status error, got %v", err)
	}
}

func TestCompleteJSONEmptyContent(t *testing.T) {
	server := completionServer(t, "   ", nil)
	defer server.Close()

	client := NewClient(Config{APIKey: "key", BaseURL: server.URL})
	_, err := client.CompleteJSON(context.Background(), "s", "u")
	var empty *emptyContentError
	if !errors.As(err, &empty) {
		t.Fatalf("expected empty content error, got %v", err)
	}
}

func TestCompleteJSONTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "key", BaseURL: server.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := client.CompleteJSON(ctx, "s", "u")
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout marker, got %v", err)
	}
}

func TestUnconfiguredClientFailsFast(t *testing.T) {
	client := NewClient(Config{})
	if client.Available() {
		t.Fatal("expected client without key to be unavailable")
	}
	if _, err := client.CompleteJSON(context.Background(), "s", "u"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	var nop Completer = Nop{}
	if nop.Available() {
		t.Fatal("Nop must never be available")
	}
}

func TestDecodeLLMJSONHandlesFencesAndProse(t *testing.T) {
	cases := []string{
		`{"sentiment":0.7}`,
		"```json\n{\"sentiment\":0.7}\n```",
		"Here you go: {\"sentiment\":0.7} hope that helps",
	}
	for _, content := range cases {
		var parsed struct {
			Sentiment float64 `json:"sentiment"`
		}
		if err := DecodeLLMJSON(content, &parsed); err != nil {
			t.Fatalf("DecodeLLMJSON(%q) returned error: %v", content, err)
		}
		if parsed.Sentiment != 0.7 {
			t.Fatalf("unexpected sentiment %v for %q", parsed.Sentiment, content)
		}
	}

	var target map[string]any
	if err := DecodeLLMJSON("not json at all", &target); err == nil {
		t.Fatal("expected error for non-JSON payload")
	}
	if err := DecodeLLMJSON("", &target); err == nil {
		t.Fatal("expected error for empty payload")
	}
}
