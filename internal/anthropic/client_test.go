package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestNewClientDefaults(t *testing.T) {
	c, err := NewClient(Config{APIKey: "test-key"})
	if err != nil {
		t.Fatal(err)
	}
	if c.cfg.Model != DefaultModel {
		t.Errorf("model = %q, want default", c.cfg.Model)
	}
	if c.cfg.Temperature != DefaultTemperature {
		t.Errorf("temperature = %v, want %v", c.cfg.Temperature, DefaultTemperature)
	}
	if c.cfg.MaxTokens != DefaultMaxTokens {
		t.Errorf("max tokens = %d, want %d", c.cfg.MaxTokens, DefaultMaxTokens)
	}
}

func TestGenerate(t *testing.T) {
	var gotReq messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Errorf("missing version header")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{
				{"type": "text", "text": `{"subject": "Hi", "body": "Hello there."}`},
			},
			"stop_reason": "end_turn",
		})
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}

	text, err := c.Generate(context.Background(), "system prompt", "user prompt")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "Hello there.") {
		t.Errorf("text = %q", text)
	}
	if gotReq.System != "system prompt" {
		t.Errorf("system = %q", gotReq.System)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Content != "user prompt" {
		t.Errorf("messages = %+v", gotReq.Messages)
	}
	if gotReq.Temperature != DefaultTemperature {
		t.Errorf("temperature = %v", gotReq.Temperature)
	}
}

func TestGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"type": "rate_limit_error", "message": "rate limited"},
		})
	}))
	defer srv.Close()

	c, _ := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL})
	_, err := c.Generate(context.Background(), "s", "u")
	if err == nil || !strings.Contains(err.Error(), "rate_limit_error") {
		t.Errorf("err = %v, want rate_limit_error", err)
	}
}

func TestGenerateEmptyCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"content": []any{}, "stop_reason": "max_tokens"})
	}))
	defer srv.Close()

	c, _ := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL})
	_, err := c.Generate(context.Background(), "s", "u")
	if err == nil || !strings.Contains(err.Error(), "empty completion") {
		t.Errorf("err = %v, want empty completion error", err)
	}
}

func TestGenerateContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c, _ := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Generate(ctx, "s", "u"); err == nil {
		t.Error("expected error for cancelled context")
	}
}
