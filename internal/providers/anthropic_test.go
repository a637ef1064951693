package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/diogo-cruz/literature-review/internal/ratelimit"
)

func testAnthropic(server *httptest.Server) *Anthropic {
	return &Anthropic{
		apiKey: "test-key",
		model:  "claude-3-5-haiku-latest",
		client: &http.Client{
			Transport: &rewriteTransport{
				base:    server.Client().Transport,
				baseURL: server.URL,
			},
		},
	}
}

func TestAnthropic_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Error("Missing API key header")
		}
		if r.Header.Get("anthropic-version") != anthropicAPIVersion {
			t.Error("Missing anthropic-version header")
		}

		var body anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body.Model != "claude-3-5-haiku-latest" {
			t.Errorf("Model = %q", body.Model)
		}
		if body.MaxTokens != 10 {
			t.Errorf("MaxTokens = %d, want 10", body.MaxTokens)
		}
		if body.Temperature == nil || *body.Temperature != 0 {
			t.Errorf("Temperature should be sent explicitly as 0, got %v", body.Temperature)
		}
		if len(body.Messages) != 1 || body.Messages[0].Content != "paper prompt" {
			t.Errorf("Messages = %+v", body.Messages)
		}

		resp := anthropicResponse{
			Content: []anthropicBlock{
				{Type: "text", Text: "## Summary"},
				{Type: "text", Text: "\nFindings"},
			},
			Usage: anthropicUsage{InputTokens: 100, OutputTokens: 10},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	resp, err := testAnthropic(server).Complete(context.Background(), Request{
		Prompt:    "paper prompt",
		MaxTokens: 10,
	})
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if resp.Content != "## Summary\nFindings" {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.TokensUsed != 110 {
		t.Errorf("TokensUsed = %d, want 110", resp.TokensUsed)
	}
}

func TestAnthropic_DefaultMaxTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body anthropicRequest
		json.NewDecoder(r.Body).Decode(&body)
		if body.MaxTokens != defaultMaxTokens {
			t.Errorf("MaxTokens = %d, want %d", body.MaxTokens, defaultMaxTokens)
		}
		json.NewEncoder(w).Encode(anthropicResponse{Content: []anthropicBlock{{Type: "text", Text: "ok"}}})
	}))
	defer server.Close()

	if _, err := testAnthropic(server).Complete(context.Background(), Request{Prompt: "p"}); err != nil {
		t.Fatalf("Complete error: %v", err)
	}
}

func TestAnthropic_AuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		w.Write([]byte(`{"error":"unauthorized"}`))
	}))
	defer server.Close()

	_, err := testAnthropic(server).Complete(context.Background(), Request{Prompt: "p"})
	if !IsAuthError(err) {
		t.Errorf("Expected auth error, got: %v", err)
	}
}

func TestAnthropic_RateLimitIsSingleShot(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(429)
		w.Write([]byte(`{"error":"rate_limit_error"}`))
	}))
	defer server.Close()

	_, err := testAnthropic(server).Complete(context.Background(), Request{Prompt: "p"})
	if !ratelimit.IsRateLimited(err) {
		t.Fatalf("Expected rate-limit signal, got: %v", err)
	}
	var rl *RateLimitError
	if !errors.As(err, &rl) || rl.RetryAfter.Seconds() != 30 {
		t.Errorf("RetryAfter not parsed: %+v", rl)
	}
	if attempts != 1 {
		t.Errorf("Expected exactly 1 attempt, got %d", attempts)
	}
}

func TestAnthropic_ServerErrorNotRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
		w.Write([]byte(`{"error":"internal server error"}`))
	}))
	defer server.Close()

	_, err := testAnthropic(server).Complete(context.Background(), Request{Prompt: "p"})
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != 500 {
		t.Fatalf("Expected StatusError 500, got: %v", err)
	}
	if ratelimit.IsRateLimited(err) {
		t.Error("5xx must not count as a rate-limit signal")
	}
}

func TestAnthropic_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(anthropicResponse{Content: []anthropicBlock{}})
	}))
	defer server.Close()

	if _, err := testAnthropic(server).Complete(context.Background(), Request{Prompt: "p"}); err == nil {
		t.Error("Expected error for empty content")
	}
}

func TestNewAnthropic_MissingKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	_, err := NewAnthropic("m")
	if !IsAuthError(err) {
		t.Errorf("Expected auth error for missing key, got: %v", err)
	}
}

type rewriteTransport struct {
	base    http.RoundTripper
	baseURL string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = "http"
	req.URL.Host = t.baseURL[len("http://"):]
	if t.base != nil {
		return t.base.RoundTrip(req)
	}
	return http.DefaultTransport.RoundTrip(req)
}
