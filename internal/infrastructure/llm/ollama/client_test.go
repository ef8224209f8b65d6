package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kirillkom/nonprofit-scan/internal/core/domain"
	"github.com/kirillkom/nonprofit-scan/internal/infrastructure/resilience"
)

func TestClassifierSendsCategoryPrompt(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"response":"  Religious\n"}`))
	}))
	defer server.Close()

	classifier := NewClassifier(New(server.URL, "llama3", Options{MaxTokens: 8, Temperature: 0.2}))
	label, err := classifier.Classify(context.Background(), "A place of worship")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if label != "Religious" {
		t.Fatalf("expected trimmed label, got %q", label)
	}
	prompt, _ := payload["prompt"].(string)
	if !strings.Contains(prompt, "IRS 501(c)") || !strings.HasSuffix(prompt, "A place of worship") {
		t.Fatalf("unexpected prompt: %s", prompt)
	}
	options, _ := payload["options"].(map[string]any)
	if options["num_predict"] != float64(8) || options["temperature"] != 0.2 {
		t.Fatalf("unexpected options: %v", options)
	}
}

func TestClassifierIncludesHTTPBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	classifier := NewClassifier(New(server.URL, "llama3", Options{}))
	_, err := classifier.Classify(context.Background(), "hello")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected response body in error, got %v", err)
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected bad gateway to be temporary, got %v", err)
	}
}

func TestClassifierClientErrorIsNotTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	classifier := NewClassifier(New(server.URL, "missing", Options{}))
	_, err := classifier.Classify(context.Background(), "hello")
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected permanent error, got %v", err)
	}
}

func TestClassifierOpenCircuitIsTemporary(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	executor := resilience.NewExecutor(resilience.Config{
		BreakerEnabled:      true,
		BreakerMinRequests:  2,
		BreakerFailureRatio: 0.5,
	})
	classifier := NewClassifier(New(server.URL, "llama3", Options{Executor: executor}))
	for i := 0; i < 3; i++ {
		_, err := classifier.Classify(context.Background(), "hello")
		if !domain.IsKind(err, domain.ErrTemporary) {
			t.Fatalf("expected temporary error on call %d, got %v", i, err)
		}
	}
	if calls != 2 {
		t.Fatalf("expected open circuit to stop the third call, got %d calls", calls)
	}
}
