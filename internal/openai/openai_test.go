package openai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/artcaptions/internal/providers"
)

func TestExtractText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected /chat/completions, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("Expected bearer key, got %q", got)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Golden light on a canal."}}]}`))
	}))
	defer srv.Close()

	text, err := New(srv.URL, "key", time.Second).ExtractText(context.Background(), providers.Config{Model: "gpt-4o", Prompt: "p"})
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}
	if text != "Golden light on a canal." {
		t.Errorf("Unexpected text %q", text)
	}
}

func TestExtractTextMissingKey(t *testing.T) {
	if _, err := New("", "", time.Second).ExtractText(context.Background(), providers.Config{}); err == nil {
		t.Error("Expected error without API key, got nil")
	}
}

func TestExtractTextNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	if _, err := New(srv.URL, "key", time.Second).ExtractText(context.Background(), providers.Config{}); err == nil {
		t.Error("Expected error for empty choices, got nil")
	}
}

func TestExtractTextStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "key", time.Second).ExtractText(context.Background(), providers.Config{})
	var statusErr *providers.StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429 StatusError, got %v", err)
	}
}
