package huggingface

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lehigh-university-libraries/artcaptions/internal/providers"
)

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestExtractTextSendsPromptAndParameters(t *testing.T) {
	var got generationRequest
	var gotPath, gotAuth string

	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"generated_text":"A calm harbour at dusk."}]`))
	})

	h := New(Config{BaseURL: srv.URL, Token: "secret"})
	text, err := h.ExtractText(context.Background(), providers.Config{
		Model:       "openai-community/gpt2",
		Prompt:      "Describe this artwork",
		Temperature: 0.8,
		TopP:        0.9,
		MaxTokens:   300,
	})
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}

	if text != "A calm harbour at dusk." {
		t.Errorf("Expected generated text, got %q", text)
	}
	if gotPath != "/models/openai-community/gpt2" {
		t.Errorf("Expected model path, got %s", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Expected bearer token, got %q", gotAuth)
	}
	if got.Inputs != "Describe this artwork" {
		t.Errorf("Expected prompt in inputs, got %q", got.Inputs)
	}
	if got.Parameters.MaxNewTokens != 300 || got.Parameters.TopP != 0.9 || got.Parameters.Temperature != 0.8 {
		t.Errorf("Unexpected parameters: %+v", got.Parameters)
	}
	if got.Parameters.ReturnFullText || !got.Parameters.DoSample {
		t.Errorf("Expected return_full_text=false and do_sample=true, got %+v", got.Parameters)
	}
}

func TestExtractTextAnonymous(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "" {
			t.Errorf("Expected no Authorization header, got %q", auth)
		}
		if r.URL.Path != "/models/"+DefaultModel {
			t.Errorf("Expected default model path, got %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[{"generated_text":"ok"}]`))
	})

	if _, err := New(Config{BaseURL: srv.URL}).ExtractText(context.Background(), providers.Config{Prompt: "p"}); err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}
}

func TestExtractTextErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantLoading bool
		wantStatus  int
	}{
		{name: "model loading", status: http.StatusServiceUnavailable, body: `{"error":"Model gpt2 is currently loading"}`, wantLoading: true},
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"boom"}`, wantStatus: http.StatusInternalServerError},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{"error":"slow down"}`, wantStatus: http.StatusTooManyRequests},
		{name: "empty list", status: http.StatusOK, body: `[]`},
		{name: "object instead of list", status: http.StatusOK, body: `{"generated_text":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := New(Config{BaseURL: srv.URL}).ExtractText(context.Background(), providers.Config{Prompt: "p"})
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if got := errors.Is(err, providers.ErrModelLoading); got != tt.wantLoading {
				t.Errorf("errors.Is(ErrModelLoading) = %v, want %v (%v)", got, tt.wantLoading, err)
			}
			var statusErr *providers.StatusError
			if tt.wantStatus != 0 {
				if !errors.As(err, &statusErr) {
					t.Fatalf("Expected StatusError, got %v", err)
				}
				if statusErr.Code != tt.wantStatus {
					t.Errorf("Expected status %d, got %d", tt.wantStatus, statusErr.Code)
				}
			}
		})
	}
}
