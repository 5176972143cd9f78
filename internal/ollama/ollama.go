package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/artcaptions/internal/providers"
)

const (
	DefaultURL   = "http://localhost:11434"
	DefaultModel = "mistral-small3.2:24b"
)

// Ollama is a provider for Ollama
type Ollama struct {
	url    string
	client *http.Client
}

// New returns a new Ollama provider talking to baseURL
func New(baseURL string, timeout time.Duration) *Ollama {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Ollama{
		url:    strings.TrimRight(baseURL, "/"),
		client: &http.Client{Timeout: timeout},
	}
}

// ExtractText extracts text from the given prompt using Ollama
func (o *Ollama) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	options := map[string]interface{}{
		"temperature": config.Temperature,
	}
	if config.TopP > 0 {
		options["top_p"] = config.TopP
	}
	if config.MaxTokens > 0 {
		options["num_predict"] = config.MaxTokens
	}

	requestBody, err := json.Marshal(map[string]interface{}{
		"model":   config.Model,
		"prompt":  config.Prompt,
		"stream":  false,
		"options": options,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.url+"/api/generate", bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusServiceUnavailable {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: %s", providers.ErrModelLoading, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &providers.StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	return response.Response, nil
}
