package openai

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
	DefaultURL   = "https://api.openai.com/v1"
	DefaultModel = "gpt-4o"
)

// OpenAI is a provider for OpenAI
type OpenAI struct {
	url    string
	apiKey string
	client *http.Client
}

// New returns a new OpenAI provider
func New(baseURL, apiKey string, timeout time.Duration) *OpenAI {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &OpenAI{
		url:    strings.TrimRight(baseURL, "/"),
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
	}
}

// ExtractText extracts text from the given prompt using OpenAI
func (o *OpenAI) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	if o.apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	body := map[string]interface{}{
		"model": config.Model,
		"messages": []map[string]string{
			{
				"role":    "user",
				"content": config.Prompt,
			},
		},
		"temperature": config.Temperature,
	}
	if config.TopP > 0 {
		body["top_p"] = config.TopP
	}
	if config.MaxTokens > 0 {
		body["max_tokens"] = config.MaxTokens
	}

	requestBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.url+"/chat/completions", bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &providers.StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from OpenAI")
	}

	return response.Choices[0].Message.Content, nil
}
