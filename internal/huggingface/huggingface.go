package huggingface

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/lehigh-university-libraries/artcaptions/internal/providers"
)

const (
	// DefaultBaseURL is the hosted Inference API
	DefaultBaseURL = "https://api-inference.huggingface.co"
	// DefaultModel is used when no model is configured
	DefaultModel = "gpt2"
	// DefaultTimeout bounds a single generation attempt
	DefaultTimeout = 30 * time.Second
)

// Config holds the connection settings for the Inference API.
// An empty Token means anonymous access, which is rate limited more aggressively.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// HuggingFace is a provider for the HuggingFace Inference API
type HuggingFace struct {
	client *resty.Client
}

// New returns a new HuggingFace provider
func New(cfg Config) *HuggingFace {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}

	return &HuggingFace{client: client}
}

type parameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	TopP           float64 `json:"top_p"`
	ReturnFullText bool    `json:"return_full_text"`
	DoSample       bool    `json:"do_sample"`
}

type generationRequest struct {
	Inputs     string     `json:"inputs"`
	Parameters parameters `json:"parameters"`
}

type generation struct {
	GeneratedText string `json:"generated_text"`
}

// ExtractText generates text for the given prompt.
// A 503 answer means the model is still loading and is reported as providers.ErrModelLoading.
func (h *HuggingFace) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetRawPathParam("model", model).
		SetBody(generationRequest{
			Inputs: config.Prompt,
			Parameters: parameters{
				MaxNewTokens:   config.MaxTokens,
				Temperature:    config.Temperature,
				TopP:           config.TopP,
				ReturnFullText: config.ReturnFullText,
				DoSample:       true,
			},
		}).
		Post("/models/{model}")
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusServiceUnavailable:
		return "", fmt.Errorf("%w: %s", providers.ErrModelLoading, resp.String())
	default:
		return "", &providers.StatusError{Code: resp.StatusCode(), Body: resp.String()}
	}

	var generations []generation
	if err := json.Unmarshal(resp.Body(), &generations); err != nil {
		return "", fmt.Errorf("unexpected API response format: %s", resp.String())
	}
	if len(generations) == 0 {
		return "", fmt.Errorf("unexpected API response format: %s", resp.String())
	}

	return generations[0].GeneratedText, nil
}
