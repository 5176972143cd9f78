package providers

import (
	"context"
	"errors"
	"fmt"
)

// Config represents the configuration for an LLM provider
type Config struct {
	Model          string
	Temperature    float64
	TopP           float64
	MaxTokens      int
	ReturnFullText bool
	Prompt         string
}

// Provider defines the interface for an LLM provider
type Provider interface {
	ExtractText(ctx context.Context, config Config) (string, error)
}

// ErrModelLoading is returned while the remote model is still warming up
var ErrModelLoading = errors.New("model is loading")

// StatusError is returned when a provider answers with an unexpected HTTP status
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("received non-200 status code: %d - %s", e.Code, e.Body)
}
