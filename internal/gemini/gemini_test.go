package gemini

import (
	"context"
	"testing"

	"github.com/lehigh-university-libraries/artcaptions/internal/providers"
)

func TestExtractTextRequiresAPIKey(t *testing.T) {
	_, err := New("").ExtractText(context.Background(), providers.Config{Model: DefaultModel, Prompt: "Describe"})
	if err == nil {
		t.Error("Expected error without an API key, got nil")
	}
}
