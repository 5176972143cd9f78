package datasetcmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/artcaptions/internal/gemini"
	"github.com/lehigh-university-libraries/artcaptions/internal/huggingface"
	"github.com/lehigh-university-libraries/artcaptions/internal/ollama"
	"github.com/lehigh-university-libraries/artcaptions/internal/openai"
	"github.com/lehigh-university-libraries/artcaptions/internal/providers"
)

// ProviderNone selects template-only captions
const ProviderNone = "none"

// chatTimeout bounds one request to a chat-style provider
const chatTimeout = 2 * time.Minute

// ProviderNames lists the values accepted by --provider
var ProviderNames = []string{"huggingface", "ollama", "openai", "gemini", ProviderNone}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// NewProvider builds the named provider from the environment and resolves the
// model to use. The "none" provider is nil, which selects template captions.
func NewProvider(name, model string) (providers.Provider, string, error) {
	switch strings.ToLower(name) {
	case "huggingface", "hf":
		token := os.Getenv("HF_API_TOKEN")
		if token == "" {
			slog.Warn("HF_API_TOKEN not set, using anonymous access (slower, rate limited)")
		}
		if model == "" {
			model = getenv("HF_MODEL", huggingface.DefaultModel)
		}
		return huggingface.New(huggingface.Config{
			BaseURL: os.Getenv("HF_API_URL"),
			Token:   token,
		}), model, nil
	case "ollama":
		if model == "" {
			model = getenv("OLLAMA_MODEL", ollama.DefaultModel)
		}
		url := getenv("OLLAMA_URL", os.Getenv("OLLAMA_HOST"))
		return ollama.New(url, chatTimeout), model, nil
	case "openai":
		if model == "" {
			model = getenv("OPENAI_MODEL", openai.DefaultModel)
		}
		return openai.New(os.Getenv("OPENAI_URL"), os.Getenv("OPENAI_API_KEY"), chatTimeout), model, nil
	case "gemini":
		if model == "" {
			model = getenv("GEMINI_MODEL", gemini.DefaultModel)
		}
		return gemini.New(os.Getenv("GEMINI_API_KEY")), model, nil
	case ProviderNone, "template", "":
		return nil, "", nil
	default:
		return nil, "", fmt.Errorf("unsupported provider: %s (supported: %s)", name, strings.Join(ProviderNames, ", "))
	}
}
