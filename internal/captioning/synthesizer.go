package captioning

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/artcaptions/internal/models"
	"github.com/lehigh-university-libraries/artcaptions/internal/providers"
	"github.com/sethvargo/go-retry"
)

// Source identifies which strategy produced a caption
type Source string

const (
	SourceRemote   Source = "remote"
	SourceTemplate Source = "template"
	SourceFallback Source = "fallback"
)

var errEmptyGeneration = errors.New("empty generation")

// Config holds the generation settings of a Synthesizer
type Config struct {
	Model          string
	Temperature    float64
	TopP           float64
	MaxNewTokens   int
	ReturnFullText bool

	// MaxAttempts bounds the remote calls per record
	MaxAttempts int
	// BackoffUnit scales every retry delay
	BackoffUnit time.Duration
	// RetryPolicy overrides DefaultRetryPolicy(BackoffUnit)
	RetryPolicy RetryPolicy
	// TemplateFallback uses Template instead of FallbackCaption once retries are exhausted
	TemplateFallback bool
}

// DefaultConfig returns the sampling parameters used for caption generation
func DefaultConfig() Config {
	return Config{
		Temperature:  0.8,
		TopP:         0.9,
		MaxNewTokens: 300,
		MaxAttempts:  3,
		BackoffUnit:  time.Second,
	}
}

// Caption is a generated caption with details about how it was produced
type Caption struct {
	Text     string
	Source   Source
	Padded   bool
	Attempts int
}

// Synthesizer produces captions for metadata records
type Synthesizer struct {
	cfg      Config
	provider providers.Provider
}

// New creates a Synthesizer. A nil provider selects template-only mode.
func New(cfg Config, provider providers.Provider) *Synthesizer {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BackoffUnit <= 0 {
		cfg.BackoffUnit = time.Second
	}
	if cfg.RetryPolicy == nil {
		cfg.RetryPolicy = DefaultRetryPolicy(cfg.BackoffUnit)
	}
	return &Synthesizer{cfg: cfg, provider: provider}
}

// Remote reports whether captions are requested from a remote provider
func (s *Synthesizer) Remote() bool {
	return s.provider != nil
}

// Synthesize returns a caption for the record. It never fails: every error
// path resolves to a fallback caption.
func (s *Synthesizer) Synthesize(ctx context.Context, record models.Record) string {
	return s.Generate(ctx, record).Text
}

// Generate is Synthesize with details about the strategy that produced the caption
func (s *Synthesizer) Generate(ctx context.Context, record models.Record) Caption {
	if s.provider == nil {
		return Caption{Text: Template(record), Source: SourceTemplate}
	}

	record = record.WithDefaults()
	text, attempts, err := s.generateRemote(ctx, BuildPrompt(record))
	if err != nil {
		slog.Warn("Caption generation failed, using fallback",
			"image_id", record.ImageID,
			"attempts", attempts,
			"error", err)
		if s.cfg.TemplateFallback {
			return Caption{Text: Template(record), Source: SourceTemplate, Attempts: attempts}
		}
		return Caption{Text: FallbackCaption(record), Source: SourceFallback, Attempts: attempts}
	}

	caption := Caption{Text: strings.TrimSpace(text), Source: SourceRemote, Attempts: attempts}
	if WordCount(caption.Text) < MinWords {
		caption.Text += " " + fillerSentence(record)
		caption.Padded = true
	}
	return caption
}

func (s *Synthesizer) generateRemote(ctx context.Context, prompt string) (string, int, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	tracker := &attemptTracker{policy: s.cfg.RetryPolicy, maxAttempts: s.cfg.MaxAttempts}
	request := providers.Config{
		Model:          s.cfg.Model,
		Temperature:    s.cfg.Temperature,
		TopP:           s.cfg.TopP,
		MaxTokens:      s.cfg.MaxNewTokens,
		ReturnFullText: s.cfg.ReturnFullText,
		Prompt:         prompt,
	}

	var generated string
	err := retry.Do(ctx, tracker.backoff(), func(ctx context.Context) error {
		text, err := s.provider.ExtractText(ctx, request)
		if err == nil && strings.TrimSpace(text) == "" {
			err = errEmptyGeneration
		}
		tracker.record(err)
		if err != nil {
			if errors.Is(err, providers.ErrModelLoading) {
				slog.Info("Model loading, waiting before retry", "attempt", tracker.attempts, "max_attempts", s.cfg.MaxAttempts)
			} else {
				slog.Warn("Error generating caption", "attempt", tracker.attempts, "max_attempts", s.cfg.MaxAttempts, "error", err)
			}
			return retry.RetryableError(err)
		}
		generated = text
		return nil
	})
	return generated, tracker.attempts, err
}
