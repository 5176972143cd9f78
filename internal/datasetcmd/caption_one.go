package datasetcmd

import (
	"context"
	"fmt"
	"io"

	"github.com/lehigh-university-libraries/artcaptions/internal/captioning"
	"github.com/lehigh-university-libraries/artcaptions/internal/models"
)

type captionOneOptions struct {
	record           models.Record
	provider         string
	model            string
	templateFallback bool
	showPrompt       bool
}

func executeCaptionOne(ctx context.Context, w io.Writer, opts captionOneOptions) error {
	provider, model, err := NewProvider(opts.provider, opts.model)
	if err != nil {
		return err
	}

	cfg := captioning.DefaultConfig()
	cfg.Model = model
	cfg.TemplateFallback = opts.templateFallback
	synth := captioning.New(cfg, provider)

	if opts.showPrompt && synth.Remote() {
		fmt.Fprintf(w, "Prompt:\n%s\n\n", captioning.BuildPrompt(opts.record.WithDefaults()))
	}

	caption := synth.Generate(ctx, opts.record)

	fmt.Fprintf(w, "Caption (%s, %d words):\n%s\n", caption.Source, captioning.WordCount(caption.Text), caption.Text)
	return nil
}
