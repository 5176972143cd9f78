package datasetcmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/lehigh-university-libraries/artcaptions/internal/captioning"
	"github.com/lehigh-university-libraries/artcaptions/internal/dataset"
	"github.com/lehigh-university-libraries/artcaptions/internal/models"
	"github.com/lehigh-university-libraries/artcaptions/internal/results"
	"github.com/lehigh-university-libraries/artcaptions/internal/storage"
	"golang.org/x/time/rate"
)

// captionsOptions holds the flags of the captions command
type captionsOptions struct {
	metadataPath     string
	mappingPath      string
	outputPath       string
	provider         string
	model            string
	maxImages        int
	checkpointEvery  int
	delay            time.Duration
	templateFallback bool
	resume           bool
	reportDir        string
}

func executeCaptions(ctx context.Context, w io.Writer, opts captionsOptions) error {
	provider, model, err := NewProvider(opts.provider, opts.model)
	if err != nil {
		return err
	}

	cfg := captioning.DefaultConfig()
	cfg.Model = model
	cfg.TemplateFallback = opts.templateFallback
	synth := captioning.New(cfg, provider)

	report := results.NewRunReport("captions")
	report.Config.Provider = opts.provider
	report.Config.Model = model

	runErr := runCaptions(ctx, opts, synth, report)

	printCaptionSummary(w, report)

	if opts.reportDir != "" {
		path, err := results.SaveRunReport(opts.reportDir, report)
		if err != nil {
			slog.Error("Failed to save run report", "error", err)
		} else {
			fmt.Fprintf(w, "\nRun report saved to: %s\n", path)
		}
	}

	return runErr
}

// runCaptions captions every matched record, checkpointing the caption file
// as it goes. On cancellation the captions produced so far are saved.
func runCaptions(ctx context.Context, opts captionsOptions, synth *captioning.Synthesizer, report *results.RunReport) error {
	report.Config.MetadataPath = opts.metadataPath
	report.Config.MappingPath = opts.mappingPath
	report.Config.OutputPath = opts.outputPath
	report.Config.MaxImages = opts.maxImages
	report.Config.CheckpointEvery = opts.checkpointEvery
	report.Config.Delay = opts.delay.String()

	slog.Info("Loading metadata", "path", opts.metadataPath)
	records, err := dataset.NewLoader(opts.metadataPath).Load()
	if err != nil {
		return fmt.Errorf("failed to load metadata: %w", err)
	}

	mapping, err := dataset.LoadMapping(opts.mappingPath)
	if err != nil {
		return fmt.Errorf("failed to load image mapping: %w", err)
	}

	matched := dataset.MatchRecords(records, mapping)
	slog.Info("Matched metadata to images", "records", len(records), "images", len(mapping), "matched", len(matched))

	if opts.maxImages > 0 && len(matched) > opts.maxImages {
		matched = matched[:opts.maxImages]
	}
	report.Stats.Total = len(matched)

	store := storage.New(opts.outputPath)
	if opts.resume {
		if store, err = storage.Open(opts.outputPath); err != nil {
			return err
		}
		slog.Info("Resuming from existing captions", "path", opts.outputPath, "captions", store.Len())
	}

	var limiter *rate.Limiter
	if synth.Remote() && opts.delay > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.delay), 1)
	}

	var runErr error
	for idx, record := range matched {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		if _, done := store.Get(record.ImageID); done {
			report.Stats.Skipped++
			continue
		}

		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				runErr = err
				break
			}
		}

		caption, recovered := safeGenerate(ctx, synth, record)
		store.Set(record.ImageID, caption.Text)
		countCaption(report, record.ImageID, caption, recovered)

		if (idx+1)%10 == 0 || idx+1 == len(matched) {
			slog.Info("Caption progress", "done", idx+1, "total", len(matched))
		}

		if opts.checkpointEvery > 0 && report.Stats.Processed%opts.checkpointEvery == 0 {
			if err := store.Save(); err != nil {
				return err
			}
			slog.Info("Checkpoint saved", "path", store.Path(), "captions", store.Len())
		}
	}

	if err := store.Save(); err != nil {
		return err
	}
	slog.Info("Saved captions", "path", store.Path(), "captions", store.Len())

	return runErr
}

// safeGenerate shields the batch from a record that makes synthesis panic
func safeGenerate(ctx context.Context, synth *captioning.Synthesizer, record models.Record) (caption captioning.Caption, recovered bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Error processing record", "image_id", record.ImageID, "panic", r)
			caption = captioning.Caption{Text: captioning.MinimalCaption(record), Source: captioning.SourceFallback}
			recovered = true
		}
	}()
	return synth.Generate(ctx, record), false
}

func countCaption(report *results.RunReport, imageID string, caption captioning.Caption, recovered bool) {
	stats := &report.Stats
	stats.Processed++

	switch {
	case recovered:
		stats.Recovered++
		report.AddIssue(imageID, "synthesis failed, minimal caption used")
	case caption.Source == captioning.SourceRemote:
		stats.Remote++
	case caption.Source == captioning.SourceTemplate:
		stats.Template++
		if caption.Attempts > 0 {
			report.AddIssue(imageID, "template caption after %d failed attempts", caption.Attempts)
		}
	case caption.Source == captioning.SourceFallback:
		stats.Fallback++
		report.AddIssue(imageID, "fallback caption after %d failed attempts", caption.Attempts)
	}

	if caption.Padded {
		stats.Padded++
	}
}

func printCaptionSummary(w io.Writer, report *results.RunReport) {
	s := report.Stats
	fmt.Fprintln(w, "\n========================================")
	fmt.Fprintln(w, "Caption Summary")
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Matched Records:    %d\n", s.Total)
	fmt.Fprintf(w, "Captioned:          %d\n", s.Processed)
	fmt.Fprintf(w, "Remote:             %d\n", s.Remote)
	fmt.Fprintf(w, "Template:           %d\n", s.Template)
	fmt.Fprintf(w, "Fallback:           %d\n", s.Fallback)
	fmt.Fprintf(w, "Padded:             %d\n", s.Padded)
	fmt.Fprintf(w, "Recovered:          %d\n", s.Recovered)
	fmt.Fprintf(w, "Already Captioned:  %d\n", s.Skipped)
	fmt.Fprintf(w, "\nCaptions saved to: %s\n", report.Config.OutputPath)
}
