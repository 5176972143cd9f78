package datasetcmd

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"

	"github.com/lehigh-university-libraries/artcaptions/internal/dataset"
	"github.com/lehigh-university-libraries/artcaptions/internal/images"
	"github.com/lehigh-university-libraries/artcaptions/internal/results"
)

type preprocessOptions struct {
	mappingPath      string
	outputDir        string
	idMappingPath    string
	size             int
	detectDuplicates bool
	reportDir        string
}

func executePreprocess(ctx context.Context, w io.Writer, opts preprocessOptions) error {
	mapping, err := dataset.LoadMapping(opts.mappingPath)
	if err != nil {
		return fmt.Errorf("failed to load image mapping: %w", err)
	}

	batch := &images.Batch{
		OutputDir:        opts.outputDir,
		MappingPath:      opts.idMappingPath,
		Size:             image.Pt(opts.size, opts.size),
		DetectDuplicates: opts.detectDuplicates,
	}

	report := results.NewRunReport("preprocess")
	report.Config.MappingPath = opts.mappingPath
	report.Config.OutputPath = opts.outputDir
	report.Config.Width = opts.size
	report.Config.Height = opts.size

	_, batchReport, runErr := batch.Run(ctx, mapping)
	if batchReport == nil {
		return runErr
	}
	fillPreprocessReport(report, batchReport)

	printPreprocessSummary(w, batchReport)

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

func fillPreprocessReport(report *results.RunReport, batch *images.Report) {
	report.Stats.Total = batch.Total
	report.Stats.Processed = batch.Processed
	report.Stats.Skipped = len(batch.Failures)
	report.Stats.Duplicates = len(batch.Duplicates)

	for _, f := range batch.Failures {
		report.AddIssue(f.ImageID, "failed to process %s: %s", f.Path, f.Error)
	}
	for _, d := range batch.Duplicates {
		report.AddIssue(d.NewID, "possible duplicate of %s", d.Of)
	}
}

func printPreprocessSummary(w io.Writer, r *images.Report) {
	fmt.Fprintln(w, "\n========================================")
	fmt.Fprintln(w, "Preprocessing Summary")
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Images:             %d\n", r.Total)
	fmt.Fprintf(w, "Processed:          %d\n", r.Processed)
	fmt.Fprintf(w, "Failed:             %d\n", len(r.Failures))
	fmt.Fprintf(w, "Duplicates:         %d\n", len(r.Duplicates))
	fmt.Fprintf(w, "\nID mapping saved to: %s\n", r.MappingPath)
}
