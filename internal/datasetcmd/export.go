package datasetcmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/lehigh-university-libraries/artcaptions/internal/dataset"
	"github.com/lehigh-university-libraries/artcaptions/internal/results"
	"github.com/lehigh-university-libraries/artcaptions/internal/storage"
)

type exportOptions struct {
	captionsPath  string
	idMappingPath string
	imagesDir     string
	outputPath    string
}

func executeExport(w io.Writer, opts exportOptions) error {
	store, err := storage.Open(opts.captionsPath)
	if err != nil {
		return err
	}
	if store.Len() == 0 {
		return fmt.Errorf("no captions found in %s", opts.captionsPath)
	}

	idMapping, err := dataset.LoadMapping(opts.idMappingPath)
	if err != nil {
		return fmt.Errorf("failed to load id mapping: %w", err)
	}

	rows := results.BuildManifest(store.All(), idMapping, opts.imagesDir)
	if missing := store.Len() - len(rows); missing > 0 {
		slog.Warn("Captions without a preprocessed image were left out", "count", missing)
	}

	if err := results.WriteManifest(opts.outputPath, rows); err != nil {
		return err
	}

	fmt.Fprintf(w, "Exported %d examples to: %s\n", len(rows), opts.outputPath)
	return nil
}
