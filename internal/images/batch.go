package images

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lehigh-university-libraries/artcaptions/internal/dataset"
	"github.com/lehigh-university-libraries/artcaptions/internal/models"
)

// NewID formats a 1-based sort rank as a 5-digit identifier
func NewID(rank int) string {
	return fmt.Sprintf("%05d", rank)
}

// Batch normalizes every image of an identifier mapping into OutputDir
type Batch struct {
	OutputDir string
	// MappingPath receives the old -> new identifier mapping; defaults to
	// id_mapping.json next to OutputDir.
	MappingPath string
	Size        image.Point
	// DetectDuplicates enables perceptual-hash duplicate warnings
	DetectDuplicates bool
}

// Failure records an image that could not be processed
type Failure struct {
	ImageID string `yaml:"image_id"`
	Path    string `yaml:"path"`
	Error   string `yaml:"error"`
}

// Report summarizes a batch run
type Report struct {
	Total       int         `yaml:"total"`
	Processed   int         `yaml:"processed"`
	Failures    []Failure   `yaml:"failures,omitempty"`
	Duplicates  []Duplicate `yaml:"duplicates,omitempty"`
	MappingPath string      `yaml:"mapping_path"`
}

func (b *Batch) mappingPath() string {
	if b.MappingPath != "" {
		return b.MappingPath
	}
	return filepath.Join(filepath.Dir(filepath.Clean(b.OutputDir)), "id_mapping.json")
}

// Run processes the entries in sorted identifier order. Each entry is saved
// as <rank>.jpg where rank is its 1-based position in that order. Entries
// that fail are logged and skipped. The old -> new mapping is written once
// the pass completes, or when ctx is cancelled.
func (b *Batch) Run(ctx context.Context, mapping models.IDMapping) (models.IDMapping, *Report, error) {
	size := b.Size
	if size.X <= 0 || size.Y <= 0 {
		size = DefaultSize
	}

	if err := os.MkdirAll(b.OutputDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	ids := mapping.SortedKeys()
	idMapping := make(models.IDMapping, len(ids))
	report := &Report{Total: len(ids), MappingPath: b.mappingPath()}

	var dedup *dedupFilter
	if b.DetectDuplicates {
		dedup = &dedupFilter{}
	}

	slog.Info("Preprocessing images", "count", len(ids), "width", size.X, "height", size.Y, "output", b.OutputDir)

	var runErr error
	for idx, oldID := range ids {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		newID := NewID(idx + 1)
		srcPath := mapping[oldID]
		dstPath := filepath.Join(b.OutputDir, newID+".jpg")

		_, img, err := normalizeFile(srcPath, dstPath, size)
		if err != nil {
			slog.Error("Error processing image", "image_id", oldID, "path", srcPath, "error", err)
			report.Failures = append(report.Failures, Failure{ImageID: oldID, Path: srcPath, Error: err.Error()})
			continue
		}

		idMapping[oldID] = newID
		report.Processed++

		if dedup != nil {
			if of, dup := dedup.check(newID, img); dup {
				slog.Warn("Possible duplicate image", "image_id", oldID, "new_id", newID, "duplicate_of", of)
				report.Duplicates = append(report.Duplicates, Duplicate{NewID: newID, Of: of})
			}
		}

		if (idx+1)%100 == 0 {
			slog.Info("Preprocessing progress", "done", idx+1, "total", len(ids))
		}
	}

	if err := dataset.SaveMapping(report.MappingPath, idMapping); err != nil {
		return idMapping, report, err
	}

	slog.Info("Preprocessed images", "processed", report.Processed, "failed", len(report.Failures), "mapping", report.MappingPath)
	return idMapping, report, runErr
}
