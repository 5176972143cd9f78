package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lehigh-university-libraries/artcaptions/internal/captioning"
	"github.com/lehigh-university-libraries/artcaptions/internal/models"
	"github.com/parquet-go/parquet-go"
)

// BuildManifest joins captions with the preprocessing id mapping. Only images
// that have both a caption and a new id are included, ordered by new id.
func BuildManifest(captions models.Captions, idMapping models.IDMapping, imagesDir string) []models.ManifestRow {
	rows := make([]models.ManifestRow, 0, len(idMapping))
	for imageID, newID := range idMapping {
		caption, ok := captions[imageID]
		if !ok {
			continue
		}
		rows = append(rows, models.ManifestRow{
			ImageID:   imageID,
			NewID:     newID,
			ImagePath: filepath.Join(imagesDir, newID+".jpg"),
			Caption:   caption,
			Words:     captioning.WordCount(caption),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].NewID < rows[j].NewID
	})
	return rows
}

// WriteManifest writes rows as Parquet or JSONL depending on the file extension
func WriteManifest(path string, rows []models.ManifestRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".parquet":
		if err := parquet.WriteFile(path, rows); err != nil {
			return fmt.Errorf("failed to write parquet manifest: %w", err)
		}
		return nil
	case ".jsonl":
		return writeJSONL(path, rows)
	default:
		return fmt.Errorf("unsupported manifest format: %s (supported: .parquet, .jsonl)", ext)
	}
}

func writeJSONL(path string, rows []models.ManifestRow) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create manifest: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetEscapeHTML(false)
	for _, row := range rows {
		if err := encoder.Encode(row); err != nil {
			file.Close()
			return fmt.Errorf("failed to encode manifest row %s: %w", row.ImageID, err)
		}
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// ReadManifest reads a Parquet manifest written by WriteManifest
func ReadManifest(path string) ([]models.ManifestRow, error) {
	rows, err := parquet.ReadFile[models.ManifestRow](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet manifest: %w", err)
	}
	return rows, nil
}
