package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lehigh-university-libraries/artcaptions/internal/models"
)

// LoadMapping loads an identifier mapping from a JSON object
func LoadMapping(path string) (models.IDMapping, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mapping file: %w", err)
	}
	defer file.Close()

	var mapping models.IDMapping
	if err := json.NewDecoder(file).Decode(&mapping); err != nil {
		return nil, fmt.Errorf("failed to decode mapping: %w", err)
	}
	if mapping == nil {
		mapping = models.IDMapping{}
	}

	return mapping, nil
}

// SaveMapping writes an identifier mapping as a JSON object
func SaveMapping(path string, mapping models.IDMapping) error {
	return WriteJSON(path, mapping)
}

// WriteJSON writes v as indented JSON, replacing path atomically.
// Parent directories are created as needed.
func WriteJSON(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
