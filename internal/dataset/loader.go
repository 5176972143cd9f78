package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/artcaptions/internal/models"
	"github.com/parquet-go/parquet-go"
)

// Loader handles loading of the artwork metadata table
type Loader struct {
	metadataPath string
}

// NewLoader creates a new metadata loader
func NewLoader(metadataPath string) *Loader {
	return &Loader{
		metadataPath: metadataPath,
	}
}

// Load loads all records from a metadata file (CSV, JSONL or Parquet)
func (l *Loader) Load() ([]models.Record, error) {
	return l.LoadSample(-1)
}

// LoadSample loads at most limit records; a limit <= 0 loads everything
func (l *Loader) LoadSample(limit int) ([]models.Record, error) {
	ext := strings.ToLower(filepath.Ext(l.metadataPath))

	switch ext {
	case ".csv":
		return l.loadCSV(limit)
	case ".jsonl", ".json":
		return l.loadJSON(limit)
	case ".parquet":
		return l.loadParquet(limit)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .csv, .jsonl, .json, .parquet)", ext)
	}
}

func full(records []models.Record, limit int) bool {
	return limit > 0 && len(records) >= limit
}

// csvColumns maps header names to record fields
var csvColumns = map[string]func(*models.Record, string){
	"image_id":     func(r *models.Record, v string) { r.ImageID = v },
	"artist":       func(r *models.Record, v string) { r.Artist = v },
	"title":        func(r *models.Record, v string) { r.Title = v },
	"period":       func(r *models.Record, v string) { r.Period = v },
	"medium":       func(r *models.Record, v string) { r.Medium = v },
	"year":         func(r *models.Record, v string) { r.Year = v },
	"nationality":  func(r *models.Record, v string) { r.Nationality = v },
	"picture_data": func(r *models.Record, v string) { r.PictureData = v },
}

// loadCSV loads records from a CSV file with a header row
func (l *Loader) loadCSV(limit int) ([]models.Record, error) {
	slog.Debug("Opening CSV file", "path", l.metadataPath)

	file, err := os.Open(l.metadataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(bufio.NewReader(file))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	setters := make([]func(*models.Record, string), len(header))
	hasID := false
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		setters[i] = csvColumns[name]
		if name == "image_id" {
			hasID = true
		}
	}
	if !hasID {
		return nil, fmt.Errorf("CSV header has no image_id column")
	}

	var records []models.Record
	lineNum := 1
	for !full(records, limit) {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		lineNum++
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV at line %d: %w", lineNum, err)
		}

		var record models.Record
		for i, value := range row {
			if i < len(setters) && setters[i] != nil {
				setters[i](&record, strings.TrimSpace(value))
			}
		}
		records = append(records, record)
	}

	slog.Debug("Finished reading CSV file", "total_records", len(records))
	return records, nil
}

// loadJSON loads records from a JSONL file, or from a JSON array
func (l *Loader) loadJSON(limit int) ([]models.Record, error) {
	slog.Debug("Opening JSON file", "path", l.metadataPath)

	data, err := os.ReadFile(l.metadataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata file: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []models.Record
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("failed to parse JSON array: %w", err)
		}
		if limit > 0 && len(records) > limit {
			records = records[:limit]
		}
		return records, nil
	}

	var records []models.Record
	scanner := bufio.NewScanner(bytes.NewReader(data))

	// Increase buffer size for long descriptive notes
	const maxCapacity = 10 * 1024 * 1024 // 10MB per line
	scanner.Buffer(make([]byte, 64*1024), maxCapacity)

	lineNum := 0
	for scanner.Scan() && !full(records, limit) {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())

		if len(line) == 0 {
			continue
		}

		var record models.Record
		if err := json.Unmarshal(line, &record); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}

		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading metadata: %w", err)
	}

	slog.Debug("Finished reading JSONL file", "total_records", len(records), "total_lines", lineNum)
	return records, nil
}

// loadParquet loads records from a Parquet file
func (l *Loader) loadParquet(limit int) ([]models.Record, error) {
	slog.Debug("Opening Parquet file", "path", l.metadataPath)

	file, err := os.Open(l.metadataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened successfully", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[models.Record](pf)
	defer reader.Close()

	var records []models.Record
	rows := make([]models.Record, 128) // Read in batches

	for !full(records, limit) {
		n, err := reader.Read(rows)
		if n > 0 {
			if limit > 0 && n > limit-len(records) {
				n = limit - len(records)
			}
			records = append(records, rows[:n]...)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("failed to read parquet rows: %w", err)
			}
			break
		}
	}

	slog.Debug("Finished reading Parquet file", "total_records", len(records))
	return records, nil
}

// MatchRecords keeps the records whose image_id is a key of the mapping
func MatchRecords(records []models.Record, mapping models.IDMapping) []models.Record {
	matched := make([]models.Record, 0, len(records))
	for _, r := range records {
		if _, ok := mapping[strings.TrimSpace(r.ImageID)]; ok {
			r.ImageID = strings.TrimSpace(r.ImageID)
			matched = append(matched, r)
		}
	}

	if len(matched) == 0 && len(records) > 0 {
		slog.Warn("No metadata matched the image mapping", "records", len(records), "mapped_images", len(mapping))
	}
	return matched
}
