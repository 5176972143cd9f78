package results

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/artcaptions/internal/models"
)

func TestSaveRunReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")

	report := NewRunReport("captions")
	report.Config.Provider = "huggingface"
	report.Config.Model = "gpt2"
	report.Config.OutputPath = "captions.json"
	report.Stats = RunStats{Total: 3, Processed: 3, Remote: 1, Fallback: 2}
	report.AddIssue("7", "fell back after %d attempts", 3)

	path, err := SaveRunReport(dir, report)
	if err != nil {
		t.Fatalf("SaveRunReport failed: %v", err)
	}

	base := filepath.Base(path)
	if !strings.HasPrefix(base, "captions-"+report.Config.Timestamp) || !strings.HasSuffix(base, ".yaml") {
		t.Errorf("Unexpected report name %s", base)
	}

	loaded, err := LoadRunReport(path)
	if err != nil {
		t.Fatalf("LoadRunReport failed: %v", err)
	}

	if _, err := uuid.Parse(loaded.RunID); err != nil {
		t.Errorf("Expected a UUID run id, got %q", loaded.RunID)
	}
	if loaded.Config.Model != "gpt2" || loaded.Stats != report.Stats {
		t.Errorf("Report did not round trip: %+v", loaded)
	}
	if len(loaded.Issues) != 1 || loaded.Issues[0].Message != "fell back after 3 attempts" {
		t.Errorf("Unexpected issues: %+v", loaded.Issues)
	}
}

func TestRunReportsDoNotCollide(t *testing.T) {
	dir := t.TempDir()

	first, err := SaveRunReport(dir, NewRunReport("preprocess"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := SaveRunReport(dir, NewRunReport("preprocess"))
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Errorf("Expected distinct report files, got %s twice", first)
	}
}

func TestBuildManifest(t *testing.T) {
	captions := models.Captions{
		"b": "A landscape with trees.",
		"a": "A portrait.",
		"x": "Never preprocessed.",
	}
	idMapping := models.IDMapping{"a": "00002", "b": "00001", "c": "00003"}

	rows := BuildManifest(captions, idMapping, "data/images")

	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}

	expected := models.ManifestRow{
		ImageID:   "b",
		NewID:     "00001",
		ImagePath: filepath.Join("data/images", "00001.jpg"),
		Caption:   "A landscape with trees.",
		Words:     4,
	}
	if rows[0] != expected {
		t.Errorf("Expected %+v, got %+v", expected, rows[0])
	}
	if rows[1].NewID != "00002" {
		t.Errorf("Expected rows sorted by new id, got %+v", rows)
	}
}

func TestWriteManifestParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "manifest.parquet")
	rows := []models.ManifestRow{
		{ImageID: "a", NewID: "00001", ImagePath: "images/00001.jpg", Caption: "One two.", Words: 2},
		{ImageID: "b", NewID: "00002", ImagePath: "images/00002.jpg", Caption: "Three.", Words: 1},
	}

	if err := WriteManifest(path, rows); err != nil {
		t.Fatalf("WriteManifest failed: %v", err)
	}

	loaded, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest failed: %v", err)
	}
	if len(loaded) != 2 || loaded[1] != rows[1] {
		t.Errorf("Manifest did not round trip: %+v", loaded)
	}
}

func TestWriteManifestJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.jsonl")
	rows := []models.ManifestRow{
		{ImageID: "a", NewID: "00001", Caption: "Café <scene> & more."},
		{ImageID: "b", NewID: "00002"},
	}

	if err := WriteManifest(path, rows); err != nil {
		t.Fatalf("WriteManifest failed: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "Café <scene> & more.") {
		t.Errorf("Expected caption written verbatim, got %s", lines[0])
	}

	var row models.ManifestRow
	if err := json.Unmarshal([]byte(lines[1]), &row); err != nil || row.NewID != "00002" {
		t.Errorf("Unexpected second row %s (%v)", lines[1], err)
	}
}

func TestWriteManifestUnsupported(t *testing.T) {
	if err := WriteManifest(filepath.Join(t.TempDir(), "manifest.csv"), nil); err == nil {
		t.Error("Expected error for unsupported format, got nil")
	}
}
