package images

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/lehigh-university-libraries/artcaptions/internal/dataset"
	"github.com/lehigh-university-libraries/artcaptions/internal/models"
)

func TestNewID(t *testing.T) {
	tests := []struct {
		rank     int
		expected string
	}{
		{1, "00001"},
		{42, "00042"},
		{99999, "99999"},
	}

	for _, tt := range tests {
		if got := NewID(tt.rank); got != tt.expected {
			t.Errorf("NewID(%d) = %s, want %s", tt.rank, got, tt.expected)
		}
	}
}

func TestBatchRun(t *testing.T) {
	dir := t.TempDir()
	red := color.NRGBA{R: 255, A: 255}

	broken := filepath.Join(dir, "broken.jpg")
	if err := os.WriteFile(broken, []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}

	mapping := models.IDMapping{
		"c": writePNG(t, dir, "c.png", makeImage(40, 80, solid(red))),
		"a": writePNG(t, dir, "a.png", makeImage(300, 100, solid(red))),
		"b": broken,
	}

	outDir := filepath.Join(dir, "data", "images")
	batch := &Batch{OutputDir: outDir}

	idMapping, report, err := batch.Run(context.Background(), mapping)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Total != 3 || report.Processed != 2 || len(report.Failures) != 1 {
		t.Errorf("Unexpected report: %+v", report)
	}
	if report.Failures[0].ImageID != "b" {
		t.Errorf("Expected failure for b, got %+v", report.Failures[0])
	}

	// The failed entry still consumes its rank
	expected := models.IDMapping{"a": "00001", "c": "00003"}
	if len(idMapping) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, idMapping)
	}
	for k, v := range expected {
		if idMapping[k] != v {
			t.Errorf("Expected %s -> %s, got %s", k, v, idMapping[k])
		}
	}

	for _, name := range []string{"00001.jpg", "00003.jpg"} {
		img, err := Decode(filepath.Join(outDir, name))
		if err != nil {
			t.Errorf("Expected %s: %v", name, err)
			continue
		}
		if img.Bounds() != image.Rect(0, 0, 128, 128) {
			t.Errorf("Expected 128x128 for %s, got %v", name, img.Bounds())
		}
	}
	if _, err := os.Stat(filepath.Join(outDir, "00002.jpg")); !os.IsNotExist(err) {
		t.Error("Expected no output for the failed image")
	}

	mappingPath := filepath.Join(dir, "data", "id_mapping.json")
	if report.MappingPath != mappingPath {
		t.Errorf("Expected mapping at %s, got %s", mappingPath, report.MappingPath)
	}
	saved, err := dataset.LoadMapping(mappingPath)
	if err != nil {
		t.Fatalf("Failed to load saved mapping: %v", err)
	}
	if saved["a"] != "00001" || saved["c"] != "00003" {
		t.Errorf("Unexpected saved mapping: %v", saved)
	}
}

func TestBatchRunCustomMappingPath(t *testing.T) {
	dir := t.TempDir()
	mappingPath := filepath.Join(dir, "custom", "ids.json")
	batch := &Batch{OutputDir: filepath.Join(dir, "out"), MappingPath: mappingPath, Size: image.Pt(32, 32)}

	src := writePNG(t, dir, "x.png", makeImage(64, 64, solid(color.White)))
	if _, _, err := batch.Run(context.Background(), models.IDMapping{"x": src}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	img, err := Decode(filepath.Join(dir, "out", "00001.jpg"))
	if err != nil {
		t.Fatalf("Expected output image: %v", err)
	}
	if img.Bounds().Dx() != 32 {
		t.Errorf("Expected 32px output, got %v", img.Bounds())
	}
	if _, err := os.Stat(mappingPath); err != nil {
		t.Errorf("Expected mapping at custom path: %v", err)
	}
}

func TestBatchRunCancelled(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := writePNG(t, dir, "x.png", makeImage(8, 8, solid(color.White)))
	batch := &Batch{OutputDir: filepath.Join(dir, "out")}

	idMapping, _, err := batch.Run(ctx, models.IDMapping{"x": src})
	if err == nil {
		t.Error("Expected context error, got nil")
	}
	if len(idMapping) != 0 {
		t.Errorf("Expected no processed images, got %v", idMapping)
	}
	if _, err := os.Stat(filepath.Join(dir, "id_mapping.json")); err != nil {
		t.Errorf("Expected the partial mapping to be saved: %v", err)
	}
}

func TestBatchRunDetectsDuplicates(t *testing.T) {
	dir := t.TempDir()
	stripes := func(x, y int) color.Color {
		if (x/10)%2 == 0 {
			return color.White
		}
		return color.Black
	}
	gradient := func(x, y int) color.Color {
		return color.Gray{Y: uint8(255 - y*255/99)}
	}

	mapping := models.IDMapping{
		"1": writePNG(t, dir, "1.png", makeImage(100, 100, stripes)),
		"2": writePNG(t, dir, "2.png", makeImage(200, 200, func(x, y int) color.Color { return stripes(x/2, y/2) })),
		"3": writePNG(t, dir, "3.png", makeImage(100, 100, gradient)),
	}

	batch := &Batch{OutputDir: filepath.Join(dir, "out"), DetectDuplicates: true}
	_, report, err := batch.Run(context.Background(), mapping)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(report.Duplicates) != 1 {
		t.Fatalf("Expected 1 duplicate, got %+v", report.Duplicates)
	}
	if report.Duplicates[0] != (Duplicate{NewID: "00002", Of: "00001"}) {
		t.Errorf("Unexpected duplicate: %+v", report.Duplicates[0])
	}
}
