package summary

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestRenderWritesFixedSizePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "summary.png")
	renderer := NewImageRenderer(path, zap.NewNop())

	err := renderer.Render(Input{
		TotalCountries: 250,
		Top: []Entry{
			{Rank: 1, Name: "Nigeria", GDP: 187500000.5},
			{Rank: 2, Name: "Ghana", GDP: 92000000},
			{Rank: 3, Name: "Kenya", GDP: 0},
		},
		CompletedAt: time.Date(2025, 6, 1, 12, 30, 45, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open artifact: %v", err)
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		t.Fatalf("decode artifact: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 800 || bounds.Dy() != 600 {
		t.Fatalf("expected 800x600 canvas, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestRenderOverwritesPreviousArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.png")
	renderer := NewImageRenderer(path, zap.NewNop())

	for i := 0; i < 2; i++ {
		if err := renderer.Render(Input{TotalCountries: i, CompletedAt: time.Now()}); err != nil {
			t.Fatalf("render %d: %v", i, err)
		}
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected artifact at %s: %v", path, err)
	}
}

func TestFormatGDP(t *testing.T) {
	renderer := NewImageRenderer(filepath.Join(t.TempDir(), "s.png"), zap.NewNop())

	if got := renderer.formatGDP(0); got != "N/A" {
		t.Fatalf("expected N/A for zero GDP, got %q", got)
	}
	if got := renderer.formatGDP(1234567.891); got != "1,234,567.89" {
		t.Fatalf("expected grouped formatting, got %q", got)
	}
}
