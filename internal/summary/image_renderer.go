package summary

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	canvasWidth  = 800
	canvasHeight = 600
	maxEntries   = 5
)

// ImageRenderer rasterizes the summary to a fixed-size PNG at a well-known
// cache path, overwritten on every successful cycle. The bitmap face ships
// with the binary, so font loading can never fail.
type ImageRenderer struct {
	path    string
	log     *zap.Logger
	printer *message.Printer
}

func NewImageRenderer(path string, log *zap.Logger) *ImageRenderer {
	return &ImageRenderer{
		path:    path,
		log:     log.Named("summary.renderer"),
		printer: message.NewPrinter(language.English),
	}
}

// Path returns the artifact location, shared with the HTTP image endpoint.
func (r *ImageRenderer) Path() string { return r.path }

func (r *ImageRenderer) Render(input Input) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, canvasWidth, canvasHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	black := color.RGBA{A: 255}
	gray := color.RGBA{R: 128, G: 128, B: 128, A: 255}

	drawText(img, 50, 60, black, "Country Data Summary")
	drawText(img, 50, 130, black, fmt.Sprintf("Total Countries: %d", input.TotalCountries))
	drawText(img, 50, 180, black, fmt.Sprintf("Top %d Countries by GDP:", maxEntries))

	y := 220
	entries := input.Top
	if len(entries) > maxEntries {
		entries = entries[:maxEntries]
	}
	for _, entry := range entries {
		drawText(img, 70, y, black, fmt.Sprintf("%d. %s: $%s", entry.Rank, entry.Name, r.formatGDP(entry.GDP)))
		y += 40
	}

	timestamp := input.CompletedAt.UTC().Format("2006-01-02 15:04:05") + " UTC"
	drawText(img, 50, 510, gray, "Last Refreshed: "+timestamp)

	file, err := os.Create(r.path)
	if err != nil {
		return fmt.Errorf("create summary image: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("encode summary image: %w", err)
	}

	r.log.Info("summary image written",
		zap.String("path", r.path),
		zap.Int("total_countries", input.TotalCountries),
		zap.Int("top_entries", len(entries)),
	)
	return nil
}

// formatGDP renders a grouped, two-decimal figure, or N/A when no GDP could
// be derived.
func (r *ImageRenderer) formatGDP(gdp float64) string {
	if gdp == 0 {
		return "N/A"
	}
	return r.printer.Sprintf("%v", number.Decimal(gdp,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}

func drawText(img draw.Image, x, y int, col color.Color, text string) {
	drawer := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
}
