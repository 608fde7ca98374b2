// Package proof renders written training pairs into a PDF proof sheet.
//
// Every line image is placed on the sheet with its ground truth text right
// below it, so a reviewer can compare crops and transcriptions side by side
// without opening hundreds of small files.
//
// Main Functions:
//
// - Write: renders a list of pairs as one PDF
package proof

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"io"
	"log/slog"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/gardar/ocrtrain/pkg/raster"
	"github.com/gardar/ocrtrain/pkg/trainingset"
)

// ErrNoPairs is returned when there is nothing to render.
var ErrNoPairs = errors.New("no pairs to render")

// Config holds the sheet layout.
type Config struct {
	Title     string
	Margin    float64 // Page margin in points
	Gap       float64 // Space between two entries in points
	MaxHeight float64 // Line images are scaled down to at most this height
	Debug     bool    // Frame every line image
	Logger    *slog.Logger
	Font      FontConfig
}

// FontConfig contains font settings for the transcriptions
type FontConfig struct {
	Name  string  // Font name (e.g., "Helvetica")
	Style string  // Font style ("", "B", "I", "BI")
	Size  float64 // Font size in points
}

// DefaultFont is a core font, so no font files are needed
var DefaultFont = FontConfig{
	Name: "Helvetica",
	Size: 10,
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Title:     "Training pairs",
		Margin:    36,
		Gap:       12,
		MaxHeight: 60,
		Font:      DefaultFont,
	}
}

func getLogger(cfg Config) *slog.Logger {
	if cfg.Logger == nil {
		return slog.Default()
	}
	return cfg.Logger
}

// Write renders pairs on A4 pages and writes the PDF to w. Pairs whose image
// cannot be read are left out and logged.
func Write(w io.Writer, pairs []trainingset.Pair, cfg Config) error {
	if len(pairs) == 0 {
		return ErrNoPairs
	}
	log := getLogger(cfg)

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetTitle(cfg.Title, true)
	pdf.SetCreator("linepairs", true)
	pdf.SetMargins(cfg.Margin, cfg.Margin, cfg.Margin)
	pdf.SetAutoPageBreak(false, cfg.Margin)
	pdf.SetFont(cfg.Font.Name, cfg.Font.Style, cfg.Font.Size)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	usable := pageW - 2*cfg.Margin
	textH := cfg.Font.Size * 1.4

	encodingErrors := 0
	drawn := 0
	for i, p := range pairs {
		data, err := pngData(p.ImagePath)
		if err != nil {
			log.Warn("leaving line out of the proof sheet", "line", p.LineID, "reason", err)
			continue
		}

		iw, ih := fitBox(data.width, data.height, usable, cfg.MaxHeight)
		if pdf.GetY()+ih+textH > pageH-cfg.Margin {
			pdf.AddPage()
		}
		x, y := cfg.Margin, pdf.GetY()

		name := fmt.Sprintf("line%d", i)
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data.png))
		pdf.ImageOptions(name, x, y, iw, ih, false, opts, 0, "")
		if cfg.Debug {
			pdf.SetDrawColor(255, 0, 0)
			pdf.Rect(x, y, iw, ih, "D")
		}

		// core fonts only cover ISO-8859-1
		label := p.LineID + "  " + p.Text
		latin1, err := charmap.ISO8859_1.NewEncoder().String(label)
		if err != nil {
			encodingErrors++
			latin1 = label
		}
		pdf.SetXY(x, y+ih)
		pdf.CellFormat(usable, textH, latin1, "", 1, "L", false, 0, "")
		pdf.SetY(pdf.GetY() + cfg.Gap)
		drawn++
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to render proof sheet: %w", err)
	}
	if drawn == 0 {
		return ErrNoPairs
	}
	if encodingErrors > 0 {
		log.Warn("transcriptions outside ISO-8859-1", "lines", encodingErrors, "of", drawn)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to generate PDF: %w", err)
	}
	return nil
}

type lineImage struct {
	png           []byte
	width, height int
}

// pngData reads a line image and re-encodes it as PNG, the PDF writer does
// not embed TIFF.
func pngData(path string) (lineImage, error) {
	g, err := raster.Load(path)
	if err != nil {
		return lineImage{}, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, g); err != nil {
		return lineImage{}, fmt.Errorf("failed to encode png: %w", err)
	}
	b := g.Bounds()
	return lineImage{png: buf.Bytes(), width: b.Dx(), height: b.Dy()}, nil
}

// fitBox scales a w x h pixel image to fit maxW x maxH points, one pixel per
// point at most.
func fitBox(w, h int, maxW, maxH float64) (float64, float64) {
	fw, fh := float64(w), float64(h)
	scale := min(1, maxW/fw, maxH/fh)
	return fw * scale, fh * scale
}
