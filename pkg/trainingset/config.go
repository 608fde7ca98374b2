package trainingset

import (
	"log/slog"

	"github.com/gardar/ocrtrain/pkg/resolution"
	"github.com/gardar/ocrtrain/pkg/sanitize"
)

// Config holds the settings for turning one OCR document into training pairs
type Config struct {
	OutputDir string // Pairs are written to OutputDir/<document id>/
	MinChars  int    // Lines with fewer characters are not written
	Summary   bool   // Write <document id>_summary.gt.txt
	Reorder   bool   // Reverse the word order of every line
	Page      int    // Page of multi page hOCR and Document AI files (1-based)

	Sanitize          bool    // Run the sanitize stages on every crop
	IntrusionTop      float64 // Top band ratio for intrusion removal (0 disables)
	IntrusionBottom   float64 // Bottom band ratio for intrusion removal (0 disables)
	RotationThreshold float64 // Minimum skew in degrees that gets corrected
	Padding           int     // Border in pixels added around each line
	Binarize          bool    // Store line images as black and white

	DPI         int    // Density used when the page image declares none
	ImageFormat string // "tif" or "png"
	Seed        uint64 // Seed for synthetic backgrounds, 0 picks one at random

	Logger   *slog.Logger // nil = slog.Default()
	Observer Observer     // Optional, told about every written and skipped line
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() Config {
	return Config{
		OutputDir:         ".",
		MinChars:          1,
		Sanitize:          true,
		IntrusionTop:      sanitize.DefaultIntrusionRatio,
		IntrusionBottom:   sanitize.DefaultIntrusionRatio,
		RotationThreshold: sanitize.DefaultRotationThreshold,
		DPI:               resolution.DefaultDPI,
		ImageFormat:       FormatTIFF,
	}
}

const (
	FormatTIFF = "tif"
	FormatPNG  = "png"
)

// getLogger returns the configured logger, defaulting to slog.Default() if nil.
func getLogger(cfg Config) *slog.Logger {
	if cfg.Logger == nil {
		return slog.Default()
	}
	return cfg.Logger
}

// sanitizeOptions maps the config onto the sanitize stages.
func (c Config) sanitizeOptions(removeIntrusions bool) sanitize.Options {
	opts := sanitize.DefaultOptions()
	opts.RemoveIntrusions = removeIntrusions
	opts.IntrusionTop = c.IntrusionTop
	opts.IntrusionBottom = c.IntrusionBottom
	opts.RotationThreshold = c.RotationThreshold
	opts.Padding = c.Padding
	return opts
}
