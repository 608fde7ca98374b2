// Package trainingset turns an OCR document and its page image into line
// level training pairs: one image per text line next to a ground truth text
// file holding the line's transcription.
//
// A Set is opened from a document path and an optional image path. Errors
// that make the whole document unusable are returned by Open, before
// anything is written. Create then processes the lines one by one; a line
// that cannot be turned into a pair is logged and skipped.
package trainingset

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gardar/ocrtrain/pkg/document"
	"github.com/gardar/ocrtrain/pkg/frame"
	"github.com/gardar/ocrtrain/pkg/raster"
	"github.com/gardar/ocrtrain/pkg/resolution"
	"github.com/gardar/ocrtrain/pkg/sanitize"
)

// ErrEmptyTranscription is reported for lines without any text.
var ErrEmptyTranscription = errors.New("empty transcription")

// Pair describes one written training pair.
type Pair struct {
	DocumentID string
	LineID     string
	Text       string
	ImagePath  string
	TextPath   string
	Report     sanitize.Report
}

// Observer is told about the progress of a Set. Implementations must be
// safe for concurrent use when several sets share one.
type Observer interface {
	DocumentStarted(doc *document.Document, imagePath string)
	LineWritten(docID string, pair Pair)
	LineSkipped(docID, lineID string, reason error)
	DocumentFinished(docID string, written int, err error)
}

// Set is a parsed document ready to be written as training pairs.
type Set struct {
	cfg       Config
	doc       *document.Document
	imagePath string
	log       *slog.Logger
}

// Open parses the document at xmlPath and locates its page image. An empty
// imagePath is resolved from the reference inside the document.
func Open(xmlPath, imagePath string, cfg Config) (*Set, error) {
	switch cfg.ImageFormat {
	case FormatTIFF, FormatPNG:
	default:
		return nil, fmt.Errorf("unsupported image format %q", cfg.ImageFormat)
	}
	if cfg.MinChars < 0 {
		return nil, fmt.Errorf("min chars must not be negative, got %d", cfg.MinChars)
	}

	doc, err := document.ParseFile(xmlPath, document.Options{
		MinChars: cfg.MinChars,
		Reorder:  cfg.Reorder,
		Page:     cfg.Page,
	})
	if err != nil {
		return nil, err
	}

	if imagePath == "" {
		imagePath, err = document.ResolveImagePath(xmlPath, doc)
		if err != nil {
			return nil, err
		}
	} else if _, err := os.Stat(imagePath); err != nil {
		return nil, fmt.Errorf("%w: %s", document.ErrImageNotFound, imagePath)
	}

	return &Set{
		cfg:       cfg,
		doc:       doc,
		imagePath: imagePath,
		log:       getLogger(cfg).With("document", doc.ID),
	}, nil
}

// Document returns the parsed document.
func (s *Set) Document() *document.Document { return s.doc }

// ImagePath returns the page image the set crops its lines from.
func (s *Set) ImagePath() string { return s.imagePath }

// Dir returns the directory the pairs are written to.
func (s *Set) Dir() string { return filepath.Join(s.cfg.OutputDir, s.doc.ID) }

// Create writes a training pair for every line of the document and returns
// the pairs in document order.
func (s *Set) Create() (pairs []Pair, err error) {
	obs := s.cfg.Observer
	if obs != nil {
		obs.DocumentStarted(s.doc, s.imagePath)
		defer func() { obs.DocumentFinished(s.doc.ID, len(pairs), err) }()
	}
	for _, id := range s.doc.Skipped {
		s.log.Debug("line without usable outline", "line", id)
	}

	page, err := raster.Load(s.imagePath)
	if err != nil {
		return nil, err
	}
	res := resolution.ReadOr(s.imagePath, resolution.Resolution{X: s.cfg.DPI, Y: s.cfg.DPI})
	if !res.Valid() {
		res = resolution.Default()
	}
	if err := os.MkdirAll(s.Dir(), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	rng := s.rand()
	removeIntrusions := s.doc.Dialect.NeedsIntrusionRemoval()
	w := writer{dir: s.Dir(), format: s.cfg.ImageFormat, res: res}

	for _, line := range s.doc.Lines {
		pair, err := s.line(page, line, removeIntrusions, rng, w)
		if err != nil {
			s.log.Warn("skipping line", "line", line.ID, "reason", err)
			if obs != nil {
				obs.LineSkipped(s.doc.ID, line.ID, err)
			}
			continue
		}
		pairs = append(pairs, pair)
		if obs != nil {
			obs.LineWritten(s.doc.ID, pair)
		}
	}

	if s.cfg.Summary {
		if err := w.summary(s.doc.ID, pairs); err != nil {
			return pairs, err
		}
	}
	s.log.Info("wrote training pairs", "pairs", len(pairs), "lines", len(s.doc.Lines), "dir", s.Dir())
	return pairs, nil
}

func (s *Set) line(page *image.Gray, line document.TextLine, removeIntrusions bool, rng *rand.Rand, w writer) (Pair, error) {
	text := strings.TrimSpace(line.Transcription())
	if text == "" {
		return Pair{}, ErrEmptyTranscription
	}

	crop, err := frame.Extract(page, line.Shape)
	if err != nil {
		return Pair{}, err
	}

	var report sanitize.Report
	switch {
	case s.cfg.Sanitize:
		opts := s.cfg.sanitizeOptions(removeIntrusions)
		opts.Rand = rng
		crop, report = sanitize.Sanitize(crop, line.Shape, opts)
	case s.cfg.Padding > 0:
		crop = sanitize.Pad(crop, s.cfg.Padding)
	}
	if s.cfg.Binarize {
		crop = raster.Binarize(crop)
	}

	pair := Pair{
		DocumentID: s.doc.ID,
		LineID:     line.ID,
		Text:       text,
		Report:     report,
	}
	if err := w.pair(&pair, crop); err != nil {
		return Pair{}, err
	}
	return pair, nil
}

func (s *Set) rand() *rand.Rand {
	seed := s.cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
