// Package document reads OCR documents in ALTO, PAGE, hOCR and Document AI
// form into a uniform list of text lines with their page geometry.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	// ErrUnsupportedDialect is returned for documents whose root namespace
	// is not a known OCR dialect.
	ErrUnsupportedDialect = errors.New("unsupported document dialect")

	// ErrWordGeometry is returned when a word that must be ordered by its
	// position has no coordinates. The document is unusable.
	ErrWordGeometry = errors.New("word without coordinates")

	// ErrLineWordMismatch is returned when a line has no transcription of
	// its own while its words carry text.
	ErrLineWordMismatch = errors.New("line transcription out of sync with its words")

	// ErrImageNotFound is returned when the page image cannot be located.
	ErrImageNotFound = errors.New("page image not found")
)

// Options controls how lines are read.
type Options struct {
	MinChars int  // lines with fewer characters are dropped
	Reorder  bool // reverse word order of every line
	Page     int  // 1-based page for multi page dialects, 0 means the first
}

// Document is a parsed OCR document. It is not modified after parsing.
type Document struct {
	ID      string
	Dialect Dialect
	Lines   []TextLine
	// Image is the page image reference embedded in the document, if any.
	Image string
	// Skipped counts lines that had no usable geometry.
	Skipped []string
}

// Parse detects the dialect of data and reads its lines. Only valid lines
// that reach opts.MinChars characters are returned, in document order.
func Parse(data []byte, opts Options) (*Document, error) {
	dialect, err := Detect(data)
	if err != nil {
		return nil, err
	}

	doc := &Document{Dialect: dialect}
	var lines []TextLine
	switch dialect {
	case ALTO:
		lines, err = parseALTO(data)
	case PAGE:
		lines, doc.Image, err = parsePAGE(data)
	case HOCR:
		lines, doc.Image, err = parseHOCR(data, opts.Page)
	case DocumentAI:
		lines, err = parseDocumentAI(data, opts.Page)
	}
	if err != nil {
		return nil, err
	}

	for _, line := range lines {
		if !line.Valid {
			doc.Skipped = append(doc.Skipped, line.ID)
			continue
		}
		line.Reorder = opts.Reorder
		if utf8.RuneCountInString(line.Transcription()) < opts.MinChars {
			continue
		}
		doc.Lines = append(doc.Lines, line)
	}
	return doc, nil
}

// ParseFile reads and parses the document at path. The document id is
// derived from the file name.
func ParseFile(path string, opts Options) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	doc, err := Parse(data, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.ID = DocumentID(path)
	return doc, nil
}

// DocumentID derives a document id from a file name: the name without its
// extension. Purely numeric names become "page<number>" with leading
// zeros dropped.
func DocumentID(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if n, err := strconv.Atoi(stem); err == nil && n >= 0 {
		return "page" + strconv.Itoa(n)
	}
	return stem
}
