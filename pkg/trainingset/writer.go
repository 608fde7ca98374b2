package trainingset

import (
	"bufio"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/gardar/ocrtrain/pkg/resolution"
)

const (
	textExt    = ".gt.txt"
	summaryTag = "summary"
)

// writer stores pairs of one document in its output directory.
type writer struct {
	dir    string
	format string
	res    resolution.Resolution
}

// pair writes the line image and its transcription and fills in the paths.
// A half written pair is removed again.
func (w writer) pair(p *Pair, img *image.Gray) error {
	base := filepath.Join(w.dir, p.DocumentID+"_"+p.LineID)
	imagePath := base + "." + w.format
	textPath := base + textExt

	if err := w.image(imagePath, img); err != nil {
		os.Remove(imagePath)
		return err
	}
	if err := os.WriteFile(textPath, []byte(p.Text), 0o644); err != nil {
		os.Remove(imagePath)
		return fmt.Errorf("failed to write transcription: %w", err)
	}
	p.ImagePath, p.TextPath = imagePath, textPath
	return nil
}

func (w writer) image(path string, img *image.Gray) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create line image: %w", err)
	}
	bw := bufio.NewWriter(f)
	switch w.format {
	case FormatPNG:
		err = resolution.EncodePNG(bw, img, w.res)
	default:
		err = resolution.EncodeTIFF(bw, img, w.res)
	}
	if err == nil {
		err = bw.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write line image: %w", err)
	}
	return nil
}

// summary writes the transcriptions of all written pairs, one per line.
func (w writer) summary(docID string, pairs []Pair) error {
	path := filepath.Join(w.dir, docID+"_"+summaryTag+textExt)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create summary: %w", err)
	}
	bw := bufio.NewWriter(f)
	for _, p := range pairs {
		bw.WriteString(p.Text)
		bw.WriteByte('\n')
	}
	err = bw.Flush()
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}
