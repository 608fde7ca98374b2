package document

import (
	"fmt"

	"github.com/gardar/ocrtrain/pkg/geometry"
	"github.com/gardar/ocrtrain/pkg/hocr"
)

func parseHOCR(data []byte, pageNum int) ([]TextLine, string, error) {
	doc, err := hocr.ParseHOCR(data)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse hOCR: %w", err)
	}
	idx := max(pageNum, 1) - 1
	if idx >= len(doc.Pages) {
		return nil, "", fmt.Errorf("page %d out of range, document has %d", pageNum, len(doc.Pages))
	}
	page := doc.Pages[idx]

	lines := make([]TextLine, 0, len(page.Lines))
	for i, l := range page.Lines {
		line := TextLine{ID: l.ID}
		if line.ID == "" {
			line.ID = fmt.Sprintf("line_%d", i+1)
		}
		words := make([]string, len(l.Words))
		for j, w := range l.Words {
			words[j] = w.Text
		}
		line.Words = tokens(words)
		if l.HasBBox {
			b := geometry.NewBox(int(l.BBox.X1), int(l.BBox.Y1), int(l.BBox.X2), int(l.BBox.Y2))
			line.Shape = b.Corners()
		}
		line.Valid = line.Shape.Valid()
		lines = append(lines, line)
	}
	return lines, page.ImageName, nil
}
