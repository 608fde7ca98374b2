package document

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/gardar/ocrtrain/pkg/geometry"
)

func parseDocumentAI(data []byte, pageNum int) ([]TextLine, error) {
	var doc documentaipb.Document
	if err := (protojson.UnmarshalOptions{DiscardUnknown: true}).Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode Document AI JSON: %w", err)
	}
	idx := max(pageNum, 1) - 1
	if idx >= len(doc.Pages) {
		return nil, fmt.Errorf("page %d out of range, document has %d", pageNum, len(doc.Pages))
	}
	page := doc.Pages[idx]

	lines := make([]TextLine, 0, len(page.Lines))
	for i, l := range page.Lines {
		id := fmt.Sprintf("l%d", i+1)
		line := TextLine{ID: id}

		var words []pageWord
		for j, token := range page.Tokens {
			if !isElementInParent(token.Layout, l.Layout) {
				continue
			}
			shape := layoutShape(token.Layout, page.Dimension)
			if len(shape) == 0 {
				return nil, fmt.Errorf("%w: token %d in line %q", ErrWordGeometry, j, id)
			}
			cx, cy := shape.Centroid()
			words = append(words, pageWord{text: textFromLayout(token.Layout, doc.Text), x: cx, y: cy})
		}
		slices.SortStableFunc(words, func(a, b pageWord) int { return cmp.Compare(a.x, b.x) })
		texts := make([]string, len(words))
		for k, w := range words {
			texts[k] = w.text
		}
		line.Words = tokens(texts)

		line.Shape = layoutShape(l.Layout, page.Dimension)
		line.Valid = line.Shape.Valid()
		lines = append(lines, line)
	}
	return lines, nil
}

// textFromLayout extracts text from a layout's text anchor segments
func textFromLayout(layout *documentaipb.Document_Page_Layout, fullText string) string {
	if layout == nil || layout.TextAnchor == nil {
		return ""
	}
	runes := []rune(fullText)
	var b strings.Builder
	for _, seg := range layout.TextAnchor.TextSegments {
		start := min(max(int(seg.StartIndex), 0), len(runes))
		end := min(max(int(seg.EndIndex), start), len(runes))
		b.WriteString(string(runes[start:end]))
	}
	return strings.ReplaceAll(b.String(), "\n", " ")
}

// isElementInParent reports whether the element's text range lies inside the
// parent's first text segment.
func isElementInParent(element, parent *documentaipb.Document_Page_Layout) bool {
	if element == nil || parent == nil ||
		element.TextAnchor == nil || parent.TextAnchor == nil ||
		len(element.TextAnchor.TextSegments) == 0 || len(parent.TextAnchor.TextSegments) == 0 {
		return false
	}
	e := element.TextAnchor.TextSegments[0]
	p := parent.TextAnchor.TextSegments[0]
	return e.StartIndex >= p.StartIndex && e.EndIndex <= p.EndIndex
}

// layoutShape converts a layout bounding poly to pixel coordinates. Absolute
// vertices win; normalized ones are scaled by the page dimension.
func layoutShape(layout *documentaipb.Document_Page_Layout, dim *documentaipb.Document_Page_Dimension) geometry.Shape {
	if layout == nil || layout.BoundingPoly == nil {
		return nil
	}
	poly := layout.BoundingPoly
	if len(poly.Vertices) > 0 {
		shape := make(geometry.Shape, len(poly.Vertices))
		for i, v := range poly.Vertices {
			shape[i] = geometry.Point{X: int(v.X), Y: int(v.Y)}
		}
		return shape
	}
	if len(poly.NormalizedVertices) == 0 || dim == nil {
		return nil
	}
	shape := make(geometry.Shape, len(poly.NormalizedVertices))
	for i, v := range poly.NormalizedVertices {
		shape[i] = geometry.Point{
			X: int(v.X*dim.Width + 0.5),
			Y: int(v.Y*dim.Height + 0.5),
		}
	}
	return shape
}
