package document

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/gardar/ocrtrain/pkg/geometry"
)

func parsePAGE(data []byte) ([]TextLine, string, error) {
	root, err := parseTree(data)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse PAGE: %w", err)
	}

	var image string
	if p := root.child("Page"); p != nil {
		image = p.attrOr("imageFilename", "")
	}

	var (
		lines   []TextLine
		lineErr error
	)
	var walk func(n *node, direction string)
	walk = func(n *node, direction string) {
		if lineErr != nil {
			return
		}
		direction = n.attrOr("readingDirection", direction)
		if n.name() == "TextLine" {
			var line TextLine
			line, lineErr = pageLine(n, direction)
			lines = append(lines, line)
			return
		}
		for i := range n.Children {
			walk(&n.Children[i], direction)
		}
	}
	walk(root, "")
	if lineErr != nil {
		return nil, "", lineErr
	}
	return lines, image, nil
}

// pageWord is a word with its text and the center of its outline.
type pageWord struct {
	text string
	x, y float64
}

func pageLine(n *node, direction string) (TextLine, error) {
	id := n.attrOr("id", "")
	line := TextLine{
		ID:       id,
		Vertical: direction == "top-to-bottom" || direction == "bottom-to-top",
	}
	own := strings.TrimSpace(unicodeText(n))

	wordNodes := n.children("Word")
	if own == "" && len(wordNodes) > 0 {
		return line, fmt.Errorf("%w: line %q has no text but %d words", ErrLineWordMismatch, id, len(wordNodes))
	}

	if len(wordNodes) > 0 {
		words := make([]pageWord, 0, len(wordNodes))
		for _, w := range wordNodes {
			pts, ok := coords(w)
			if !ok || len(pts) == 0 {
				return line, fmt.Errorf("%w: word %q in line %q", ErrWordGeometry, w.attrOr("id", ""), id)
			}
			cx, cy := pts.Centroid()
			words = append(words, pageWord{text: unicodeText(w), x: cx, y: cy})
		}
		slices.SortStableFunc(words, func(a, b pageWord) int {
			if line.Vertical {
				return cmp.Compare(a.y, b.y)
			}
			return cmp.Compare(a.x, b.x)
		})
		texts := make([]string, len(words))
		for i, w := range words {
			texts[i] = w.text
		}
		line.Words = tokens(texts)
	} else {
		line.Words = tokens([]string{own})
	}

	if shape, ok := coords(n); ok {
		line.Shape = shape
	}
	line.Valid = line.Shape.Valid()
	return line, nil
}

// unicodeText returns the text of the element's own TextEquiv.
func unicodeText(n *node) string {
	te := n.child("TextEquiv")
	if te == nil {
		return ""
	}
	u := te.child("Unicode")
	if u == nil {
		return ""
	}
	return u.Text
}

// coords reads the Coords points of an element, "x1,y1 x2,y2 ...".
func coords(n *node) (geometry.Shape, bool) {
	c := n.child("Coords")
	if c == nil {
		return nil, false
	}
	points, ok := c.attr("points")
	if !ok {
		return nil, false
	}
	return parsePoints(points)
}

func parsePoints(s string) (geometry.Shape, bool) {
	var shape geometry.Shape
	for _, pair := range strings.Fields(s) {
		xs, ys, found := strings.Cut(pair, ",")
		if !found {
			return nil, false
		}
		x, errX := strconv.ParseFloat(xs, 64)
		y, errY := strconv.ParseFloat(ys, 64)
		if errX != nil || errY != nil {
			return nil, false
		}
		shape = append(shape, geometry.Point{X: int(x), Y: int(y)})
	}
	return shape, true
}
