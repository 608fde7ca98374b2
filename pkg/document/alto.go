package document

import (
	"fmt"

	"github.com/gardar/ocrtrain/pkg/geometry"
)

func parseALTO(data []byte) ([]TextLine, error) {
	root, err := parseTree(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ALTO: %w", err)
	}

	var lines []TextLine
	var walk func(n *node)
	walk = func(n *node) {
		if n.name() == "TextLine" {
			lines = append(lines, altoLine(n))
			return
		}
		for i := range n.Children {
			walk(&n.Children[i])
		}
	}
	walk(root)
	return lines, nil
}

func altoLine(n *node) TextLine {
	line := TextLine{ID: n.attrOr("ID", "")}

	var words []string
	for _, s := range n.children("String") {
		words = append(words, s.attrOr("CONTENT", ""))
	}
	line.Words = tokens(words)

	x, okX := n.number("HPOS")
	y, okY := n.number("VPOS")
	w, okW := n.number("WIDTH")
	h, okH := n.number("HEIGHT")
	if okX && okY && okW && okH {
		line.Shape = geometry.RectShape(x, y, w, h)
	}
	line.Valid = line.Shape.Valid()
	return line
}
