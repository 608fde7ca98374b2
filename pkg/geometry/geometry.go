// Package geometry implements the integer polygon math used to map OCR line
// outlines onto page rasters.
//
// The package provides:
//
// - Point and Shape, an ordered outline in image space (origin top-left, y grows downwards)
// - Box, an axis-aligned rectangle with inclusive minimum and exclusive maximum corners
// - Shape helpers: bounds, centroid, area, translation, containment, validity
// - MinAreaRect and IsRectangular to tell rectangle outlines from true polygons
package geometry

import (
	"image"
	"math"
)

// Point is a pixel coordinate.
type Point struct {
	X int
	Y int
}

// Shape is the outline of a text line as an ordered list of points.
// The last point connects back to the first one.
type Shape []Point

// Box represents a rectangle on the page
// X1, Y1 is the top-left corner, X2, Y2 the (exclusive) bottom-right corner.
type Box struct {
	X1 int // Left coordinate
	Y1 int // Top coordinate
	X2 int // Right coordinate
	Y2 int // Bottom coordinate
}

// NewBox creates a box from the two opposite corners.
func NewBox(x1, y1, x2, y2 int) Box {
	return Box{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Width returns the horizontal extent of the box.
func (b Box) Width() int { return b.X2 - b.X1 }

// Height returns the vertical extent of the box.
func (b Box) Height() int { return b.Y2 - b.Y1 }

// Empty reports whether the box covers no pixel.
func (b Box) Empty() bool { return b.X2 <= b.X1 || b.Y2 <= b.Y1 }

// Rect converts the box into an image.Rectangle.
func (b Box) Rect() image.Rectangle { return image.Rect(b.X1, b.Y1, b.X2, b.Y2) }

// Corners returns the four corners clockwise starting top-left.
func (b Box) Corners() Shape {
	return Shape{
		{b.X1, b.Y1},
		{b.X2, b.Y1},
		{b.X2, b.Y2},
		{b.X1, b.Y2},
	}
}

// RectShape builds the outline implied by a position and a size, which is
// how rectangle-only OCR formats describe lines.
func RectShape(x, y, width, height int) Shape {
	return NewBox(x, y, x+width, y+height).Corners()
}

// Bounds returns the axis-aligned bounding box of the shape.
func (s Shape) Bounds() Box {
	if len(s) == 0 {
		return Box{}
	}
	b := Box{X1: s[0].X, Y1: s[0].Y, X2: s[0].X, Y2: s[0].Y}
	for _, p := range s[1:] {
		b.X1 = min(b.X1, p.X)
		b.Y1 = min(b.Y1, p.Y)
		b.X2 = max(b.X2, p.X)
		b.Y2 = max(b.Y2, p.Y)
	}
	return b
}

// Centroid returns the mean of the shape's points.
func (s Shape) Centroid() (float64, float64) {
	if len(s) == 0 {
		return 0, 0
	}
	var sx, sy float64
	for _, p := range s {
		sx += float64(p.X)
		sy += float64(p.Y)
	}
	n := float64(len(s))
	return sx / n, sy / n
}

// Area returns the unsigned polygon area (shoelace formula).
func (s Shape) Area() float64 {
	if len(s) < 3 {
		return 0
	}
	var a float64
	for i := range s {
		p, q := s[i], s[(i+1)%len(s)]
		a += float64(p.X*q.Y - q.X*p.Y)
	}
	return math.Abs(a) / 2
}

// Translate returns a copy of the shape moved by dx, dy.
func (s Shape) Translate(dx, dy int) Shape {
	out := make(Shape, len(s))
	for i, p := range s {
		out[i] = Point{p.X + dx, p.Y + dy}
	}
	return out
}

// Contains reports whether (x, y) lies inside the shape (even-odd rule).
func (s Shape) Contains(x, y float64) bool {
	inside := false
	n := len(s)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := float64(s[i].X), float64(s[i].Y)
		xj, yj := float64(s[j].X), float64(s[j].Y)
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// Valid reports whether the shape is a usable polygon: at least three
// distinct points, a non-zero area and no self-intersection.
func (s Shape) Valid() bool {
	c := s.compact()
	if len(c) < 3 || c.Area() == 0 {
		return false
	}
	return !c.SelfIntersecting()
}

// SelfIntersecting reports whether two non-adjacent edges of the shape touch.
func (s Shape) SelfIntersecting() bool {
	c := s.compact()
	n := len(c)
	if n < 4 {
		return false
	}
	for i := 0; i < n; i++ {
		a1, a2 := c[i], c[(i+1)%n]
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // shares the closing vertex
			}
			if segmentsIntersect(a1, a2, c[j], c[(j+1)%n]) {
				return true
			}
		}
	}
	return false
}

// compact drops repeated consecutive points, including a closing point that
// repeats the first one.
func (s Shape) compact() Shape {
	out := make(Shape, 0, len(s))
	for _, p := range s {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}

func orientation(p, q, r Point) int {
	v := (q.Y-p.Y)*(r.X-q.X) - (q.X-p.X)*(r.Y-q.Y)
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func onSegment(p, q, r Point) bool {
	return q.X <= max(p.X, r.X) && q.X >= min(p.X, r.X) &&
		q.Y <= max(p.Y, r.Y) && q.Y >= min(p.Y, r.Y)
}

func segmentsIntersect(p1, q1, p2, q2 Point) bool {
	o1 := orientation(p1, q1, p2)
	o2 := orientation(p1, q1, q2)
	o3 := orientation(p2, q2, p1)
	o4 := orientation(p2, q2, q1)

	if o1 != o2 && o3 != o4 {
		return true
	}
	switch {
	case o1 == 0 && onSegment(p1, p2, q1):
		return true
	case o2 == 0 && onSegment(p1, q2, q1):
		return true
	case o3 == 0 && onSegment(p2, p1, q2):
		return true
	case o4 == 0 && onSegment(p2, q1, q2):
		return true
	}
	return false
}
