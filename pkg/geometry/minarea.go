package geometry

import (
	"image"
	"math"

	"gocv.io/x/gocv"
)

// RotatedRect is the minimum-area rectangle enclosing a shape.
type RotatedRect struct {
	CenterX float64
	CenterY float64
	Width   float64
	Height  float64
	Angle   float64 // orientation in degrees, normalised to (0, 90]
}

func (s Shape) pointVector() gocv.PointVector {
	pts := make([]image.Point, len(s))
	for i, p := range s {
		pts[i] = image.Pt(p.X, p.Y)
	}
	return gocv.NewPointVectorFromPoints(pts)
}

// MinAreaRect finds the smallest rotated rectangle enclosing the shape.
func MinAreaRect(s Shape) RotatedRect {
	if len(s.compact()) < 3 {
		b := s.Bounds()
		return RotatedRect{
			CenterX: float64(b.X1+b.X2) / 2,
			CenterY: float64(b.Y1+b.Y2) / 2,
			Width:   float64(b.Width()),
			Height:  float64(b.Height()),
			Angle:   90,
		}
	}
	pv := s.pointVector()
	defer pv.Close()
	r := gocv.MinAreaRect2(pv)
	return RotatedRect{
		CenterX: float64(r.Center.X),
		CenterY: float64(r.Center.Y),
		Width:   float64(r.Width),
		Height:  float64(r.Height),
		Angle:   normaliseAngle(r.Angle),
	}
}

// normaliseAngle maps an orientation onto (0, 90]; OpenCV releases differ
// in the range they report.
func normaliseAngle(deg float64) float64 {
	a := math.Mod(deg, 90)
	if a < 0 {
		a += 90
	}
	if a <= 1e-6 || math.Abs(a-90) < 1e-6 {
		return 90
	}
	return a
}

// IsRectangular reports whether the shape is an axis-aligned rectangle: its
// minimum-area rectangle has a 90 degree orientation and the outline fills
// its bounds completely.
func IsRectangular(s Shape) bool {
	if len(s) < 4 {
		return false
	}
	r := MinAreaRect(s)
	if r.Angle != 90 {
		return false
	}
	pv := s.pointVector()
	defer pv.Close()
	b := s.Bounds()
	return math.Abs(gocv.ContourArea(pv)-float64(b.Width()*b.Height())) < 0.5
}
