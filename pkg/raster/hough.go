package raster

import (
	"image"

	"gocv.io/x/gocv"
)

// Segment is a straight line segment in pixel coordinates.
type Segment struct {
	X1, Y1, X2, Y2 int
}

// HoughParams configures the probabilistic Hough transform.
type HoughParams struct {
	Rho       float64 // distance resolution in pixels
	Theta     float64 // angle resolution in radians
	Threshold int     // minimum accumulator votes
	MinLength int     // minimum segment length
	MaxGap    int     // maximum gap between points on the same segment
}

// HoughLinesP finds line segments in an edge image (non-zero pixels are edge
// points) with the progressive probabilistic Hough transform. The point
// order comes from OpenCV's fixed-seed generator, so results are
// reproducible.
func HoughLinesP(edges *image.Gray, p HoughParams) []Segment {
	if p.Rho <= 0 || p.Theta <= 0 {
		return nil
	}
	src := toMat(edges)
	defer src.Close()
	if src.Empty() {
		return nil
	}
	lines := gocv.NewMat()
	defer lines.Close()
	gocv.HoughLinesPWithParams(src, &lines, float32(p.Rho), float32(p.Theta), max(p.Threshold, 1),
		float32(p.MinLength), float32(p.MaxGap))

	segments := make([]Segment, 0, lines.Rows())
	for i := 0; i < lines.Rows(); i++ {
		v := lines.GetVeciAt(i, 0)
		segments = append(segments, Segment{int(v[0]), int(v[1]), int(v[2]), int(v[3])})
	}
	return segments
}
