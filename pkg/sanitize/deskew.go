package sanitize

import (
	"image"
	"math"

	"github.com/gardar/ocrtrain/pkg/raster"
)

// Canny hysteresis thresholds for baseline detection.
const (
	cannyLow  = 100
	cannyHigh = 300
)

// rotationMargin is the temporary border that keeps rotated corners inside
// the image.
const rotationMargin = 50

// Skew is the outcome of baseline analysis.
type Skew struct {
	// Angle is the deviation of the dominant baseline from horizontal in
	// degrees, positive when the line descends to the right.
	Angle float64
	// Detected is false when no usable segment was found.
	Detected bool
	// Rotated is true when the frame was turned by Angle.
	Rotated bool
}

// Deskew measures the tilt of the dominant line structures of frame and,
// when it reaches threshold degrees, rotates the frame about its intensity
// centroid to level them. Segments more than maxAngle degrees off horizontal
// are ignored.
func Deskew(frame *image.Gray, threshold, maxAngle float64) (*image.Gray, Skew) {
	var skew Skew
	angle, ok := MeasureSkew(frame, maxAngle)
	if !ok {
		return frame, skew
	}
	skew.Angle, skew.Detected = angle, true
	if math.Abs(angle) < threshold {
		return frame, skew
	}

	w, h := frame.Bounds().Dx(), frame.Bounds().Dy()
	tone := raster.PaperTone(frame)
	cx, cy := raster.Centroid(frame)
	padded := raster.Pad(frame, rotationMargin, tone)
	rotated := raster.Rotate(padded, angle, cx+rotationMargin, cy+rotationMargin, tone)
	skew.Rotated = true
	return raster.Copy(rotated, image.Rect(rotationMargin, rotationMargin, rotationMargin+w, rotationMargin+h)), skew
}

// MeasureSkew returns the mean deviation from horizontal of the long line
// segments found in frame.
func MeasureSkew(frame *image.Gray, maxAngle float64) (float64, bool) {
	w, h := frame.Bounds().Dx(), frame.Bounds().Dy()
	if w == 0 || h == 0 {
		return 0, false
	}
	minLen := int(math.Round(float64(w) / 4))
	segments := raster.HoughLinesP(raster.Canny(frame, cannyLow, cannyHigh), raster.HoughParams{
		Rho:       1,
		Theta:     math.Pi / 180,
		Threshold: h / 2,
		MinLength: minLen,
		MaxGap:    minLen,
	})

	var sum float64
	n := 0
	for _, s := range segments {
		a := segmentAngle(s)
		if math.Abs(90-a) < maxAngle {
			sum += a
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return 90 - sum/float64(n), true
}

// segmentAngle is the angle between the segment, taken left to right, and
// the vertical axis, in degrees. Horizontal segments give 90.
func segmentAngle(s raster.Segment) float64 {
	if s.X2 < s.X1 {
		s.X1, s.Y1, s.X2, s.Y2 = s.X2, s.Y2, s.X1, s.Y1
	}
	return math.Atan2(float64(s.X2-s.X1), float64(s.Y2-s.Y1)) * 180 / math.Pi
}
