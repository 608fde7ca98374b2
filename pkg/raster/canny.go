package raster

import (
	"image"

	"gocv.io/x/gocv"
)

// Canny detects edges with a 3x3 Sobel operator, non-maximum suppression and
// hysteresis between low and high (L1 gradient magnitude). Edge pixels are
// 255, everything else 0.
func Canny(g *image.Gray, low, high float64) *image.Gray {
	return apply(g, func(src gocv.Mat, dst *gocv.Mat) {
		gocv.Canny(src, dst, float32(low), float32(high))
	})
}
