package raster

import (
	"image"
	"math"

	"gocv.io/x/gocv"
)

// Rotate turns g by angle degrees (counter-clockwise as seen on screen)
// around (cx, cy) with bilinear interpolation. The output keeps the input
// size; areas uncovered by the rotated source are filled with bg.
func Rotate(g *image.Gray, angle, cx, cy float64, bg uint8) *image.Gray {
	rad := angle * math.Pi / 180
	alpha, beta := math.Cos(rad), math.Sin(rad)
	m := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV64F)
	defer m.Close()
	for i, v := range [6]float64{
		alpha, beta, (1-alpha)*cx - beta*cy,
		-beta, alpha, beta*cx + (1-alpha)*cy,
	} {
		m.SetDoubleAt(i/3, i%3, v)
	}

	return apply(g, func(src gocv.Mat, dst *gocv.Mat) {
		size := image.Pt(src.Cols(), src.Rows())
		gocv.WarpAffineWithParams(src, dst, m, size, gocv.InterpolationLinear, gocv.BorderConstant, gray(bg))
	})
}
