package raster

import (
	"image"

	"gocv.io/x/gocv"
)

// GaussianBlur3 smooths the image with the 3x3 Gaussian kernel
// [1 2 1]^T [1 2 1] / 16, mirroring the border (reflect-101).
func GaussianBlur3(g *image.Gray) *image.Gray {
	return apply(g, func(src gocv.Mat, dst *gocv.Mat) {
		gocv.GaussianBlur(src, dst, image.Pt(3, 3), 0, 0, gocv.BorderReflect101)
	})
}

// BoxFilter replaces every pixel by the rounded mean of its size x size
// neighbourhood (reflect-101 border). size must be odd.
func BoxFilter(g *image.Gray, size int) *image.Gray {
	return apply(g, func(src gocv.Mat, dst *gocv.Mat) {
		gocv.Blur(src, dst, image.Pt(size, size))
	})
}

// Otsu computes the global threshold that maximises the between-class
// variance of the histogram. Pixels greater than the result are foreground
// (paper).
func Otsu(g *image.Gray) uint8 {
	t, _ := otsu(g)
	return t
}

func otsu(g *image.Gray) (uint8, *image.Gray) {
	var t float32
	bin := apply(g, func(src gocv.Mat, dst *gocv.Mat) {
		t = gocv.Threshold(src, dst, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
	})
	return uint8(t), bin
}

// Threshold maps pixels greater than t to 255 and all others to 0.
func Threshold(g *image.Gray, t uint8) *image.Gray {
	return apply(g, func(src gocv.Mat, dst *gocv.Mat) {
		gocv.Threshold(src, dst, float32(t), 255, gocv.ThresholdBinary)
	})
}

// Binarize blurs the image to suppress noise and splits paper (255) from
// ink (0) with the Otsu threshold.
func Binarize(g *image.Gray) *image.Gray {
	_, bin := otsu(GaussianBlur3(g))
	return bin
}
