package raster

import (
	"image"

	"gocv.io/x/gocv"
)

const (
	// SplitThreshold separates paper from ink when estimating the paper tone.
	SplitThreshold = 127

	// DefaultTone is used when an image has no pixel brighter than the split.
	DefaultTone uint8 = 184
)

// PaperTone estimates the background gray of a scan: the median of all
// pixels strictly brighter than SplitThreshold.
func PaperTone(g *image.Gray) uint8 {
	return PaperToneAbove(g, SplitThreshold)
}

// PaperToneAbove is PaperTone with a custom split threshold.
func PaperToneAbove(g *image.Gray, split int) uint8 {
	var hist [256]int
	w, h := g.Bounds().Dx(), g.Bounds().Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			hist[at(g, x, y)]++
		}
	}
	for i := 0; i <= split && i < 256; i++ {
		hist[i] = 0
	}
	m, ok := histogramMedian(hist)
	if !ok {
		return DefaultTone
	}
	return uint8(m)
}

// histogramMedian returns the median of the histogram population; for an
// even count the two middle values are averaged.
func histogramMedian(hist [256]int) (float64, bool) {
	n := 0
	for _, c := range hist {
		n += c
	}
	if n == 0 {
		return 0, false
	}
	lo, hi := -1, -1
	seen := 0
	for v, c := range hist {
		if c == 0 {
			continue
		}
		if lo < 0 && seen+c > (n-1)/2 {
			lo = v
		}
		if seen+c > n/2 {
			hi = v
			break
		}
		seen += c
	}
	return float64(lo+hi) / 2, true
}

// ToneBand returns the half-open range [tone-halfWidth, tone+halfWidth)
// clamped to the valid pixel range [0, 256).
func ToneBand(tone uint8, halfWidth int) (int, int) {
	lo := max(int(tone)-halfWidth, 0)
	hi := min(int(tone)+halfWidth, 256)
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}

// Centroid returns the intensity-weighted center of the image (first order
// moments divided by the zeroth moment). A black image yields (0,0).
func Centroid(g *image.Gray) (float64, float64) {
	src := toMat(g)
	defer src.Close()
	if src.Empty() {
		return 0, 0
	}
	m := gocv.Moments(src, false)
	m00 := m["m00"]
	if m00 == 0 {
		m00 = 1
	}
	return m["m10"] / m00, m["m01"] / m00
}
