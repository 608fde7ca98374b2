package sanitize

import (
	"image"

	"github.com/gardar/ocrtrain/pkg/raster"
)

// RemoveIntrusions finds ink regions that touch the top (bottom) edge of the
// frame with their centroid inside the top (bottom) band of the given height
// fraction, and paints them, enlarged by growth, in the paper tone. It
// returns the cleaned copy and the number of regions removed at each edge.
func RemoveIntrusions(frame *image.Gray, top, bottom, growth float64) (*image.Gray, int, int) {
	h := frame.Bounds().Dy()
	out := raster.Clone(frame)
	if h == 0 || (top <= 0 && bottom <= 0) {
		return out, 0, 0
	}

	topEdge := float64(h) * top
	bottomEdge := float64(h) - float64(h)*bottom

	var intruders []raster.Region
	nTop, nBottom := 0, 0
	for _, r := range raster.InkRegions(raster.Binarize(frame)) {
		switch {
		case top > 0 && r.TouchesTop() && r.CY < topEdge:
			nTop++
			intruders = append(intruders, r)
		case bottom > 0 && r.TouchesBottom(h) && r.CY > bottomEdge:
			nBottom++
			intruders = append(intruders, r)
		}
	}
	if len(intruders) == 0 {
		return out, 0, 0
	}

	tone := raster.PaperTone(frame)
	for _, r := range intruders {
		raster.FillRegion(out, r, growth, tone)
	}
	return out, nTop, nBottom
}
