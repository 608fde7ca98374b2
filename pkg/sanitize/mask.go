package sanitize

import (
	"image"
	"math/rand/v2"

	"github.com/gardar/ocrtrain/pkg/geometry"
	"github.com/gardar/ocrtrain/pkg/raster"
)

// canvasHalfWidth is half the width of the noise band around the paper tone.
const canvasHalfWidth = 4

// FitToShape keeps the pixels of frame covered by the filled shape (given in
// frame coordinates) and replaces all others with synthetic paper.
func FitToShape(frame *image.Gray, shape geometry.Shape, rng *rand.Rand) *image.Gray {
	w, h := frame.Bounds().Dx(), frame.Bounds().Dy()
	canvas := Canvas(w, h, raster.PaperTone(frame), rng)
	poly := make([]image.Point, len(shape))
	for i, p := range shape {
		poly[i] = image.Pt(p.X, p.Y)
	}
	return raster.Composite(frame, canvas, poly)
}

// Canvas synthesizes a w x h paper texture: uniform noise in
// [tone-4, tone+4) smoothed with a 5x5 box filter.
func Canvas(w, h int, tone uint8, rng *rand.Rand) *image.Gray {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	lo, hi := raster.ToneBand(tone, canvasHalfWidth)
	noise := image.NewGray(image.Rect(0, 0, w, h))
	for i := range noise.Pix {
		noise.Pix[i] = uint8(lo + rng.IntN(hi-lo))
	}
	return raster.BoxFilter(noise, 5)
}
