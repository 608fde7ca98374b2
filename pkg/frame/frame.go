// Package frame cuts the region of a single text line out of a page raster.
package frame

import (
	"errors"
	"image"

	"github.com/gardar/ocrtrain/pkg/geometry"
	"github.com/gardar/ocrtrain/pkg/raster"
)

// ErrEmptyFrame is returned when a line's region does not overlap the page.
var ErrEmptyFrame = errors.New("empty frame")

// Extract returns a private copy of the part of page covered by shape,
// re-based at (0,0). The crop is clipped to the page.
func Extract(page *image.Gray, shape geometry.Shape) (*image.Gray, error) {
	r := Region(shape).Intersect(page.Bounds())
	if r.Empty() {
		return nil, ErrEmptyFrame
	}
	return raster.Copy(page, r), nil
}

// Region returns the page rectangle that Extract would cut for shape before
// clipping: the bounding box of the outline. Rectangles and polygons are cut
// the same way; the parts of a polygon's box outside the outline are masked
// by the sanitize stage.
func Region(shape geometry.Shape) image.Rectangle {
	return shape.Bounds().Rect()
}
