// Package sanitize cleans cropped text line images before they are used as
// training samples.
//
// Sanitize runs the stages in a fixed order:
//
//  1. RemoveIntrusions paints over glyph parts of neighbouring lines that
//     reach into the crop from the top or bottom edge.
//  2. FitToShape hides everything outside a polygonal line outline behind
//     synthetic paper.
//  3. Deskew rotates the line when its dominant baseline is tilted.
//  4. Padding adds a border in the paper tone.
//
// Each stage can be switched off in Options. The input frame is never
// modified.
package sanitize

import (
	"image"
	"math/rand/v2"

	"github.com/gardar/ocrtrain/pkg/geometry"
	"github.com/gardar/ocrtrain/pkg/raster"
)

// Options selects and tunes the sanitizing stages.
type Options struct {
	// RemoveIntrusions enables stage 1. Box based OCR formats need it,
	// polygon outlines already exclude neighbouring lines.
	RemoveIntrusions bool
	// IntrusionTop and IntrusionBottom are the fractions of the frame height
	// next to each edge where intruding regions are searched. 0 disables
	// that edge.
	IntrusionTop    float64
	IntrusionBottom float64
	// Growth enlarges removed regions around their centroid.
	Growth float64

	// Mask enables stage 2 for outlines that are not axis-aligned rectangles.
	Mask bool

	// Deskew enables stage 3.
	Deskew bool

	// RotationThreshold is the minimum skew in degrees that gets corrected.
	RotationThreshold float64
	// MaxAngle drops detected segments that deviate more from horizontal.
	MaxAngle float64

	// Padding is the border width added around the result.
	Padding int

	// Rand feeds the synthetic background. nil uses a randomly seeded source.
	Rand *rand.Rand
}

// DefaultOptions returns the standard settings.
func DefaultOptions() Options {
	return Options{
		RemoveIntrusions:  true,
		IntrusionTop:      DefaultIntrusionRatio,
		IntrusionBottom:   DefaultIntrusionRatio,
		Growth:            DefaultGrowth,
		Mask:              true,
		Deskew:            true,
		RotationThreshold: DefaultRotationThreshold,
		MaxAngle:          DefaultMaxAngle,
	}
}

const (
	DefaultIntrusionRatio    = 0.125
	DefaultGrowth            = 1.49
	DefaultRotationThreshold = 0.1
	DefaultMaxAngle          = 10.0
)

// Report tells what the stages did to a frame.
type Report struct {
	IntrudersTop    int
	IntrudersBottom int
	Masked          bool
	Skew            Skew
}

// Sanitize runs all enabled stages on frame. shape is the line outline in
// page coordinates; frame is the crop of its bounding box.
func Sanitize(frame *image.Gray, shape geometry.Shape, opts Options) (*image.Gray, Report) {
	var report Report
	out := frame

	if opts.RemoveIntrusions {
		out, report.IntrudersTop, report.IntrudersBottom = RemoveIntrusions(out, opts.IntrusionTop, opts.IntrusionBottom, opts.Growth)
	}

	if opts.Mask && len(shape) > 0 && !geometry.IsRectangular(shape) {
		b := shape.Bounds()
		local := shape.Translate(-max(b.X1, 0), -max(b.Y1, 0))
		out = FitToShape(out, local, opts.Rand)
		report.Masked = true
	}

	if opts.Deskew {
		out, report.Skew = Deskew(out, opts.RotationThreshold, opts.MaxAngle)
	}

	out = Pad(out, opts.Padding)
	return out, report
}

// Pad adds a border of p pixels in the frame's paper tone. p <= 0 returns
// the frame unchanged.
func Pad(frame *image.Gray, p int) *image.Gray {
	if p <= 0 {
		return frame
	}
	return raster.Pad(frame, p, raster.PaperTone(frame))
}
