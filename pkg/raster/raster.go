// Package raster holds the single-channel image kernels used to cut and clean
// text line samples: decoding, cropping, blurring, thresholding, contours,
// polygon filling, edge and line detection, padding and rotation.
//
// The kernels run on OpenCV through gocv. All functions take and return
// *image.Gray and never modify their input unless the documentation says so.
package raster

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // register JPEG decoding
	_ "image/png"  // register PNG decoding
	"io"
	"os"

	"gocv.io/x/gocv"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF decoding
)

// Decode reads an encoded image (TIFF, JPEG or PNG) and converts it to 8 bit
// grayscale with its origin at (0,0). The detected format name is returned.
func Decode(r io.Reader) (*image.Gray, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return ToGray(img), format, nil
}

// Load decodes the image file at path into grayscale.
func Load(path string) (*image.Gray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, _, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// ToGray converts any image into a grayscale copy based at (0,0).
func ToGray(img image.Image) *image.Gray {
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
	return g
}

// Copy returns a private copy of the part of src inside r, re-based at (0,0).
// The rectangle is clipped to the source bounds first.
func Copy(src *image.Gray, r image.Rectangle) *image.Gray {
	r = r.Intersect(src.Bounds())
	dst := image.NewGray(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		so := src.PixOffset(r.Min.X, r.Min.Y+y)
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+r.Dx()], src.Pix[so:so+r.Dx()])
	}
	return dst
}

// Clone returns a deep copy of g based at (0,0).
func Clone(g *image.Gray) *image.Gray {
	return Copy(g, g.Bounds())
}

// Filled creates a w x h image where every pixel has the value v.
func Filled(w, h int, v uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = v
	}
	return g
}

// Equal reports whether two images have the same size and pixels.
func Equal(a, b *image.Gray) bool {
	if a.Bounds().Dx() != b.Bounds().Dx() || a.Bounds().Dy() != b.Bounds().Dy() {
		return false
	}
	w, h := a.Bounds().Dx(), a.Bounds().Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if at(a, x, y) != at(b, x, y) {
				return false
			}
		}
	}
	return true
}

// Pad adds a uniform border of p pixels filled with v around g.
func Pad(g *image.Gray, p int, v uint8) *image.Gray {
	if g.Bounds().Empty() {
		return Filled(g.Bounds().Dx()+2*p, g.Bounds().Dy()+2*p, v)
	}
	return apply(g, func(src gocv.Mat, dst *gocv.Mat) {
		gocv.CopyMakeBorder(src, dst, p, p, p, p, gocv.BorderConstant, gray(v))
	})
}

// at reads the pixel at frame-local coordinates.
func at(g *image.Gray, x, y int) uint8 {
	return g.Pix[g.PixOffset(g.Bounds().Min.X+x, g.Bounds().Min.Y+y)]
}

// GrayAt returns the value at frame-local coordinates as a color.
func GrayAt(g *image.Gray, x, y int) color.Gray {
	return color.Gray{Y: at(g, x, y)}
}
