package raster

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// toMat copies g into a new single channel 8 bit Mat owned by the caller.
func toMat(g *image.Gray) gocv.Mat {
	c := Clone(g)
	w, h := c.Bounds().Dx(), c.Bounds().Dy()
	if w == 0 || h == 0 {
		return gocv.NewMat()
	}
	view, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8U, c.Pix)
	if err != nil {
		// the buffer size always matches rows*cols for CV_8U
		panic(err)
	}
	defer view.Close()
	// the view borrows c.Pix, the clone owns its memory
	return view.Clone()
}

// fromMat copies a single channel 8 bit Mat into a grayscale image.
func fromMat(m gocv.Mat) *image.Gray {
	if m.Empty() {
		return image.NewGray(image.Rectangle{})
	}
	w, h := m.Cols(), m.Rows()
	return &image.Gray{Pix: m.ToBytes(), Stride: w, Rect: image.Rect(0, 0, w, h)}
}

// gray builds the scalar for a one channel Mat. OpenCV reads the first
// scalar component from the blue field.
func gray(v uint8) color.RGBA {
	return color.RGBA{R: v, G: v, B: v, A: 255}
}

// apply runs op on a Mat copy of g and returns the result as an image.
func apply(g *image.Gray, op func(src gocv.Mat, dst *gocv.Mat)) *image.Gray {
	src := toMat(g)
	defer src.Close()
	if src.Empty() {
		return image.NewGray(image.Rectangle{})
	}
	dst := gocv.NewMat()
	defer dst.Close()
	op(src, &dst)
	return fromMat(dst)
}
