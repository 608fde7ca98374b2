package raster

import (
	"cmp"
	"image"
	"math"
	"slices"

	"gocv.io/x/gocv"
)

// Region is an outer contour of a group of connected ink (zero valued)
// pixels of a binary image.
type Region struct {
	Contour []image.Point
	Bounds  image.Rectangle
	CX, CY  float64 // centroid of the filled contour
}

// TouchesTop reports whether the region reaches the first row.
func (r Region) TouchesTop() bool { return r.Bounds.Min.Y == 0 }

// TouchesBottom reports whether the region reaches the last row of an image
// with the given height.
func (r Region) TouchesBottom(height int) bool { return r.Bounds.Max.Y == height }

// InkRegions traces the outer contours of the ink regions of a binary image
// as produced by Binarize. Holes belong to their enclosing region. Regions
// are sorted by the top-left corner of their bounds, row first.
func InkRegions(bin *image.Gray) []Region {
	src := toMat(bin)
	defer src.Close()
	if src.Empty() {
		return nil
	}
	ink := gocv.NewMat()
	defer ink.Close()
	gocv.BitwiseNot(src, &ink)

	contours := gocv.FindContours(ink, gocv.RetrievalExternal, gocv.ChainApproxNone)
	defer contours.Close()

	regions := make([]Region, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		pv := contours.At(i)
		r := Region{
			Contour: pv.ToPoints(),
			Bounds:  gocv.BoundingRect(pv),
		}
		r.CX, r.CY = contourCentroid(r.Contour, r.Bounds)
		regions = append(regions, r)
	}
	slices.SortFunc(regions, func(a, b Region) int {
		if c := cmp.Compare(a.Bounds.Min.Y, b.Bounds.Min.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.Bounds.Min.X, b.Bounds.Min.X)
	})
	return regions
}

// contourCentroid fills the contour into a mask over its bounds and returns
// the center of mass of the mask in image coordinates.
func contourCentroid(contour []image.Point, bounds image.Rectangle) (float64, float64) {
	local := make([]image.Point, len(contour))
	for i, p := range contour {
		local[i] = p.Sub(bounds.Min)
	}
	mask := gocv.Zeros(bounds.Dy(), bounds.Dx(), gocv.MatTypeCV8U)
	defer mask.Close()
	pts := gocv.NewPointsVectorFromPoints([][]image.Point{local})
	defer pts.Close()
	gocv.FillPoly(&mask, pts, gray(255))

	m := gocv.Moments(mask, true)
	if m["m00"] == 0 {
		return float64(bounds.Min.X), float64(bounds.Min.Y)
	}
	return float64(bounds.Min.X) + m["m10"]/m["m00"], float64(bounds.Min.Y) + m["m01"]/m["m00"]
}

// FillRegion paints the region, holes included, enlarged by growth around
// its centroid, with the value v. Pixels outside dst are ignored.
func FillRegion(dst *image.Gray, r Region, growth float64, v uint8) {
	if len(r.Contour) == 0 {
		return
	}
	growth = max(growth, 1)
	scaled := make([]image.Point, len(r.Contour))
	for i, p := range r.Contour {
		scaled[i] = image.Pt(
			int(math.Round(r.CX+(float64(p.X)-r.CX)*growth)),
			int(math.Round(r.CY+(float64(p.Y)-r.CY)*growth)),
		)
	}
	FillPolygon(dst, scaled, v)
}

// FillPolygon paints the polygon, outline included, with the value v. dst is
// modified in place; pixels outside it are ignored.
func FillPolygon(dst *image.Gray, poly []image.Point, v uint8) {
	if len(poly) == 0 {
		return
	}
	m := toMat(dst)
	defer m.Close()
	if m.Empty() {
		return
	}
	pts := gocv.NewPointsVectorFromPoints([][]image.Point{poly})
	defer pts.Close()
	gocv.FillPoly(&m, pts, gray(v))

	filled := fromMat(m)
	w := filled.Bounds().Dx()
	for y := 0; y < filled.Bounds().Dy(); y++ {
		o := dst.PixOffset(dst.Bounds().Min.X, dst.Bounds().Min.Y+y)
		copy(dst.Pix[o:o+w], filled.Pix[y*filled.Stride:y*filled.Stride+w])
	}
}

// Composite returns a copy of bg with the pixels of fg that fall inside poly.
// Both images must have the same size.
func Composite(fg, bg *image.Gray, poly []image.Point) *image.Gray {
	if len(poly) == 0 {
		return Clone(bg)
	}
	src := toMat(fg)
	defer src.Close()
	out := toMat(bg)
	defer out.Close()
	if src.Empty() || out.Empty() {
		return Clone(bg)
	}
	mask := gocv.Zeros(src.Rows(), src.Cols(), gocv.MatTypeCV8U)
	defer mask.Close()
	pts := gocv.NewPointsVectorFromPoints([][]image.Point{poly})
	defer pts.Close()
	gocv.FillPoly(&mask, pts, gray(255))

	src.CopyToWithMask(&out, mask)
	return fromMat(out)
}
