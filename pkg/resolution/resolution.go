// Package resolution reads the pixel density of page images and writes it
// into the line images cut from them.
package resolution

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/rwcarlsen/goexif/exif"
)

// DefaultDPI is assumed when an image carries no usable density.
const DefaultDPI = 300

// Resolution is a pixel density in dots per inch.
type Resolution struct {
	X int
	Y int
}

// Default returns DefaultDPI in both directions.
func Default() Resolution {
	return Resolution{X: DefaultDPI, Y: DefaultDPI}
}

// Valid reports whether both densities are positive.
func (r Resolution) Valid() bool {
	return r.X > 0 && r.Y > 0
}

var (
	pngSignature = []byte("\x89PNG\r\n\x1a\n")
	tiffLE       = []byte("II*\x00")
	tiffBE       = []byte("MM\x00*")
)

// Read returns the density stored in the image file at path. TIFF files are
// read through their resolution tags, JPEG files through the JFIF header or
// EXIF, PNG files through the pHYs chunk. Anything missing or unreadable
// yields the default density.
func Read(path string) Resolution {
	return ReadOr(path, Default())
}

// ReadOr is Read with a caller supplied fallback density.
func ReadOr(path string, fallback Resolution) Resolution {
	f, err := os.Open(path)
	if err != nil {
		return fallback
	}
	defer f.Close()

	res, ok := read(f)
	if !ok || !res.Valid() {
		return fallback
	}
	return res
}

func read(f io.ReadSeeker) (Resolution, bool) {
	head := make([]byte, 8)
	if _, err := io.ReadFull(f, head); err != nil {
		return Resolution{}, false
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Resolution{}, false
	}

	switch {
	case bytes.HasPrefix(head, tiffLE), bytes.HasPrefix(head, tiffBE):
		return fromExif(f)
	case head[0] == 0xff && head[1] == 0xd8:
		if res, ok := fromJFIF(bufio.NewReader(f)); ok {
			return res, true
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return Resolution{}, false
		}
		return fromExif(f)
	case bytes.Equal(head, pngSignature):
		return fromPNG(bufio.NewReader(f))
	}
	return Resolution{}, false
}

// fromExif reads XResolution/YResolution from a TIFF file or the EXIF block
// of a JPEG.
func fromExif(r io.Reader) (Resolution, bool) {
	x, err := exif.Decode(r)
	if err != nil {
		return Resolution{}, false
	}
	xr, okX := rational(x, exif.XResolution)
	yr, okY := rational(x, exif.YResolution)
	if !okX || !okY {
		return Resolution{}, false
	}
	if tag, err := x.Get(exif.ResolutionUnit); err == nil {
		// 3 is centimetres
		if unit, err := tag.Int(0); err == nil && unit == 3 {
			xr *= 2.54
			yr *= 2.54
		}
	}
	return Resolution{X: int(math.Round(xr)), Y: int(math.Round(yr))}, true
}

func rational(x *exif.Exif, name exif.FieldName) (float64, bool) {
	tag, err := x.Get(name)
	if err != nil {
		return 0, false
	}
	num, den, err := tag.Rat2(0)
	if err != nil || den == 0 {
		return 0, false
	}
	return float64(num) / float64(den), true
}

// fromJFIF reads the density of a JFIF APP0 segment.
func fromJFIF(r *bufio.Reader) (Resolution, bool) {
	var soi [2]byte
	if _, err := io.ReadFull(r, soi[:]); err != nil {
		return Resolution{}, false
	}
	for {
		var marker [4]byte
		if _, err := io.ReadFull(r, marker[:]); err != nil || marker[0] != 0xff {
			return Resolution{}, false
		}
		size := int(binary.BigEndian.Uint16(marker[2:])) - 2
		if size < 0 {
			return Resolution{}, false
		}
		if marker[1] == 0xda { // start of scan, no more headers
			return Resolution{}, false
		}
		seg := make([]byte, size)
		if _, err := io.ReadFull(r, seg); err != nil {
			return Resolution{}, false
		}
		if marker[1] != 0xe0 || len(seg) < 12 || !bytes.HasPrefix(seg, []byte("JFIF\x00")) {
			continue
		}
		units := seg[7]
		x := float64(binary.BigEndian.Uint16(seg[8:10]))
		y := float64(binary.BigEndian.Uint16(seg[10:12]))
		switch units {
		case 1:
		case 2:
			x, y = x*2.54, y*2.54
		default:
			return Resolution{}, false
		}
		return Resolution{X: int(math.Round(x)), Y: int(math.Round(y))}, true
	}
}

// fromPNG reads the pHYs chunk of a PNG stream.
func fromPNG(r *bufio.Reader) (Resolution, bool) {
	if _, err := r.Discard(len(pngSignature)); err != nil {
		return Resolution{}, false
	}
	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return Resolution{}, false
		}
		length := int(binary.BigEndian.Uint32(hdr[:4]))
		switch string(hdr[4:]) {
		case "pHYs":
			if length != 9 {
				return Resolution{}, false
			}
			var data [9]byte
			if _, err := io.ReadFull(r, data[:]); err != nil {
				return Resolution{}, false
			}
			if data[8] != 1 { // unit is not the metre
				return Resolution{}, false
			}
			return Resolution{
				X: int(math.Round(float64(binary.BigEndian.Uint32(data[0:4])) * 0.0254)),
				Y: int(math.Round(float64(binary.BigEndian.Uint32(data[4:8])) * 0.0254)),
			}, true
		case "IDAT", "IEND":
			return Resolution{}, false
		}
		// skip data and CRC
		if _, err := r.Discard(length + 4); err != nil {
			return Resolution{}, false
		}
	}
}
