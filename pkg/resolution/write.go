package resolution

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"io"

	"golang.org/x/image/tiff"
)

// TIFF tags that carry the density.
const (
	tagXResolution    = 282
	tagYResolution    = 283
	tagResolutionUnit = 296

	typeShort    = 3
	typeRational = 5

	unitInch = 2
)

var errNoIFD = errors.New("tiff: no image file directory")

// EncodeTIFF writes img as a deflate compressed TIFF with res stored in its
// resolution tags.
func EncodeTIFF(w io.Writer, img image.Image, res Resolution) error {
	var buf bytes.Buffer
	if err := tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
		return fmt.Errorf("failed to encode tiff: %w", err)
	}
	data := buf.Bytes()
	if res.Valid() {
		if err := patchTIFFResolution(data, res); err != nil {
			return err
		}
	}
	_, err := w.Write(data)
	return err
}

// patchTIFFResolution rewrites the resolution entries of the first IFD in
// place.
func patchTIFFResolution(data []byte, res Resolution) error {
	if len(data) < 8 {
		return errNoIFD
	}
	var order binary.ByteOrder
	switch string(data[:4]) {
	case "II*\x00":
		order = binary.LittleEndian
	case "MM\x00*":
		order = binary.BigEndian
	default:
		return errNoIFD
	}

	ifd := int(order.Uint32(data[4:8]))
	if ifd+2 > len(data) {
		return errNoIFD
	}
	n := int(order.Uint16(data[ifd:]))
	for i := 0; i < n; i++ {
		e := ifd + 2 + 12*i
		if e+12 > len(data) {
			return errNoIFD
		}
		tag := order.Uint16(data[e:])
		typ := order.Uint16(data[e+2:])
		switch {
		case (tag == tagXResolution || tag == tagYResolution) && typ == typeRational:
			off := int(order.Uint32(data[e+8:]))
			if off+8 > len(data) {
				return errNoIFD
			}
			v := res.X
			if tag == tagYResolution {
				v = res.Y
			}
			order.PutUint32(data[off:], uint32(v))
			order.PutUint32(data[off+4:], 1)
		case tag == tagResolutionUnit && typ == typeShort:
			order.PutUint16(data[e+8:], unitInch)
		}
	}
	return nil
}

// EncodePNG writes img as PNG with a pHYs chunk holding res.
func EncodePNG(w io.Writer, img image.Image, res Resolution) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	data := buf.Bytes()
	if !res.Valid() {
		_, err := w.Write(data)
		return err
	}

	// signature (8) + IHDR chunk (4 length + 4 type + 13 data + 4 crc)
	const ihdrEnd = 8 + 25
	if len(data) < ihdrEnd {
		return errors.New("png: truncated header")
	}
	if _, err := w.Write(data[:ihdrEnd]); err != nil {
		return err
	}
	if _, err := w.Write(physChunk(res)); err != nil {
		return err
	}
	_, err := w.Write(data[ihdrEnd:])
	return err
}

func physChunk(res Resolution) []byte {
	chunk := make([]byte, 4+4+9+4)
	binary.BigEndian.PutUint32(chunk[0:], 9)
	copy(chunk[4:], "pHYs")
	binary.BigEndian.PutUint32(chunk[8:], dpiToPPM(res.X))
	binary.BigEndian.PutUint32(chunk[12:], dpiToPPM(res.Y))
	chunk[16] = 1 // metre
	binary.BigEndian.PutUint32(chunk[17:], crc32.ChecksumIEEE(chunk[4:17]))
	return chunk
}

func dpiToPPM(dpi int) uint32 {
	return uint32(float64(dpi)/0.0254 + 0.5)
}
