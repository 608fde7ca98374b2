package document

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"

	"github.com/gardar/ocrtrain/pkg/hocr"
)

// Dialect identifies the markup family of an OCR document.
type Dialect int

const (
	Unknown Dialect = iota
	ALTO
	PAGE
	HOCR
	DocumentAI
)

func (d Dialect) String() string {
	switch d {
	case ALTO:
		return "ALTO"
	case PAGE:
		return "PAGE"
	case HOCR:
		return "hOCR"
	case DocumentAI:
		return "DocumentAI"
	default:
		return "unknown"
	}
}

// Rectangular reports whether the dialect only describes axis aligned boxes.
func (d Dialect) Rectangular() bool {
	return d == ALTO || d == HOCR
}

// NeedsIntrusionRemoval reports whether line crops of this dialect typically
// contain ascenders and descenders of neighbouring lines. Box-only dialects
// do, polygon dialects cut around the glyphs already.
func (d Dialect) NeedsIntrusionRemoval() bool {
	return d.Rectangular()
}

// Namespaces maps root element namespace URIs to their dialect.
var Namespaces = map[string]Dialect{
	"http://www.loc.gov/standards/alto/ns-v2#":                        ALTO,
	"http://www.loc.gov/standards/alto/ns-v3#":                        ALTO,
	"http://www.loc.gov/standards/alto/ns-v4#":                        ALTO,
	"http://schema.primaresearch.org/PAGE/gts/pagecontent/2013-07-15": PAGE,
	"http://schema.primaresearch.org/PAGE/gts/pagecontent/2019-07-15": PAGE,
	"http://www.w3.org/1999/xhtml":                                    HOCR,
}

// Detect resolves the dialect of raw document data. JSON input is taken to
// be a Document AI document; XML input is looked up by the namespace of its
// root element. Markup that is not well-formed XML but carries hOCR page
// classes is accepted as hOCR.
func Detect(data []byte) (Dialect, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return DocumentAI, nil
	}

	ns, err := rootNamespace(data)
	if err != nil {
		if hocr.LooksLikeHOCR(data) {
			return HOCR, nil
		}
		return Unknown, fmt.Errorf("%w: %v", ErrUnsupportedDialect, err)
	}
	if d, ok := Namespaces[ns]; ok {
		return d, nil
	}
	if ns == "" && hocr.LooksLikeHOCR(data) {
		return HOCR, nil
	}
	return Unknown, fmt.Errorf("%w: namespace %q", ErrUnsupportedDialect, ns)
}

func rootNamespace(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = charset.NewReaderLabel
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return "", errors.New("no root element")
		}
		if err != nil {
			return "", err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se.Name.Space, nil
		}
	}
}
