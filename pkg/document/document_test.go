package document

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const altoDoc = `<?xml version="1.0" encoding="UTF-8"?>
<alto xmlns="http://www.loc.gov/standards/alto/ns-v4#">
  <Layout>
    <Page ID="p1" WIDTH="1000" HEIGHT="800">
      <PrintSpace>
        <TextBlock ID="b1">
          <TextLine ID="l1" HPOS="10" VPOS="10" WIDTH="300" HEIGHT="40">
            <String CONTENT="abc"/>
          </TextLine>
          <TextLine ID="l2" HPOS="10.7" VPOS="60" WIDTH="300" HEIGHT="40.9">
            <String CONTENT="abcde"/><SP/><String CONTENT="fghi"/>
          </TextLine>
          <TextLine ID="l3" HPOS="10" VPOS="110" WIDTH="600" HEIGHT="40">
            <String CONTENT="abcdefghij"/><SP/><String CONTENT="abcdefghij"/><SP/><String CONTENT="abcdefghijklmnopqr"/>
          </TextLine>
          <TextLine ID="l4" VPOS="160" WIDTH="600" HEIGHT="40">
            <String CONTENT="no horizontal position here"/>
          </TextLine>
        </TextBlock>
      </PrintSpace>
    </Page>
  </Layout>
</alto>`

func TestParseALTOMinChars(t *testing.T) {
	doc, err := Parse([]byte(altoDoc), Options{MinChars: 8})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if doc.Dialect != ALTO {
		t.Errorf("Dialect = %v, want ALTO", doc.Dialect)
	}
	if len(doc.Lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(doc.Lines))
	}
	if got := doc.Lines[0].Transcription(); got != "abcde fghi" {
		t.Errorf("first transcription = %q", got)
	}
	if len(doc.Lines[1].Transcription()) != 40 {
		t.Errorf("second transcription has %d chars, want 40", len(doc.Lines[1].Transcription()))
	}
	if len(doc.Skipped) != 1 || doc.Skipped[0] != "l4" {
		t.Errorf("Skipped = %v, want [l4]", doc.Skipped)
	}

	b := doc.Lines[0].Shape.Bounds()
	if b.X1 != 10 || b.Y1 != 60 || b.Width() != 300 || b.Height() != 40 {
		t.Errorf("decimal box = %+v, want truncated 10,60 300x40", b)
	}
}

func TestParseReorder(t *testing.T) {
	doc, err := Parse([]byte(altoDoc), Options{MinChars: 1, Reorder: true})
	if err != nil {
		t.Fatal(err)
	}
	if got := doc.Lines[1].Transcription(); got != "fghi abcde" {
		t.Errorf("reordered transcription = %q, want %q", got, "fghi abcde")
	}
}

const pageHeader = `<?xml version="1.0" encoding="UTF-8"?>
<PcGts xmlns="http://schema.primaresearch.org/PAGE/gts/pagecontent/2019-07-15">
  <Page imageFilename="images/0001.tif" imageWidth="1000" imageHeight="800">
    <TextRegion id="r1">
      <Coords points="0,0 1000,0 1000,800 0,800"/>
`

const pageFooter = `
    </TextRegion>
  </Page>
</PcGts>`

func pageDoc(lines string) []byte {
	return []byte(pageHeader + lines + pageFooter)
}

func TestParsePAGEWordsOrderedByPosition(t *testing.T) {
	data := pageDoc(`
      <TextLine id="tl1">
        <Coords points="10,10 200,12 200,50 10,48"/>
        <Word id="w2"><Coords points="110,10 200,10 200,50 110,50"/><TextEquiv><Unicode>world&#x200f;</Unicode></TextEquiv></Word>
        <Word id="w1"><Coords points="10,10 100,10 100,50 10,50"/><TextEquiv><Unicode>&#xfeff;hello</Unicode></TextEquiv></Word>
        <TextEquiv><Unicode> hello world </Unicode></TextEquiv>
      </TextLine>
      <TextLine id="tl2">
        <Coords points="10,60 200,60 200,100 10,100"/>
        <TextEquiv><Unicode>&#x200e;single</Unicode></TextEquiv>
      </TextLine>
      <TextLine id="tl3">
        <Coords points="10,110 20,110"/>
        <TextEquiv><Unicode>degenerate</Unicode></TextEquiv>
      </TextLine>`)

	doc, err := Parse(data, Options{MinChars: 1})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if doc.Image != "images/0001.tif" {
		t.Errorf("Image = %q", doc.Image)
	}
	if len(doc.Lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(doc.Lines))
	}
	if got := doc.Lines[0].Transcription(); got != "hello world" {
		t.Errorf("first transcription = %q", got)
	}
	if got := doc.Lines[1].Transcription(); got != "single" {
		t.Errorf("second transcription = %q", got)
	}
	if len(doc.Lines[0].Shape) != 4 {
		t.Errorf("polygon has %d points, want 4", len(doc.Lines[0].Shape))
	}
	if len(doc.Skipped) != 1 || doc.Skipped[0] != "tl3" {
		t.Errorf("Skipped = %v, want [tl3]", doc.Skipped)
	}
}

func TestParsePAGEVerticalLine(t *testing.T) {
	data := pageDoc(`
      <TextLine id="tl1" readingDirection="top-to-bottom">
        <Coords points="10,10 50,10 50,300 10,300"/>
        <Word id="w1"><Coords points="10,150 50,150 50,300 10,300"/><TextEquiv><Unicode>second</Unicode></TextEquiv></Word>
        <Word id="w2"><Coords points="10,10 50,10 50,140 10,140"/><TextEquiv><Unicode>first</Unicode></TextEquiv></Word>
        <TextEquiv><Unicode>first second</Unicode></TextEquiv>
      </TextLine>`)

	doc, err := Parse(data, Options{MinChars: 1})
	if err != nil {
		t.Fatal(err)
	}
	if !doc.Lines[0].Vertical {
		t.Error("line should be vertical")
	}
	if got := doc.Lines[0].Transcription(); got != "first second" {
		t.Errorf("transcription = %q, want %q", got, "first second")
	}
}

func TestParsePAGEWordWithoutCoords(t *testing.T) {
	data := pageDoc(`
      <TextLine id="tl7">
        <Coords points="10,10 200,10 200,50 10,50"/>
        <Word id="w1"><Coords points="10,10 100,10 100,50 10,50"/><TextEquiv><Unicode>ok</Unicode></TextEquiv></Word>
        <Word id="w9"><TextEquiv><Unicode>lost</Unicode></TextEquiv></Word>
        <TextEquiv><Unicode>ok lost</Unicode></TextEquiv>
      </TextLine>`)

	_, err := Parse(data, Options{MinChars: 1})
	if !errors.Is(err, ErrWordGeometry) {
		t.Fatalf("err = %v, want ErrWordGeometry", err)
	}
	if !strings.Contains(err.Error(), "w9") || !strings.Contains(err.Error(), "tl7") {
		t.Errorf("error %q should name word w9 and line tl7", err)
	}
}

func TestParsePAGELineWordMismatch(t *testing.T) {
	data := pageDoc(`
      <TextLine id="tl1">
        <Coords points="10,10 200,10 200,50 10,50"/>
        <Word id="w1"><Coords points="10,10 100,10 100,50 10,50"/><TextEquiv><Unicode>orphan</Unicode></TextEquiv></Word>
        <TextEquiv><Unicode>  </Unicode></TextEquiv>
      </TextLine>`)

	_, err := Parse(data, Options{MinChars: 1})
	if !errors.Is(err, ErrLineWordMismatch) {
		t.Fatalf("err = %v, want ErrLineWordMismatch", err)
	}
}

func TestParsePAGELineWordMismatchEmptyWords(t *testing.T) {
	data := pageDoc(`
      <TextLine id="tl4">
        <Coords points="10,10 200,10 200,50 10,50"/>
        <Word id="w1"><Coords points="10,10 100,10 100,50 10,50"/><TextEquiv><Unicode></Unicode></TextEquiv></Word>
        <Word id="w2"><Coords points="110,10 200,10 200,50 110,50"/><TextEquiv><Unicode> </Unicode></TextEquiv></Word>
        <TextEquiv><Unicode></Unicode></TextEquiv>
      </TextLine>`)

	_, err := Parse(data, Options{MinChars: 1})
	if !errors.Is(err, ErrLineWordMismatch) {
		t.Fatalf("err = %v, want ErrLineWordMismatch", err)
	}
	if !strings.Contains(err.Error(), "tl4") {
		t.Errorf("error %q does not name the line", err)
	}
}

const hocrDoc = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
 <head><title></title></head>
 <body>
  <div class="ocr_page" id="page_1" title='image "scan.png"; bbox 0 0 800 600'>
   <span class="ocr_line" id="line_1_1" title="bbox 20 30 420 70">
    <span class="ocrx_word" id="word_1_1" title="bbox 20 30 200 70">Góðan</span>
    <span class="ocrx_word" id="word_1_2" title="bbox 220 30 420 70">daginn</span>
   </span>
  </div>
 </body>
</html>`

func TestParseHOCR(t *testing.T) {
	doc, err := Parse([]byte(hocrDoc), Options{MinChars: 1})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if doc.Dialect != HOCR || !doc.Dialect.Rectangular() {
		t.Errorf("Dialect = %v", doc.Dialect)
	}
	if doc.Image != "scan.png" {
		t.Errorf("Image = %q", doc.Image)
	}
	if len(doc.Lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(doc.Lines))
	}
	line := doc.Lines[0]
	if line.Transcription() != "Góðan daginn" {
		t.Errorf("transcription = %q", line.Transcription())
	}
	b := line.Shape.Bounds()
	if b.X1 != 20 || b.Y1 != 30 || b.X2 != 420 || b.Y2 != 70 {
		t.Errorf("bounds = %+v", b)
	}
}

const docAIDoc = `{
  "text": "Hello world\nSecond\n",
  "pages": [{
    "pageNumber": 1,
    "dimension": {"width": 1000, "height": 500, "unit": "pixels"},
    "lines": [
      {"layout": {
        "textAnchor": {"textSegments": [{"startIndex": "0", "endIndex": "12"}]},
        "boundingPoly": {"normalizedVertices": [{"x": 0.01, "y": 0.02}, {"x": 0.5, "y": 0.02}, {"x": 0.5, "y": 0.1}, {"x": 0.01, "y": 0.1}]}
      }},
      {"layout": {
        "textAnchor": {"textSegments": [{"startIndex": "12", "endIndex": "19"}]},
        "boundingPoly": {"vertices": [{"x": 10, "y": 60}, {"x": 300, "y": 60}, {"x": 300, "y": 100}, {"x": 10, "y": 100}]}
      }}
    ],
    "tokens": [
      {"layout": {
        "textAnchor": {"textSegments": [{"startIndex": "6", "endIndex": "12"}]},
        "boundingPoly": {"vertices": [{"x": 260, "y": 10}, {"x": 500, "y": 10}, {"x": 500, "y": 50}, {"x": 260, "y": 50}]}
      }},
      {"layout": {
        "textAnchor": {"textSegments": [{"startIndex": "0", "endIndex": "6"}]},
        "boundingPoly": {"vertices": [{"x": 10, "y": 10}, {"x": 250, "y": 10}, {"x": 250, "y": 50}, {"x": 10, "y": 50}]}
      }},
      {"layout": {
        "textAnchor": {"textSegments": [{"startIndex": "12", "endIndex": "19"}]},
        "boundingPoly": {"vertices": [{"x": 10, "y": 60}, {"x": 300, "y": 60}, {"x": 300, "y": 100}, {"x": 10, "y": 100}]}
      }}
    ]
  }]
}`

func TestParseDocumentAI(t *testing.T) {
	doc, err := Parse([]byte(docAIDoc), Options{MinChars: 1})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if doc.Dialect != DocumentAI || doc.Dialect.NeedsIntrusionRemoval() {
		t.Errorf("Dialect = %v", doc.Dialect)
	}
	if len(doc.Lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(doc.Lines))
	}
	if got := doc.Lines[0].Transcription(); got != "Hello world" {
		t.Errorf("first transcription = %q", got)
	}
	if doc.Lines[0].ID != "l1" || doc.Lines[1].ID != "l2" {
		t.Errorf("ids = %q %q", doc.Lines[0].ID, doc.Lines[1].ID)
	}
	b := doc.Lines[0].Shape.Bounds()
	if b.X1 != 10 || b.Y1 != 10 || b.X2 != 500 || b.Y2 != 50 {
		t.Errorf("scaled bounds = %+v", b)
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    Dialect
		wantErr bool
	}{
		{"alto v2", `<alto xmlns="http://www.loc.gov/standards/alto/ns-v2#"/>`, ALTO, false},
		{"alto v3", `<alto xmlns="http://www.loc.gov/standards/alto/ns-v3#"/>`, ALTO, false},
		{"page 2013", `<PcGts xmlns="http://schema.primaresearch.org/PAGE/gts/pagecontent/2013-07-15"/>`, PAGE, false},
		{"json", "  \n{\"pages\": []}", DocumentAI, false},
		{"loose html", `<html><body><div class='ocr_page'><br></div></body></html>`, HOCR, false},
		{"tei", `<TEI xmlns="http://www.tei-c.org/ns/1.0"/>`, Unknown, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrUnsupportedDialect) {
				t.Errorf("err = %v, want ErrUnsupportedDialect", err)
			}
			if got != tt.want {
				t.Errorf("Detect = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDocumentID(t *testing.T) {
	tests := map[string]string{
		"/data/ocr/0042.xml":       "page42",
		"/data/ocr/1667524704.xml": "page1667524704",
		"scan_7.xml":               "scan_7",
		"alto.v4.xml":              "alto.v4",
	}
	for path, want := range tests {
		if got := DocumentID(path); got != want {
			t.Errorf("DocumentID(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestResolveImagePath(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "PAGE"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "images"), 0o755); err != nil {
		t.Fatal(err)
	}
	img := filepath.Join(root, "images", "0001.tif")
	if err := os.WriteFile(img, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	xmlPath := filepath.Join(root, "PAGE", "0001.xml")

	got, err := ResolveImagePath(xmlPath, &Document{Dialect: PAGE, Image: "images/0001.tif"})
	if err != nil {
		t.Fatalf("ResolveImagePath returned error: %v", err)
	}
	if got != img {
		t.Errorf("path = %q, want %q", got, img)
	}

	_, err = ResolveImagePath(xmlPath, &Document{Dialect: PAGE, Image: "images/missing.tif"})
	if !errors.Is(err, ErrImageNotFound) {
		t.Errorf("err = %v, want ErrImageNotFound", err)
	}
}
