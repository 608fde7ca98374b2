package trainingset

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/gardar/ocrtrain/pkg/document"
	"github.com/gardar/ocrtrain/pkg/raster"
	"github.com/gardar/ocrtrain/pkg/resolution"
)

const altoDoc = `<?xml version="1.0" encoding="UTF-8"?>
<alto xmlns="http://www.loc.gov/standards/alto/ns-v4#">
  <Layout>
    <Page ID="p1" WIDTH="700" HEIGHT="200">
      <PrintSpace>
        <TextBlock ID="b1">
          <TextLine ID="l1" HPOS="10" VPOS="10" WIDTH="300" HEIGHT="40">
            <String CONTENT="abc"/>
          </TextLine>
          <TextLine ID="l2" HPOS="10" VPOS="60" WIDTH="300" HEIGHT="40">
            <String CONTENT="abcde"/><SP/><String CONTENT="fghi"/>
          </TextLine>
          <TextLine ID="l3" HPOS="10" VPOS="110" WIDTH="600" HEIGHT="40">
            <String CONTENT="abcdefghij"/><SP/><String CONTENT="abcdefghij"/><SP/><String CONTENT="abcdefghijklmnopqr"/>
          </TextLine>
        </TextBlock>
      </PrintSpace>
    </Page>
  </Layout>
</alto>`

const pageMissingCoords = `<?xml version="1.0" encoding="UTF-8"?>
<PcGts xmlns="http://schema.primaresearch.org/PAGE/gts/pagecontent/2019-07-15">
  <Page imageFilename="images/0001.png" imageWidth="700" imageHeight="200">
    <TextRegion id="r1">
      <TextLine id="tl7">
        <Coords points="10,10 310,10 310,50 10,50"/>
        <Word id="w8"><Coords points="10,10 100,10 100,50 10,50"/><TextEquiv><Unicode>abc</Unicode></TextEquiv></Word>
        <Word id="w9"><TextEquiv><Unicode>def</Unicode></TextEquiv></Word>
        <TextEquiv><Unicode>abc def</Unicode></TextEquiv>
      </TextLine>
    </TextRegion>
  </Page>
</PcGts>`

// pageImage writes a paper coloured page with dark bars inside every line
// box and returns its path.
func pageImage(t *testing.T, path string, dpi int) string {
	t.Helper()
	g := raster.Filled(700, 200, 215)
	for _, r := range []image.Rectangle{
		image.Rect(20, 20, 280, 40),
		image.Rect(20, 70, 280, 90),
		image.Rect(20, 120, 580, 140),
	} {
		for y := r.Min.Y; y < r.Max.Y; y += 4 {
			for x := r.Min.X; x < r.Max.X; x++ {
				if x%9 < 6 {
					g.SetGray(x, y, color.Gray{Y: 30})
					g.SetGray(x, y+1, color.Gray{Y: 30})
				}
			}
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := resolution.EncodePNG(f, g, resolution.Resolution{X: dpi, Y: dpi}); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeDoc(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	var files []string
	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			files = append(files, filepath.Base(path))
		}
		return nil
	})
	slices.Sort(files)
	return files
}

func TestCreateALTO(t *testing.T) {
	dir := t.TempDir()
	xmlPath := writeDoc(t, filepath.Join(dir, "in", "0042.xml"), altoDoc)
	imgPath := pageImage(t, filepath.Join(dir, "in", "0042.png"), 400)

	cfg := DefaultConfig()
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.MinChars = 8
	cfg.Summary = true
	cfg.Seed = 1

	set, err := Open(xmlPath, imgPath, cfg)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	pairs, err := set.Create()
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(pairs))
	}

	want := []string{
		"page42_l2.gt.txt",
		"page42_l2.tif",
		"page42_l3.gt.txt",
		"page42_l3.tif",
		"page42_summary.gt.txt",
	}
	if got := listFiles(t, cfg.OutputDir); !slices.Equal(got, want) {
		t.Errorf("files = %v, want %v", got, want)
	}

	text, err := os.ReadFile(pairs[0].TextPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(text) != "abcde fghi" {
		t.Errorf("transcription = %q, want %q", text, "abcde fghi")
	}

	summary, err := os.ReadFile(filepath.Join(cfg.OutputDir, "page42", "page42_summary.gt.txt"))
	if err != nil {
		t.Fatal(err)
	}
	wantSummary := "abcde fghi\nabcdefghij abcdefghij abcdefghijklmnopqr\n"
	if string(summary) != wantSummary {
		t.Errorf("summary = %q, want %q", summary, wantSummary)
	}

	if res := resolution.Read(pairs[1].ImagePath); res.X != 400 || res.Y != 400 {
		t.Errorf("line image resolution = %+v, want 400 dpi", res)
	}
	line, err := raster.Load(pairs[1].ImagePath)
	if err != nil {
		t.Fatal(err)
	}
	if b := line.Bounds(); b.Dx() != 600 || b.Dy() != 40 {
		t.Errorf("line image size = %v, want 600x40", b)
	}
}

func TestCreatePNGBinarizedWithPadding(t *testing.T) {
	dir := t.TempDir()
	xmlPath := writeDoc(t, filepath.Join(dir, "doc.xml"), altoDoc)
	imgPath := pageImage(t, filepath.Join(dir, "doc.png"), 0)

	cfg := DefaultConfig()
	cfg.OutputDir = dir
	cfg.ImageFormat = FormatPNG
	cfg.Binarize = true
	cfg.Padding = 6
	cfg.Sanitize = false
	cfg.DPI = 150

	set, err := Open(xmlPath, imgPath, cfg)
	if err != nil {
		t.Fatal(err)
	}
	pairs, err := set.Create()
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 3 {
		t.Fatalf("got %d pairs, want 3", len(pairs))
	}
	p := pairs[0]
	if !strings.HasSuffix(p.ImagePath, filepath.Join("doc", "doc_l1.png")) {
		t.Errorf("image path = %s", p.ImagePath)
	}
	img, err := raster.Load(p.ImagePath)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 312 || b.Dy() != 52 {
		t.Errorf("padded size = %v, want 312x52", b)
	}
	for _, v := range img.Pix {
		if v != 0 && v != 255 {
			t.Fatalf("binarized image holds gray value %d", v)
		}
	}
	if res := resolution.Read(p.ImagePath); res.X != 150 {
		t.Errorf("resolution = %+v, want configured fallback of 150 dpi", res)
	}
}

func TestOpenPAGEWordWithoutCoords(t *testing.T) {
	dir := t.TempDir()
	xmlPath := writeDoc(t, filepath.Join(dir, "page", "0001.xml"), pageMissingCoords)
	pageImage(t, filepath.Join(dir, "images", "0001.png"), 300)
	out := filepath.Join(dir, "out")

	cfg := DefaultConfig()
	cfg.OutputDir = out
	_, err := Open(xmlPath, "", cfg)
	if !errors.Is(err, document.ErrWordGeometry) {
		t.Fatalf("Open error = %v, want ErrWordGeometry", err)
	}
	for _, id := range []string{"w9", "tl7"} {
		if !strings.Contains(err.Error(), id) {
			t.Errorf("error %q does not name %s", err, id)
		}
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output directory exists after a fatal error")
	}
}

func TestOpenMissingImage(t *testing.T) {
	dir := t.TempDir()
	xmlPath := writeDoc(t, filepath.Join(dir, "doc.xml"), altoDoc)

	_, err := Open(xmlPath, filepath.Join(dir, "missing.tif"), DefaultConfig())
	if !errors.Is(err, document.ErrImageNotFound) {
		t.Errorf("error = %v, want ErrImageNotFound", err)
	}
}

func TestOpenRejectsFormat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ImageFormat = "bmp"
	if _, err := Open("doc.xml", "", cfg); err == nil {
		t.Error("expected an error for an unknown image format")
	}
}

type recorder struct {
	mu       sync.Mutex
	started  []string
	written  []string
	skipped  map[string]error
	finished int
}

func (r *recorder) DocumentStarted(doc *document.Document, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, doc.ID)
}

func (r *recorder) LineWritten(_ string, p Pair) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.written = append(r.written, p.LineID)
}

func (r *recorder) LineSkipped(_, lineID string, reason error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skipped[lineID] = reason
}

func (r *recorder) DocumentFinished(_ string, written int, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = written
}

func TestCreateSkipsLinesOutsideThePage(t *testing.T) {
	dir := t.TempDir()
	doc := strings.Replace(altoDoc, `ID="l1" HPOS="10" VPOS="10"`, `ID="l1" HPOS="900" VPOS="10"`, 1)
	xmlPath := writeDoc(t, filepath.Join(dir, "doc.xml"), doc)
	imgPath := pageImage(t, filepath.Join(dir, "doc.png"), 300)

	rec := &recorder{skipped: map[string]error{}}
	cfg := DefaultConfig()
	cfg.OutputDir = dir
	cfg.Observer = rec

	set, err := Open(xmlPath, imgPath, cfg)
	if err != nil {
		t.Fatal(err)
	}
	pairs, err := set.Create()
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(pairs))
	}
	if !slices.Equal(rec.started, []string{"doc"}) {
		t.Errorf("started = %v", rec.started)
	}
	if !slices.Equal(rec.written, []string{"l2", "l3"}) {
		t.Errorf("written = %v, want [l2 l3]", rec.written)
	}
	if len(rec.skipped) != 1 || rec.skipped["l1"] == nil {
		t.Errorf("skipped = %v, want l1", rec.skipped)
	}
	if rec.finished != 2 {
		t.Errorf("finished with %d pairs, want 2", rec.finished)
	}
}
