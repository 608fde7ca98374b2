package proof

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gardar/ocrtrain/pkg/raster"
	"github.com/gardar/ocrtrain/pkg/resolution"
	"github.com/gardar/ocrtrain/pkg/trainingset"
)

func lineTIFF(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := resolution.EncodeTIFF(f, raster.Filled(w, h, 200), resolution.Default()); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	var pairs []trainingset.Pair
	// enough entries to spill onto a second page
	for i := range 20 {
		pairs = append(pairs, trainingset.Pair{
			LineID:    "l" + string(rune('a'+i)),
			Text:      "Þórður kom heim",
			ImagePath: lineTIFF(t, dir, "l"+string(rune('a'+i))+".tif", 900, 50),
		})
	}
	pairs = append(pairs, trainingset.Pair{LineID: "gone", ImagePath: filepath.Join(dir, "gone.tif")})

	var buf bytes.Buffer
	if err := Write(&buf, pairs, DefaultConfig()); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatal("output is not a PDF")
	}
	if n := bytes.Count(buf.Bytes(), []byte("/Type /Page\n")); n < 2 {
		t.Errorf("got %d pages, want at least 2", n)
	}
}

func TestWriteNothing(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil, DefaultConfig()); !errors.Is(err, ErrNoPairs) {
		t.Errorf("error = %v, want ErrNoPairs", err)
	}
	missing := []trainingset.Pair{{LineID: "l1", ImagePath: "does-not-exist.tif"}}
	if err := Write(&buf, missing, DefaultConfig()); !errors.Is(err, ErrNoPairs) {
		t.Errorf("error = %v, want ErrNoPairs", err)
	}
}

func TestFitBox(t *testing.T) {
	tests := []struct {
		w, h         int
		wantW, wantH float64
	}{
		{100, 20, 100, 20},
		{1000, 50, 500, 25},
		{200, 120, 100, 60},
	}
	for _, tt := range tests {
		w, h := fitBox(tt.w, tt.h, 500, 60)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("fitBox(%d, %d) = %v x %v, want %v x %v", tt.w, tt.h, w, h, tt.wantW, tt.wantH)
		}
	}
}
