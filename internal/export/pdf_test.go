package export

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/SheetThumb/internal/model"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for i := 0; i < 10; i++ {
		img.Set(i, i, color.Black)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func buildTestPatterns(t *testing.T) []model.FlatPattern {
	t.Helper()
	thumb := testPNG(t)

	bracket := model.NewFlatPattern("/parts/bracket.dxf")
	bracket.Version = model.R2010
	bracket.Extents = model.Extents{MaxX: 120, MaxY: 45.5}
	bracket.HasBounds = true
	bracket.Counts[model.KindLine] = 4
	bracket.Counts[model.KindArc] = 2
	bracket.Thumbnail = thumb

	plate := model.NewFlatPattern("/parts/plate.dxf")
	plate.Version = model.R2000
	plate.Extents = model.Extents{MinX: -10, MinY: -10, MaxX: 10, MaxY: 10}
	plate.HasBounds = true
	plate.Counts[model.KindCircle] = 1
	plate.Thumbnail = thumb
	plate.Rewritten = true

	broken := model.NewFlatPattern("/parts/broken.dxf")
	broken.Err = errors.New("line 3: bad group code")

	return []model.FlatPattern{bracket, plate, broken}
}

func assertPDF(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	if info.Size() == 0 {
		t.Error("PDF file is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read PDF: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("file does not start with a PDF header")
	}
}

func TestExportCatalogPDF_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.pdf")
	if err := ExportCatalogPDF(path, buildTestPatterns(t)); err != nil {
		t.Fatalf("ExportCatalogPDF returned error: %v", err)
	}
	assertPDF(t, path)
}

func TestExportCatalogPDF_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")
	err := ExportCatalogPDF(path, nil)
	if !errors.Is(err, ErrNoPatterns) {
		t.Fatalf("expected ErrNoPatterns, got %v", err)
	}
	if err.Error() != "no flat patterns to export" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("no file should be written for empty input")
	}
}

func TestExportCatalogPDF_ManyPages(t *testing.T) {
	base := buildTestPatterns(t)
	var patterns []model.FlatPattern
	for i := 0; i < 30; i++ {
		patterns = append(patterns, base[i%len(base)])
	}

	path := filepath.Join(t.TempDir(), "many.pdf")
	if err := ExportCatalogPDF(path, patterns); err != nil {
		t.Fatalf("ExportCatalogPDF returned error: %v", err)
	}
	assertPDF(t, path)
}

func TestExportCatalogPDF_InvalidThumbnail(t *testing.T) {
	fp := model.NewFlatPattern("odd.dxf")
	fp.Thumbnail = []byte("not a png")

	path := filepath.Join(t.TempDir(), "odd.pdf")
	if err := ExportCatalogPDF(path, []model.FlatPattern{fp}); err != nil {
		t.Fatalf("an unreadable thumbnail should fall back to a placeholder, got %v", err)
	}
	assertPDF(t, path)
}

func TestExtentsText(t *testing.T) {
	fp := model.NewFlatPattern("a.dxf")
	if got := extentsText(fp); got != "no extents" {
		t.Errorf("extentsText without bounds = %q", got)
	}
	fp.HasBounds = true
	fp.Extents = model.Extents{MinX: 1, MaxX: 11.25, MinY: 2, MaxY: 4}
	if got := extentsText(fp); got != "10.2 x 2.0" && got != "10.3 x 2.0" {
		t.Errorf("extentsText = %q", got)
	}
}

func TestSortedKinds(t *testing.T) {
	kinds := sortedKinds(map[model.Kind]int{model.KindSpline: 1, model.KindLine: 2, model.KindArc: 3})
	want := []model.Kind{model.KindLine, model.KindArc, model.KindSpline}
	if len(kinds) != len(want) {
		t.Fatalf("got %v", kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("kinds[%d] = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestTruncate(t *testing.T) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 8)

	if got := truncate(pdf, "short", 100); got != "short" {
		t.Errorf("truncate kept-short = %q", got)
	}
	long := "a-very-long-flat-pattern-name-that-will-not-fit"
	got := truncate(pdf, long, 20)
	if len(got) >= len(long) {
		t.Errorf("expected truncation, got %q", got)
	}
	if pdf.GetStringWidth(got) > 20 {
		t.Errorf("truncated text %q is still too wide", got)
	}
}
