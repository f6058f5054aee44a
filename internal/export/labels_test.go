package export

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/piwi3910/SheetThumb/internal/model"
)

func TestExportLabels_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.pdf")
	if err := ExportLabels(path, buildTestPatterns(t)); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
	assertPDF(t, path)
}

func TestExportLabels_Empty(t *testing.T) {
	err := ExportLabels(filepath.Join(t.TempDir(), "labels.pdf"), nil)
	if !errors.Is(err, ErrNoPatterns) {
		t.Fatalf("expected ErrNoPatterns, got %v", err)
	}
}

func TestExportLabels_OnlyFailures(t *testing.T) {
	fp := model.NewFlatPattern("broken.dxf")
	fp.Err = errors.New("boom")
	if err := ExportLabels(filepath.Join(t.TempDir(), "labels.pdf"), []model.FlatPattern{fp}); err == nil {
		t.Fatal("expected an error when no pattern rendered")
	}
}

func TestExportLabels_MultiplePages(t *testing.T) {
	var patterns []model.FlatPattern
	for i := 0; i < 35; i++ {
		fp := model.NewFlatPattern("part.dxf")
		fp.HasBounds = true
		fp.Extents = model.Extents{MaxX: float64(10 + i), MaxY: 5}
		patterns = append(patterns, fp)
	}
	path := filepath.Join(t.TempDir(), "labels.pdf")
	if err := ExportLabels(path, patterns); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
	assertPDF(t, path)
}

func TestCollectLabelInfos(t *testing.T) {
	labels := CollectLabelInfos(buildTestPatterns(t))
	if len(labels) != 2 {
		t.Fatalf("expected 2 labels (failures skipped), got %d", len(labels))
	}

	first := labels[0]
	if first.Name != "bracket" {
		t.Errorf("Name = %q, want bracket", first.Name)
	}
	if first.Width != 120 || first.Height != 45.5 {
		t.Errorf("size = %v x %v, want 120 x 45.5", first.Width, first.Height)
	}
	if first.Version != "R2010" {
		t.Errorf("Version = %q, want R2010", first.Version)
	}
	if len(first.ID) != 8 {
		t.Errorf("ID %q should have 8 characters", first.ID)
	}
}

func TestLabelInfo_JSON(t *testing.T) {
	info := LabelInfo{ID: "abcd1234", Name: "plate", Width: 20, Height: 20, Version: "R2000"}
	data, err := json.Marshal(info)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"id", "name", "width", "height", "version"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("QR payload is missing %q", key)
		}
	}
}
