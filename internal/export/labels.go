package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/SheetThumb/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// LabelInfo holds the data encoded into each label's QR code.
type LabelInfo struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Version string  `json:"version"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
// Each label cell is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	labelMarginTop  = 12.7 // mm
	labelMarginLeft = 4.8  // mm
	labelWidth      = 66.7 // mm per label
	labelHeight     = 25.4 // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	thumbSize       = 20.0 // thumbnail size in mm
	labelPadding    = 2.0  // mm internal padding
)

// ExportLabels generates a PDF of QR-coded labels, one per flat pattern
// that rendered. Each label carries the pattern's name, extents, thumbnail
// and a QR code encoding its metadata as JSON.
func ExportLabels(path string, patterns []model.FlatPattern) error {
	if len(patterns) == 0 {
		return ErrNoPatterns
	}

	var labels []model.FlatPattern
	for _, fp := range patterns {
		if fp.Err == nil {
			labels = append(labels, fp)
		}
	}
	if len(labels) == 0 {
		return fmt.Errorf("no rendered flat patterns to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, fp := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, fp); err != nil {
			return fmt.Errorf("failed to render label for %q: %w", fp.Name, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// NewLabelInfo returns the QR payload for fp.
func NewLabelInfo(fp model.FlatPattern) LabelInfo {
	return LabelInfo{
		ID:      fp.ID,
		Name:    fp.Name,
		Width:   fp.Extents.Width(),
		Height:  fp.Extents.Height(),
		Version: fp.Version.String(),
	}
}

// renderLabel draws a single label at the given position: thumbnail on the
// left, text in the middle, QR code on the right.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, fp model.FlatPattern) error {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	info := NewLabelInfo(fp)
	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}
	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	qrName := "qr_" + fp.ID
	pdf.RegisterImageOptionsReader(qrName, opts, bytes.NewReader(qrPNG))
	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(qrName, qrX, qrY, qrSize, qrSize, false, opts, 0, "")

	textX := x + labelPadding
	if placeThumbnail(pdf, fp, x+labelPadding, y+(labelHeight-thumbSize)/2, thumbSize) {
		textX += thumbSize + labelPadding
	}
	textW := qrX - labelPadding - textX

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 4.5, truncate(pdf, fp.Name, textW), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	pdf.CellFormat(textW, 3.5, extentsText(fp), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	pdf.CellFormat(textW, 3, fmt.Sprintf("%s | %s", info.Version, fp.ID), "", 1, "L", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	return nil
}

// CollectLabelInfos extracts label information for use in testing or
// alternative export formats.
func CollectLabelInfos(patterns []model.FlatPattern) []LabelInfo {
	var labels []LabelInfo
	for _, fp := range patterns {
		if fp.Err == nil {
			labels = append(labels, NewLabelInfo(fp))
		}
	}
	return labels
}
