// Package export writes batch results to PDF catalogs, label sheets and
// spreadsheet reports.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/SheetThumb/internal/model"
)

// ErrNoPatterns is returned by every exporter for empty input.
var ErrNoPatterns = errors.New("no flat patterns to export")

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	gridTop      = marginTop + headerHeight + 3.0
	gridCols     = 4
	gridRows     = 3
	perPage      = gridCols * gridRows
	captionH     = 14.0 // text block under each thumbnail
	cellPadding  = 3.0
)

// ExportCatalogPDF generates a thumbnail catalog: pages with a grid of
// flat patterns, each with its name, extents and version, followed by a
// summary page.
func ExportCatalogPDF(path string, patterns []model.FlatPattern) error {
	if len(patterns) == 0 {
		return ErrNoPatterns
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pages := (len(patterns) + perPage - 1) / perPage
	for page := 0; page < pages; page++ {
		pdf.AddPage()
		end := min((page+1)*perPage, len(patterns))
		renderCatalogPage(pdf, patterns[page*perPage:end], page+1, pages)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, patterns)

	return pdf.OutputFileAndClose(path)
}

// renderCatalogPage draws one grid page.
func renderCatalogPage(pdf *fpdf.Fpdf, patterns []model.FlatPattern, pageNum, pages int) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Flat Pattern Catalog (page %d of %d)", pageNum, pages)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	cellW := (pageWidth - marginLeft - marginRight) / gridCols
	cellH := (pageHeight - gridTop - marginBottom) / gridRows

	for i, fp := range patterns {
		col := i % gridCols
		row := i / gridCols
		x := marginLeft + float64(col)*cellW
		y := gridTop + float64(row)*cellH
		renderCatalogCell(pdf, fp, x, y, cellW, cellH)
	}
}

// renderCatalogCell draws one pattern: a bordered cell holding the
// thumbnail scaled to fit and a caption underneath.
func renderCatalogCell(pdf *fpdf.Fpdf, fp model.FlatPattern, x, y, w, h float64) {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.2)
	pdf.Rect(x, y, w, h, "D")

	imgW := w - 2*cellPadding
	imgH := h - captionH - 2*cellPadding
	side := math.Min(imgW, imgH)
	imgX := x + (w-side)/2
	imgY := y + cellPadding

	if !placeThumbnail(pdf, fp, imgX, imgY, side) {
		pdf.SetFillColor(245, 245, 245)
		pdf.Rect(imgX, imgY, side, side, "F")
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(150, 150, 150)
		pdf.SetXY(imgX, imgY+side/2-2)
		pdf.CellFormat(side, 4, "no thumbnail", "", 0, "C", false, 0, "")
	}

	textW := w - 2*cellPadding
	capY := y + h - captionH

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(x+cellPadding, capY)
	pdf.CellFormat(textW, 4, truncate(pdf, fp.Name, textW), "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(x+cellPadding, capY+4)
	pdf.CellFormat(textW, 3.5, extentsText(fp), "", 0, "L", false, 0, "")

	pdf.SetXY(x+cellPadding, capY+7.5)
	if fp.Err != nil {
		pdf.SetTextColor(200, 0, 0)
		pdf.CellFormat(textW, 3.5, truncate(pdf, fp.Status(), textW), "", 0, "L", false, 0, "")
	} else {
		pdf.SetTextColor(100, 100, 100)
		info := fmt.Sprintf("%s | %d entities", fp.Version, fp.EntityCount())
		pdf.CellFormat(textW, 3.5, info, "", 0, "L", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
}

// placeThumbnail registers the pattern's PNG and draws it. It reports
// false when there is nothing to draw.
func placeThumbnail(pdf *fpdf.Fpdf, fp model.FlatPattern, x, y, side float64) bool {
	if len(fp.Thumbnail) == 0 {
		return false
	}
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	name := "thumb_" + fp.ID
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(fp.Thumbnail))
	if !pdf.Ok() {
		pdf.ClearError()
		return false
	}
	pdf.ImageOptions(name, x, y, side, side, false, opts, 0, "")
	return true
}

// renderSummaryPage draws totals and a per-kind entity breakdown.
func renderSummaryPage(pdf *fpdf.Fpdf, patterns []model.FlatPattern) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Batch Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	failed, rewritten := 0, 0
	totals := map[model.Kind]int{}
	for _, fp := range patterns {
		if fp.Err != nil {
			failed++
		}
		if fp.Rewritten {
			rewritten++
		}
		for k, n := range fp.Counts {
			totals[k] += n
		}
	}

	summaryItems := []struct {
		label string
		value string
	}{
		{"Files", fmt.Sprintf("%d", len(patterns))},
		{"Rendered", fmt.Sprintf("%d", len(patterns)-failed)},
		{"Failed", fmt.Sprintf("%d", failed)},
		{"Rewritten", fmt.Sprintf("%d", rewritten)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Entities", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{60, 30}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(colWidths[0], 6, "Kind", "1", 0, "C", true, 0, "")
	pdf.CellFormat(colWidths[1], 6, "Count", "1", 0, "C", true, 0, "")
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, k := range sortedKinds(totals) {
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(colWidths[0], 6, k.String(), "1", 0, "L", true, 0, "")
		pdf.CellFormat(colWidths[1], 6, fmt.Sprintf("%d", totals[k]), "1", 0, "R", true, 0, "")
		y += 6
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by SheetThumb", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func extentsText(fp model.FlatPattern) string {
	if !fp.HasBounds {
		return "no extents"
	}
	return fmt.Sprintf("%.1f x %.1f", fp.Extents.Width(), fp.Extents.Height())
}

func sortedKinds(counts map[model.Kind]int) []model.Kind {
	kinds := make([]model.Kind, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// truncate shortens s with an ellipsis until it fits in w.
func truncate(pdf *fpdf.Fpdf, s string, w float64) string {
	if pdf.GetStringWidth(s) <= w {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > w {
		s = s[:len(s)-1]
	}
	return strings.TrimSpace(s) + "..."
}
