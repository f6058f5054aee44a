package export

import (
	"fmt"

	"github.com/piwi3910/SheetThumb/internal/model"
	"github.com/xuri/excelize/v2"
)

const reportSheet = "Patterns"

// reportKinds are the entity kinds given a column, in column order.
var reportKinds = []model.Kind{
	model.KindLine,
	model.KindCircle,
	model.KindArc,
	model.KindPolyline2D,
	model.KindPolyline3D,
	model.KindSpline,
	model.KindEllipse,
	model.KindGenericPolyline,
}

// ReportHeaders returns the column titles of the spreadsheet report.
func ReportHeaders() []string {
	headers := []string{"ID", "Name", "Path", "Width", "Height", "Version"}
	for _, k := range reportKinds {
		headers = append(headers, k.String())
	}
	return append(headers, "Rewritten", "Status")
}

// ExportReport writes one row per flat pattern to an Excel workbook.
func ExportReport(path string, patterns []model.FlatPattern) error {
	if len(patterns) == 0 {
		return ErrNoPatterns
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headers := ReportHeaders()
	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(reportSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(reportSheet, "A1", last, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, fp := range patterns {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := reportRow(fp)
		if err := f.SetSheetRow(reportSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(reportSheet, "B", "C", 30); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetPanes(reportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func reportRow(fp model.FlatPattern) []interface{} {
	row := []interface{}{fp.ID, fp.Name, fp.Path}
	if fp.HasBounds {
		row = append(row, round3(fp.Extents.Width()), round3(fp.Extents.Height()))
	} else {
		row = append(row, "", "")
	}
	row = append(row, fp.Version.String())
	for _, k := range reportKinds {
		row = append(row, fp.Counts[k])
	}
	return append(row, fp.Rewritten, fp.Status())
}

func round3(v float64) float64 {
	return float64(int64(v*1000+0.5)) / 1000
}
