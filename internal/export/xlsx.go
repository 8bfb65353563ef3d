package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const summarySheet = "Summary"

var keypointHeader = []interface{}{"Index", "X", "Y", "Z", "NX", "NY", "NZ"}

// sheetName returns a valid, unique worksheet name for task i.
func sheetName(i int, task string) string {
	name := fmt.Sprintf("%d %s", i+1, task)
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, name)
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

// ExportXLSX writes a workbook with a summary sheet followed by one sheet
// of keypoints per task.
func ExportXLSX(path string, report Report) error {
	if len(report.Tasks) == 0 {
		return fmt.Errorf("no tasks to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(summarySheet)
	if err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	rows := [][]interface{}{
		{"Job", report.JobID},
		{"Source", report.Source},
		{"Vertices", report.Vertices},
		{"Triangles", report.Triangles},
		{"Total Keypoints", report.TotalKeypoints()},
		{},
		{"Task", "Tool", "Keypoints", "Sheet", "Detail"},
	}
	for i, t := range report.Tasks {
		rows = append(rows, []interface{}{t.Name, t.ToolID, len(t.Keypoints), sheetName(i, t.Name), t.Detail})
	}
	for r, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, r+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("writing summary row %d: %w", r+1, err)
		}
	}
	if err := f.SetCellStyle(summarySheet, "A7", "E7", headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(summarySheet, "A", "D", 20); err != nil {
		return err
	}
	if err := f.SetColWidth(summarySheet, "E", "E", 50); err != nil {
		return err
	}

	for i, t := range report.Tasks {
		name := sheetName(i, t.Name)
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %q: %w", name, err)
		}
		if err := f.SetSheetRow(name, "A1", &keypointHeader); err != nil {
			return err
		}
		if err := f.SetCellStyle(name, "A1", "G1", headerStyle); err != nil {
			return err
		}
		for k, kp := range t.Keypoints {
			row := []interface{}{
				k,
				kp.Position.X, kp.Position.Y, kp.Position.Z,
				kp.Normal.X, kp.Normal.Y, kp.Normal.Z,
			}
			cell, _ := excelize.CoordinatesToCellName(1, k+2)
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				return fmt.Errorf("writing %s row %d: %w", name, k+2, err)
			}
		}
	}

	return f.SaveAs(path)
}
