package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// taskColor represents an RGB color for a task's keypoints.
type taskColor struct {
	R, G, B int
}

var taskColors = []taskColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
	qrSize       = 40.0
	dotRadius    = 0.4
)

// ReportInfo is the compact job summary encoded in the PDF's QR code.
type ReportInfo struct {
	JobID     string `json:"job"`
	Source    string `json:"src,omitempty"`
	Triangles int    `json:"tris"`
	Tasks     int    `json:"tasks"`
	Keypoints int    `json:"kps"`
}

// Info returns the QR payload for r.
func (r Report) Info() ReportInfo {
	return ReportInfo{
		JobID:     r.JobID,
		Source:    r.Source,
		Triangles: r.Triangles,
		Tasks:     len(r.Tasks),
		Keypoints: r.TotalKeypoints(),
	}
}

// ExportPDF writes a summary page followed by a top-down plot of the
// keypoints, colored by task.
func ExportPDF(path string, report Report) error {
	if len(report.Tasks) == 0 {
		return fmt.Errorf("no tasks to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	if err := renderSummaryPage(pdf, report); err != nil {
		return err
	}

	pdf.AddPage()
	renderPlotPage(pdf, report)

	return pdf.OutputFileAndClose(path)
}

// renderSummaryPage draws job statistics, the task table and the QR code.
func renderSummaryPage(pdf *fpdf.Fpdf, report Report) error {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Keypoint Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Job", "", 0, "L", false, 0, "")
	y += 9

	size := report.Bounds.Size()
	summaryItems := []struct {
		label string
		value string
	}{
		{"Job ID", report.JobID},
		{"Source", report.Source},
		{"Vertices", fmt.Sprintf("%d", report.Vertices)},
		{"Triangles", fmt.Sprintf("%d", report.Triangles)},
		{"Extent", fmt.Sprintf("%.2f x %.2f x %.2f", size.X, size.Y, size.Z)},
		{"Total Keypoints", fmt.Sprintf("%d", report.TotalKeypoints())},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(80, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Tasks", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{15, 70, 70, 40}
	headers := []string{"#", "Task", "Tool", "Keypoints"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, t := range report.Tasks {
		if y > pageHeight-marginBottom-10 {
			break
		}
		xPos = marginLeft
		rowData := []string{
			fmt.Sprintf("%d", i+1),
			t.Name,
			toolLabel(report, t.ToolID),
			fmt.Sprintf("%d", len(t.Keypoints)),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	if err := renderQR(pdf, report.Info(), pageWidth-marginRight-qrSize, marginTop+18); err != nil {
		return err
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4,
		"Generated by raycam on "+report.Generated.Format("2006-01-02 15:04"), "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	return nil
}

// renderQR draws the job summary as a QR code at (x, y).
func renderQR(pdf *fpdf.Fpdf, info ReportInfo, x, y float64) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("encoding QR payload: %w", err)
	}
	png, err := qrcode.Encode(string(data), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("generating QR code: %w", err)
	}
	name := "qr_" + info.JobID
	pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	pdf.ImageOptions(name, x, y, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	return nil
}

func toolLabel(report Report, id int) string {
	for _, t := range report.Tools {
		if t.ID == id {
			return fmt.Sprintf("%d: %s", t.ID, t.Name)
		}
	}
	return fmt.Sprintf("%d", id)
}

// renderPlotPage draws every keypoint projected onto the XY plane.
func renderPlotPage(pdf *fpdf.Fpdf, report Report) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, "Keypoints (top view)", "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight

	minX, minY, maxX, maxY := plotExtent(report)
	spanX := math.Max(maxX-minX, 1e-9)
	spanY := math.Max(maxY-minY, 1e-9)
	scale := math.Min(drawWidth/spanX, drawHeight/spanY)

	canvasW := spanX * scale
	canvasH := spanY * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.3)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "D")

	for i, t := range report.Tasks {
		col := taskColors[i%len(taskColors)]
		pdf.SetFillColor(col.R, col.G, col.B)
		for _, kp := range t.Keypoints {
			px := offsetX + (kp.Position.X-minX)*scale
			// PDF y grows downward.
			py := offsetY + (maxY-kp.Position.Y)*scale
			pdf.Circle(px, py, dotRadius, "F")
		}
	}

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)
	extent := fmt.Sprintf("X %.2f .. %.2f   Y %.2f .. %.2f", minX, maxX, minY, maxY)
	w := pdf.GetStringWidth(extent)
	pdf.SetXY(offsetX+(canvasW-w)/2, offsetY+canvasH+1)
	pdf.CellFormat(w, 4, extent, "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	drawTaskLegend(pdf, report, offsetY+canvasH+7)
}

// plotExtent returns the XY bounding box of all keypoints, falling back to
// the mesh bounds when there are none.
func plotExtent(report Report) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, t := range report.Tasks {
		for _, kp := range t.Keypoints {
			minX = math.Min(minX, kp.Position.X)
			minY = math.Min(minY, kp.Position.Y)
			maxX = math.Max(maxX, kp.Position.X)
			maxY = math.Max(maxY, kp.Position.Y)
		}
	}
	if math.IsInf(minX, 1) {
		b := report.Bounds
		return b.Min.X, b.Min.Y, b.Max.X, b.Max.Y
	}
	return minX, minY, maxX, maxY
}

func drawTaskLegend(pdf *fpdf.Fpdf, report Report, startY float64) {
	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft
	maxX := pageWidth - marginRight

	for i, t := range report.Tasks {
		col := taskColors[i%len(taskColors)]
		label := fmt.Sprintf("%d %s (%d)", i+1, t.Name, len(t.Keypoints))
		labelW := pdf.GetStringWidth(label) + 6

		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")

		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")

		xPos += labelW + 2
	}
}
