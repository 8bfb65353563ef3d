package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultNormalLength is the drawn length of each keypoint normal.
const DefaultNormalLength = 1.0

// ExportDXF draws every keypoint as a LINE from its position along its
// unit normal, scaled to normalLength. Each task gets its own layer.
func ExportDXF(path string, report Report, normalLength float64) error {
	if report.TotalKeypoints() == 0 {
		return fmt.Errorf("no keypoints to export")
	}
	if normalLength <= 0 {
		normalLength = DefaultNormalLength
	}

	d := dxf.NewDrawing()
	for i, t := range report.Tasks {
		if len(t.Keypoints) == 0 {
			continue
		}
		layer := sheetName(i, t.Name)
		if _, err := d.AddLayer(layer, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
			return fmt.Errorf("adding layer %q: %w", layer, err)
		}
		for _, kp := range t.Keypoints {
			n := kp.Normal
			if r3.Norm2(n) > 0 {
				n = r3.Scale(normalLength, r3.Unit(n))
			}
			end := r3.Add(kp.Position, n)
			if _, err := d.Line(kp.Position.X, kp.Position.Y, kp.Position.Z, end.X, end.Y, end.Z); err != nil {
				return fmt.Errorf("drawing keypoint on %q: %w", layer, err)
			}
		}
	}
	return d.SaveAs(path)
}
