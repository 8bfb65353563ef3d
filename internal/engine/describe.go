package engine

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Describe returns a one-line summary of t's geometry and, once processed,
// its last run. Task types outside this package yield "".
func Describe(t Task) string {
	switch t := t.(type) {
	case *ContourTrace:
		point, normal := t.Plane()
		return fmt.Sprintf("%s mode, point %s, normal %s", t.Mode(), formatVec(point), formatVec(normal))
	case *MultiContourTrace:
		return fmt.Sprintf("%s mode, %d planes, spacing %.4g", t.mode, t.Layers()+1, t.Spacing())
	case *CircularClearing:
		return fmt.Sprintf("%d layers, %d phases", len(t.LayerCenters()), t.Phases())
	}
	return ""
}

func formatVec(v r3.Vec) string {
	return fmt.Sprintf("(%.4g, %.4g, %.4g)", v.X, v.Y, v.Z)
}
