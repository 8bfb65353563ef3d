package geometry

import (
	"fmt"
	"math"

	"github.com/piwi3910/raycam/internal/model"
	"gonum.org/v1/gonum/spatial/r3"
)

// ComputeBounds returns the componentwise min/max over all vertices of m.
func ComputeBounds(m *model.Mesh) (model.Bounds, error) {
	if m == nil || m.IsEmpty() {
		return model.Bounds{}, &model.InvalidMeshError{Reason: "mesh has no vertices"}
	}
	min := r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	max := r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for i := range m.Vertices {
		v := m.Vertex(uint32(i))
		if !model.IsFinite(v) {
			return model.Bounds{}, &model.InvalidMeshError{Reason: fmt.Sprintf("vertex %d is not finite", i)}
		}
		min.X = math.Min(min.X, v.X)
		min.Y = math.Min(min.Y, v.Y)
		min.Z = math.Min(min.Z, v.Z)
		max.X = math.Max(max.X, v.X)
		max.Y = math.Max(max.Y, v.Y)
		max.Z = math.Max(max.Z, v.Z)
	}
	return model.Bounds{Min: min, Max: max}, nil
}
