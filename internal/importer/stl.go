package importer

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/hschendel/stl"
	"github.com/piwi3910/raycam/internal/geometry"
	"github.com/piwi3910/raycam/internal/model"
	"gonum.org/v1/gonum/spatial/r3"
)

// MeshResult holds a loaded mesh and anything noteworthy about the load.
type MeshResult struct {
	Name     string
	Mesh     *model.Mesh
	Warnings []string
}

// ImportSTL reads an ASCII or binary STL file into an indexed mesh.
func ImportSTL(path string) (MeshResult, error) {
	solid, err := stl.ReadFile(path)
	if err != nil {
		return MeshResult{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return fromSolid(solid)
}

// ImportSTLFromReader reads STL data from r. The stream is buffered in
// memory since the STL decoder needs to seek.
func ImportSTLFromReader(r io.Reader) (MeshResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return MeshResult{}, fmt.Errorf("reading STL: %w", err)
	}
	solid, err := stl.ReadAll(bytes.NewReader(data))
	if err != nil {
		return MeshResult{}, fmt.Errorf("reading STL: %w", err)
	}
	return fromSolid(solid)
}

func fromSolid(solid *stl.Solid) (MeshResult, error) {
	result := MeshResult{Name: solid.Name}
	b := model.NewMeshBuilder()
	degenerate := 0

	for i, t := range solid.Triangles {
		var corners [3][3]float32
		for k, v := range t.Vertices {
			corners[k] = [3]float32(v)
			if !finite32(corners[k]) {
				return MeshResult{}, &model.InvalidMeshError{Reason: fmt.Sprintf("triangle %d has a non-finite vertex", i)}
			}
		}
		if corners[0] == corners[1] || corners[1] == corners[2] || corners[0] == corners[2] {
			degenerate++
			continue
		}
		b.AddTriangle(corners[0], corners[1], corners[2], [3]float32(t.Normal))
	}

	mesh := b.Mesh()
	if mesh.TriangleCount() == 0 {
		return MeshResult{}, &model.InvalidMeshError{Reason: "STL contains no usable triangles"}
	}
	if degenerate > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Skipped %d degenerate triangles", degenerate))
	}
	result.Mesh = mesh
	return result, nil
}

func finite32(v [3]float32) bool {
	for _, c := range v {
		f := float64(c)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// CenterOnXY translates m in place so its XY bounds are centered on the
// origin. Z is left untouched; the returned span is the mesh's Z range.
func CenterOnXY(m *model.Mesh) (minZ, maxZ float64, err error) {
	b, err := geometry.ComputeBounds(m)
	if err != nil {
		return 0, 0, err
	}
	c := b.Center()
	translate(m, r3.Vec{X: -c.X, Y: -c.Y})
	return b.Min.Z, b.Max.Z, nil
}

// ScaleToUnit scales m in place about its bounds center so the largest
// extent becomes 1. A mesh that is flat along any axis is rejected.
func ScaleToUnit(m *model.Mesh) error {
	b, err := geometry.ComputeBounds(m)
	if err != nil {
		return err
	}
	size := b.Size()
	if size.X == 0 || size.Y == 0 || size.Z == 0 {
		return &model.InvalidMeshError{Reason: fmt.Sprintf("zero extent %v cannot be scaled", size)}
	}
	scale := 1 / math.Max(size.X, math.Max(size.Y, size.Z))
	c := b.Center()
	for i := range m.Vertices {
		v := r3.Add(c, r3.Scale(scale, r3.Sub(m.Vertex(uint32(i)), c)))
		m.Vertices[i] = model.Vec32(v)
	}
	return nil
}

func translate(m *model.Mesh, d r3.Vec) {
	for i := range m.Vertices {
		m.Vertices[i] = model.Vec32(r3.Add(m.Vertex(uint32(i)), d))
	}
}
