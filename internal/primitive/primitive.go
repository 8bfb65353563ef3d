// Package primitive builds test and fixture solids from signed distance
// functions and tessellates them into meshes.
package primitive

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/piwi3910/raycam/internal/model"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultCells is the marching cubes resolution along the longest axis.
const DefaultCells = 100

// Solid is an SDF-backed solid.
type Solid struct {
	s sdf.SDF3
}

// Box returns a box of the given size centered on the origin.
func Box(size r3.Vec) (Solid, error) {
	if !(size.X > 0 && size.Y > 0 && size.Z > 0) {
		return Solid{}, fmt.Errorf("box size %v must be > 0 on every axis", size)
	}
	s, err := sdf.Box3D(v3.Vec{X: size.X, Y: size.Y, Z: size.Z}, 0)
	if err != nil {
		return Solid{}, fmt.Errorf("box %v: %w", size, err)
	}
	return Solid{s: s}, nil
}

// Cylinder returns a Z-aligned cylinder centered on the origin.
func Cylinder(height, radius float64) (Solid, error) {
	if !(height > 0 && radius > 0) {
		return Solid{}, fmt.Errorf("cylinder h=%g r=%g: height and radius must be > 0", height, radius)
	}
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return Solid{}, fmt.Errorf("cylinder h=%g r=%g: %w", height, radius, err)
	}
	return Solid{s: s}, nil
}

// Sphere returns a sphere centered on the origin.
func Sphere(radius float64) (Solid, error) {
	if !(radius > 0) {
		return Solid{}, fmt.Errorf("sphere r=%g: radius must be > 0", radius)
	}
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return Solid{}, fmt.Errorf("sphere r=%g: %w", radius, err)
	}
	return Solid{s: s}, nil
}

// Translate moves the solid by d.
func (s Solid) Translate(d r3.Vec) Solid {
	m := sdf.Translate3d(v3.Vec{X: d.X, Y: d.Y, Z: d.Z})
	return Solid{s: sdf.Transform3D(s.s, m)}
}

// Union joins a and b.
func Union(a, b Solid) Solid {
	return Solid{s: sdf.Union3D(a.s, b.s)}
}

// Difference removes b from a.
func Difference(a, b Solid) Solid {
	return Solid{s: sdf.Difference3D(a.s, b.s)}
}

// Bounds returns the SDF bounding box.
func (s Solid) Bounds() model.Bounds {
	bb := s.s.BoundingBox()
	return model.Bounds{
		Min: r3.Vec{X: bb.Min.X, Y: bb.Min.Y, Z: bb.Min.Z},
		Max: r3.Vec{X: bb.Max.X, Y: bb.Max.Y, Z: bb.Max.Z},
	}
}

// Mesh tessellates the solid with marching cubes. Triangles that collapse
// after rounding to float32 are dropped.
func (s Solid) Mesh(cells int) (*model.Mesh, error) {
	if cells <= 0 {
		cells = DefaultCells
	}
	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s.s, renderer)

	b := model.NewMeshBuilder()
	for _, tri := range triangles {
		n := tri.Normal()
		var corners [3][3]float32
		for j := 0; j < 3; j++ {
			v := tri[j]
			corners[j] = [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
		}
		if corners[0] == corners[1] || corners[1] == corners[2] || corners[0] == corners[2] {
			continue
		}
		b.AddTriangle(corners[0], corners[1], corners[2], [3]float32{float32(n.X), float32(n.Y), float32(n.Z)})
	}

	m := b.Mesh()
	if m.TriangleCount() == 0 {
		return nil, &model.InvalidMeshError{Reason: "tessellation produced no triangles"}
	}
	return m, nil
}
