package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Keypoint is a surface position paired with the surface normal found there.
// Normals come straight from the collision surface and are not guaranteed
// to be unit length.
type Keypoint struct {
	Position r3.Vec `json:"position"`
	Normal   r3.Vec `json:"normal"`
}

// Triangle references three mesh vertices by index and carries a
// precomputed face normal (not necessarily unit length).
type Triangle struct {
	V      [3]uint32  `json:"v"`
	Normal [3]float32 `json:"normal"`
}

// Mesh is an indexed triangulated solid.
type Mesh struct {
	Vertices  [][3]float32 `json:"vertices"`
	Triangles []Triangle   `json:"triangles"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Triangles)
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Vertex returns vertex i widened to float64.
func (m *Mesh) Vertex(i uint32) r3.Vec {
	v := m.Vertices[i]
	return r3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
}

// Validate checks that every triangle references an existing vertex.
func (m *Mesh) Validate() error {
	n := uint32(len(m.Vertices))
	for i, t := range m.Triangles {
		for _, idx := range t.V {
			if idx >= n {
				return &InvalidMeshError{Reason: fmt.Sprintf("triangle %d references vertex %d out of range", i, idx)}
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Vertices:  make([][3]float32, len(m.Vertices)),
		Triangles: make([]Triangle, len(m.Triangles)),
	}
	copy(c.Vertices, m.Vertices)
	copy(c.Triangles, m.Triangles)
	return c
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min r3.Vec `json:"min"`
	Max r3.Vec `json:"max"`
}

// Size returns the extent along each axis.
func (b Bounds) Size() r3.Vec {
	return r3.Sub(b.Max, b.Min)
}

// Center returns the midpoint of the box.
func (b Bounds) Center() r3.Vec {
	return r3.Scale(0.5, r3.Add(b.Min, b.Max))
}

// Radius returns half the length of the box diagonal, the radius of the
// sphere through all eight corners.
func (b Bounds) Radius() float64 {
	return 0.5 * r3.Norm(b.Size())
}

// Contains reports whether p lies inside or on the box.
func (b Bounds) Contains(p r3.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Expand grows the box by frac of its extent on both sides of each axis.
func (b Bounds) Expand(frac float64) Bounds {
	pad := r3.Scale(frac, b.Size())
	return Bounds{Min: r3.Sub(b.Min, pad), Max: r3.Add(b.Max, pad)}
}

// MeshBuilder assembles an indexed mesh from loose triangles, merging
// vertices with identical coordinates.
type MeshBuilder struct {
	mesh  Mesh
	index map[[3]float32]uint32
}

// NewMeshBuilder returns an empty builder.
func NewMeshBuilder() *MeshBuilder {
	return &MeshBuilder{index: make(map[[3]float32]uint32)}
}

func (b *MeshBuilder) vertex(v [3]float32) uint32 {
	if i, ok := b.index[v]; ok {
		return i
	}
	i := uint32(len(b.mesh.Vertices))
	b.mesh.Vertices = append(b.mesh.Vertices, v)
	b.index[v] = i
	return i
}

// AddTriangle appends a triangle with the given corners and face normal.
func (b *MeshBuilder) AddTriangle(a, c, d [3]float32, normal [3]float32) {
	b.mesh.Triangles = append(b.mesh.Triangles, Triangle{
		V:      [3]uint32{b.vertex(a), b.vertex(c), b.vertex(d)},
		Normal: normal,
	})
}

// Mesh returns the assembled mesh. The builder must not be reused.
func (b *MeshBuilder) Mesh() *Mesh {
	m := b.mesh
	return &m
}

// Vec32 narrows a vector to the mesh's float32 storage.
func Vec32(v r3.Vec) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

// IsFinite reports whether all components of v are finite.
func IsFinite(v r3.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}
