package geometry

import (
	"github.com/piwi3910/raycam/internal/model"
	"gonum.org/v1/gonum/spatial/r3"
)

// StockMargin is the fraction of the target extent added on each side of
// each axis when deriving the stock box.
const StockMargin = 0.1

// boxFaces lists the twelve triangles of a box whose eight corners are
// indexed x | y<<1 | z<<2, wound counter-clockwise seen from outside.
var boxFaces = [12]struct {
	v [3]uint32
	n [3]float32
}{
	{[3]uint32{0, 4, 6}, [3]float32{-1, 0, 0}},
	{[3]uint32{0, 6, 2}, [3]float32{-1, 0, 0}},
	{[3]uint32{1, 3, 7}, [3]float32{1, 0, 0}},
	{[3]uint32{1, 7, 5}, [3]float32{1, 0, 0}},
	{[3]uint32{0, 1, 5}, [3]float32{0, -1, 0}},
	{[3]uint32{0, 5, 4}, [3]float32{0, -1, 0}},
	{[3]uint32{2, 6, 7}, [3]float32{0, 1, 0}},
	{[3]uint32{2, 7, 3}, [3]float32{0, 1, 0}},
	{[3]uint32{0, 2, 3}, [3]float32{0, 0, -1}},
	{[3]uint32{0, 3, 1}, [3]float32{0, 0, -1}},
	{[3]uint32{4, 5, 7}, [3]float32{0, 0, 1}},
	{[3]uint32{4, 7, 6}, [3]float32{0, 0, 1}},
}

// BoxMesh builds an axis-aligned box between min and max with outward
// face normals.
func BoxMesh(min, max r3.Vec) *model.Mesh {
	m := &model.Mesh{
		Vertices:  make([][3]float32, 8),
		Triangles: make([]model.Triangle, len(boxFaces)),
	}
	for i := range m.Vertices {
		p := min
		if i&1 != 0 {
			p.X = max.X
		}
		if i&2 != 0 {
			p.Y = max.Y
		}
		if i&4 != 0 {
			p.Z = max.Z
		}
		m.Vertices[i] = model.Vec32(p)
	}
	for i, f := range boxFaces {
		m.Triangles[i] = model.Triangle{V: f.v, Normal: f.n}
	}
	return m
}

// StockMesh returns the stock box enclosing target with StockMargin of
// padding on every side.
func StockMesh(target *model.Mesh) (*model.Mesh, error) {
	b, err := ComputeBounds(target)
	if err != nil {
		return nil, err
	}
	e := b.Expand(StockMargin)
	return BoxMesh(e.Min, e.Max), nil
}
