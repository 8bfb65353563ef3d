package geometry

import (
	"fmt"
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/piwi3910/raycam/internal/model"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// insideOffset nudges IsInside rays off the query point.
	insideOffset = 1e-6
	// edgeEpsilon makes triangle edges and corners count as hits.
	edgeEpsilon = 1e-9
	// minHitDistance rejects hits at the ray origin itself.
	minHitDistance = 1e-9

	treeMinChildren = 25
	treeMaxChildren = 50
)

// Hit describes a ray/surface intersection.
type Hit struct {
	Distance float64
	Point    r3.Vec
	// Normal is the triangle's stored face normal, not necessarily unit.
	Normal   r3.Vec
	Triangle int
}

// Surface answers ray queries against a triangulated solid.
type Surface interface {
	// NearestForwardHit returns the closest intersection along dir from
	// origin within maxDist. dir need not be normalized; distances are in
	// world units.
	NearestForwardHit(origin, dir r3.Vec, maxDist float64) (Hit, bool)
	// IsObstructed reports whether a hit exists strictly closer than length.
	IsObstructed(origin, dir r3.Vec, length float64) bool
	// IsInside reports whether p lies inside the solid, probing along ref.
	IsInside(p, ref r3.Vec) bool
}

type indexedTriangle struct {
	idx    int
	a      r3.Vec
	e1, e2 r3.Vec
	normal r3.Vec
	rect   rtreego.Rect
}

func (t *indexedTriangle) Bounds() rtreego.Rect {
	return t.rect
}

// TriSurface is a Surface over a model.Mesh backed by an R-tree of
// triangle bounding boxes.
type TriSurface struct {
	tris   []*indexedTriangle
	tree   *rtreego.Rtree
	bounds model.Bounds
	center r3.Vec
	radius float64
	pad    float64
}

var _ Surface = (*TriSurface)(nil)

// NewSurface indexes the triangles of m for ray queries.
func NewSurface(m *model.Mesh) (*TriSurface, error) {
	b, err := ComputeBounds(m)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	s := &TriSurface{
		bounds: b,
		center: b.Center(),
		radius: b.Radius(),
	}
	s.pad = 1e-6 * math.Max(1, s.radius)

	objs := make([]rtreego.Spatial, 0, len(m.Triangles))
	for i, t := range m.Triangles {
		a, p1, p2 := m.Vertex(t.V[0]), m.Vertex(t.V[1]), m.Vertex(t.V[2])
		e1, e2 := r3.Sub(p1, a), r3.Sub(p2, a)
		n := r3.Vec{X: float64(t.Normal[0]), Y: float64(t.Normal[1]), Z: float64(t.Normal[2])}
		if r3.Norm2(n) == 0 {
			n = r3.Cross(e1, e2)
		}
		rect, err := s.paddedRect(a, p1, p2)
		if err != nil {
			return nil, fmt.Errorf("indexing triangle %d: %w", i, err)
		}
		it := &indexedTriangle{idx: i, a: a, e1: e1, e2: e2, normal: n, rect: rect}
		s.tris = append(s.tris, it)
		objs = append(objs, it)
	}
	s.tree = rtreego.NewTree(3, treeMinChildren, treeMaxChildren, objs...)
	return s, nil
}

// Bounds returns the bounding box of the indexed mesh.
func (s *TriSurface) Bounds() model.Bounds {
	return s.bounds
}

// Radius returns the bounding radius about the box center.
func (s *TriSurface) Radius() float64 {
	return s.radius
}

// TriangleCount returns the number of indexed triangles.
func (s *TriSurface) TriangleCount() int {
	return len(s.tris)
}

func (s *TriSurface) paddedRect(pts ...r3.Vec) (rtreego.Rect, error) {
	lo := rtreego.Point{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := rtreego.Point{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, p := range pts {
		c := [3]float64{p.X, p.Y, p.Z}
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], c[k])
			hi[k] = math.Max(hi[k], c[k])
		}
	}
	for k := 0; k < 3; k++ {
		lo[k] -= s.pad
		hi[k] += s.pad
	}
	return rtreego.NewRectFromPoints(lo, hi)
}

// NearestForwardHit implements Surface.
func (s *TriSurface) NearestForwardHit(origin, dir r3.Vec, maxDist float64) (Hit, bool) {
	if len(s.tris) == 0 || r3.Norm2(dir) == 0 || !(maxDist > 0) {
		return Hit{}, false
	}
	d := r3.Unit(dir)

	// Nothing on the mesh lies farther than this from origin.
	reach := r3.Norm(r3.Sub(origin, s.center)) + s.radius + s.pad
	limit := math.Min(maxDist, reach)
	if !(limit > 0) {
		return Hit{}, false
	}

	query, err := s.paddedRect(origin, r3.Add(origin, r3.Scale(limit, d)))
	if err != nil {
		return Hit{}, false
	}

	best := Hit{Distance: math.Inf(1), Triangle: -1}
	for _, obj := range s.tree.SearchIntersect(query) {
		t := obj.(*indexedTriangle)
		dist, ok := intersect(origin, d, t)
		if !ok || dist > maxDist {
			continue
		}
		if dist < best.Distance || (dist == best.Distance && t.idx < best.Triangle) {
			best = Hit{Distance: dist, Normal: t.normal, Triangle: t.idx}
		}
	}
	if best.Triangle < 0 {
		return Hit{}, false
	}
	best.Point = r3.Add(origin, r3.Scale(best.Distance, d))
	return best, true
}

// IsObstructed implements Surface.
func (s *TriSurface) IsObstructed(origin, dir r3.Vec, length float64) bool {
	hit, ok := s.NearestForwardHit(origin, dir, length)
	return ok && hit.Distance < length
}

// IsInside implements Surface. Exactly one of the two opposite rays must
// hit for p to count as inside, which suits open shells. Use ContainsPoint
// for closed solids.
func (s *TriSurface) IsInside(p, ref r3.Vec) bool {
	if r3.Norm2(ref) == 0 {
		return false
	}
	d := r3.Unit(ref)
	start := r3.Add(p, r3.Scale(insideOffset, d))
	_, fwd := s.NearestForwardHit(start, d, math.Inf(1))
	_, back := s.NearestForwardHit(start, r3.Scale(-1, d), math.Inf(1))
	return fwd != back
}

// CrossingCount returns the number of distinct surface crossings along the
// unbounded ray from origin. Hits on shared edges are counted once.
func (s *TriSurface) CrossingCount(origin, dir r3.Vec) int {
	if len(s.tris) == 0 || r3.Norm2(dir) == 0 {
		return 0
	}
	d := r3.Unit(dir)
	reach := r3.Norm(r3.Sub(origin, s.center)) + s.radius + s.pad
	query, err := s.paddedRect(origin, r3.Add(origin, r3.Scale(reach, d)))
	if err != nil {
		return 0
	}
	var dists []float64
	for _, obj := range s.tree.SearchIntersect(query) {
		if dist, ok := intersect(origin, d, obj.(*indexedTriangle)); ok {
			dists = append(dists, dist)
		}
	}
	sort.Float64s(dists)
	count := 0
	last := math.Inf(-1)
	for _, dist := range dists {
		if dist-last > s.pad {
			count++
		}
		last = dist
	}
	return count
}

// ContainsPoint reports whether p lies inside a closed solid by crossing
// parity along ref.
func (s *TriSurface) ContainsPoint(p, ref r3.Vec) bool {
	if r3.Norm2(ref) == 0 {
		return false
	}
	d := r3.Unit(ref)
	return s.CrossingCount(r3.Add(p, r3.Scale(insideOffset, d)), d)%2 == 1
}

// intersect is the Möller–Trumbore ray/triangle test with d of unit length.
func intersect(origin, d r3.Vec, t *indexedTriangle) (float64, bool) {
	p := r3.Cross(d, t.e2)
	det := r3.Dot(t.e1, p)
	if det == 0 || math.IsNaN(det) {
		return 0, false
	}
	inv := 1 / det
	sv := r3.Sub(origin, t.a)
	u := r3.Dot(sv, p) * inv
	if u < -edgeEpsilon || u > 1+edgeEpsilon {
		return 0, false
	}
	q := r3.Cross(sv, t.e1)
	v := r3.Dot(d, q) * inv
	if v < -edgeEpsilon || u+v > 1+edgeEpsilon {
		return 0, false
	}
	dist := r3.Dot(t.e2, q) * inv
	if dist <= minHitDistance {
		return 0, false
	}
	return dist, true
}
