package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// PlaneBasis returns two orthonormal vectors spanning the plane with the
// given normal. The first is built from the world axis least aligned with
// the normal, so the cross product never degenerates.
func PlaneBasis(normal r3.Vec) (v1, v2 r3.Vec) {
	if r3.Norm2(normal) == 0 {
		return r3.Vec{X: 1}, r3.Vec{Y: 1}
	}
	n := r3.Unit(normal)
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)

	var axis r3.Vec
	switch {
	case ax <= ay && ax <= az:
		axis = r3.Vec{X: 1}
	case ay <= az:
		axis = r3.Vec{Y: 1}
	default:
		axis = r3.Vec{Z: 1}
	}
	v1 = r3.Unit(r3.Cross(axis, n))
	v2 = r3.Cross(n, v1)
	return v1, v2
}
