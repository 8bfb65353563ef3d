package primitive

import (
	"math"
	"testing"

	"github.com/piwi3910/raycam/internal/engine"
	"github.com/piwi3910/raycam/internal/geometry"
	"github.com/piwi3910/raycam/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestBoxMesh(t *testing.T) {
	box, err := Box(r3.Vec{X: 4, Y: 2, Z: 1})
	require.NoError(t, err)
	m, err := box.Mesh(40)
	require.NoError(t, err)
	require.NoError(t, m.Validate())

	b, err := geometry.ComputeBounds(m)
	require.NoError(t, err)
	size := b.Size()
	assert.InDelta(t, 4, size.X, 0.25)
	assert.InDelta(t, 2, size.Y, 0.25)
	assert.InDelta(t, 1, size.Z, 0.25)
}

func TestCylinderContour(t *testing.T) {
	cyl, err := Cylinder(4, 1)
	require.NoError(t, err)
	m, err := cyl.Mesh(60)
	require.NoError(t, err)

	s := model.DefaultContourSettings()
	s.NumRays = 24
	sweep, err := engine.NewAxisMultiContour(-1, 1, 2, s)
	require.NoError(t, err)
	require.NoError(t, sweep.Process(m))

	kps := sweep.Keypoints()
	assert.LessOrEqual(t, len(kps), 3*24)
	assert.GreaterOrEqual(t, len(kps), 3*24-3, "nearly every ray must strike the closed surface")
	for _, kp := range kps {
		r := math.Hypot(kp.Position.X, kp.Position.Y)
		assert.InDelta(t, 1, r, 0.1, "keypoint at %v is off the cylinder wall", kp.Position)
	}
}

func TestTranslateAndBooleans(t *testing.T) {
	a, err := Sphere(1)
	require.NoError(t, err)
	b, err := Sphere(1)
	require.NoError(t, err)

	u := Union(a, b.Translate(r3.Vec{X: 3}))
	bounds := u.Bounds()
	assert.InDelta(t, -1, bounds.Min.X, 1e-9)
	assert.InDelta(t, 4, bounds.Max.X, 1e-9)

	hole, err := Cylinder(4, 0.3)
	require.NoError(t, err)
	d := Difference(a, hole)
	m, err := d.Mesh(50)
	require.NoError(t, err)

	surface, err := geometry.NewSurface(m)
	require.NoError(t, err)
	assert.False(t, surface.ContainsPoint(r3.Vec{}, r3.Vec{X: 1}), "the bore is empty")
	assert.True(t, surface.ContainsPoint(r3.Vec{X: 0.6}, r3.Vec{X: 1, Y: 0.3, Z: 0.1}))
}

func TestInvalidPrimitives(t *testing.T) {
	tests := []struct {
		name  string
		build func() (Solid, error)
	}{
		{"box negative width", func() (Solid, error) { return Box(r3.Vec{X: -1, Y: 1, Z: 1}) }},
		{"box flat", func() (Solid, error) { return Box(r3.Vec{X: 1, Y: 1}) }},
		{"box NaN", func() (Solid, error) { return Box(r3.Vec{X: math.NaN(), Y: 1, Z: 1}) }},
		{"cylinder zero height", func() (Solid, error) { return Cylinder(0, 1) }},
		{"cylinder negative radius", func() (Solid, error) { return Cylinder(1, -1) }},
		{"cylinder zero radius", func() (Solid, error) { return Cylinder(1, 0) }},
		{"sphere zero radius", func() (Solid, error) { return Sphere(0) }},
		{"sphere NaN radius", func() (Solid, error) { return Sphere(math.NaN()) }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.build()
			assert.Error(t, err)
		})
	}
}
