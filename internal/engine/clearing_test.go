package engine

import (
	"math"
	"testing"

	"github.com/piwi3910/raycam/internal/geometry"
	"github.com/piwi3910/raycam/internal/model"
	"github.com/piwi3910/raycam/internal/primitive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func obstacle() *model.Mesh {
	return geometry.BoxMesh(r3.Vec{X: -1, Y: -1, Z: -1}, r3.Vec{X: 1, Y: 1, Z: 1})
}

func clearingSettings() model.ClearingSettings {
	return model.ClearingSettings{
		NumLayers:            3,
		InitialRadius:        3,
		PointsPerRing:        16,
		MaxShrink:            0.3,
		MinShrink:            0.001,
		MinRadius:            0.001,
		SearchPrecision:      0.001,
		ObstructionTolerance: 0,
		MaxPhases:            1000,
		ToolID:               1,
	}
}

func assertRadiiNonIncreasing(t *testing.T, radii [][]float64, initial float64) {
	t.Helper()
	for layer, rs := range radii {
		prev := initial
		for i, r := range rs {
			assert.GreaterOrEqual(t, r, 0.001, "layer %d ring %d", layer, i)
			assert.LessOrEqual(t, r, prev, "layer %d ring %d grew", layer, i)
			prev = r
		}
	}
}

func TestCircularClearingConvergesOnObstacle(t *testing.T) {
	s := clearingSettings()
	c, err := NewCircularClearing(r3.Vec{Z: -0.5}, r3.Vec{Z: 0.5}, s)
	require.NoError(t, err)
	require.NoError(t, c.Process(obstacle()))

	radii := c.LayerRadii()
	require.Len(t, radii, 3)
	assertRadiiNonIncreasing(t, radii, s.InitialRadius)

	for layer, rs := range radii {
		// Five full shrinks down to 1.5, then one bisected fit.
		require.Len(t, rs, 6, "layer %d", layer)
		// The ring polygon has a vertex on each diagonal, so it stops at
		// the corner of the square cross-section.
		assert.InDelta(t, math.Sqrt2, rs[len(rs)-1], 0.002, "layer %d", layer)
	}
	assert.Len(t, c.Keypoints(), 3*6*16)
	assert.Equal(t, 7, c.Phases())
}

func TestCircularClearingKeypointGeometry(t *testing.T) {
	c, err := NewCircularClearing(r3.Vec{Z: -0.5}, r3.Vec{Z: 0.5}, clearingSettings())
	require.NoError(t, err)
	require.NoError(t, c.Process(obstacle()))

	centers := c.LayerCenters()
	require.Equal(t, []r3.Vec{{Z: -0.5}, {Z: 0}, {Z: 0.5}}, centers)

	kps := c.Keypoints()
	require.Zero(t, len(kps)%16, "keypoints come in whole rings")
	for _, kp := range kps {
		assert.InDelta(t, 1, r3.Norm(kp.Normal), 1e-12)
		radial := r3.Vec{X: kp.Position.X, Y: kp.Position.Y}
		assert.Greater(t, r3.Dot(kp.Normal, radial), 0.0, "normal must point outward")
		assert.Zero(t, kp.Normal.Z)
	}
}

func TestCircularClearingBlockedFromStart(t *testing.T) {
	s := clearingSettings()
	s.InitialRadius = 1.2
	s.MaxShrink = 0.1
	s.MinShrink = 0.01
	c, err := NewCircularClearing(r3.Vec{Z: -0.5}, r3.Vec{Z: 0.5}, s)
	require.NoError(t, err)
	require.NoError(t, c.Process(obstacle()))

	assert.Empty(t, c.Keypoints())
	assert.Equal(t, 1, c.Phases())
	for _, rs := range c.LayerRadii() {
		assert.Empty(t, rs)
	}
}

func TestCircularClearingPhaseLimit(t *testing.T) {
	s := clearingSettings()
	s.MaxPhases = 2
	c, err := NewCircularClearing(r3.Vec{Z: -0.5}, r3.Vec{Z: 0.5}, s)
	require.NoError(t, err)
	require.NoError(t, c.Process(obstacle()))

	assert.Equal(t, 2, c.Phases())
	assert.Len(t, c.Keypoints(), 2*3*16)
	assert.True(t, c.allCompleted())
}

func TestCircularClearingWithoutNearbyObstacle(t *testing.T) {
	far := geometry.BoxMesh(r3.Vec{X: 100, Y: 100, Z: 100}, r3.Vec{X: 101, Y: 101, Z: 101})
	s := clearingSettings()
	s.NumLayers = 1
	s.InitialRadius = 1
	s.MaxShrink = 0.5
	c, err := NewCircularClearing(r3.Vec{}, r3.Vec{}, s)
	require.NoError(t, err)
	require.NoError(t, c.Process(far))

	radii := c.LayerRadii()
	require.Len(t, radii, 1)
	require.NotEmpty(t, radii[0])
	assertRadiiNonIncreasing(t, radii, s.InitialRadius)
	assert.Less(t, radii[0][len(radii[0])-1], 0.01)
	assert.Equal(t, []r3.Vec{{}}, c.LayerCenters())
}

func TestCircularClearingIsRepeatable(t *testing.T) {
	c, err := NewCircularClearing(r3.Vec{Z: -0.5}, r3.Vec{Z: 0.5}, clearingSettings())
	require.NoError(t, err)
	require.NoError(t, c.Process(obstacle()))
	first := c.Keypoints()
	require.NoError(t, c.Process(obstacle()))
	assert.Equal(t, first, c.Keypoints())
}

func TestNewCircularClearingRejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		start  r3.Vec
		end    r3.Vec
		modify func(*model.ClearingSettings)
	}{
		{"coincident endpoints", r3.Vec{}, r3.Vec{}, func(s *model.ClearingSettings) {}},
		{"zero min shrink", r3.Vec{}, r3.Vec{Z: 1}, func(s *model.ClearingSettings) { s.MinShrink = 0 }},
		{"min above max", r3.Vec{}, r3.Vec{Z: 1}, func(s *model.ClearingSettings) { s.MinShrink = 1 }},
		{"no layers", r3.Vec{}, r3.Vec{Z: 1}, func(s *model.ClearingSettings) { s.NumLayers = 0 }},
		{"no points", r3.Vec{}, r3.Vec{Z: 1}, func(s *model.ClearingSettings) { s.PointsPerRing = 0 }},
		{"single point ring", r3.Vec{}, r3.Vec{Z: 1}, func(s *model.ClearingSettings) { s.PointsPerRing = 1 }},
		{"two point ring", r3.Vec{}, r3.Vec{Z: 1}, func(s *model.ClearingSettings) { s.PointsPerRing = 2 }},
		{"zero min radius", r3.Vec{}, r3.Vec{Z: 1}, func(s *model.ClearingSettings) { s.MinRadius = 0 }},
		{"min radius below floor", r3.Vec{}, r3.Vec{Z: 1}, func(s *model.ClearingSettings) { s.MinRadius = 1e-4 }},
		{"non-finite", r3.Vec{X: math.NaN()}, r3.Vec{Z: 1}, func(s *model.ClearingSettings) {}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := clearingSettings()
			tt.modify(&s)
			_, err := NewCircularClearing(tt.start, tt.end, s)
			assert.Error(t, err)
		})
	}
}

func TestCircularClearingDefaultsToolID(t *testing.T) {
	s := clearingSettings()
	s.ToolID = 0
	c, err := NewCircularClearing(r3.Vec{}, r3.Vec{Z: 1}, s)
	require.NoError(t, err)
	assert.Equal(t, 1, c.ToolID())
}

func TestRingValidObstructionTolerance(t *testing.T) {
	// A square ring of radius 1 has chords of length sqrt(2). A small box
	// sits on the extension of the first chord, about 2.7 from its start.
	sampler := newRingSampler(r3.Vec{Z: 1}, 4)
	ring := sampler.ring(r3.Vec{}, 1)
	p0, p1 := ring.points[0], ring.points[1]
	dir := r3.Unit(r3.Sub(p1, p0))
	blocker := r3.Add(p0, r3.Scale(3, dir))
	half := r3.Vec{X: 0.2, Y: 0.3, Z: 0.2}
	surface, err := geometry.NewSurface(geometry.BoxMesh(r3.Sub(blocker, half), r3.Add(blocker, half)))
	require.NoError(t, err)

	tests := []struct {
		name      string
		tolerance float64
		valid     bool
	}{
		{"chord length only", 0, true},
		{"tolerance shorter than the gap", 2, true},
		{"tolerance reaches the blocker", 10, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := clearingSettings()
			s.PointsPerRing = 4
			s.ObstructionTolerance = tc.tolerance
			c, err := NewCircularClearing(r3.Vec{}, r3.Vec{Z: 1}, s)
			require.NoError(t, err)
			assert.Equal(t, tc.valid, c.ringValid(surface, sampler, r3.Vec{}, 1))
		})
	}
}

func TestCircularClearingTriangleRingStaysOutside(t *testing.T) {
	s := clearingSettings()
	s.PointsPerRing = 3
	c, err := NewCircularClearing(r3.Vec{Z: -0.5}, r3.Vec{Z: 0.5}, s)
	require.NoError(t, err)
	require.NoError(t, c.Process(obstacle()))

	for layer, rs := range c.LayerRadii() {
		require.NotEmpty(t, rs, "layer %d", layer)
		// Each triangle edge lies r/2 from the center and the square's
		// support distance is at least 1.
		assert.GreaterOrEqual(t, rs[len(rs)-1], 1.99, "layer %d", layer)
	}
}

func TestCircularClearingAroundCylinder(t *testing.T) {
	cyl, err := primitive.Cylinder(4, 1)
	require.NoError(t, err)
	mesh, err := cyl.Mesh(60)
	require.NoError(t, err)

	// Rings are only blocked within about 2% of the wall, so each step
	// must be smaller than that band or the ring jumps inside the solid.
	s := clearingSettings()
	s.MaxShrink = 0.01
	c, err := NewCircularClearing(r3.Vec{Z: -0.5}, r3.Vec{Z: 0.5}, s)
	require.NoError(t, err)
	require.NoError(t, c.Process(mesh))

	radii := c.LayerRadii()
	require.Len(t, radii, 3)
	assertRadiiNonIncreasing(t, radii, 3)
	for layer, rs := range radii {
		require.NotEmpty(t, rs, "layer %d", layer)
		// A 16-gon clears the unit circle once its edges do.
		assert.InDelta(t, 1/math.Cos(math.Pi/16), rs[len(rs)-1], 0.05, "layer %d", layer)
	}
}
