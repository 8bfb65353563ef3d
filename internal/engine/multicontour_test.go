package engine

import (
	"errors"
	"testing"

	"github.com/piwi3910/raycam/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestPlaneMultiContourUnitCube(t *testing.T) {
	m, err := NewPlaneMultiContour(r3.Vec{Z: -0.4}, r3.Vec{Z: 0.4}, 4, contourSettings(16))
	require.NoError(t, err)
	require.NoError(t, m.Process(unitCube()))

	assert.Len(t, m.Keypoints(), 80)
	assert.Equal(t, []int{16, 16, 16, 16, 16}, m.LayerCounts())
	assert.InDelta(t, 0.2, m.Spacing(), 1e-12)

	// Layer order is preserved: each block of 16 sits on its own plane.
	kps := m.Keypoints()
	for layer := 0; layer < 5; layer++ {
		z := -0.4 + 0.2*float64(layer)
		assertOnPlane(t, kps[layer*16:(layer+1)*16], r3.Vec{Z: z}, r3.Vec{Z: 1}, 1e-6)
	}
}

func TestAxisMultiContourUnitCube(t *testing.T) {
	m, err := NewAxisMultiContour(-0.4, 0.4, 4, contourSettings(16))
	require.NoError(t, err)
	require.NoError(t, m.Process(unitCube()))
	assert.Len(t, m.Keypoints(), 80)
}

func TestMultiContourPlaneCount(t *testing.T) {
	tests := []struct {
		layers int
		planes int
	}{
		{0, 1},
		{1, 2},
		{7, 8},
	}
	for _, tt := range tests {
		m, err := NewPlaneMultiContour(r3.Vec{Z: -0.3}, r3.Vec{Z: 0.3}, tt.layers, contourSettings(8))
		require.NoError(t, err)
		require.NoError(t, m.Process(unitCube()))
		assert.Len(t, m.LayerCounts(), tt.planes, "layers=%d", tt.layers)
		assert.Len(t, m.Keypoints(), 8*tt.planes, "layers=%d", tt.layers)
	}
}

func TestMultiContourSinglePlaneSitsAtStart(t *testing.T) {
	m, err := NewPlaneMultiContour(r3.Vec{Z: 0.25}, r3.Vec{Z: 0.4}, 0, contourSettings(8))
	require.NoError(t, err)
	require.NoError(t, m.Process(unitCube()))
	assertOnPlane(t, m.Keypoints(), r3.Vec{Z: 0.25}, r3.Vec{Z: 1}, 1e-6)
}

func TestMultiContourFailureClearsBuffer(t *testing.T) {
	m, err := NewPlaneMultiContour(r3.Vec{Z: -0.4}, r3.Vec{Z: 0.4}, 2, contourSettings(8))
	require.NoError(t, err)
	require.NoError(t, m.Process(unitCube()))
	require.NotEmpty(t, m.Keypoints())

	err = m.Process(&model.Mesh{})
	var perr *model.ProcessingError
	assert.True(t, errors.As(err, &perr))
	assert.Empty(t, m.Keypoints())
	assert.Empty(t, m.LayerCounts())
}

func TestNewMultiContourRejectsBadInput(t *testing.T) {
	_, err := NewPlaneMultiContour(r3.Vec{Z: 1}, r3.Vec{Z: 1}, 3, contourSettings(8))
	assert.Error(t, err, "coincident endpoints")

	_, err = NewAxisMultiContour(0, 1, -1, contourSettings(8))
	assert.Error(t, err, "negative layers")

	_, err = NewAxisMultiContour(0, 1, 2, contourSettings(0))
	assert.Error(t, err, "no rays")
}
