package importer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/raycam/internal/geometry"
	"github.com/piwi3910/raycam/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// asciiSTL renders m as an ASCII STL document.
func asciiSTL(name string, m *model.Mesh) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "solid %s\n", name)
	for _, t := range m.Triangles {
		fmt.Fprintf(&sb, "  facet normal %g %g %g\n    outer loop\n", t.Normal[0], t.Normal[1], t.Normal[2])
		for _, idx := range t.V {
			v := m.Vertices[idx]
			fmt.Fprintf(&sb, "      vertex %g %g %g\n", v[0], v[1], v[2])
		}
		sb.WriteString("    endloop\n  endfacet\n")
	}
	fmt.Fprintf(&sb, "endsolid %s\n", name)
	return sb.String()
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func box(min, max r3.Vec) *model.Mesh {
	return geometry.BoxMesh(min, max)
}

func TestImportSTLCube(t *testing.T) {
	cube := box(r3.Vec{X: -0.5, Y: -0.5, Z: -0.5}, r3.Vec{X: 0.5, Y: 0.5, Z: 0.5})
	path := writeFile(t, "cube.stl", asciiSTL("cube", cube))

	result, err := ImportSTL(path)
	require.NoError(t, err)
	assert.Equal(t, "cube", result.Name)
	assert.Equal(t, 8, result.Mesh.VertexCount(), "shared corners are merged")
	assert.Equal(t, 12, result.Mesh.TriangleCount())
	assert.Empty(t, result.Warnings)
	assert.NoError(t, result.Mesh.Validate())
}

func TestImportSTLFromReaderSkipsDegenerate(t *testing.T) {
	doc := `solid plate
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 1 1 0
    endloop
  endfacet
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 0 0 0
      vertex 1 1 0
    endloop
  endfacet
endsolid plate
`
	result, err := ImportSTLFromReader(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Mesh.TriangleCount())
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "1 degenerate")
}

func TestImportSTLFromStream(t *testing.T) {
	cube := box(r3.Vec{X: -1, Y: -1, Z: -1}, r3.Vec{X: 1, Y: 1, Z: 1})
	doc := asciiSTL("cube", cube)

	// io.MultiReader hides the Seek method of the underlying readers.
	r := io.MultiReader(strings.NewReader(doc[:20]), strings.NewReader(doc[20:]))
	result, err := ImportSTLFromReader(r)
	require.NoError(t, err)
	assert.Equal(t, "cube", result.Name)
	assert.Equal(t, 12, result.Mesh.TriangleCount())
}

func TestImportSTLErrors(t *testing.T) {
	_, err := ImportSTL(filepath.Join(t.TempDir(), "missing.stl"))
	assert.Error(t, err)

	onlyDegenerate := `solid bad
  facet normal 0 0 1
    outer loop
      vertex 1 1 1
      vertex 1 1 1
      vertex 2 2 2
    endloop
  endfacet
endsolid bad
`
	_, err = ImportSTLFromReader(strings.NewReader(onlyDegenerate))
	var invalid *model.InvalidMeshError
	assert.True(t, errors.As(err, &invalid), "got %v", err)
}

func TestCenterOnXY(t *testing.T) {
	m := box(r3.Vec{X: 9, Y: 18, Z: 4.5}, r3.Vec{X: 11, Y: 22, Z: 5.5})
	minZ, maxZ, err := CenterOnXY(m)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, minZ, 1e-6)
	assert.InDelta(t, 5.5, maxZ, 1e-6)

	b, err := geometry.ComputeBounds(m)
	require.NoError(t, err)
	assert.InDelta(t, 0, b.Center().X, 1e-6)
	assert.InDelta(t, 0, b.Center().Y, 1e-6)
	assert.InDelta(t, 4.5, b.Min.Z, 1e-6, "Z is not moved")
	assert.InDelta(t, 2, b.Size().Y*0.5, 1e-6)
}

func TestCenterOnXYInvalid(t *testing.T) {
	_, _, err := CenterOnXY(&model.Mesh{})
	var invalid *model.InvalidMeshError
	assert.True(t, errors.As(err, &invalid))
}

func TestScaleToUnit(t *testing.T) {
	m := box(r3.Vec{X: -1, Y: -2, Z: 0}, r3.Vec{X: 1, Y: 2, Z: 8})
	require.NoError(t, ScaleToUnit(m))

	b, err := geometry.ComputeBounds(m)
	require.NoError(t, err)
	size := b.Size()
	assert.InDelta(t, 1, size.Z, 1e-6)
	assert.InDelta(t, 0.25, size.X, 1e-6)
	assert.InDelta(t, 0.5, size.Y, 1e-6)
	assert.InDelta(t, 4, b.Center().Z, 1e-6, "scaled about the bounds center")
}

func TestScaleToUnitZeroExtent(t *testing.T) {
	tests := []struct {
		name string
		mesh *model.Mesh
	}{
		{"flat in Z", box(r3.Vec{}, r3.Vec{X: 1, Y: 1})},
		{"flat in X", box(r3.Vec{}, r3.Vec{Y: 1, Z: 1})},
		{"single point", &model.Mesh{Vertices: [][3]float32{{1, 2, 3}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ScaleToUnit(tt.mesh)
			var invalid *model.InvalidMeshError
			assert.True(t, errors.As(err, &invalid), "got %v", err)
		})
	}
}
