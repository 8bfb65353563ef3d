package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/piwi3910/raycam/internal/geometry"
	"github.com/piwi3910/raycam/internal/logger"
	"github.com/piwi3910/raycam/internal/model"
	"gonum.org/v1/gonum/spatial/r3"
)

// ContourMode selects how a contour plane is specified.
type ContourMode int

const (
	// ModeAxis places the plane at a height along Z.
	ModeAxis ContourMode = iota
	// ModePlane uses an arbitrary point and normal.
	ModePlane
)

func (m ContourMode) String() string {
	switch m {
	case ModeAxis:
		return "axis"
	case ModePlane:
		return "plane"
	default:
		return fmt.Sprintf("ContourMode(%d)", int(m))
	}
}

// ContourTrace extracts the keypoints where the mesh surface crosses one
// plane, sampled by a fan of NumRays rays.
type ContourTrace struct {
	mode     ContourMode
	height   float64
	point    r3.Vec
	normal   r3.Vec
	settings model.ContourSettings

	keypoints []model.Keypoint
}

// NewAxisContour traces the horizontal plane z = height.
func NewAxisContour(height float64, settings model.ContourSettings) (*ContourTrace, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(height) || math.IsInf(height, 0) {
		return nil, fmt.Errorf("height must be finite, got %g", height)
	}
	return &ContourTrace{
		mode:     ModeAxis,
		height:   height,
		point:    r3.Vec{Z: height},
		normal:   r3.Vec{Z: 1},
		settings: settings,
	}, nil
}

// NewPlaneContour traces the plane through point with the given normal.
func NewPlaneContour(point, normal r3.Vec, settings model.ContourSettings) (*ContourTrace, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if !model.IsFinite(point) || !model.IsFinite(normal) {
		return nil, errors.New("plane point and normal must be finite")
	}
	if r3.Norm2(normal) == 0 {
		return nil, errors.New("plane normal must be non-zero")
	}
	return &ContourTrace{
		mode:     ModePlane,
		point:    point,
		normal:   r3.Unit(normal),
		settings: settings,
	}, nil
}

// Name implements Task.
func (c *ContourTrace) Name() string { return "ContourTrace" }

// ToolID implements Task.
func (c *ContourTrace) ToolID() int { return c.settings.ToolID }

// Mode reports how the plane was specified.
func (c *ContourTrace) Mode() ContourMode { return c.mode }

// Plane returns a point on the traced plane and its unit normal.
func (c *ContourTrace) Plane() (point, normal r3.Vec) { return c.point, c.normal }

// Keypoints implements Task.
func (c *ContourTrace) Keypoints() []model.Keypoint {
	return copyKeypoints(c.keypoints)
}

// Process implements Task.
func (c *ContourTrace) Process(mesh *model.Mesh) error {
	c.keypoints = nil
	surface, err := buildSurface(c.Name(), mesh)
	if err != nil {
		return err
	}
	c.processSurface(surface)
	return nil
}

// processSurface replaces the buffer with the crossings found on surface.
func (c *ContourTrace) processSurface(surface *geometry.TriSurface) {
	c.keypoints = c.keypoints[:0]
	switch c.mode {
	case ModeAxis:
		c.traceAxis(surface)
	default:
		c.tracePlane(surface)
	}
	logger.Logger().Debug("contour traced",
		"mode", c.mode.String(),
		"point", c.point,
		"rays", c.settings.NumRays,
		"keypoints", len(c.keypoints))
}

func (c *ContourTrace) traceAxis(surface *geometry.TriSurface) {
	b := surface.Bounds()
	size := b.Size()
	center := r3.Vec{X: b.Center().X, Y: b.Center().Y, Z: c.height}
	radius := 0.5*math.Hypot(size.X, size.Y) + c.settings.Standoff
	maxLen := c.rayLength(2 * radius)

	step := 2 * math.Pi / float64(c.settings.NumRays)
	for i := 0; i < c.settings.NumRays; i++ {
		theta := float64(i) * step
		origin := r3.Vec{
			X: center.X + radius*math.Cos(theta),
			Y: center.Y + radius*math.Sin(theta),
			Z: c.height,
		}
		hit, ok := surface.NearestForwardHit(origin, r3.Sub(center, origin), maxLen)
		if !ok || math.Abs(hit.Point.Z-c.height) >= c.settings.AxisTolerance {
			continue
		}
		c.keypoints = append(c.keypoints, model.Keypoint{Position: hit.Point, Normal: hit.Normal})
	}
}

func (c *ContourTrace) tracePlane(surface *geometry.TriSurface) {
	b := surface.Bounds()
	v1, v2 := geometry.PlaneBasis(c.normal)
	offset := r3.Norm(r3.Sub(c.point, b.Center())) + surface.Radius() + c.settings.Standoff
	maxLen := c.rayLength(2 * offset)

	step := 2 * math.Pi / float64(c.settings.NumRays)
	for i := 0; i < c.settings.NumRays; i++ {
		theta := float64(i) * step
		d := r3.Add(r3.Scale(math.Cos(theta), v1), r3.Scale(math.Sin(theta), v2))
		origin := r3.Add(c.point, r3.Scale(offset, d))
		hit, ok := surface.NearestForwardHit(origin, r3.Scale(-1, d), maxLen)
		if !ok || math.Abs(r3.Dot(r3.Sub(hit.Point, c.point), c.normal)) >= c.settings.PlaneTolerance {
			continue
		}
		c.keypoints = append(c.keypoints, model.Keypoint{Position: hit.Point, Normal: hit.Normal})
	}
}

func (c *ContourTrace) rayLength(derived float64) float64 {
	if c.settings.RayLength > 0 {
		return c.settings.RayLength
	}
	return derived
}
