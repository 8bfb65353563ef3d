package engine

import (
	"errors"
	"math"

	"github.com/piwi3910/raycam/internal/geometry"
	"github.com/piwi3910/raycam/internal/logger"
	"github.com/piwi3910/raycam/internal/model"
	"gonum.org/v1/gonum/spatial/r3"
)

// CircularClearing shrinks concentric rings around the model, one ring
// stack per layer between start and end, until each ring would cut the
// mesh. Every committed ring contributes PointsPerRing keypoints whose
// normals point radially outward.
type CircularClearing struct {
	start    r3.Vec
	end      r3.Vec
	settings model.ClearingSettings

	keypoints []model.Keypoint
	radii     [][]float64
	completed []bool
	phases    int
}

// NewCircularClearing validates settings and returns a clearing task.
func NewCircularClearing(start, end r3.Vec, settings model.ClearingSettings) (*CircularClearing, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if !model.IsFinite(start) || !model.IsFinite(end) {
		return nil, errors.New("start and end positions must be finite")
	}
	if settings.NumLayers > 1 && r3.Norm2(r3.Sub(end, start)) == 0 {
		return nil, errors.New("start and end positions must differ for more than one layer")
	}
	if settings.ToolID <= 0 {
		settings.ToolID = 1
	}
	return &CircularClearing{start: start, end: end, settings: settings}, nil
}

// Name implements Task.
func (c *CircularClearing) Name() string { return "CircularClearing" }

// ToolID implements Task.
func (c *CircularClearing) ToolID() int { return c.settings.ToolID }

// Keypoints implements Task.
func (c *CircularClearing) Keypoints() []model.Keypoint {
	return copyKeypoints(c.keypoints)
}

// LayerRadii returns the committed radii of each layer from the last run,
// in commit order.
func (c *CircularClearing) LayerRadii() [][]float64 {
	out := make([][]float64, len(c.radii))
	for i, r := range c.radii {
		out[i] = append([]float64(nil), r...)
	}
	return out
}

// Phases returns the number of phases the last run took.
func (c *CircularClearing) Phases() int { return c.phases }

// axis returns the unit sweep direction. A zero-length sweep falls back to Z.
func (c *CircularClearing) axis() r3.Vec {
	span := r3.Sub(c.end, c.start)
	if r3.Norm2(span) == 0 {
		return r3.Vec{Z: 1}
	}
	return r3.Unit(span)
}

// LayerCenters returns the center of each layer's rings.
func (c *CircularClearing) LayerCenters() []r3.Vec {
	n := c.settings.NumLayers
	centers := make([]r3.Vec, n)
	if n == 1 {
		centers[0] = c.start
		return centers
	}
	axis := c.axis()
	h := r3.Norm(r3.Sub(c.end, c.start)) / float64(n-1)
	for i := range centers {
		centers[i] = r3.Add(c.start, r3.Scale(float64(i)*h, axis))
	}
	return centers
}

// ring holds the sample points and outward directions of one ring.
type ring struct {
	points []r3.Vec
	dirs   []r3.Vec
}

type ringSampler struct {
	v1, v2 r3.Vec
	cos    []float64
	sin    []float64
}

func newRingSampler(axis r3.Vec, points int) ringSampler {
	v1, v2 := geometry.PlaneBasis(axis)
	s := ringSampler{v1: v1, v2: v2, cos: make([]float64, points), sin: make([]float64, points)}
	step := 2 * math.Pi / float64(points)
	for i := 0; i < points; i++ {
		s.sin[i], s.cos[i] = math.Sincos(float64(i) * step)
	}
	return s
}

func (s ringSampler) ring(center r3.Vec, radius float64) ring {
	r := ring{points: make([]r3.Vec, len(s.cos)), dirs: make([]r3.Vec, len(s.cos))}
	for i := range s.cos {
		d := r3.Add(r3.Scale(s.cos[i], s.v1), r3.Scale(s.sin[i], s.v2))
		r.dirs[i] = d
		r.points[i] = r3.Add(center, r3.Scale(radius, d))
	}
	return r
}

// ringValid reports whether the closed polygon of ring points at radius
// clears the surface.
func (c *CircularClearing) ringValid(surface geometry.Surface, sampler ringSampler, center r3.Vec, radius float64) bool {
	if radius < c.settings.MinRadius {
		return false
	}
	r := sampler.ring(center, radius)
	n := len(r.points)
	for i := 0; i < n; i++ {
		seg := r3.Sub(r.points[(i+1)%n], r.points[i])
		length := math.Max(r3.Norm(seg), c.settings.ObstructionTolerance)
		if surface.IsObstructed(r.points[i], seg, length) {
			return false
		}
	}
	return true
}

// findShrink returns the largest shrink amount in [MinShrink, MaxShrink]
// that keeps the ring valid, or false when even MinShrink fails.
func (c *CircularClearing) findShrink(surface geometry.Surface, sampler ringSampler, center r3.Vec, radius float64) (float64, bool) {
	s := c.settings
	if c.ringValid(surface, sampler, center, radius-s.MaxShrink) {
		return s.MaxShrink, true
	}
	if !c.ringValid(surface, sampler, center, radius-s.MinShrink) {
		return 0, false
	}
	low, high := s.MinShrink, s.MaxShrink
	for high-low > s.SearchPrecision {
		mid := 0.5 * (low + high)
		if c.ringValid(surface, sampler, center, radius-mid) {
			low = mid
		} else {
			high = mid
		}
	}
	return low, true
}

// Process implements Task.
func (c *CircularClearing) Process(mesh *model.Mesh) error {
	c.keypoints = nil
	c.phases = 0
	n := c.settings.NumLayers
	c.radii = make([][]float64, n)
	c.completed = make([]bool, n)

	surface, err := buildSurface(c.Name(), mesh)
	if err != nil {
		return err
	}
	c.run(surface)
	return nil
}

func (c *CircularClearing) run(surface geometry.Surface) {
	log := logger.Logger()
	centers := c.LayerCenters()
	sampler := newRingSampler(c.axis(), c.settings.PointsPerRing)
	current := make([]float64, len(centers))
	for i := range current {
		current[i] = c.settings.InitialRadius
	}

	for {
		if c.phases >= c.settings.MaxPhases {
			log.Warn("circular clearing hit phase limit",
				"max_phases", c.settings.MaxPhases,
				"keypoints", len(c.keypoints))
			for i := range c.completed {
				c.completed[i] = true
			}
			break
		}

		committed := false
		for layer, center := range centers {
			if c.completed[layer] {
				continue
			}
			shrink, ok := c.findShrink(surface, sampler, center, current[layer])
			if !ok {
				c.completed[layer] = true
				log.Debug("clearing layer completed", "layer", layer, "radius", current[layer])
				continue
			}
			current[layer] -= shrink
			r := sampler.ring(center, current[layer])
			for i := range r.points {
				c.keypoints = append(c.keypoints, model.Keypoint{Position: r.points[i], Normal: r.dirs[i]})
			}
			c.radii[layer] = append(c.radii[layer], current[layer])
			committed = true
		}
		c.phases++
		log.Debug("clearing phase done", "phase", c.phases, "keypoints", len(c.keypoints))

		if !committed && c.allCompleted() {
			break
		}
	}
	log.Debug("circular clearing done", "phases", c.phases, "keypoints", len(c.keypoints))
}

func (c *CircularClearing) allCompleted() bool {
	for _, done := range c.completed {
		if !done {
			return false
		}
	}
	return true
}
