package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/piwi3910/raycam/internal/logger"
	"github.com/piwi3910/raycam/internal/model"
	"gonum.org/v1/gonum/spatial/r3"
)

// MultiContourTrace sweeps layers+1 evenly spaced contour planes between two
// positions and concatenates their keypoints in layer order.
type MultiContourTrace struct {
	mode     ContourMode
	startH   float64
	endH     float64
	start    r3.Vec
	end      r3.Vec
	layers   int
	settings model.ContourSettings

	keypoints   []model.Keypoint
	layerCounts []int
}

// NewAxisMultiContour sweeps horizontal planes from startH to endH.
func NewAxisMultiContour(startH, endH float64, layers int, settings model.ContourSettings) (*MultiContourTrace, error) {
	if err := validateSweep(layers, settings); err != nil {
		return nil, err
	}
	return &MultiContourTrace{
		mode:     ModeAxis,
		startH:   startH,
		endH:     endH,
		start:    r3.Vec{Z: startH},
		end:      r3.Vec{Z: endH},
		layers:   layers,
		settings: settings,
	}, nil
}

// NewPlaneMultiContour sweeps planes from start to end, each normal to the
// sweep direction.
func NewPlaneMultiContour(start, end r3.Vec, layers int, settings model.ContourSettings) (*MultiContourTrace, error) {
	if err := validateSweep(layers, settings); err != nil {
		return nil, err
	}
	if r3.Norm2(r3.Sub(end, start)) == 0 {
		return nil, errors.New("start and end positions must differ")
	}
	return &MultiContourTrace{
		mode:     ModePlane,
		start:    start,
		end:      end,
		layers:   layers,
		settings: settings,
	}, nil
}

func validateSweep(layers int, settings model.ContourSettings) error {
	if layers < 0 {
		return fmt.Errorf("layers must be >= 0, got %d", layers)
	}
	return settings.Validate()
}

// Name implements Task.
func (m *MultiContourTrace) Name() string { return "MultiContourTrace" }

// ToolID implements Task.
func (m *MultiContourTrace) ToolID() int { return m.settings.ToolID }

// Layers returns the number of layer intervals; layers+1 planes are traced.
func (m *MultiContourTrace) Layers() int { return m.layers }

// LayerCounts returns the keypoint count of each plane from the last run.
func (m *MultiContourTrace) LayerCounts() []int {
	out := make([]int, len(m.layerCounts))
	copy(out, m.layerCounts)
	return out
}

// Keypoints implements Task.
func (m *MultiContourTrace) Keypoints() []model.Keypoint {
	return copyKeypoints(m.keypoints)
}

// layer returns the contour trace for plane i.
func (m *MultiContourTrace) layer(i int) (*ContourTrace, error) {
	if m.mode == ModeAxis {
		h := m.startH
		if m.layers > 0 {
			h += float64(i) * (m.endH - m.startH) / float64(m.layers)
		}
		return NewAxisContour(h, m.settings)
	}
	span := r3.Sub(m.end, m.start)
	point := m.start
	if m.layers > 0 {
		point = r3.Add(m.start, r3.Scale(float64(i)/float64(m.layers), span))
	}
	return NewPlaneContour(point, span, m.settings)
}

// Process implements Task. The surface is indexed once and shared by all
// planes. Any failure clears the buffer.
func (m *MultiContourTrace) Process(mesh *model.Mesh) error {
	m.keypoints = nil
	m.layerCounts = nil

	surface, err := buildSurface(m.Name(), mesh)
	if err != nil {
		return err
	}

	log := logger.Logger()
	for i := 0; i <= m.layers; i++ {
		trace, err := m.layer(i)
		if err != nil {
			m.keypoints = nil
			m.layerCounts = nil
			return &model.ProcessingError{Task: m.Name(), Message: fmt.Sprintf("layer %d", i), Err: err}
		}
		trace.processSurface(surface)
		m.keypoints = append(m.keypoints, trace.keypoints...)
		m.layerCounts = append(m.layerCounts, len(trace.keypoints))
		point, _ := trace.Plane()
		log.Debug("contour layer traced", "layer", i, "point", point, "keypoints", len(trace.keypoints))
	}

	log.Debug("multi contour traced",
		"mode", m.mode.String(),
		"planes", m.layers+1,
		"keypoints", len(m.keypoints))
	return nil
}

// Spacing returns the distance between consecutive planes.
func (m *MultiContourTrace) Spacing() float64 {
	if m.layers == 0 {
		return 0
	}
	if m.mode == ModeAxis {
		return math.Abs(m.endH-m.startH) / float64(m.layers)
	}
	return r3.Norm(r3.Sub(m.end, m.start)) / float64(m.layers)
}
