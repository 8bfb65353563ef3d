package engine

import (
	"fmt"

	"github.com/piwi3910/raycam/internal/model"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultPipeline returns the standard task sequence for a model spanning
// minZ..maxZ on the Z axis: a plane-mode contour sweep over the full span,
// followed by circular clearing over the same span when enabled.
func DefaultPipeline(minZ, maxZ float64, cfg model.AppConfig) ([]Task, error) {
	start := r3.Vec{Z: minZ}
	end := r3.Vec{Z: maxZ}

	contour, err := NewPlaneMultiContour(start, end, cfg.ContourLayers, cfg.Contour)
	if err != nil {
		return nil, fmt.Errorf("contour sweep: %w", err)
	}
	tasks := []Task{contour}

	if cfg.EnableClearing {
		clearing, err := NewCircularClearing(start, end, cfg.Clearing)
		if err != nil {
			return nil, fmt.Errorf("circular clearing: %w", err)
		}
		tasks = append(tasks, clearing)
	}
	return tasks, nil
}
