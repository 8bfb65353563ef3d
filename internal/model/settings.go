package model

import (
	"errors"
	"fmt"
)

// ContourSettings controls ray casting for contour traces.
type ContourSettings struct {
	NumRays int `json:"num_rays" yaml:"num_rays"`
	// Standoff is the extra distance beyond the mesh bounding radius at
	// which ray origins are placed.
	Standoff float64 `json:"standoff" yaml:"standoff"`
	// RayLength caps each ray. Zero derives the length from the origin
	// offset so the ray always crosses the whole mesh.
	RayLength      float64 `json:"ray_length" yaml:"ray_length"`
	AxisTolerance  float64 `json:"axis_tolerance" yaml:"axis_tolerance"`
	PlaneTolerance float64 `json:"plane_tolerance" yaml:"plane_tolerance"`
	ToolID         int     `json:"tool_id" yaml:"tool_id"`
}

// DefaultContourSettings returns the settings used by the default pipeline.
func DefaultContourSettings() ContourSettings {
	return ContourSettings{
		NumRays:        200,
		Standoff:       1.0,
		RayLength:      0,
		AxisTolerance:  0.001,
		PlaneTolerance: 0.1,
		ToolID:         1,
	}
}

// Validate checks the settings for values no trace can run with.
func (s ContourSettings) Validate() error {
	if s.NumRays <= 0 {
		return fmt.Errorf("num_rays must be > 0, got %d", s.NumRays)
	}
	if s.Standoff < 0 {
		return fmt.Errorf("standoff must be >= 0, got %g", s.Standoff)
	}
	if s.RayLength < 0 {
		return fmt.Errorf("ray_length must be >= 0, got %g", s.RayLength)
	}
	if s.AxisTolerance <= 0 || s.PlaneTolerance <= 0 {
		return errors.New("tolerances must be > 0")
	}
	return nil
}

// Clearing limits. A ring needs three points to enclose anything, and no
// committed radius may fall below MinClearingRadius.
const (
	MinClearingRadius = 0.001
	MinPointsPerRing  = 3
)

// ClearingSettings controls the circular pocket-clearing task.
type ClearingSettings struct {
	NumLayers     int     `json:"num_layers" yaml:"num_layers"`
	InitialRadius float64 `json:"initial_radius" yaml:"initial_radius"`
	PointsPerRing int     `json:"points_per_ring" yaml:"points_per_ring"`
	MaxShrink     float64 `json:"max_shrink" yaml:"max_shrink"`
	MinShrink     float64 `json:"min_shrink" yaml:"min_shrink"`
	// MinRadius is the smallest ring radius ever considered valid. It may
	// not be below MinClearingRadius.
	MinRadius       float64 `json:"min_radius" yaml:"min_radius"`
	SearchPrecision float64 `json:"search_precision" yaml:"search_precision"`
	// ObstructionTolerance is the minimum ray length used when testing
	// each ring segment for obstruction.
	ObstructionTolerance float64 `json:"obstruction_tolerance" yaml:"obstruction_tolerance"`
	// MaxPhases bounds the number of shrink phases per run.
	MaxPhases int `json:"max_phases" yaml:"max_phases"`
	ToolID    int `json:"tool_id" yaml:"tool_id"`
}

// DefaultClearingSettings returns the settings used by the default pipeline.
func DefaultClearingSettings() ClearingSettings {
	return ClearingSettings{
		NumLayers:            50,
		InitialRadius:        75,
		PointsPerRing:        50,
		MaxShrink:            5,
		MinShrink:            0.001,
		MinRadius:            MinClearingRadius,
		SearchPrecision:      0.001,
		ObstructionTolerance: 10.0,
		MaxPhases:            100000,
		ToolID:               1,
	}
}

// Validate checks the settings for values the shrink search cannot run with.
func (s ClearingSettings) Validate() error {
	switch {
	case s.NumLayers <= 0:
		return fmt.Errorf("num_layers must be > 0, got %d", s.NumLayers)
	case s.PointsPerRing < MinPointsPerRing:
		return fmt.Errorf("points_per_ring must be >= %d, got %d", MinPointsPerRing, s.PointsPerRing)
	case s.InitialRadius <= 0:
		return fmt.Errorf("initial_radius must be > 0, got %g", s.InitialRadius)
	case s.MinShrink <= 0:
		return fmt.Errorf("min_shrink must be > 0, got %g", s.MinShrink)
	case s.MinShrink > s.MaxShrink:
		return fmt.Errorf("min_shrink %g exceeds max_shrink %g", s.MinShrink, s.MaxShrink)
	case !(s.MinRadius >= MinClearingRadius):
		return fmt.Errorf("min_radius must be >= %g, got %g", MinClearingRadius, s.MinRadius)
	case s.SearchPrecision <= 0:
		return fmt.Errorf("search_precision must be > 0, got %g", s.SearchPrecision)
	case s.ObstructionTolerance < 0:
		return fmt.Errorf("obstruction_tolerance must be >= 0, got %g", s.ObstructionTolerance)
	case s.MaxPhases <= 0:
		return fmt.Errorf("max_phases must be > 0, got %d", s.MaxPhases)
	}
	return nil
}
