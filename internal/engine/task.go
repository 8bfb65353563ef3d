package engine

import (
	"github.com/piwi3910/raycam/internal/geometry"
	"github.com/piwi3910/raycam/internal/model"
)

// Task is one keypoint-producing step of a CAM job. Process clears the
// task's buffer and recomputes it from scratch; Keypoints returns a copy.
type Task interface {
	Name() string
	Process(mesh *model.Mesh) error
	Keypoints() []model.Keypoint
	ToolID() int
}

var (
	_ Task = (*ContourTrace)(nil)
	_ Task = (*MultiContourTrace)(nil)
	_ Task = (*CircularClearing)(nil)
)

func copyKeypoints(kps []model.Keypoint) []model.Keypoint {
	out := make([]model.Keypoint, len(kps))
	copy(out, kps)
	return out
}

// buildSurface indexes mesh for ray queries, reporting failures as a
// ProcessingError attributed to task.
func buildSurface(task string, mesh *model.Mesh) (*geometry.TriSurface, error) {
	if mesh == nil {
		return nil, &model.ProcessingError{Task: task, Message: "no mesh"}
	}
	surface, err := geometry.NewSurface(mesh)
	if err != nil {
		return nil, &model.ProcessingError{Task: task, Message: "computing bounds", Err: err}
	}
	return surface, nil
}
