// Package export writes the keypoints of a built job to spreadsheet, CAD
// and PDF formats.
package export

import (
	"time"

	"github.com/piwi3910/raycam/internal/geometry"
	"github.com/piwi3910/raycam/internal/job"
	"github.com/piwi3910/raycam/internal/model"
)

// TaskReport holds one task's output.
type TaskReport struct {
	Name      string
	Detail    string
	ToolID    int
	Keypoints []model.Keypoint
}

// Report is a snapshot of a built job ready for export.
type Report struct {
	JobID     string
	Source    string
	Vertices  int
	Triangles int
	Bounds    model.Bounds
	Tools     []model.Tool
	Tasks     []TaskReport
	Generated time.Time
}

// NewReport snapshots j. source names the input model.
func NewReport(j *job.Job, source string) Report {
	r := Report{
		JobID:     j.ID(),
		Source:    source,
		Tools:     append([]model.Tool(nil), j.Tools().Tools...),
		Generated: time.Now(),
	}
	if m := j.TargetMesh(); m != nil {
		r.Vertices = m.VertexCount()
		r.Triangles = m.TriangleCount()
		if b, err := geometry.ComputeBounds(m); err == nil {
			r.Bounds = b
		}
	}
	for _, g := range j.KeypointsByTask() {
		r.Tasks = append(r.Tasks, TaskReport{Name: g.Task, Detail: g.Detail, ToolID: g.ToolID, Keypoints: g.Keypoints})
	}
	return r
}

// TotalKeypoints returns the keypoint count over all tasks.
func (r Report) TotalKeypoints() int {
	n := 0
	for _, t := range r.Tasks {
		n += len(t.Keypoints)
	}
	return n
}
