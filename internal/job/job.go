// Package job coordinates a CAM job: the target mesh, its derived stock,
// the registered tools and the ordered keypoint tasks.
package job

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/piwi3910/raycam/internal/engine"
	"github.com/piwi3910/raycam/internal/geometry"
	"github.com/piwi3910/raycam/internal/logger"
	"github.com/piwi3910/raycam/internal/model"
	"gonum.org/v1/gonum/spatial/r3"
)

// Job owns the meshes, tools and tasks of one machining job. It is not safe
// for concurrent use; wrap it in Shared for that.
type Job struct {
	id     string
	target *model.Mesh
	stock  *model.Mesh
	tools  model.ToolLibrary
	tasks  []engine.Task

	built    bool
	playback int
}

// New creates an empty job with a fresh ID.
func New() *Job {
	return &Job{id: uuid.New().String()[:8]}
}

// ID returns the job's short identifier.
func (j *Job) ID() string { return j.id }

// SetTargetMesh assigns the mesh to machine and derives the stock box
// around it. The job keeps its own copy, so later edits to m do not leak
// into a build.
func (j *Job) SetTargetMesh(m *model.Mesh) error {
	stock, err := geometry.StockMesh(m)
	if err != nil {
		return fmt.Errorf("setting target mesh: %w", err)
	}
	j.target = m.Clone()
	j.stock = stock
	j.built = false
	j.playback = 0
	return nil
}

// TargetMesh returns the target mesh, or nil when none is set.
func (j *Job) TargetMesh() *model.Mesh { return j.target }

// StockMesh returns the stock box derived from the target mesh.
func (j *Job) StockMesh() *model.Mesh { return j.stock }

// AddTask appends a task to the pipeline.
func (j *Job) AddTask(t engine.Task) {
	j.tasks = append(j.tasks, t)
}

// Tasks returns the tasks in pipeline order.
func (j *Job) Tasks() []engine.Task {
	out := make([]engine.Task, len(j.tasks))
	copy(out, j.tasks)
	return out
}

// HasTasks reports whether any task has been added.
func (j *Job) HasTasks() bool { return len(j.tasks) > 0 }

// NextTask returns the first task in the pipeline.
func (j *Job) NextTask() (engine.Task, bool) {
	if len(j.tasks) == 0 {
		return nil, false
	}
	return j.tasks[0], true
}

// Tools returns the job's tool registry.
func (j *Job) Tools() *model.ToolLibrary { return &j.tools }

// Build runs every task against the target mesh in order. The first
// failure stops the pipeline; tasks that already ran keep their results.
func (j *Job) Build() error {
	if j.target == nil {
		return model.ErrMeshNotSet
	}
	log := logger.Logger()
	j.playback = 0
	for i, t := range j.tasks {
		if err := t.Process(j.target); err != nil {
			j.built = false
			return fmt.Errorf("task %d (%s): %w", i, t.Name(), err)
		}
		log.Debug("task processed", "job", j.id, "index", i, "task", t.Name(), "keypoints", len(t.Keypoints()))
	}
	j.built = true
	log.Info("job built", "job", j.id, "tasks", len(j.tasks))
	return nil
}

// Built reports whether the last Build completed every task.
func (j *Job) Built() bool { return j.built }

// GatherKeypoints concatenates the keypoints of every task in pipeline
// order.
func (j *Job) GatherKeypoints() []model.Keypoint {
	var all []model.Keypoint
	for _, t := range j.tasks {
		all = append(all, t.Keypoints()...)
	}
	return all
}

// TaskKeypoints pairs a task with the keypoints it produced.
type TaskKeypoints struct {
	Task      string
	Detail    string
	ToolID    int
	Keypoints []model.Keypoint
}

// KeypointsByTask returns each task's keypoints in pipeline order.
func (j *Job) KeypointsByTask() []TaskKeypoints {
	out := make([]TaskKeypoints, len(j.tasks))
	for i, t := range j.tasks {
		out[i] = TaskKeypoints{Task: t.Name(), Detail: engine.Describe(t), ToolID: t.ToolID(), Keypoints: t.Keypoints()}
	}
	return out
}

// StepPlayback advances the playback cursor to the next gathered keypoint,
// wrapping at the end, and moves the owning task's tool onto it. It returns
// false when there are no keypoints.
func (j *Job) StepPlayback() (model.Keypoint, bool) {
	groups := j.KeypointsByTask()
	total := 0
	for _, g := range groups {
		total += len(g.Keypoints)
	}
	if total == 0 {
		return model.Keypoint{}, false
	}

	idx := j.playback % total
	j.playback = idx + 1

	for _, g := range groups {
		if idx >= len(g.Keypoints) {
			idx -= len(g.Keypoints)
			continue
		}
		kp := g.Keypoints[idx]
		if tool := j.tools.FindToolByID(g.ToolID); tool != nil {
			tool.SetPosition(kp.Position)
			tool.SetOrientation(kp.Normal)
			tool.Visible = true
		}
		return kp, true
	}
	return model.Keypoint{}, false
}

// ResetPlayback rewinds the playback cursor.
func (j *Job) ResetPlayback() { j.playback = 0 }

// UpdateTimestep would advance a time-based machining simulation.
func (j *Job) UpdateTimestep(dt float64) error {
	return fmt.Errorf("update timestep: %w", model.ErrNotSupported)
}

// ToolPositionAt would report the tool position at time t of a simulation.
func (j *Job) ToolPositionAt(t float64) (r3.Vec, error) {
	return r3.Vec{}, fmt.Errorf("tool position at %g: %w", t, model.ErrNotSupported)
}

// SimulationMesh would return the stock after material removal.
func (j *Job) SimulationMesh() (*model.Mesh, error) {
	return nil, fmt.Errorf("simulation mesh: %w", model.ErrNotSupported)
}
