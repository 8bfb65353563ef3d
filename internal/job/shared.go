package job

import (
	"fmt"
	"sync"

	"github.com/piwi3910/raycam/internal/model"
)

// Shared guards a Job with a mutex so it can be driven from several
// goroutines, for example a build worker and a playback loop.
type Shared struct {
	mu  sync.Mutex
	job *Job
}

// NewShared wraps j.
func NewShared(j *Job) *Shared {
	return &Shared{job: j}
}

// Build runs Job.Build under the lock.
func (s *Shared) Build() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.job.Build()
}

// BuildAsync runs Build on a new goroutine. The returned channel receives
// exactly one value. A panic inside a task is reported as a
// ProcessingError.
func (s *Shared) BuildAsync() <-chan error {
	ch := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- &model.ProcessingError{Message: fmt.Sprintf("panic during build: %v", r)}
			}
		}()
		ch <- s.Build()
	}()
	return ch
}

// GatherKeypoints runs Job.GatherKeypoints under the lock.
func (s *Shared) GatherKeypoints() []model.Keypoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.job.GatherKeypoints()
}

// StepPlayback runs Job.StepPlayback under the lock.
func (s *Shared) StepPlayback() (model.Keypoint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.job.StepPlayback()
}

// Tool returns a copy of the tool with the given ID.
func (s *Shared) Tool(id int) (model.Tool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.job.tools.Tool(id)
}

// With runs fn with exclusive access to the job.
func (s *Shared) With(fn func(*Job) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.job)
}
