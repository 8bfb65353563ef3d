package model

import (
	"errors"
	"fmt"
)

// ErrMeshNotSet is returned when a build is requested before a target mesh
// has been assigned to the job.
var ErrMeshNotSet = errors.New("mesh not set for CAM job")

// ErrNotSupported is returned by playback features that have no
// implementation yet.
var ErrNotSupported = errors.New("not yet supported")

// InvalidMeshError reports non-finite or degenerate geometry.
type InvalidMeshError struct {
	Reason string
}

func (e *InvalidMeshError) Error() string {
	return "invalid mesh: " + e.Reason
}

// ProcessingError reports a failure inside a task's geometric computation.
type ProcessingError struct {
	Task    string
	Message string
	Err     error
}

func (e *ProcessingError) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}
	if e.Task != "" {
		return fmt.Sprintf("processing error in %s: %s", e.Task, msg)
	}
	return "processing error: " + msg
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}
