package batchexec

import (
	"context"
	"errors"
)

// Scheduler is the submission boundary of the sweep driver. Submit
// either queues the job or reports why it could not; nothing here polls
// a job after handing it over.
type Scheduler interface {
	Kind() string
	Submit(ctx context.Context, job JobSpec) error
}

// ErrAlreadyQueued reports that the scheduler already holds a job with
// the same name. Callers treat it as success so a sweep can be re-run
// over a half-submitted grid.
var ErrAlreadyQueued = errors.New("job already queued")

// JobSpec describes one evaluation job. Task, Strategy and SweepID are
// rendered to fixed environment keys by every backend; Env carries the
// resolved run configuration verbatim.
type JobSpec struct {
	Name     string
	Script   string
	SweepID  string
	Task     string
	Strategy string
	Env      map[string]string
}
