// Package sweep drives the task x strategy submission grid.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tabfm-labs/evalsweep/internal/batchexec"
	"github.com/tabfm-labs/evalsweep/internal/domain"
	"github.com/tabfm-labs/evalsweep/internal/tasksource"
)

// Recorder is optional already-submitted tracking. Seen decides whether
// a point is skipped before it reaches the scheduler; Record persists a
// successful submission so a re-run can skip it.
type Recorder interface {
	Seen(ctx context.Context, point domain.SweepPoint) (bool, error)
	Record(ctx context.Context, sweepID string, sub domain.Submission) error
}

// Driver submits one job per sweep point, synchronously and in order.
// A failed submission is recorded and the sweep moves on; the caller
// inspects the result summary to decide the exit status.
type Driver struct {
	tasks     tasksource.Lister
	scheduler batchexec.Scheduler
	recorder  Recorder
	log       *slog.Logger
	newID     func() string
}

// NewDriver wires a driver. recorder may be nil, which disables
// already-submitted tracking.
func NewDriver(tasks tasksource.Lister, scheduler batchexec.Scheduler, recorder Recorder, log *slog.Logger) (*Driver, error) {
	if tasks == nil {
		return nil, errors.New("task lister is required")
	}
	if scheduler == nil {
		return nil, errors.New("scheduler is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Driver{
		tasks:     tasks,
		scheduler: scheduler,
		recorder:  recorder,
		log:       log,
		newID:     uuid.NewString,
	}, nil
}

// BuildPoints expands tasks into the submission grid, strategies
// varying fastest. With no strategies every task yields exactly one
// point. No deduplication: what goes in comes out.
func BuildPoints(tasks []domain.TaskID, strategies []string) []domain.SweepPoint {
	if len(strategies) == 0 {
		points := make([]domain.SweepPoint, 0, len(tasks))
		for _, task := range tasks {
			points = append(points, domain.SweepPoint{Task: task})
		}
		return points
	}
	points := make([]domain.SweepPoint, 0, len(tasks)*len(strategies))
	for _, task := range tasks {
		for _, strategy := range strategies {
			points = append(points, domain.SweepPoint{Task: task, Strategy: strategy})
		}
	}
	return points
}

// Run enumerates tasks, expands the grid and submits every point.
// Submission failures do not stop the run; enumeration and ledger
// failures do.
func (d *Driver) Run(ctx context.Context, cfg domain.RunConfig, strategies []string) (Result, error) {
	sweepID := d.newID()
	tasks, err := d.tasks.List(ctx)
	if err != nil {
		return Result{SweepID: sweepID}, fmt.Errorf("enumerate tasks: %w", err)
	}
	points := BuildPoints(tasks, strategies)
	d.log.InfoContext(ctx, "sweep started",
		"sweep_id", sweepID,
		"scheduler", d.scheduler.Kind(),
		"tasks", len(tasks),
		"strategies", len(strategies),
		"points", len(points),
	)

	payload := cfg.SubmitEnv()
	subs := make([]domain.Submission, 0, len(points))
	for _, point := range points {
		if err := ctx.Err(); err != nil {
			return Result{SweepID: sweepID, Submissions: subs}, err
		}
		d.log.InfoContext(ctx, "submitting",
			"task", string(point.Task),
			"strategy", point.Strategy,
			"job_name", point.JobName(),
		)

		if d.recorder != nil {
			seen, err := d.recorder.Seen(ctx, point)
			if err != nil {
				return Result{SweepID: sweepID, Submissions: subs}, fmt.Errorf("ledger lookup: %w", err)
			}
			if seen {
				d.log.InfoContext(ctx, "already recorded, skipping",
					"task", string(point.Task),
					"strategy", point.Strategy,
				)
				subs = append(subs, domain.Submission{
					Point:     point,
					Scheduler: d.scheduler.Kind(),
					Status:    domain.SubmissionSkipped,
				})
				continue
			}
		}

		subs = append(subs, d.submit(ctx, sweepID, cfg.EvalScript, payload, point))
	}
	return Result{SweepID: sweepID, Submissions: subs}, nil
}

func (d *Driver) submit(ctx context.Context, sweepID, script string, payload map[string]string, point domain.SweepPoint) domain.Submission {
	err := d.scheduler.Submit(ctx, batchexec.JobSpec{
		Name:     point.JobName(),
		Script:   script,
		SweepID:  sweepID,
		Task:     string(point.Task),
		Strategy: point.Strategy,
		Env:      payload,
	})

	sub := domain.Submission{Point: point, Scheduler: d.scheduler.Kind()}
	switch {
	case err == nil:
		sub.Status = domain.SubmissionQueued
	case errors.Is(err, batchexec.ErrAlreadyQueued):
		sub.Status = domain.SubmissionAlreadyQueued
	default:
		sub.Status = domain.SubmissionFailed
		sub.Err = err
		d.log.ErrorContext(ctx, "submission failed",
			"task", string(point.Task),
			"strategy", point.Strategy,
			"error", err,
		)
	}

	if d.recorder != nil && sub.Status != domain.SubmissionFailed {
		if err := d.recorder.Record(ctx, sweepID, sub); err != nil {
			d.log.WarnContext(ctx, "ledger record failed",
				"task", string(point.Task),
				"strategy", point.Strategy,
				"error", err,
			)
		}
	}
	return sub
}
