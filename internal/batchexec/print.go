package batchexec

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// PrintScheduler logs each would-be submission and queues nothing.
// It backs dry runs.
type PrintScheduler struct {
	log *slog.Logger
}

func NewPrintScheduler(log *slog.Logger) *PrintScheduler {
	if log == nil {
		log = slog.Default()
	}
	return &PrintScheduler{log: log}
}

func (s *PrintScheduler) Kind() string {
	return "print"
}

func (s *PrintScheduler) Submit(ctx context.Context, job JobSpec) error {
	name := strings.TrimSpace(job.Name)
	if name == "" {
		return errors.New("job name is required")
	}
	if strings.TrimSpace(job.Task) == "" {
		return errors.New("task is required")
	}
	s.log.InfoContext(ctx, "dry-run submission",
		"job_name", name,
		"task", job.Task,
		"strategy", job.Strategy,
		"script", job.Script,
	)
	return nil
}
