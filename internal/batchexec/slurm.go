package batchexec

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// SlurmScheduler submits evaluation jobs through the sbatch CLI.
type SlurmScheduler struct {
	sbatchBin string
	partition string
	run       func(ctx context.Context, bin string, args []string) ([]byte, error)
}

func NewSlurmScheduler(sbatchBin, partition string) (*SlurmScheduler, error) {
	sbatchBin = strings.TrimSpace(sbatchBin)
	if sbatchBin == "" {
		sbatchBin = "sbatch"
	}
	if _, err := exec.LookPath(sbatchBin); err != nil {
		return nil, fmt.Errorf("sbatch binary not found: %w", err)
	}
	return &SlurmScheduler{
		sbatchBin: sbatchBin,
		partition: strings.TrimSpace(partition),
		run:       runCommand,
	}, nil
}

func runCommand(ctx context.Context, bin string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	return cmd.CombinedOutput()
}

func (s *SlurmScheduler) Kind() string {
	return "slurm"
}

func (s *SlurmScheduler) Submit(ctx context.Context, job JobSpec) error {
	args, err := s.buildArgs(job)
	if err != nil {
		return err
	}
	out, err := s.run(ctx, s.sbatchBin, args)
	if err != nil {
		return fmt.Errorf("sbatch failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (s *SlurmScheduler) buildArgs(job JobSpec) ([]string, error) {
	name := strings.TrimSpace(job.Name)
	if name == "" {
		return nil, errors.New("job name is required")
	}
	script := strings.TrimSpace(job.Script)
	if script == "" {
		return nil, errors.New("eval script is required")
	}
	task := strings.TrimSpace(job.Task)
	if task == "" {
		return nil, errors.New("task is required")
	}

	// ALL keeps the submitting shell's environment; the explicit pairs
	// ride on top of it.
	exports := []string{"ALL", "EVAL_TASK_NAMES=" + task}
	if strategy := strings.TrimSpace(job.Strategy); strategy != "" {
		exports = append(exports, "SHOT_SELECTOR="+strategy)
	}
	if sweepID := strings.TrimSpace(job.SweepID); sweepID != "" {
		exports = append(exports, "EVALSWEEP_ID="+sweepID)
	}
	for _, key := range sortedEnvKeys(job.Env) {
		exports = append(exports, key+"="+job.Env[key])
	}

	args := []string{"--parsable", "--job-name", name}
	if s.partition != "" {
		args = append(args, "--partition", s.partition)
	}
	args = append(args, "--export", strings.Join(exports, ","))
	args = append(args, script)
	return args, nil
}
