package batchexec

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tabfm-labs/evalsweep/internal/platform/k8s"
)

// KubernetesConfig shapes the Jobs a KubernetesScheduler creates.
type KubernetesConfig struct {
	Namespace      string
	Image          string
	ServiceAccount string
	JobTTLSeconds  int32
	GPUsPerJob     int
}

// KubernetesScheduler submits evaluation jobs as batch/v1 Jobs.
type KubernetesScheduler struct {
	client *k8s.Client
	cfg    KubernetesConfig
}

func NewKubernetesScheduler(client *k8s.Client, cfg KubernetesConfig) (*KubernetesScheduler, error) {
	if client == nil {
		return nil, errors.New("k8s client is required")
	}
	cfg.Namespace = strings.TrimSpace(cfg.Namespace)
	if cfg.Namespace == "" {
		cfg.Namespace = strings.TrimSpace(client.Namespace())
	}
	if cfg.Namespace == "" {
		return nil, errors.New("job namespace is required")
	}
	cfg.Image = strings.TrimSpace(cfg.Image)
	if cfg.Image == "" {
		return nil, errors.New("evaluator image is required")
	}
	if cfg.JobTTLSeconds < 0 {
		return nil, errors.New("job ttl must be non-negative")
	}
	if cfg.GPUsPerJob < 0 {
		return nil, errors.New("gpus per job must be non-negative")
	}
	cfg.ServiceAccount = strings.TrimSpace(cfg.ServiceAccount)
	return &KubernetesScheduler{client: client, cfg: cfg}, nil
}

func (s *KubernetesScheduler) Kind() string {
	return "kubernetes"
}

func (s *KubernetesScheduler) Submit(ctx context.Context, job JobSpec) error {
	obj, err := s.buildJob(job)
	if err != nil {
		return err
	}
	err = s.client.CreateJob(ctx, s.cfg.Namespace, obj)
	if errors.Is(err, k8s.ErrAlreadyExists) {
		return fmt.Errorf("%w: %s", ErrAlreadyQueued, obj.Metadata.Name)
	}
	return err
}

func (s *KubernetesScheduler) buildJob(job JobSpec) (k8s.Job, error) {
	name := SanitizeJobName(job.Name)
	if name == "" {
		return k8s.Job{}, errors.New("job name is required")
	}
	script := strings.TrimSpace(job.Script)
	if script == "" {
		return k8s.Job{}, errors.New("eval script is required")
	}
	task := strings.TrimSpace(job.Task)
	if task == "" {
		return k8s.Job{}, errors.New("task is required")
	}

	labels := map[string]string{
		"app.kubernetes.io/name":      "evalsweep",
		"app.kubernetes.io/component": "evaluation-job",
	}
	if sweepID := strings.TrimSpace(job.SweepID); sweepID != "" {
		labels["evalsweep.sweep_id"] = sweepID
	}

	container := k8s.Container{
		Name:    "evaluator",
		Image:   s.cfg.Image,
		Command: []string{"/bin/bash", script},
		Env: []k8s.EnvVar{
			{Name: "EVAL_TASK_NAMES", Value: task},
		},
	}
	if strategy := strings.TrimSpace(job.Strategy); strategy != "" {
		container.Env = append(container.Env, k8s.EnvVar{Name: "SHOT_SELECTOR", Value: strategy})
	}
	if sweepID := strings.TrimSpace(job.SweepID); sweepID != "" {
		container.Env = append(container.Env, k8s.EnvVar{Name: "EVALSWEEP_ID", Value: sweepID})
	}
	for _, key := range sortedEnvKeys(job.Env) {
		container.Env = append(container.Env, k8s.EnvVar{Name: key, Value: job.Env[key]})
	}
	if s.cfg.GPUsPerJob > 0 {
		container.Resources.Limits = map[string]string{
			"nvidia.com/gpu": fmt.Sprintf("%d", s.cfg.GPUsPerJob),
		}
	}

	backoff := int32(0)
	var ttl *int32
	if s.cfg.JobTTLSeconds > 0 {
		ttl = &s.cfg.JobTTLSeconds
	}

	podSpec := k8s.PodSpec{
		RestartPolicy: "Never",
		Containers:    []k8s.Container{container},
	}
	if s.cfg.ServiceAccount != "" {
		podSpec.ServiceAccountName = s.cfg.ServiceAccount
	}

	return k8s.Job{
		Metadata: k8s.ObjectMeta{
			Name:      name,
			Namespace: s.cfg.Namespace,
			Labels:    labels,
		},
		Spec: k8s.JobSpec{
			BackoffLimit:            &backoff,
			TTLSecondsAfterFinished: ttl,
			Template: k8s.PodTemplateSpec{
				Metadata: k8s.ObjectMeta{Labels: labels},
				Spec:     podSpec,
			},
		},
	}, nil
}
