package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tabfm-labs/evalsweep/internal/batchexec"
	"github.com/tabfm-labs/evalsweep/internal/checkpoint"
	"github.com/tabfm-labs/evalsweep/internal/domain"
	"github.com/tabfm-labs/evalsweep/internal/ledger"
	"github.com/tabfm-labs/evalsweep/internal/platform/env"
	"github.com/tabfm-labs/evalsweep/internal/platform/k8s"
	"github.com/tabfm-labs/evalsweep/internal/platform/objectstore"
	"github.com/tabfm-labs/evalsweep/internal/platform/postgres"
	"github.com/tabfm-labs/evalsweep/internal/sweep"
	"github.com/tabfm-labs/evalsweep/internal/tasksource"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx := context.Background()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := loadDotEnv(); err != nil {
		logger.Error("invalid env file", "error", err)
		os.Exit(2)
	}

	cfg := domain.ResolveRunConfig(env.Lookup)
	strategies := domain.ParseStrategies(env.String("SHOT_SELECTORS", domain.DefaultShotSelectors))

	resolveCkpt, err := env.Bool("RESOLVE_CKPT", false)
	if err != nil {
		logger.Error("invalid env", "error", err)
		os.Exit(2)
	}
	if resolveCkpt {
		resolved, err := resolveCheckpoint(ctx, cfg.CheckpointDir)
		if err != nil {
			logger.Error("checkpoint resolution failed", "error", err)
			os.Exit(2)
		}
		cfg.CheckpointDir = resolved
	}

	logger.Info("resolved configuration",
		"max_samples", cfg.MaxSamples,
		"serializer_cls", cfg.SerializerCls,
		"context_length", cfg.ContextLength,
		"ckpt_dir", cfg.CheckpointDir,
		"eval_script", cfg.EvalScript,
		"shot_selectors", strategies,
	)

	tasks := buildTaskSource(ctx, logger)
	scheduler := buildScheduler(logger)

	ledgerCfg, err := postgres.ConfigFromEnv()
	if err != nil {
		logger.Error("invalid ledger config", "error", err)
		os.Exit(2)
	}
	var recorder sweep.Recorder
	if ledgerCfg.Enabled() {
		db, err := postgres.Open(ctx, ledgerCfg)
		if err != nil {
			logger.Error("ledger database unavailable", "error", err)
			os.Exit(1)
		}
		defer func() { _ = db.Close() }()

		store, err := ledger.NewStore(db, env.String("SWEEP_NAMESPACE", ledger.DefaultNamespace))
		if err != nil {
			logger.Error("ledger init failed", "error", err)
			os.Exit(2)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			logger.Error("ledger schema init failed", "error", err)
			os.Exit(1)
		}
		recorder = store
	}

	driver, err := sweep.NewDriver(tasks, scheduler, recorder, logger)
	if err != nil {
		logger.Error("driver init failed", "error", err)
		os.Exit(2)
	}

	result, err := driver.Run(ctx, cfg, strategies)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("sweep interrupted", "error", err)
		} else {
			logger.Error("sweep aborted", "error", err)
		}
		os.Exit(1)
	}

	summary := result.Summary()
	logger.Info("sweep finished",
		"sweep_id", result.SweepID,
		"total", summary.Total,
		"queued", summary.Queued,
		"already_queued", summary.AlreadyQueued,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	for _, sub := range result.Failed() {
		logger.Error("failed submission",
			"task", string(sub.Point.Task),
			"strategy", sub.Point.Strategy,
			"error", sub.Err,
		)
	}
	if !summary.Ok() {
		os.Exit(1)
	}
}

// loadDotEnv loads a .env file when one is present. Only an explicitly
// named file is allowed to fail.
func loadDotEnv() error {
	if path, ok := env.Lookup("ENV_PATH"); ok {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func resolveCheckpoint(ctx context.Context, dir string) (string, error) {
	var store checkpoint.ObjectLister
	if strings.HasPrefix(strings.TrimSpace(dir), "s3://") {
		storeCfg, err := objectstore.ConfigFromEnv()
		if err != nil {
			return "", fmt.Errorf("object store config: %w", err)
		}
		client, err := objectstore.NewClient(storeCfg)
		if err != nil {
			return "", fmt.Errorf("object store client: %w", err)
		}
		store = client
	}
	return checkpoint.NewResolver(store).Resolve(ctx, dir)
}

func buildTaskSource(ctx context.Context, logger *slog.Logger) tasksource.Lister {
	if path, ok := env.Lookup("TASK_FILE"); ok {
		src := tasksource.NewFileSource(path)
		// A broken task list is a configuration error, caught before
		// anything is submitted.
		if _, err := src.List(ctx); err != nil {
			logger.Error("invalid task file", "path", path, "error", err)
			os.Exit(2)
		}
		logger.Info("task source", "kind", "file", "path", path)
		return src
	}
	root := env.String("TASK_ROOT", "evaldatasets")
	logger.Info("task source", "kind", "dir", "root", root)
	return tasksource.NewDirSource(root)
}

func buildScheduler(logger *slog.Logger) batchexec.Scheduler {
	mode := strings.ToLower(strings.TrimSpace(env.String("SCHEDULER", "slurm")))
	switch mode {
	case "slurm":
		sched, err := batchexec.NewSlurmScheduler(env.String("SBATCH_BIN", "sbatch"), env.String("SLURM_PARTITION", ""))
		if err != nil {
			logger.Error("slurm scheduler init failed", "error", err)
			os.Exit(2)
		}
		return sched
	case "kubernetes", "k8s":
		client, err := k8s.NewInClusterClient()
		if err != nil {
			logger.Error("k8s client init failed", "error", err)
			os.Exit(2)
		}
		jobTTLSeconds, err := env.Int("K8S_JOB_TTL_SECONDS", 3600)
		if err != nil {
			logger.Error("invalid env", "error", err)
			os.Exit(2)
		}
		gpusPerJob, err := env.Int("K8S_GPUS_PER_JOB", 0)
		if err != nil {
			logger.Error("invalid env", "error", err)
			os.Exit(2)
		}
		sched, err := batchexec.NewKubernetesScheduler(client, batchexec.KubernetesConfig{
			Namespace:      env.String("K8S_NAMESPACE", ""),
			Image:          env.String("K8S_EVALUATOR_IMAGE", ""),
			ServiceAccount: env.String("K8S_JOB_SERVICE_ACCOUNT", ""),
			JobTTLSeconds:  int32(jobTTLSeconds),
			GPUsPerJob:     gpusPerJob,
		})
		if err != nil {
			logger.Error("k8s scheduler init failed", "error", err)
			os.Exit(2)
		}
		return sched
	case "print", "dry-run":
		return batchexec.NewPrintScheduler(logger)
	default:
		logger.Error("unsupported scheduler", "mode", mode)
		os.Exit(2)
		return nil
	}
}
