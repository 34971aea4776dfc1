package app

import (
	"context"
	"errors"
	"log/slog"

	"go.uber.org/fx"

	"github.com/joshuarp/taskguard-api/internal/executor"
	"github.com/joshuarp/taskguard-api/internal/shared/config"
	sharedidempotency "github.com/joshuarp/taskguard-api/internal/shared/idempotency"
	"github.com/joshuarp/taskguard-api/internal/shared/queue"
	"github.com/joshuarp/taskguard-api/internal/shared/uid"
	"github.com/joshuarp/taskguard-api/internal/worker"
)

func WorkerModule() fx.Option {
	return fx.Module("worker",
		fx.Provide(
			provideConsumer,
			provideCleanupScheduler,
		),
		fx.Invoke(registerWorkerLifecycle),
	)
}

func provideConsumer(
	cfg config.ConfigProvider,
	q queue.Queue,
	runner *executor.Executor,
	cache *sharedidempotency.Service,
	logger *slog.Logger,
) *worker.Consumer {
	return worker.NewConsumer(q, runner, logger,
		worker.Config{
			Concurrency:  cfg.GetInt("worker.concurrency"),
			PollInterval: cfg.GetDuration("queue.poll_interval"),
			PromoteBatch: int64(cfg.GetInt("queue.promote_batch")),
		},
		worker.EchoHandler(),
		worker.CleanupHandler(cache),
	)
}

type cleanupSchedulerIn struct {
	fx.In

	Publisher queue.Publisher
	IDs       uid.UIDGenerator `name:"task_ids"`
	Settings  sharedidempotency.Settings
	Logger    *slog.Logger
}

func provideCleanupScheduler(in cleanupSchedulerIn) *worker.CleanupScheduler {
	return worker.NewCleanupScheduler(in.Publisher, in.IDs, in.Logger, in.Settings.CleanupInterval)
}

type workerLifecycleIn struct {
	fx.In

	Lifecycle fx.Lifecycle
	Consumer  *worker.Consumer
	Scheduler *worker.CleanupScheduler
	Settings  sharedidempotency.Settings
	Logger    *slog.Logger
}

func registerWorkerLifecycle(in workerLifecycleIn) {
	cleanupEnabled := in.Settings.Enabled

	in.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := in.Consumer.Start(ctx); err != nil {
				return err
			}
			if cleanupEnabled {
				if err := in.Scheduler.Start(); err != nil {
					return errors.Join(err, in.Consumer.Stop(ctx))
				}
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			var stopErrors []error
			if cleanupEnabled {
				if err := in.Scheduler.Stop(ctx); err != nil {
					stopErrors = append(stopErrors, err)
				}
			}
			if err := in.Consumer.Stop(ctx); err != nil {
				stopErrors = append(stopErrors, err)
			}

			if len(stopErrors) > 0 {
				return errors.Join(stopErrors...)
			}
			in.Logger.Info("worker shutdown completed")
			return nil
		},
	})
}
