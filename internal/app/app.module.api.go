package app

import (
	"go.uber.org/fx"

	"github.com/joshuarp/taskguard-api/internal/handlers"
	"github.com/joshuarp/taskguard-api/internal/resilience"
	"github.com/joshuarp/taskguard-api/internal/services"
	"github.com/joshuarp/taskguard-api/internal/shared/config"
	sharedidempotency "github.com/joshuarp/taskguard-api/internal/shared/idempotency"
	"github.com/joshuarp/taskguard-api/internal/shared/queue"
	"github.com/joshuarp/taskguard-api/internal/shared/uid"
)

func APIModule() fx.Option {
	return fx.Module("api",
		fx.Provide(
			provideFiberApp,
			provideJWTTokenManager,
			fx.Annotate(
				provideAPIRateLimiter,
				fx.ResultTags(`name:"api_rate_limiter"`),
			),
			provideRouterGroups,
			fx.Annotate(
				provideTaskSubmitService,
				fx.ParamTags(``, `name:"task_ids"`, ``, ``),
				fx.As(new(handlers.TaskSubmitService)),
			),
			fx.Annotate(
				provideResilienceStatsService,
				fx.As(new(handlers.ResilienceStatsService)),
			),
			fx.Annotate(
				provideResilienceResetService,
				fx.As(new(handlers.ResilienceResetService)),
			),
			fx.Annotate(
				provideIdempotencyCleanupService,
				fx.As(new(handlers.IdempotencyCleanupService)),
			),
			handlers.NewTaskSubmitHandler,
			handlers.NewResilienceStatsHandler,
			handlers.NewResilienceResetHandler,
			handlers.NewIdempotencyCleanupHandler,
		),
		fx.Invoke(registerTaskRoutes, registerResilienceRoutes),
	)
}

func provideTaskSubmitService(publisher queue.Publisher, ids uid.UIDGenerator, cache *sharedidempotency.Service, cfg config.ConfigProvider) *services.TaskSubmitService {
	defaults := services.TaskDefaults{
		MaxRetries: -1,
		Timeout:    cfg.GetDuration("worker.default_timeout"),
	}
	if cfg.IsSet("worker.max_retries") {
		defaults.MaxRetries = cfg.GetInt("worker.max_retries")
	}
	return services.NewTaskSubmitService(publisher, ids, cache, defaults)
}

func provideResilienceStatsService(registry *resilience.Registry) *services.ResilienceStatsService {
	return services.NewResilienceStatsService(registry)
}

func provideResilienceResetService(registry *resilience.Registry) *services.ResilienceResetService {
	return services.NewResilienceResetService(registry)
}

func provideIdempotencyCleanupService(cache *sharedidempotency.Service) *services.IdempotencyCleanupService {
	return services.NewIdempotencyCleanupService(cache)
}
