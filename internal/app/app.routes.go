package app

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/joshuarp/taskguard-api/internal/handlers"
	"github.com/joshuarp/taskguard-api/internal/middlewares"
	"github.com/joshuarp/taskguard-api/internal/shared/config"
	sharedidempotency "github.com/joshuarp/taskguard-api/internal/shared/idempotency"
	sharedjwt "github.com/joshuarp/taskguard-api/internal/shared/jwt"
	sharedratelimit "github.com/joshuarp/taskguard-api/internal/shared/ratelimit"
)

type routerGroupsIn struct {
	fx.In

	App          *fiber.App
	Config       config.ConfigProvider
	Logger       *slog.Logger
	TokenManager sharedjwt.TokenManager
	Idempotency  *sharedidempotency.Service
	RateLimiter  sharedratelimit.Limiter `name:"api_rate_limiter" optional:"true"`
}

type routerGroupsOut struct {
	fx.Out
	Public    fiber.Router `name:"api_public"`
	Protected fiber.Router `name:"api_protected"`
}

func provideRouterGroups(in routerGroupsIn) routerGroupsOut {
	app := in.App
	app.Use(middlewares.NewHTTPRecoveryMiddleware(in.Logger))
	app.Use(middlewares.NewHTTPRequestIDMiddleware())
	app.Use(middlewares.NewHTTPCORSMiddleware(in.Config.GetStringSlice("server.cors.allow_origins")))
	app.Use(middlewares.NewHTTPRequestResponseLogMiddleware(in.Logger))

	app.Get("/healthz", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1")
	protected := api.Group("",
		middlewares.NewHTTPJWTMiddleware(in.TokenManager),
		middlewares.NewHTTPRateLimitMiddleware(middlewares.RateLimitConfig{
			Limiter:   in.RateLimiter,
			KeyPrefix: "api",
			Logger:    in.Logger,
		}),
		middlewares.NewHTTPIdempotencyMiddleware(in.Idempotency, in.Logger),
	)

	return routerGroupsOut{
		Public:    api,
		Protected: protected,
	}
}

type taskRoutesIn struct {
	fx.In
	Protected fiber.Router `name:"api_protected"`
	Handler   *handlers.TaskSubmitHandler
}

func registerTaskRoutes(in taskRoutesIn) {
	in.Handler.Register(in.Protected)
}

type resilienceRoutesIn struct {
	fx.In
	Protected fiber.Router `name:"api_protected"`
	Stats     *handlers.ResilienceStatsHandler
	Reset     *handlers.ResilienceResetHandler
	Cleanup   *handlers.IdempotencyCleanupHandler
}

func registerResilienceRoutes(in resilienceRoutesIn) {
	in.Stats.Register(in.Protected)
	in.Reset.Register(in.Protected)
	in.Cleanup.Register(in.Protected)
}
