package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/gofiber/fiber/v3"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/joshuarp/taskguard-api/internal/shared/config"
)

type resourceLifecycleIn struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.ConfigProvider
	Logger    *slog.Logger
	DB        *sqlx.DB
	Redis     *redis.Client
}

// registerResourceLifecycle is invoked from CoreModule so its stop hook runs
// after every hook registered by later modules.
func registerResourceLifecycle(in resourceLifecycleIn) {
	in.Lifecycle.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			in.Config.OnChange(func() {
				in.Logger.Info("config reloaded", "source", in.Config.Source())
			})
			in.Config.WatchChanges()
			return nil
		},
		OnStop: func(_ context.Context) error {
			in.Config.StopWatching()

			var closeErrors []error
			if in.DB != nil {
				if err := in.DB.Close(); err != nil {
					closeErrors = append(closeErrors, err)
				}
			}
			if in.Redis != nil {
				if err := in.Redis.Close(); err != nil {
					closeErrors = append(closeErrors, err)
				}
			}

			if len(closeErrors) > 0 {
				return errors.Join(closeErrors...)
			}
			in.Logger.Info("resources closed")
			return nil
		},
	})
}

type serverLifecycleIn struct {
	fx.In

	Lifecycle fx.Lifecycle
	App       *fiber.App `optional:"true"`
	Config    config.ConfigProvider
	Logger    *slog.Logger
}

func registerLifecycle(in serverLifecycleIn) {
	if in.App == nil {
		return
	}

	app := in.App
	logger := in.Logger
	port := in.Config.GetInt("server.port")
	if port == 0 {
		port = 8080
	}
	address := fmt.Sprintf(":%d", port)
	var serveErrCh chan error

	in.Lifecycle.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			listener, err := net.Listen("tcp", address)
			if err != nil {
				return fmt.Errorf("app: failed to bind server address %s: %w", address, err)
			}

			serveErrCh = make(chan error, 1)
			go func() {
				err := app.Listener(listener)
				if err != nil && !errors.Is(err, net.ErrClosed) {
					logger.Error("fiber server stopped unexpectedly", "error", err)
				}
				serveErrCh <- err
			}()

			logger.Info("fiber server started", "address", address)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			var shutdownErrors []error

			if err := app.ShutdownWithContext(ctx); err != nil {
				shutdownErrors = append(shutdownErrors, err)
			}

			if serveErrCh != nil {
				select {
				case err := <-serveErrCh:
					if err != nil && !errors.Is(err, net.ErrClosed) {
						shutdownErrors = append(shutdownErrors, err)
					}
				case <-ctx.Done():
					shutdownErrors = append(shutdownErrors, ctx.Err())
				}
			}

			if len(shutdownErrors) > 0 {
				return errors.Join(shutdownErrors...)
			}

			logger.Info("fiber server shutdown completed")
			return nil
		},
	})
}
