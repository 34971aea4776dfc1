package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/fx"

	"github.com/joshuarp/taskguard-api/internal/shared/config"
	sharedjwt "github.com/joshuarp/taskguard-api/internal/shared/jwt"
	sharedlog "github.com/joshuarp/taskguard-api/internal/shared/log"
	"github.com/joshuarp/taskguard-api/internal/shared/uid"
)

const (
	BinAPI    = "api"
	BinWorker = "worker"
	BinAll    = "all"
)

type configBinIn struct {
	fx.In
	Bin string `name:"bin"`
}

func New(bin string, modules ...fx.Option) *fx.App {
	normalizedBin := normalizeBin(bin)
	opts := []fx.Option{
		fx.Supply(
			fx.Annotate(
				normalizedBin,
				fx.ResultTags(`name:"bin"`),
			),
		),
		CoreModule(),
		ResilienceModule(),
	}
	opts = append(opts, modules...)
	opts = append(opts, fx.Invoke(registerLifecycle))
	return fx.New(opts...)
}

func normalizeBin(bin string) string {
	normalized := strings.TrimSpace(strings.ToLower(bin))
	if normalized == "" {
		return BinAll
	}
	return normalized
}

func CoreModule() fx.Option {
	return fx.Module("core",
		fx.Provide(
			provideConfig,
			sharedlog.NewJSONLogger,
			provideRedisClient,
			providePostgresSQLX,
			fx.Annotate(
				provideTaskIDGenerator,
				fx.ResultTags(`name:"task_ids"`),
			),
			provideRedisQueue,
			provideQueue,
			providePublisher,
		),
		fx.Invoke(registerResourceLifecycle),
	)
}

func provideConfig(in configBinIn) (config.ConfigProvider, error) {
	bin := normalizeBin(in.Bin)

	loadOrder := make([]config.Options, 0, 4)
	if bin == BinAPI || bin == BinWorker {
		loadOrder = append(loadOrder,
			config.Options{
				YAMLPath: fmt.Sprintf("config.%s.yaml", bin),
				EnvPath:  fmt.Sprintf(".env.%s", bin),
			},
			config.Options{
				YAMLPath: fmt.Sprintf("config.%s.yaml.example", bin),
				EnvPath:  fmt.Sprintf(".env.%s.example", bin),
			},
		)
	}

	loadOrder = append(loadOrder,
		config.Options{
			YAMLPath: "config.yaml",
			EnvPath:  ".env",
		},
		config.Options{
			YAMLPath: "config.yaml.example",
			EnvPath:  ".env.example",
		},
	)

	defaults := map[string]any{
		"logging.service": "taskguard-" + bin,
	}

	var lastErr error
	for _, opts := range loadOrder {
		opts.EnvPrefix = "TASKGUARD"
		opts.Defaults = defaults
		provider, err := config.Init(opts)
		if err == nil {
			return provider, nil
		}
		lastErr = err
	}

	return nil, lastErr
}

func provideTaskIDGenerator(cfg config.ConfigProvider) (uid.UIDGenerator, error) {
	generator, err := uid.New(uid.Options{
		Strategy: uid.StrategySnowflake,
		NodeID:   int64(cfg.GetInt("ids.node_id")),
	})
	if err != nil {
		return nil, fmt.Errorf("app: failed to init task id generator: %w", err)
	}
	return generator, nil
}

func provideFiberApp(cfg config.ConfigProvider) *fiber.App {
	readTimeout := cfg.GetDuration("server.read_timeout")
	if readTimeout <= 0 {
		readTimeout = 30 * time.Second
	}

	writeTimeout := cfg.GetDuration("server.write_timeout")
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}

	return fiber.New(fiber.Config{
		AppName:      "taskguard-api",
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	})
}

func provideJWTTokenManager(cfg config.ConfigProvider) (sharedjwt.TokenManager, error) {
	secret := cfg.GetString("security.jwt.secret")
	if secret == "" {
		secret = cfg.GetString("jwt.secret")
	}
	if secret == "" {
		secret = "change-me-please-use-strong-secret-in-production"
	}

	if len(secret) < 32 {
		secret = secret + strings.Repeat("x", 32-len(secret))
	}

	ttl := cfg.GetDuration("security.jwt.ttl")
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	tokenManager, err := sharedjwt.New(sharedjwt.Options{
		Strategy:  sharedjwt.StrategyHMAC,
		Secret:    []byte(secret),
		Algorithm: "HS256",
		TTL:       ttl,
		Issuer:    cfg.GetString("security.jwt.issuer"),
		Audience:  cfg.GetStringSlice("security.jwt.audience"),
	})
	if err != nil {
		return nil, fmt.Errorf("app: failed to init JWT manager: %w", err)
	}

	return tokenManager, nil
}
