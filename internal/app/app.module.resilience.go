package app

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.uber.org/fx"

	"github.com/joshuarp/taskguard-api/internal/executor"
	"github.com/joshuarp/taskguard-api/internal/resilience"
	"github.com/joshuarp/taskguard-api/internal/shared/config"
	sharedidempotency "github.com/joshuarp/taskguard-api/internal/shared/idempotency"
)

func ResilienceModule() fx.Option {
	return fx.Module("resilience",
		fx.Provide(
			provideResilienceSettings,
			provideRegistry,
			provideIdempotencySettings,
			fx.Annotate(
				sharedidempotency.NewSQLXStore,
				fx.As(new(sharedidempotency.Store)),
			),
			provideIdempotencyService,
			provideExecutor,
		),
	)
}

func provideResilienceSettings(cfg config.ConfigProvider) (resilience.Settings, error) {
	maxRetries := -1
	if cfg.IsSet("worker.max_retries") {
		maxRetries = cfg.GetInt("worker.max_retries")
	}

	settings := resilience.Settings{
		FailureThreshold:  cfg.GetInt("resilience.circuit_breaker.failure_threshold"),
		RecoveryTimeout:   cfg.GetDuration("resilience.circuit_breaker.recovery_timeout"),
		HalfOpenMaxCalls:  cfg.GetInt("resilience.circuit_breaker.half_open_max_calls"),
		BaseRateLimit:     cfg.GetInt("resilience.rate_limit.base_limit"),
		BaseRetryDelay:    cfg.GetDuration("resilience.retry.base_delay"),
		MaxRetryDelay:     cfg.GetDuration("resilience.retry.max_delay"),
		DefaultMaxRetries: maxRetries,
		Quarantine:        quarantinePolicy(cfg, "resilience.quarantine"),
	}

	tasks := cfg.GetStringMap("resilience.tasks")
	if len(tasks) > 0 {
		settings.TaskQuarantine = make(map[string]resilience.QuarantinePolicy, len(tasks))
		for taskName := range tasks {
			prefix := fmt.Sprintf("resilience.tasks.%s.quarantine", taskName)
			if !cfg.IsSet(prefix) {
				continue
			}
			settings.TaskQuarantine[taskName] = quarantinePolicy(cfg, prefix)
		}
	}

	settings = settings.Normalize()
	if err := settings.Validate(); err != nil {
		return resilience.Settings{}, fmt.Errorf("app: invalid resilience config: %w", err)
	}
	return settings, nil
}

// Unset fields stay zero so Normalize can inherit them.
func quarantinePolicy(cfg config.ConfigProvider, prefix string) resilience.QuarantinePolicy {
	return resilience.QuarantinePolicy{
		Duration:           cfg.GetDuration(prefix + ".duration"),
		FrequencyWindow:    cfg.GetDuration(prefix + ".frequency_window"),
		FrequencyThreshold: cfg.GetInt(prefix + ".frequency_threshold"),
		PatternMinErrors:   cfg.GetInt(prefix + ".pattern_min_errors"),
		PatternRatio:       cfg.GetFloat64(prefix + ".pattern_ratio"),
	}
}

func provideRegistry(settings resilience.Settings, logger *slog.Logger) *resilience.Registry {
	registry := resilience.NewRegistry(settings, logger)
	logger.Info("resilience registry initialized",
		"failure_threshold", settings.FailureThreshold,
		"recovery_timeout", settings.RecoveryTimeout.String(),
		"base_rate_limit", settings.BaseRateLimit,
		"quarantine_overrides", len(settings.TaskQuarantine),
	)
	return registry
}

func provideIdempotencySettings(cfg config.ConfigProvider) (sharedidempotency.Settings, error) {
	settings := sharedidempotency.DefaultSettings()

	settings.Enabled = boolOrDefault(cfg, "idempotency.enabled", settings.Enabled)
	settings.RequestEnabled = boolOrDefault(cfg, "idempotency.request_enabled", settings.RequestEnabled)
	settings.TaskEnabled = boolOrDefault(cfg, "idempotency.task_enabled", settings.TaskEnabled)
	settings.ContentVerification = boolOrDefault(cfg, "idempotency.content_verification", settings.ContentVerification)

	if hours := cfg.GetInt("idempotency.cache_ttl_hours"); hours != 0 {
		settings.TTL = time.Duration(hours) * time.Hour
	}
	if hours := cfg.GetInt("idempotency.cleanup_interval_hours"); hours != 0 {
		settings.CleanupInterval = time.Duration(hours) * time.Hour
	}
	if batch := cfg.GetInt("idempotency.cleanup_batch_size"); batch != 0 {
		settings.CleanupBatchSize = batch
	}
	if length := cfg.GetInt("idempotency.max_key_length"); length != 0 {
		settings.MaxKeyLength = length
	}
	if names := trimmed(cfg.GetStringSlice("idempotency.header_names")); len(names) > 0 {
		settings.HeaderNames = names
	}
	if methods := trimmed(cfg.GetStringSlice("idempotency.supported_methods")); len(methods) > 0 {
		settings.SupportedMethods = methods
	}
	if cfg.IsSet("idempotency.excluded_paths") {
		settings.ExcludedPaths = trimmed(cfg.GetStringSlice("idempotency.excluded_paths"))
	}

	if err := settings.Validate(); err != nil {
		return sharedidempotency.Settings{}, fmt.Errorf("app: invalid idempotency config: %w", err)
	}
	return settings, nil
}

func provideIdempotencyService(store sharedidempotency.Store, settings sharedidempotency.Settings, logger *slog.Logger) *sharedidempotency.Service {
	return sharedidempotency.NewService(store, settings, logger)
}

func provideExecutor(cfg config.ConfigProvider, registry *resilience.Registry, cache *sharedidempotency.Service, logger *slog.Logger) *executor.Executor {
	return executor.New(registry, cache, logger,
		executor.WithDefaultTimeout(cfg.GetDuration("worker.default_timeout")),
	)
}

func boolOrDefault(cfg config.ConfigProvider, key string, fallback bool) bool {
	if !cfg.IsSet(key) {
		return fallback
	}
	return cfg.GetBool(key)
}

func trimmed(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, value)
		}
	}
	return out
}
