package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	configmocks "github.com/joshuarp/taskguard-api/internal/mock/shared/config"
	"github.com/joshuarp/taskguard-api/internal/shared/config"
)

type AppHelpersSuite struct {
	suite.Suite

	cfg *configmocks.ConfigProvider
}

func (s *AppHelpersSuite) SetupTest() {
	s.cfg = configmocks.NewConfigProvider(s.T())
}

func (s *AppHelpersSuite) loadYAML(content string) config.ConfigProvider {
	path := filepath.Join(s.T().TempDir(), "config.yaml")
	require.NoError(s.T(), os.WriteFile(path, []byte(content), 0o600))

	provider, err := config.Init(config.Options{YAMLPath: path})
	require.NoError(s.T(), err)
	return provider
}

func (s *AppHelpersSuite) TestNormalizeBin_TableDriven() {
	tests := []struct {
		name   string
		bin    string
		expect string
	}{
		{name: "empty runs everything", bin: "", expect: BinAll},
		{name: "mixed case is lowered", bin: " API ", expect: BinAPI},
		{name: "worker stays worker", bin: "worker", expect: BinWorker},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			assert.Equal(s.T(), tc.expect, normalizeBin(tc.bin))
		})
	}
}

func (s *AppHelpersSuite) TestDatabaseString_TableDriven() {
	tests := []struct {
		name      string
		setupMock func()
		expect    string
	}{
		{
			name: "prefer yaml key",
			setupMock: func() {
				s.cfg.EXPECT().IsSet("database.host").Return(true)
				s.cfg.EXPECT().GetString("database.host").Return("pg.internal")
			},
			expect: "pg.internal",
		},
		{
			name: "fallback to env key",
			setupMock: func() {
				s.cfg.EXPECT().IsSet("database.host").Return(false)
				s.cfg.EXPECT().GetString("DATABASE_HOST").Return("pg-env")
			},
			expect: "pg-env",
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			s.SetupTest()
			tc.setupMock()

			assert.Equal(s.T(), tc.expect, databaseString(s.cfg, "host"))
		})
	}
}

func (s *AppHelpersSuite) TestDatabaseInt_TableDriven() {
	tests := []struct {
		name      string
		setupMock func()
		expect    int
	}{
		{
			name: "prefer yaml int",
			setupMock: func() {
				s.cfg.EXPECT().IsSet("database.max_open_conns").Return(true)
				s.cfg.EXPECT().GetInt("database.max_open_conns").Return(20)
			},
			expect: 20,
		},
		{
			name: "fallback to env int",
			setupMock: func() {
				s.cfg.EXPECT().IsSet("database.max_open_conns").Return(false)
				s.cfg.EXPECT().GetInt("DATABASE_MAX_OPEN_CONNS").Return(8)
			},
			expect: 8,
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			s.SetupTest()
			tc.setupMock()

			assert.Equal(s.T(), tc.expect, databaseInt(s.cfg, "max_open_conns"))
		})
	}
}

func (s *AppHelpersSuite) TestPostgresDSN() {
	cfg := s.loadYAML(`
database:
  host: pg.internal
  user: taskguard
  password: secret
  name: taskguard
`)

	assert.Equal(s.T(),
		"host=pg.internal port=5432 user=taskguard password=secret dbname=taskguard sslmode=disable",
		postgresDSN(cfg),
	)
}

func (s *AppHelpersSuite) TestProvideFiberApp_TableDriven() {
	tests := []struct {
		name       string
		readValue  time.Duration
		writeValue time.Duration
		expRead    time.Duration
	}{
		{name: "defaults when config missing", expRead: 30 * time.Second},
		{name: "uses configured timeout", readValue: 10 * time.Second, writeValue: 12 * time.Second, expRead: 10 * time.Second},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			s.SetupTest()
			s.cfg.EXPECT().GetDuration("server.read_timeout").Return(tc.readValue)
			s.cfg.EXPECT().GetDuration("server.write_timeout").Return(tc.writeValue)

			fiberApp := provideFiberApp(s.cfg)
			require.NotNil(s.T(), fiberApp)
			assert.Equal(s.T(), tc.expRead, fiberApp.Config().ReadTimeout)
		})
	}
}

func (s *AppHelpersSuite) TestProvideJWTTokenManager_TableDriven() {
	tests := []struct {
		name      string
		setupMock func()
	}{
		{
			name: "uses security jwt secret and ttl",
			setupMock: func() {
				s.cfg.EXPECT().GetString("security.jwt.secret").Return("12345678901234567890123456789012")
				s.cfg.EXPECT().GetDuration("security.jwt.ttl").Return(15 * time.Minute)
				s.cfg.EXPECT().GetString("security.jwt.issuer").Return("taskguard-api")
				s.cfg.EXPECT().GetStringSlice("security.jwt.audience").Return([]string{"taskguard"})
			},
		},
		{
			name: "fallback to legacy jwt secret and default ttl",
			setupMock: func() {
				s.cfg.EXPECT().GetString("security.jwt.secret").Return("")
				s.cfg.EXPECT().GetString("jwt.secret").Return("legacy")
				s.cfg.EXPECT().GetDuration("security.jwt.ttl").Return(time.Duration(0))
				s.cfg.EXPECT().GetString("security.jwt.issuer").Return("issuer")
				s.cfg.EXPECT().GetStringSlice("security.jwt.audience").Return(nil)
			},
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			s.SetupTest()
			tc.setupMock()

			manager, err := provideJWTTokenManager(s.cfg)
			require.NoError(s.T(), err)
			assert.NotNil(s.T(), manager)
		})
	}
}

func (s *AppHelpersSuite) TestProvideRedisClient_TableDriven() {
	tests := []struct {
		name      string
		host      string
		port      int
		password  string
		db        int
		expAddr   string
		expDB     int
		expPasswd string
	}{
		{
			name:      "uses configured redis settings",
			host:      "redis.internal",
			port:      6380,
			password:  "topsecret",
			db:        2,
			expAddr:   "redis.internal:6380",
			expDB:     2,
			expPasswd: "topsecret",
		},
		{
			name:    "uses default host and port when not configured",
			expAddr: "localhost:6379",
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			s.SetupTest()
			s.cfg.EXPECT().GetString("redis.host").Return(tc.host)
			s.cfg.EXPECT().GetInt("redis.port").Return(tc.port)
			s.cfg.EXPECT().GetString("redis.password").Return(tc.password)
			s.cfg.EXPECT().GetInt("redis.db").Return(tc.db)

			client := provideRedisClient(s.cfg)
			require.NotNil(s.T(), client)
			defer client.Close()

			opts := client.Options()
			assert.Equal(s.T(), tc.expAddr, opts.Addr)
			assert.Equal(s.T(), tc.expDB, opts.DB)
			assert.Equal(s.T(), tc.expPasswd, opts.Password)
		})
	}
}

func (s *AppHelpersSuite) TestProvideAPIRateLimiter_TableDriven() {
	server := miniredis.RunT(s.T())
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	s.T().Cleanup(func() { _ = client.Close() })

	tests := []struct {
		name      string
		setupMock func()
		expectNil bool
	}{
		{
			name: "disabled returns no limiter",
			setupMock: func() {
				s.cfg.EXPECT().IsSet("rate_limit.api.enabled").Return(true)
				s.cfg.EXPECT().GetBool("rate_limit.api.enabled").Return(false)
			},
			expectNil: true,
		},
		{
			name: "defaults when only enabled implicitly",
			setupMock: func() {
				s.cfg.EXPECT().IsSet("rate_limit.api.enabled").Return(false)
				s.cfg.EXPECT().GetInt("rate_limit.api.limit").Return(0)
				s.cfg.EXPECT().GetDuration("rate_limit.api.window").Return(time.Duration(0))
				s.cfg.EXPECT().GetString("queue.prefix").Return("")
				s.cfg.EXPECT().GetString("rate_limit.api.algorithm").Return("sliding_window")
			},
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			s.SetupTest()
			tc.setupMock()

			limiter, err := provideAPIRateLimiter(s.cfg, client)
			require.NoError(s.T(), err)
			if tc.expectNil {
				assert.Nil(s.T(), limiter)
				return
			}
			assert.NotNil(s.T(), limiter)
		})
	}
}

func (s *AppHelpersSuite) TestProvideResilienceSettings() {
	cfg := s.loadYAML(`
worker:
  max_retries: 5
resilience:
  circuit_breaker:
    failure_threshold: 4
  retry:
    base_delay: 30s
    max_delay: 10m
  quarantine:
    duration: 45m
    frequency_threshold: 12
  tasks:
    nightly_report:
      quarantine:
        frequency_threshold: 2
        pattern_ratio: 0.5
    no_override:
      note: ignored
`)

	settings, err := provideResilienceSettings(cfg)
	require.NoError(s.T(), err)

	assert.Equal(s.T(), 4, settings.FailureThreshold)
	assert.Equal(s.T(), 60*time.Second, settings.RecoveryTimeout)
	assert.Equal(s.T(), 30, settings.BaseRateLimit)
	assert.Equal(s.T(), 30*time.Second, settings.BaseRetryDelay)
	assert.Equal(s.T(), 10*time.Minute, settings.MaxRetryDelay)
	assert.Equal(s.T(), 5, settings.DefaultMaxRetries)
	assert.Equal(s.T(), 45*time.Minute, settings.Quarantine.Duration)
	assert.Equal(s.T(), 12, settings.Quarantine.FrequencyThreshold)
	assert.Equal(s.T(), 0.8, settings.Quarantine.PatternRatio)

	require.Len(s.T(), settings.TaskQuarantine, 1)
	override := settings.QuarantinePolicyFor("nightly_report")
	assert.Equal(s.T(), 2, override.FrequencyThreshold)
	assert.Equal(s.T(), 0.5, override.PatternRatio)
	assert.Equal(s.T(), 45*time.Minute, override.Duration)
	assert.Equal(s.T(), settings.Quarantine, settings.QuarantinePolicyFor("no_override"))
}

func (s *AppHelpersSuite) TestProvideResilienceSettingsRejectsInvertedDelays() {
	cfg := s.loadYAML(`
resilience:
  retry:
    base_delay: 10m
    max_delay: 1m
`)

	_, err := provideResilienceSettings(cfg)
	require.Error(s.T(), err)
	assert.ErrorContains(s.T(), err, "invalid resilience config")
}

func (s *AppHelpersSuite) TestProvideIdempotencySettings() {
	cfg := s.loadYAML(`
idempotency:
  content_verification: false
  cache_ttl_hours: 48
  cleanup_interval_hours: 12
  supported_methods: [POST]
  excluded_paths: []
`)

	settings, err := provideIdempotencySettings(cfg)
	require.NoError(s.T(), err)

	assert.True(s.T(), settings.Enabled)
	assert.False(s.T(), settings.ContentVerification)
	assert.Equal(s.T(), 48*time.Hour, settings.TTL)
	assert.Equal(s.T(), 12*time.Hour, settings.CleanupInterval)
	assert.Equal(s.T(), []string{"POST"}, settings.SupportedMethods)
	assert.Empty(s.T(), settings.ExcludedPaths)
	assert.Equal(s.T(), []string{"X-Idempotency-Key"}, settings.HeaderNames)
}

func (s *AppHelpersSuite) TestProvideIdempotencySettingsRejectsLongTTL() {
	cfg := s.loadYAML(`
idempotency:
  cache_ttl_hours: 500
`)

	_, err := provideIdempotencySettings(cfg)
	require.Error(s.T(), err)
	assert.ErrorContains(s.T(), err, "cache ttl")
}

func TestAppHelpersSuite(t *testing.T) {
	suite.Run(t, new(AppHelpersSuite))
}
