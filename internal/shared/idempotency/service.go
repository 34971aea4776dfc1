package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/joshuarp/taskguard-api/internal/shared/uid"
)

var keyPattern = regexp.MustCompile(`^[a-zA-Z0-9\-_]+$`)

type Settings struct {
	Enabled             bool
	RequestEnabled      bool
	TaskEnabled         bool
	TTL                 time.Duration
	CleanupInterval     time.Duration
	CleanupBatchSize    int
	HeaderNames         []string
	SupportedMethods    []string
	ExcludedPaths       []string
	MaxKeyLength        int
	ContentVerification bool
}

func DefaultSettings() Settings {
	return Settings{
		Enabled:             true,
		RequestEnabled:      true,
		TaskEnabled:         true,
		TTL:                 24 * time.Hour,
		CleanupInterval:     6 * time.Hour,
		CleanupBatchSize:    500,
		HeaderNames:         []string{"X-Idempotency-Key"},
		SupportedMethods:    []string{"POST", "PUT", "PATCH"},
		ExcludedPaths:       []string{"/healthz", "/metrics", "/api/v1/health", "/api/v1/metrics", "/api/v1/docs"},
		MaxKeyLength:        255,
		ContentVerification: true,
	}
}

func (s Settings) Validate() error {
	if s.TTL < time.Hour || s.TTL > 168*time.Hour {
		return fmt.Errorf("idempotency: cache ttl must be between 1h and 168h, got %s", s.TTL)
	}
	if s.CleanupInterval < time.Hour || s.CleanupInterval > 24*time.Hour {
		return fmt.Errorf("idempotency: cleanup interval must be between 1h and 24h, got %s", s.CleanupInterval)
	}
	if s.MaxKeyLength < 1 || s.MaxKeyLength > 500 {
		return fmt.Errorf("idempotency: max key length must be between 1 and 500, got %d", s.MaxKeyLength)
	}
	if len(s.HeaderNames) == 0 {
		return errors.New("idempotency: at least one header name is required")
	}
	if s.CleanupBatchSize <= 0 {
		return fmt.Errorf("idempotency: cleanup batch size must be positive, got %d", s.CleanupBatchSize)
	}
	return nil
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(ids uid.UIDGenerator) Option {
	return func(s *Service) {
		if ids != nil {
			s.ids = ids
		}
	}
}

// Service deduplicates HTTP requests and task executions. Store failures never
// reach callers: lookups fail open and writes are logged and dropped.
type Service struct {
	store    Store
	settings Settings
	logger   *slog.Logger
	now      func() time.Time
	ids      uid.UIDGenerator
}

func NewService(store Store, settings Settings, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		store:    store,
		settings: settings,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ids == nil {
		s.ids, _ = uid.NewUUIDv7()
	}
	return s
}

func (s *Service) Settings() Settings {
	return s.settings
}

// RequestScope keys a cached response by route and caller, so one caller's
// key never replays another caller's response.
func RequestScope(method, path, userID string) string {
	scope := strings.ToUpper(strings.TrimSpace(method)) + " " + strings.TrimSpace(path)
	if userID = strings.TrimSpace(userID); userID != "" {
		scope += " user:" + userID
	}
	return scope
}

// CheckRequest looks for a cached response. A *ConflictError is the only
// error it returns.
func (s *Service) CheckRequest(ctx context.Context, key, userID, method, path, contentHash string) (CheckResult, error) {
	if !s.settings.Enabled || !s.settings.RequestEnabled || key == "" {
		return CheckResult{}, nil
	}

	scope := RequestScope(method, path, userID)
	entry, err := s.store.Find(ctx, Lookup{Key: key, CacheType: CacheTypeRequest, Scope: scope, Now: s.now()})
	if err != nil {
		CacheLookups.WithLabelValues(string(CacheTypeRequest), "error").Inc()
		s.logger.Warn("idempotency lookup failed, continuing without cache",
			"idempotency_key", key,
			"cache_type", CacheTypeRequest,
			"scope", scope,
			"error", fmt.Errorf("%w: %w", ErrCacheUnavailable, err),
		)
		return CheckResult{}, nil
	}
	if entry == nil {
		CacheLookups.WithLabelValues(string(CacheTypeRequest), "miss").Inc()
		return CheckResult{}, nil
	}

	if s.settings.ContentVerification && entry.ContentHash != contentHash {
		CacheLookups.WithLabelValues(string(CacheTypeRequest), "conflict").Inc()
		s.logger.Warn("idempotency key reused with different request content",
			"idempotency_key", key,
			"scope", scope,
		)
		return CheckResult{}, &ConflictError{Key: key, Scope: scope}
	}

	CacheLookups.WithLabelValues(string(CacheTypeRequest), "hit").Inc()
	return CheckResult{Duplicate: true, Entry: entry}, nil
}

// CheckTask looks for a cached task result. A content mismatch is logged and
// treated as a miss so the task runs.
func (s *Service) CheckTask(ctx context.Context, key, taskName, contentHash string) CheckResult {
	if !s.settings.Enabled || !s.settings.TaskEnabled || key == "" {
		return CheckResult{}
	}

	entry, err := s.store.Find(ctx, Lookup{Key: key, CacheType: CacheTypeTask, Scope: taskName, Now: s.now()})
	if err != nil {
		CacheLookups.WithLabelValues(string(CacheTypeTask), "error").Inc()
		s.logger.Warn("idempotency lookup failed, continuing without cache",
			"idempotency_key", key,
			"cache_type", CacheTypeTask,
			"task_name", taskName,
			"error", fmt.Errorf("%w: %w", ErrCacheUnavailable, err),
		)
		return CheckResult{}
	}
	if entry == nil {
		CacheLookups.WithLabelValues(string(CacheTypeTask), "miss").Inc()
		return CheckResult{}
	}

	if s.settings.ContentVerification && entry.ContentHash != contentHash {
		CacheLookups.WithLabelValues(string(CacheTypeTask), "conflict").Inc()
		s.logger.Warn("task idempotency key reused with different arguments, executing anyway",
			"idempotency_key", key,
			"task_name", taskName,
		)
		return CheckResult{}
	}

	CacheLookups.WithLabelValues(string(CacheTypeTask), "hit").Inc()
	return CheckResult{Duplicate: true, Entry: entry}
}

// CacheRequestResponse stores a response and returns the entry id, or "" when
// caching is off or the write failed.
func (s *Service) CacheRequestResponse(ctx context.Context, key, userID, method, path, contentHash string, response StoredResponse) string {
	if !s.settings.Enabled || !s.settings.RequestEnabled || key == "" {
		return ""
	}

	return s.cache(ctx, Entry{
		IdempotencyKey: key,
		CacheType:      CacheTypeRequest,
		Scope:          RequestScope(method, path, userID),
		ContentHash:    contentHash,
		ResultPayload:  response.Body,
		StatusCode:     response.StatusCode,
		ContentType:    response.ContentType,
	})
}

func (s *Service) CacheTaskResult(ctx context.Context, key, taskName, contentHash string, result json.RawMessage) string {
	if !s.settings.Enabled || !s.settings.TaskEnabled || key == "" {
		return ""
	}

	return s.cache(ctx, Entry{
		IdempotencyKey: key,
		CacheType:      CacheTypeTask,
		Scope:          taskName,
		ContentHash:    contentHash,
		ResultPayload:  result,
	})
}

func (s *Service) cache(ctx context.Context, entry Entry) string {
	id, err := s.ids.Generate(ctx)
	if err != nil {
		CacheWrites.WithLabelValues(string(entry.CacheType), "error").Inc()
		s.logger.Error("failed to generate idempotency entry id", "idempotency_key", entry.IdempotencyKey, "error", err)
		return ""
	}

	now := s.now()
	entry.ID = id
	entry.CreatedAt = now
	entry.ExpiresAt = now.Add(s.settings.TTL)

	if err := s.store.Upsert(ctx, entry); err != nil {
		CacheWrites.WithLabelValues(string(entry.CacheType), "error").Inc()
		s.logger.Error("failed to cache idempotent result",
			"idempotency_key", entry.IdempotencyKey,
			"cache_type", entry.CacheType,
			"scope", entry.Scope,
			"error", fmt.Errorf("%w: %w", ErrCacheUnavailable, err),
		)
		return ""
	}

	CacheWrites.WithLabelValues(string(entry.CacheType), "ok").Inc()
	s.logger.Debug("cached idempotent result",
		"idempotency_key", entry.IdempotencyKey,
		"cache_type", entry.CacheType,
		"scope", entry.Scope,
		"entry_id", entry.ID,
		"expires_at", entry.ExpiresAt,
	)
	return id
}

// CleanupExpired deletes expired entries in batches and returns how many went.
func (s *Service) CleanupExpired(ctx context.Context) (int64, error) {
	batch := s.settings.CleanupBatchSize
	if batch <= 0 {
		batch = DefaultSettings().CleanupBatchSize
	}

	now := s.now()
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, fmt.Errorf("idempotency: cleanup interrupted: %w", err)
		}

		deleted, err := s.store.DeleteExpired(ctx, now, batch)
		if err != nil {
			return total, fmt.Errorf("idempotency: failed to delete expired entries: %w", err)
		}
		total += deleted
		if deleted < int64(batch) {
			break
		}
	}

	CleanupDeleted.Add(float64(total))
	s.logger.Info("idempotency cache cleanup completed", "deleted", total)
	return total, nil
}

// ExtractKey returns the first well-formed key among the configured headers.
// Malformed values are skipped.
func (s *Service) ExtractKey(header func(name string) string) string {
	for _, name := range s.settings.HeaderNames {
		value := strings.TrimSpace(header(name))
		if value == "" {
			continue
		}
		key, ok := s.NormalizeKey(value)
		if !ok {
			s.logger.Warn("invalid idempotency key format", "header", name)
			continue
		}
		return key
	}
	return ""
}

func (s *Service) NormalizeKey(raw string) (string, bool) {
	key := strings.TrimSpace(raw)
	if key == "" || !keyPattern.MatchString(key) {
		return "", false
	}
	if limit := s.settings.MaxKeyLength; limit > 0 && len(key) > limit {
		key = key[:limit]
	}
	return key, true
}

func (s *Service) ShouldApplyRequest(method, path string) bool {
	if !s.settings.Enabled || !s.settings.RequestEnabled {
		return false
	}
	if !slices.ContainsFunc(s.settings.SupportedMethods, func(m string) bool {
		return strings.EqualFold(m, method)
	}) {
		return false
	}
	for _, prefix := range s.settings.ExcludedPaths {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}
