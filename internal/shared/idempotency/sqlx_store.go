package idempotency

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

var _ Store = (*SQLXStore)(nil)

type SQLXStore struct {
	db *sqlx.DB
}

func NewSQLXStore(db *sqlx.DB) *SQLXStore {
	return &SQLXStore{db: db}
}

func (s *SQLXStore) Find(ctx context.Context, lookup Lookup) (*Entry, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("idempotency: store is not initialized")
	}

	key := strings.TrimSpace(lookup.Key)
	if key == "" {
		return nil, errors.New("idempotency: key is required")
	}

	scope := strings.TrimSpace(lookup.Scope)
	if scope == "" {
		return nil, errors.New("idempotency: scope is required")
	}

	now := lookup.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	const findQuery = `
SELECT id, idempotency_key, cache_type, scope, content_hash, result_payload,
	response_status, response_content_type, created_at, expires_at
FROM idempotency_cache
WHERE idempotency_key = $1 AND cache_type = $2 AND scope = $3 AND expires_at > $4`

	var entry Entry
	if err := s.db.GetContext(ctx, &entry, findQuery, key, string(lookup.CacheType), scope, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("idempotency: failed to query key: %w", err)
	}

	return &entry, nil
}

func (s *SQLXStore) Upsert(ctx context.Context, entry Entry) error {
	if s == nil || s.db == nil {
		return errors.New("idempotency: store is not initialized")
	}

	if strings.TrimSpace(entry.ID) == "" {
		return errors.New("idempotency: entry id is required")
	}

	key := strings.TrimSpace(entry.IdempotencyKey)
	if key == "" {
		return errors.New("idempotency: key is required")
	}

	scope := strings.TrimSpace(entry.Scope)
	if scope == "" {
		return errors.New("idempotency: scope is required")
	}

	if strings.TrimSpace(entry.ContentHash) == "" {
		return errors.New("idempotency: content hash is required")
	}

	const upsertQuery = `
INSERT INTO idempotency_cache (
	id, idempotency_key, cache_type, scope, content_hash, result_payload,
	response_status, response_content_type, created_at, expires_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (idempotency_key, cache_type, scope) DO UPDATE SET
	id = EXCLUDED.id,
	content_hash = EXCLUDED.content_hash,
	result_payload = EXCLUDED.result_payload,
	response_status = EXCLUDED.response_status,
	response_content_type = EXCLUDED.response_content_type,
	created_at = EXCLUDED.created_at,
	expires_at = EXCLUDED.expires_at`

	_, err := s.db.ExecContext(ctx, upsertQuery,
		entry.ID,
		key,
		string(entry.CacheType),
		scope,
		entry.ContentHash,
		entry.ResultPayload,
		entry.StatusCode,
		strings.TrimSpace(entry.ContentType),
		entry.CreatedAt,
		entry.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("idempotency: failed to upsert entry: %w", err)
	}

	return nil
}

func (s *SQLXStore) DeleteExpired(ctx context.Context, before time.Time, batchSize int) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("idempotency: store is not initialized")
	}

	if batchSize <= 0 {
		return 0, fmt.Errorf("idempotency: batch size must be positive, got %d", batchSize)
	}

	const deleteQuery = `
DELETE FROM idempotency_cache
WHERE id IN (
	SELECT id FROM idempotency_cache
	WHERE expires_at < $1
	ORDER BY expires_at
	LIMIT $2
)`

	result, err := s.db.ExecContext(ctx, deleteQuery, before, batchSize)
	if err != nil {
		return 0, fmt.Errorf("idempotency: failed to delete expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("idempotency: failed to read affected rows: %w", err)
	}

	return rowsAffected, nil
}
