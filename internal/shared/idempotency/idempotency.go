package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type CacheType string

const (
	CacheTypeRequest CacheType = "request"
	CacheTypeTask    CacheType = "task"
)

var (
	ErrIdempotencyConflict = errors.New("idempotency: key reused with different content")
	ErrCacheUnavailable    = errors.New("idempotency: cache unavailable")
)

// ConflictError is returned when a request reuses a key with a different body.
type ConflictError struct {
	Key   string
	Scope string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("idempotency key %s was used with different request content", e.Key)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrIdempotencyConflict
}

// Entry is one cached result. Scope is "<METHOD> <path> user:<id>" for
// requests and the task name for tasks.
type Entry struct {
	ID             string    `db:"id"`
	IdempotencyKey string    `db:"idempotency_key"`
	CacheType      CacheType `db:"cache_type"`
	Scope          string    `db:"scope"`
	ContentHash    string    `db:"content_hash"`
	ResultPayload  []byte    `db:"result_payload"`
	StatusCode     int       `db:"response_status"`
	ContentType    string    `db:"response_content_type"`
	CreatedAt      time.Time `db:"created_at"`
	ExpiresAt      time.Time `db:"expires_at"`
}

type Lookup struct {
	Key       string
	CacheType CacheType
	Scope     string
	Now       time.Time
}

type StoredResponse struct {
	StatusCode  int
	Body        []byte
	ContentType string
}

type CheckResult struct {
	Duplicate bool
	Entry     *Entry
}

func (r CheckResult) Response() StoredResponse {
	if r.Entry == nil {
		return StoredResponse{}
	}
	return StoredResponse{
		StatusCode:  r.Entry.StatusCode,
		Body:        append([]byte(nil), r.Entry.ResultPayload...),
		ContentType: r.Entry.ContentType,
	}
}

// Store persists cache entries. Find returns nil, nil when nothing unexpired
// matches the lookup.
type Store interface {
	Find(ctx context.Context, lookup Lookup) (*Entry, error)
	Upsert(ctx context.Context, entry Entry) error
	DeleteExpired(ctx context.Context, before time.Time, batchSize int) (int64, error)
}
