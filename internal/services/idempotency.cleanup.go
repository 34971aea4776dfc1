package services

import (
	"context"
	"time"

	"github.com/joshuarp/taskguard-api/internal/domain/vo"
)

type IdempotencyCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

type IdempotencyCleanupService struct {
	cleaner IdempotencyCleaner
	now     func() time.Time
}

func NewIdempotencyCleanupService(cleaner IdempotencyCleaner) *IdempotencyCleanupService {
	return &IdempotencyCleanupService{
		cleaner: cleaner,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *IdempotencyCleanupService) Cleanup(ctx context.Context) (vo.IdempotencyCleanup, error) {
	deleted, err := s.cleaner.CleanupExpired(ctx)
	if err != nil {
		return vo.IdempotencyCleanup{Deleted: deleted}, err
	}

	return vo.IdempotencyCleanup{
		Deleted:     deleted,
		CompletedAt: s.now(),
	}, nil
}
