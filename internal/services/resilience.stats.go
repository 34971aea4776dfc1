package services

import (
	"context"
	"strings"
	"time"

	"github.com/joshuarp/taskguard-api/internal/domain/vo"
	"github.com/joshuarp/taskguard-api/internal/resilience"
)

type ResilienceRegistry interface {
	Stats() resilience.Stats
	TaskStats(taskName string) (resilience.TaskStats, bool)
	Reset(taskName string) bool
}

type ResilienceStatsService struct {
	registry ResilienceRegistry
}

func NewResilienceStatsService(registry ResilienceRegistry) *ResilienceStatsService {
	return &ResilienceStatsService{registry: registry}
}

func (s *ResilienceStatsService) Stats(_ context.Context) resilience.Stats {
	return s.registry.Stats()
}

func (s *ResilienceStatsService) TaskStats(_ context.Context, taskName string) (resilience.TaskStats, error) {
	stats, ok := s.registry.TaskStats(strings.TrimSpace(taskName))
	if !ok {
		return resilience.TaskStats{}, vo.ErrTaskNotFound
	}
	return stats, nil
}

type ResilienceResetService struct {
	registry ResilienceRegistry
	now      func() time.Time
}

func NewResilienceResetService(registry ResilienceRegistry) *ResilienceResetService {
	return &ResilienceResetService{
		registry: registry,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *ResilienceResetService) Reset(_ context.Context, taskName, resetBy string) (vo.ResilienceReset, error) {
	name := strings.TrimSpace(taskName)
	if name == "" {
		return vo.ResilienceReset{}, vo.ErrInvalidTaskName
	}
	if !s.registry.Reset(name) {
		return vo.ResilienceReset{}, vo.ErrTaskNotFound
	}

	return vo.ResilienceReset{
		TaskName: name,
		ResetBy:  resetBy,
		ResetAt:  s.now(),
	}, nil
}
