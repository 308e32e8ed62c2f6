package service

import (
	"context"
	"sync"

	"slotline/internal/stats/repository"
	"slotline/pkg/config"
	apperrors "slotline/pkg/errors"
	"slotline/pkg/model"
)

type StatsService interface {
	Summary(ctx context.Context) (*model.Stats, error)
}

type statsService struct {
	repo repository.StatsRepository
	cfg  *config.Config
}

func NewStatsService(repo repository.StatsRepository, cfg *config.Config) StatsService {
	return &statsService{
		repo: repo,
		cfg:  cfg,
	}
}

// Summary runs the three aggregations concurrently. The numbers come from
// separate queries, so under concurrent writes they describe slightly
// different instants; callers treating this as a dashboard feed is fine.
func (s *statsService) Summary(ctx context.Context) (*model.Stats, error) {
	var totals *model.BookingTotals
	var available int64
	var byService []model.ServiceStats
	var errTotals, errAvailable, errByService error
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		totals, errTotals = s.repo.CountByStatus(ctx)
		if errTotals != nil {
			s.cfg.Log.Error("Failed to count bookings by status", "error", errTotals)
			errTotals = apperrors.Internal("Failed to compute booking totals", errTotals)
		}
	}()

	go func() {
		defer wg.Done()
		available, errAvailable = s.repo.CountAvailableSlots(ctx)
		if errAvailable != nil {
			s.cfg.Log.Error("Failed to count available slots", "error", errAvailable)
			errAvailable = apperrors.Internal("Failed to count available slots", errAvailable)
		}
	}()

	go func() {
		defer wg.Done()
		byService, errByService = s.repo.AggregateByService(ctx)
		if errByService != nil {
			s.cfg.Log.Error("Failed to aggregate stats by service", "error", errByService)
			errByService = apperrors.Internal("Failed to compute service stats", errByService)
		}
	}()

	wg.Wait()
	if errTotals != nil {
		return nil, errTotals
	}
	if errAvailable != nil {
		return nil, errAvailable
	}
	if errByService != nil {
		return nil, errByService
	}

	if byService == nil {
		byService = []model.ServiceStats{}
	}

	return &model.Stats{
		Summary:        *totals,
		AvailableSlots: available,
		ByService:      byService,
	}, nil
}
