package service

import (
	"context"
	"errors"
	"sync"
	"time"

	slotserrors "slotline/internal/slots/errors"
	"slotline/internal/slots/repository"
	"slotline/pkg/config"
	apperrors "slotline/pkg/errors"
	"slotline/pkg/model"
)

type SlotService interface {
	GetByID(ctx context.Context, id string) (*model.Slot, error)
	Search(ctx context.Context, filter repository.SearchFilter, limit int, offset int64) ([]*model.SlotView, int64, error)
}

type slotService struct {
	repo repository.SlotRepository
	cfg  *config.Config
}

func NewSlotService(repo repository.SlotRepository, cfg *config.Config) SlotService {
	return &slotService{
		repo: repo,
		cfg:  cfg,
	}
}

func (s *slotService) GetByID(ctx context.Context, id string) (*model.Slot, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Slot ID cannot be empty")
	}

	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, slotserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Slot", id)
		}
		if errors.Is(err, slotserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid slot ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve slot", err)
	}

	return slot, nil
}

func (s *slotService) Search(ctx context.Context, filter repository.SearchFilter, limit int, offset int64) ([]*model.SlotView, int64, error) {
	var count int64
	var views []*model.SlotView
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count slots", "error", errCount)
			errCount = apperrors.Internal("Failed to count slots", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		views, errFind = s.repo.FindViews(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list slots", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve slots", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	s.cfg.Log.Debug("Slot search completed",
		"service_id", filter.ServiceID,
		"available_only", filter.AvailableOnly,
		"count", len(views),
		"total_count", count,
	)
	return views, count, nil
}

// ParseDate accepts a calendar date in YYYY-MM-DD form.
func ParseDate(raw string) (*time.Time, error) {
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid date format, must be YYYY-MM-DD")
	}
	return &parsed, nil
}
