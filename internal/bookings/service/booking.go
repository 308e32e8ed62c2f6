package service

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "slotline/internal/bookings/errors"
	"slotline/internal/bookings/repository"
	"slotline/internal/bookings/validator"
	slotserrors "slotline/internal/slots/errors"
	slotsrepo "slotline/internal/slots/repository"
	"slotline/pkg/config"
	apperrors "slotline/pkg/errors"
	"slotline/pkg/events"
	"slotline/pkg/model"
	"slotline/pkg/sanitizer"
)

// BookingService is the reservation coordinator. Reserve and Cancel run the
// slot flip and the ledger write in one transaction, so a booking is
// confirmed if and only if its slot is marked taken.
type BookingService interface {
	Reserve(ctx context.Context, req *model.BookingRequest) (*model.BookingView, error)
	Cancel(ctx context.Context, id string) (*model.BookingView, error)
	GetByID(ctx context.Context, id string) (*model.BookingView, error)
	GetAll(ctx context.Context, status string, limit int, offset int64) ([]*model.BookingView, int64, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	slotRepo  slotsrepo.SlotRepository
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	slotRepo slotsrepo.SlotRepository,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		slotRepo:  slotRepo,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *bookingService) Reserve(ctx context.Context, req *model.BookingRequest) (*model.BookingView, error) {
	s.sanitizeRequest(req)
	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	booking := &model.Booking{
		SlotID:        req.SlotID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Notes:         req.Notes,
		Status:        model.StatusConfirmed,
	}

	// WithTransaction may retry the closure after a write conflict, so it
	// must be safe to re-run from scratch.
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if _, err := s.slotRepo.Claim(sessCtx, req.SlotID); err != nil {
			return s.mapClaimError(err)
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to reserve slot", "slot_id", req.SlotID, "error", err)
		return nil, mapTxError(err)
	}

	view, err := s.repo.FindViewByID(ctx, booking.ID)
	if err != nil {
		// The reservation is committed; surface it even if the join fails.
		s.cfg.Log.Error("Failed to load booking view after reserve", "id", booking.ID, "error", err)
		view = s.fallbackView(booking)
	}

	s.publisher.Publish(ctx, events.BookingCreated, view)

	s.cfg.Log.Info("Slot reserved",
		"booking_id", booking.ID,
		"slot_id", booking.SlotID,
		"customer_email", booking.CustomerEmail,
	)
	return view, nil
}

func (s *bookingService) Cancel(ctx context.Context, id string) (*model.BookingView, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	var slotID string
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		booking, err := s.repo.FindByID(sessCtx, id)
		if err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", id)
			}
			if errors.Is(err, bookingserrors.ErrInvalidID) {
				return apperrors.InvalidInput("Invalid booking ID format")
			}
			return apperrors.Internal("Failed to check booking existence", err)
		}

		switch booking.Status {
		case model.StatusConfirmed:
		case model.StatusCancelled:
			return apperrors.ConflictWrap(bookingserrors.ErrAlreadyCancelled, "Booking is already cancelled")
		default:
			return apperrors.ConflictWrap(bookingserrors.ErrNotCancellable, "Only confirmed bookings can be cancelled")
		}

		slotID = booking.SlotID
		if err := s.repo.UpdateStatus(sessCtx, id, model.StatusCancelled); err != nil {
			return apperrors.Internal("Failed to cancel booking", err)
		}
		if err := s.slotRepo.Release(sessCtx, booking.SlotID); err != nil {
			if errors.Is(err, slotserrors.ErrNotFound) {
				// A booking can outlive its slot if the catalog was reseeded.
				s.cfg.Log.Warn("Cancelled booking references missing slot", "booking_id", id, "slot_id", booking.SlotID)
				return nil
			}
			return apperrors.Internal("Failed to release slot", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to cancel booking", "id", id, "error", err)
		return nil, mapTxError(err)
	}

	view, err := s.repo.FindViewByID(ctx, id)
	if err != nil {
		s.cfg.Log.Error("Failed to load booking view after cancel", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve cancelled booking", err)
	}

	s.publisher.Publish(ctx, events.BookingCancelled, view)

	s.cfg.Log.Info("Booking cancelled", "booking_id", id, "slot_id", slotID)
	return view, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.BookingView, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	view, err := s.repo.FindViewByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return view, nil
}

func (s *bookingService) GetAll(ctx context.Context, status string, limit int, offset int64) ([]*model.BookingView, int64, error) {
	if status != "" &&
		status != model.StatusConfirmed &&
		status != model.StatusCancelled &&
		status != model.StatusCompleted {
		return nil, 0, apperrors.InvalidInput("status must be one of: confirmed, cancelled, completed")
	}

	var count int64
	var views []*model.BookingView
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, status)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		views, errFind = s.repo.FindAllViews(ctx, status, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return views, count, nil
}

// --- Helpers ---

func (s *bookingService) sanitizeRequest(req *model.BookingRequest) {
	req.CustomerName = sanitizer.SanitizeName(req.CustomerName)
	req.CustomerEmail = sanitizer.SanitizeEmail(req.CustomerEmail)
	req.CustomerPhone = sanitizer.SanitizePhone(req.CustomerPhone)
	req.Notes = sanitizer.SanitizeNotes(req.Notes)
}

func (s *bookingService) mapClaimError(err error) error {
	if errors.Is(err, slotserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid slot ID format")
	}
	// A missing slot and a taken slot are the same answer for the caller:
	// pick another one. Tells an enumerating client nothing about which
	// ids exist.
	if errors.Is(err, slotserrors.ErrNotFound) || errors.Is(err, slotserrors.ErrUnavailable) {
		return apperrors.ConflictWrap(bookingserrors.ErrSlotUnavailable, "Slot is no longer available")
	}
	return apperrors.Internal("Failed to claim slot", err)
}

// mapTxError keeps domain errors raised inside the transaction closure
// intact; anything else at this point is a session open or commit fault.
func mapTxError(err error) error {
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.UnavailableWrap(err, "booking store")
}

func (s *bookingService) fallbackView(booking *model.Booking) *model.BookingView {
	return &model.BookingView{
		ID:            booking.ID,
		SlotID:        booking.SlotID,
		CustomerName:  booking.CustomerName,
		CustomerEmail: booking.CustomerEmail,
		CustomerPhone: booking.CustomerPhone,
		Notes:         booking.Notes,
		Status:        booking.Status,
		CreatedAt:     booking.CreatedAt,
	}
}
