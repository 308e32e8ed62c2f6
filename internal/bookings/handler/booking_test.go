package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"

	bookingserrors "slotline/internal/bookings/errors"
	apperrors "slotline/pkg/errors"
	"slotline/pkg/logger"
	"slotline/pkg/model"
)

// Mock service for testing
type mockBookingService struct {
	reserveFunc func(ctx context.Context, req *model.BookingRequest) (*model.BookingView, error)
	cancelFunc  func(ctx context.Context, id string) (*model.BookingView, error)
	getByIDFunc func(ctx context.Context, id string) (*model.BookingView, error)
	getAllFunc  func(ctx context.Context, status string, limit int, offset int64) ([]*model.BookingView, int64, error)
}

func (m *mockBookingService) Reserve(ctx context.Context, req *model.BookingRequest) (*model.BookingView, error) {
	if m.reserveFunc != nil {
		return m.reserveFunc(ctx, req)
	}
	return &model.BookingView{}, nil
}

func (m *mockBookingService) Cancel(ctx context.Context, id string) (*model.BookingView, error) {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, id)
	}
	return &model.BookingView{}, nil
}

func (m *mockBookingService) GetByID(ctx context.Context, id string) (*model.BookingView, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &model.BookingView{}, nil
}

func (m *mockBookingService) GetAll(ctx context.Context, status string, limit int, offset int64) ([]*model.BookingView, int64, error) {
	if m.getAllFunc != nil {
		return m.getAllFunc(ctx, status, limit, offset)
	}
	return []*model.BookingView{}, 0, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
}

func newRouter(svc *mockBookingService) *httprouter.Router {
	router := httprouter.New()
	NewBookingHandler(svc, testLogger()).RegisterRoutes(router)
	return router
}

func TestReserve_Created(t *testing.T) {
	var received *model.BookingRequest
	svc := &mockBookingService{
		reserveFunc: func(_ context.Context, req *model.BookingRequest) (*model.BookingView, error) {
			received = req
			return &model.BookingView{
				ID:     "65c000000000000000000001",
				SlotID: req.SlotID,
				Status: model.StatusConfirmed,
			}, nil
		},
	}
	router := newRouter(svc)

	body := `{"slot_id":"65b000000000000000000001","customer_name":"Dana Levi","customer_email":"dana@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	if received == nil || received.SlotID != "65b000000000000000000001" {
		t.Errorf("service received wrong request: %+v", received)
	}

	var resp struct {
		Data model.BookingView `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Data.Status != model.StatusConfirmed {
		t.Errorf("expected confirmed booking in response, got %+v", resp.Data)
	}
}

func TestReserve_InvalidBody(t *testing.T) {
	router := newRouter(&mockBookingService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestReserve_SlotConflict(t *testing.T) {
	svc := &mockBookingService{
		reserveFunc: func(_ context.Context, _ *model.BookingRequest) (*model.BookingView, error) {
			return nil, apperrors.ConflictWrap(bookingserrors.ErrSlotUnavailable, "Slot is no longer available")
		},
	}
	router := newRouter(svc)

	body := `{"slot_id":"65b000000000000000000001","customer_name":"Dana Levi","customer_email":"dana@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, rec.Code)
	}

	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Error != "Slot is no longer available" {
		t.Errorf("unexpected error message %q", resp.Error)
	}
}

func TestCancel_Success(t *testing.T) {
	var cancelledID string
	svc := &mockBookingService{
		cancelFunc: func(_ context.Context, id string) (*model.BookingView, error) {
			cancelledID = id
			return &model.BookingView{ID: id, Status: model.StatusCancelled}, nil
		},
	}
	router := newRouter(svc)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/id/65c000000000000000000001/cancel", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if cancelledID != "65c000000000000000000001" {
		t.Errorf("service received wrong id: %q", cancelledID)
	}
}

func TestCancel_AlreadyCancelled(t *testing.T) {
	svc := &mockBookingService{
		cancelFunc: func(_ context.Context, _ string) (*model.BookingView, error) {
			return nil, apperrors.ConflictWrap(bookingserrors.ErrAlreadyCancelled, "Booking is already cancelled")
		},
	}
	router := newRouter(svc)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/id/65c000000000000000000001/cancel", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, rec.Code)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc := &mockBookingService{
		getByIDFunc: func(_ context.Context, id string) (*model.BookingView, error) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		},
	}
	router := newRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/id/65c000000000000000000009", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestGetAll_PassesStatusAndPagination(t *testing.T) {
	var gotStatus string
	var gotLimit int
	var gotOffset int64
	svc := &mockBookingService{
		getAllFunc: func(_ context.Context, status string, limit int, offset int64) ([]*model.BookingView, int64, error) {
			gotStatus, gotLimit, gotOffset = status, limit, offset
			return []*model.BookingView{{ID: "b1"}}, 1, nil
		},
	}
	router := newRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?status=confirmed&limit=10&offset=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if gotStatus != "confirmed" || gotLimit != 10 || gotOffset != 5 {
		t.Errorf("service received status=%q limit=%d offset=%d", gotStatus, gotLimit, gotOffset)
	}
}

func TestGetAll_InvalidLimit(t *testing.T) {
	router := newRouter(&mockBookingService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?limit=abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}
