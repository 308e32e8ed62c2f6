package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "slotline/internal/bookings/errors"
	"slotline/internal/bookings/validator"
	slotserrors "slotline/internal/slots/errors"
	slotsrepo "slotline/internal/slots/repository"
	"slotline/pkg/config"
	mongotx "slotline/pkg/db/mongo"
	apperrors "slotline/pkg/errors"
	"slotline/pkg/events"
	"slotline/pkg/logger"
	"slotline/pkg/model"
)

// fakeSessionContext satisfies mongo.SessionContext for code paths that only
// pass the context through. The embedded Session is never touched.
type fakeSessionContext struct {
	context.Context
	mongo.Session
}

// fakeStore emulates the two collections behind one lock so transactional
// snapshot/rollback works the same way the real store's transactions do.
type fakeStore struct {
	mu       sync.Mutex
	slots    map[string]*model.Slot
	bookings map[string]*model.Booking
	nextID   int

	failCreate bool
}

func newFakeStore(slots ...*model.Slot) *fakeStore {
	s := &fakeStore{
		slots:    make(map[string]*model.Slot),
		bookings: make(map[string]*model.Booking),
	}
	for _, slot := range slots {
		copied := *slot
		s.slots[slot.ID] = &copied
	}
	return s
}

// lockIfNeeded takes the store lock unless the caller is already inside a
// transaction, which holds it for the whole closure.
func (s *fakeStore) lockIfNeeded(ctx context.Context) func() {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *fakeStore) snapshot() (map[string]*model.Slot, map[string]*model.Booking) {
	slots := make(map[string]*model.Slot, len(s.slots))
	for id, slot := range s.slots {
		copied := *slot
		slots[id] = &copied
	}
	bookings := make(map[string]*model.Booking, len(s.bookings))
	for id, b := range s.bookings {
		copied := *b
		bookings[id] = &copied
	}
	return slots, bookings
}

// fakeBookingRepo implements repository.BookingRepository over the fakeStore.
type fakeBookingRepo struct {
	store *fakeStore
}

func (r *fakeBookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	defer r.store.lockIfNeeded(ctx)()
	if r.store.failCreate {
		return errors.New("insert failed")
	}
	r.store.nextID++
	booking.ID = fmt.Sprintf("%024x", r.store.nextID)
	copied := *booking
	r.store.bookings[booking.ID] = &copied
	return nil
}

func (r *fakeBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	defer r.store.lockIfNeeded(ctx)()
	b, ok := r.store.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *fakeBookingRepo) UpdateStatus(ctx context.Context, id string, status string) error {
	defer r.store.lockIfNeeded(ctx)()
	b, ok := r.store.bookings[id]
	if !ok {
		return bookingserrors.ErrNotFound
	}
	b.Status = status
	return nil
}

func (r *fakeBookingRepo) FindViewByID(ctx context.Context, id string) (*model.BookingView, error) {
	defer r.store.lockIfNeeded(ctx)()
	b, ok := r.store.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	return &model.BookingView{
		ID:            b.ID,
		SlotID:        b.SlotID,
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
		Status:        b.Status,
	}, nil
}

func (r *fakeBookingRepo) FindAllViews(ctx context.Context, status string, limit int, offset int64) ([]*model.BookingView, error) {
	defer r.store.lockIfNeeded(ctx)()
	var views []*model.BookingView
	for _, b := range r.store.bookings {
		if status != "" && b.Status != status {
			continue
		}
		views = append(views, &model.BookingView{ID: b.ID, SlotID: b.SlotID, Status: b.Status})
	}
	return views, nil
}

func (r *fakeBookingRepo) Count(ctx context.Context, status string) (int64, error) {
	defer r.store.lockIfNeeded(ctx)()
	var count int64
	for _, b := range r.store.bookings {
		if status == "" || b.Status == status {
			count++
		}
	}
	return count, nil
}

// ExecuteTransaction serializes access and restores the snapshot when the
// closure fails, mirroring a rolled-back transaction.
func (r *fakeBookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	slots, bookings := r.store.snapshot()
	err := fn(fakeSessionContext{Context: ctx})
	if err != nil {
		r.store.slots = slots
		r.store.bookings = bookings
	}
	return err
}

// fakeSlotRepo implements repository.SlotRepository over the fakeStore.
type fakeSlotRepo struct {
	store *fakeStore
}

func (r *fakeSlotRepo) FindByID(ctx context.Context, id string) (*model.Slot, error) {
	defer r.store.lockIfNeeded(ctx)()
	slot, ok := r.store.slots[id]
	if !ok {
		return nil, slotserrors.ErrNotFound
	}
	copied := *slot
	return &copied, nil
}

func (r *fakeSlotRepo) FindViews(_ context.Context, _ slotsrepo.SearchFilter, _ int, _ int64) ([]*model.SlotView, error) {
	return nil, nil
}

func (r *fakeSlotRepo) Count(_ context.Context, _ slotsrepo.SearchFilter) (int64, error) {
	return int64(len(r.store.slots)), nil
}

func (r *fakeSlotRepo) Claim(ctx context.Context, id string) (*model.Slot, error) {
	defer r.store.lockIfNeeded(ctx)()
	slot, ok := r.store.slots[id]
	if !ok {
		return nil, slotserrors.ErrNotFound
	}
	if !slot.Available {
		return nil, slotserrors.ErrUnavailable
	}
	slot.Available = false
	copied := *slot
	return &copied, nil
}

func (r *fakeSlotRepo) Release(ctx context.Context, id string) error {
	defer r.store.lockIfNeeded(ctx)()
	slot, ok := r.store.slots[id]
	if !ok {
		return slotserrors.ErrNotFound
	}
	slot.Available = true
	return nil
}

// capturingPublisher records published events for assertions.
type capturingPublisher struct {
	mu    sync.Mutex
	kinds []events.Kind
	views []*model.BookingView
}

func (p *capturingPublisher) Publish(_ context.Context, kind events.Kind, view *model.BookingView) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.kinds = append(p.kinds, kind)
	p.views = append(p.views, view)
}

func (p *capturingPublisher) published() []events.Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Kind(nil), p.kinds...)
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
	}
}

const testSlotID = "65b000000000000000000001"

func newTestService(store *fakeStore, publisher events.Publisher) BookingService {
	cfg := testConfig()
	return NewBookingService(
		&fakeBookingRepo{store: store},
		&fakeSlotRepo{store: store},
		validator.NewBookingValidator(cfg.Log),
		publisher,
		cfg,
	)
}

func validRequest() *model.BookingRequest {
	return &model.BookingRequest{
		SlotID:        testSlotID,
		CustomerName:  "Dana Levi",
		CustomerEmail: "dana@example.com",
	}
}

func TestReserve_Success(t *testing.T) {
	store := newFakeStore(&model.Slot{ID: testSlotID, ServiceID: "65a000000000000000000001", Available: true})
	publisher := &capturingPublisher{}
	svc := newTestService(store, publisher)

	view, err := svc.Reserve(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Status != model.StatusConfirmed {
		t.Errorf("expected status %q, got %q", model.StatusConfirmed, view.Status)
	}
	if view.SlotID != testSlotID {
		t.Errorf("expected slot_id %q, got %q", testSlotID, view.SlotID)
	}

	if store.slots[testSlotID].Available {
		t.Error("slot should be marked taken after reserve")
	}

	kinds := publisher.published()
	if len(kinds) != 1 || kinds[0] != events.BookingCreated {
		t.Errorf("expected one booking_created event, got %v", kinds)
	}
}

func TestReserve_SlotAlreadyTaken(t *testing.T) {
	store := newFakeStore(&model.Slot{ID: testSlotID, Available: false})
	publisher := &capturingPublisher{}
	svc := newTestService(store, publisher)

	_, err := svc.Reserve(context.Background(), validRequest())
	if err == nil {
		t.Fatal("expected error for taken slot")
	}
	if !errors.Is(err, bookingserrors.ErrSlotUnavailable) {
		t.Errorf("expected ErrSlotUnavailable, got %v", err)
	}

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected conflict app error, got %v", err)
	}

	if len(publisher.published()) != 0 {
		t.Error("no event should be published for a failed reservation")
	}
}

func TestReserve_MissingSlotReadsAsUnavailable(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &capturingPublisher{})

	_, err := svc.Reserve(context.Background(), validRequest())
	if err == nil {
		t.Fatal("expected error for missing slot")
	}
	if !errors.Is(err, bookingserrors.ErrSlotUnavailable) {
		t.Errorf("expected ErrSlotUnavailable for a missing slot, got %v", err)
	}
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected conflict app error, got %v", err)
	}
}

func TestReserve_ValidationFailure(t *testing.T) {
	store := newFakeStore(&model.Slot{ID: testSlotID, Available: true})
	svc := newTestService(store, &capturingPublisher{})

	cases := []struct {
		name string
		req  *model.BookingRequest
	}{
		{"missing name", &model.BookingRequest{SlotID: testSlotID, CustomerEmail: "a@b.com"}},
		{"bad email", &model.BookingRequest{SlotID: testSlotID, CustomerName: "Dana Levi", CustomerEmail: "not-an-email"}},
		{"bad slot id", &model.BookingRequest{SlotID: "nope", CustomerName: "Dana Levi", CustomerEmail: "a@b.com"}},
		{"short name", &model.BookingRequest{SlotID: testSlotID, CustomerName: "D", CustomerEmail: "a@b.com"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Reserve(context.Background(), tc.req)
			if err == nil {
				t.Fatal("expected validation error")
			}
			appErr := apperrors.AsAppError(err)
			if appErr == nil || appErr.Code != apperrors.CodeValidation {
				t.Errorf("expected validation app error, got %v", err)
			}
			if !store.slots[testSlotID].Available {
				t.Error("slot must stay available after rejected input")
			}
		})
	}
}

func TestReserve_RollbackOnCreateFailure(t *testing.T) {
	store := newFakeStore(&model.Slot{ID: testSlotID, Available: true})
	store.failCreate = true
	publisher := &capturingPublisher{}
	svc := newTestService(store, publisher)

	_, err := svc.Reserve(context.Background(), validRequest())
	if err == nil {
		t.Fatal("expected error when the ledger insert fails")
	}

	if !store.slots[testSlotID].Available {
		t.Error("slot claim must be rolled back when the booking insert fails")
	}
	if len(store.bookings) != 0 {
		t.Error("no booking should survive a failed transaction")
	}
	if len(publisher.published()) != 0 {
		t.Error("no event should be published for a rolled-back reservation")
	}
}

func TestReserve_ConcurrentExactlyOneWins(t *testing.T) {
	store := newFakeStore(&model.Slot{ID: testSlotID, Available: true})
	publisher := &capturingPublisher{}
	svc := newTestService(store, publisher)

	const workers = 16
	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			req := validRequest()
			req.CustomerName = fmt.Sprintf("Customer %02d", n)
			req.CustomerEmail = fmt.Sprintf("customer%02d@example.com", n)
			_, err := svc.Reserve(context.Background(), req)
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, bookingserrors.ErrSlotUnavailable):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if wins != 1 {
		t.Errorf("expected exactly 1 successful reservation, got %d", wins)
	}
	if conflicts != workers-1 {
		t.Errorf("expected %d conflicts, got %d", workers-1, conflicts)
	}
	if len(store.bookings) != 1 {
		t.Errorf("expected 1 booking in the ledger, got %d", len(store.bookings))
	}
	if len(publisher.published()) != 1 {
		t.Errorf("expected 1 event, got %d", len(publisher.published()))
	}
}

func TestCancel_ReopensSlot(t *testing.T) {
	store := newFakeStore(&model.Slot{ID: testSlotID, Available: true})
	publisher := &capturingPublisher{}
	svc := newTestService(store, publisher)

	view, err := svc.Reserve(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	cancelled, err := svc.Cancel(context.Background(), view.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != model.StatusCancelled {
		t.Errorf("expected status %q, got %q", model.StatusCancelled, cancelled.Status)
	}

	if !store.slots[testSlotID].Available {
		t.Error("slot should be available again after cancellation")
	}

	kinds := publisher.published()
	if len(kinds) != 2 || kinds[1] != events.BookingCancelled {
		t.Errorf("expected booking_cancelled as second event, got %v", kinds)
	}

	// The reopened slot can be reserved again.
	if _, err := svc.Reserve(context.Background(), validRequest()); err != nil {
		t.Errorf("expected re-reservation to succeed, got %v", err)
	}
}

func TestCancel_AlreadyCancelled(t *testing.T) {
	store := newFakeStore(&model.Slot{ID: testSlotID, Available: true})
	svc := newTestService(store, &capturingPublisher{})

	view, err := svc.Reserve(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), view.ID); err != nil {
		t.Fatalf("first cancel failed: %v", err)
	}

	_, err = svc.Cancel(context.Background(), view.ID)
	if !errors.Is(err, bookingserrors.ErrAlreadyCancelled) {
		t.Errorf("expected ErrAlreadyCancelled, got %v", err)
	}

	if !store.slots[testSlotID].Available {
		t.Error("repeated cancel must not flip the slot back to taken")
	}
}

func TestCancel_CompletedNotCancellable(t *testing.T) {
	store := newFakeStore(&model.Slot{ID: testSlotID, Available: true})
	svc := newTestService(store, &capturingPublisher{})

	view, err := svc.Reserve(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	store.bookings[view.ID].Status = model.StatusCompleted

	_, err = svc.Cancel(context.Background(), view.ID)
	if !errors.Is(err, bookingserrors.ErrNotCancellable) {
		t.Errorf("expected ErrNotCancellable, got %v", err)
	}
}

func TestCancel_NotFound(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &capturingPublisher{})

	_, err := svc.Cancel(context.Background(), "65c000000000000000000009")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected not found app error, got %v", err)
	}
}

func TestGetAll_InvalidStatus(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &capturingPublisher{})

	_, _, err := svc.GetAll(context.Background(), "pending", 10, 0)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected invalid input app error, got %v", err)
	}
}

func TestReserve_SanitizesInput(t *testing.T) {
	store := newFakeStore(&model.Slot{ID: testSlotID, Available: true})
	svc := newTestService(store, &capturingPublisher{})

	req := validRequest()
	req.CustomerName = "  Dana   Levi  "
	req.CustomerEmail = " DANA@Example.COM "

	view, err := svc.Reserve(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.CustomerName != "Dana Levi" {
		t.Errorf("expected normalized name, got %q", view.CustomerName)
	}
	if view.CustomerEmail != "dana@example.com" {
		t.Errorf("expected lowercased email, got %q", view.CustomerEmail)
	}
}
