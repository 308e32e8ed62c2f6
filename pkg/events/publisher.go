// Package events carries booking state changes from the reservation
// coordinator to connected observers. Delivery is best-effort telemetry:
// it happens strictly after the store transaction commits and never blocks
// or fails the reservation path.
package events

import (
	"context"
	"time"

	"slotline/pkg/model"

	"github.com/google/uuid"
)

type Kind string

const (
	BookingCreated   Kind = "booking_created"
	BookingCancelled Kind = "booking_cancelled"
)

// Event is a single booking state change with its full joined view.
type Event struct {
	ID      string             `json:"id"`
	Kind    Kind               `json:"kind"`
	Booking *model.BookingView `json:"booking"`
	At      time.Time          `json:"at"`
}

func newEvent(kind Kind, view *model.BookingView) Event {
	return Event{
		ID:      uuid.New().String(),
		Kind:    kind,
		Booking: view,
		At:      time.Now().UTC(),
	}
}

// Publisher fans a committed booking change out to observers. Implementations
// must not block the caller: a slow or unreachable observer never delays a
// reservation.
type Publisher interface {
	Publish(ctx context.Context, kind Kind, view *model.BookingView)
}

// Fanout delivers each publish to every wrapped publisher in order.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, kind Kind, view *model.BookingView) {
	for _, p := range f {
		p.Publish(ctx, kind, view)
	}
}
