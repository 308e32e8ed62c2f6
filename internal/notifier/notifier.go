package notifier

import (
	"context"
	"fmt"

	"slotline/pkg/events"
	"slotline/pkg/kafka"
	"slotline/pkg/logger"
)

// Notifier consumes booking events from the broker and delivers
// notifications. Delivery is a log line here; swapping in an email or
// webhook sender only changes the notify functions.
type Notifier struct {
	log *logger.Logger
}

func New(log *logger.Logger) *Notifier {
	return &Notifier{log: log}
}

// Handle implements kafka.MessageHandler. Unknown event types are
// acknowledged without retry, so a newer producer cannot wedge the consumer
// group.
func (n *Notifier) Handle(ctx context.Context, msg kafka.Message) error {
	var event events.Event
	if err := msg.DecodeValue(&event); err != nil {
		return fmt.Errorf("%w: %v", kafka.ErrInvalidMessage, err)
	}

	if event.Booking == nil {
		return fmt.Errorf("%w: event %s has no booking payload", kafka.ErrInvalidMessage, event.ID)
	}

	switch event.Kind {
	case events.BookingCreated:
		n.notifyConfirmation(&event)
	case events.BookingCancelled:
		n.notifyCancellation(&event)
	default:
		n.log.Warn("Skipping unknown event type",
			"event_id", event.ID,
			"kind", event.Kind,
		)
	}

	return nil
}

func (n *Notifier) notifyConfirmation(event *events.Event) {
	b := event.Booking
	n.log.Info("Booking confirmation notification",
		"event_id", event.ID,
		"booking_id", b.ID,
		"customer_email", b.CustomerEmail,
		"service_name", b.ServiceName,
		"slot_date", b.SlotDate,
		"slot_time", b.SlotTime,
	)
}

func (n *Notifier) notifyCancellation(event *events.Event) {
	b := event.Booking
	n.log.Info("Booking cancellation notification",
		"event_id", event.ID,
		"booking_id", b.ID,
		"customer_email", b.CustomerEmail,
		"service_name", b.ServiceName,
		"slot_date", b.SlotDate,
		"slot_time", b.SlotTime,
	)
}
