package events

import (
	"context"
	"time"

	"slotline/pkg/kafka"
	"slotline/pkg/logger"
	"slotline/pkg/model"
)

const publishTimeout = 5 * time.Second

// KafkaPublisher mirrors booking events onto a broker topic so other
// services can observe reservations. Writes happen off the caller's
// goroutine with their own deadline, keeping the reservation path free of
// broker latency; failures are logged and dropped, matching the
// fire-and-forget contract of the in-process hub.
type KafkaPublisher struct {
	producer *kafka.Producer
	source   string
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, source string, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		source:   source,
		log:      log,
	}
}

func (p *KafkaPublisher) Publish(_ context.Context, kind Kind, view *model.BookingView) {
	msg := kafka.NewMessage().
		WithKey(view.ID).
		WithEventType(string(kind)).
		WithSource(p.source).
		WithValue(view).
		Build()

	go func() {
		// Detached from the request context: the transaction has already
		// committed, so an abandoned caller must not cancel the broadcast.
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := p.producer.Publish(ctx, msg); err != nil {
			p.log.Warn("Failed to mirror booking event to Kafka",
				"kind", kind,
				"booking_id", view.ID,
				"error", err,
			)
		}
	}()
}
