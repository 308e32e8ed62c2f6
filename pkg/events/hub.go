package events

import (
	"context"
	"sync"

	"slotline/pkg/logger"
	"slotline/pkg/model"

	"github.com/google/uuid"
)

// Hub is the in-process broadcaster behind the live event stream. Each
// subscriber owns a buffered channel; Publish is non-blocking and drops the
// event for any subscriber whose buffer is full. There is no replay: a
// subscriber only sees events published after it joined.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]chan Event
	buffer int
	closed bool
	log    *logger.Logger
}

func NewHub(buffer int, log *logger.Logger) *Hub {
	if buffer <= 0 {
		buffer = 1
	}
	return &Hub{
		subs:   make(map[string]chan Event),
		buffer: buffer,
		log:    log,
	}
}

// Subscribe registers a new observer and returns its id and receive channel.
// The channel is closed on Unsubscribe or hub Close.
func (h *Hub) Subscribe() (string, <-chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := uuid.New().String()
	ch := make(chan Event, h.buffer)
	if h.closed {
		close(ch)
		return id, ch
	}
	h.subs[id] = ch

	h.log.Debug("Observer subscribed", "subscriber_id", id, "observers", len(h.subs))
	return id, ch
}

func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch, ok := h.subs[id]
	if !ok {
		return
	}
	delete(h.subs, id)
	close(ch)

	h.log.Debug("Observer unsubscribed", "subscriber_id", id, "observers", len(h.subs))
}

// Publish fans the event out to every current subscriber. Sends never block;
// a full subscriber buffer means that subscriber misses the event.
func (h *Hub) Publish(_ context.Context, kind Kind, view *model.BookingView) {
	ev := newEvent(kind, view)

	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}

	for id, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.log.Warn("Dropping event for slow observer",
				"subscriber_id", id,
				"event_id", ev.ID,
				"kind", ev.Kind,
			)
		}
	}
}

// Close shuts the hub down and closes every subscriber channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

// Observers reports the current subscriber count.
func (h *Hub) Observers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
