package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"slotline/pkg/events"
	"slotline/pkg/logger"
)

// EventsHandler streams booking events to connected clients as
// server-sent events. Subscribers that fall behind miss events rather
// than stall the hub; there is no replay on reconnect.
type EventsHandler struct {
	hub *events.Hub
	log *logger.Logger
}

func NewEventsHandler(hub *events.Hub, log *logger.Logger) *EventsHandler {
	return &EventsHandler{
		hub: hub,
		log: log,
	}
}

func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	id, ch := h.hub.Subscribe()
	defer h.hub.Unsubscribe(id)

	h.log.Info("Event stream opened", "subscriber_id", id, "remote_addr", r.RemoteAddr)

	for {
		select {
		case <-r.Context().Done():
			h.log.Info("Event stream closed", "subscriber_id", id)
			return
		case event, open := <-ch:
			if !open {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				h.log.Error("failed to marshal event", "subscriber_id", id, "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Kind, payload); err != nil {
				h.log.Info("Event stream write failed, dropping subscriber", "subscriber_id", id, "error", err)
				return
			}
			flusher.Flush()
		}
	}
}

func (h *EventsHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/events", h.Stream)
}
