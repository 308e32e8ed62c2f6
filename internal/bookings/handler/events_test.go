package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	"slotline/pkg/events"
	"slotline/pkg/model"
)

func TestStream_DeliversPublishedEvents(t *testing.T) {
	hub := events.NewHub(8, testLogger())
	defer hub.Close()

	router := httprouter.New()
	NewEventsHandler(hub, testLogger()).RegisterRoutes(router)
	server := httptest.NewServer(router)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/events")
	if err != nil {
		t.Fatalf("failed to open stream: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected text/event-stream, got %q", ct)
	}

	// Wait for the subscription to register before publishing.
	deadline := time.Now().Add(2 * time.Second)
	for hub.Observers() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Publish(context.Background(), events.BookingCreated, &model.BookingView{
		ID:     "65c000000000000000000001",
		Status: model.StatusConfirmed,
	})

	reader := bufio.NewReader(resp.Body)
	var eventLine, dataLine string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("stream read failed: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		if strings.HasPrefix(line, "event: ") {
			eventLine = strings.TrimPrefix(line, "event: ")
		}
		if strings.HasPrefix(line, "data: ") {
			dataLine = strings.TrimPrefix(line, "data: ")
			break
		}
	}

	if eventLine != string(events.BookingCreated) {
		t.Errorf("expected event %q, got %q", events.BookingCreated, eventLine)
	}

	var ev events.Event
	if err := json.Unmarshal([]byte(dataLine), &ev); err != nil {
		t.Fatalf("invalid event payload: %v", err)
	}
	if ev.Kind != events.BookingCreated {
		t.Errorf("expected kind %q, got %q", events.BookingCreated, ev.Kind)
	}
	if ev.Booking == nil || ev.Booking.ID != "65c000000000000000000001" {
		t.Errorf("unexpected booking payload: %+v", ev.Booking)
	}
}

func TestStream_UnsubscribesOnDisconnect(t *testing.T) {
	hub := events.NewHub(8, testLogger())
	defer hub.Close()

	router := httprouter.New()
	NewEventsHandler(hub, testLogger()).RegisterRoutes(router)
	server := httptest.NewServer(router)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/events")
	if err != nil {
		t.Fatalf("failed to open stream: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.Observers() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	resp.Body.Close()

	deadline = time.Now().Add(2 * time.Second)
	for hub.Observers() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber was not removed after disconnect")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
