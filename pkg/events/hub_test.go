package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"slotline/pkg/logger"
	"slotline/pkg/model"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
}

func testView(id string) *model.BookingView {
	return &model.BookingView{ID: id, Status: model.StatusConfirmed}
}

func TestHub_PublishReachesAllSubscribers(t *testing.T) {
	hub := NewHub(4, testLogger())
	defer hub.Close()

	_, ch1 := hub.Subscribe()
	_, ch2 := hub.Subscribe()

	if got := hub.Observers(); got != 2 {
		t.Fatalf("expected 2 observers, got %d", got)
	}

	hub.Publish(context.Background(), BookingCreated, testView("b1"))

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			if ev.Kind != BookingCreated {
				t.Errorf("subscriber %d: expected kind %q, got %q", i, BookingCreated, ev.Kind)
			}
			if ev.Booking == nil || ev.Booking.ID != "b1" {
				t.Errorf("subscriber %d: unexpected payload %+v", i, ev.Booking)
			}
			if ev.ID == "" {
				t.Errorf("subscriber %d: event has no id", i)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d: timed out waiting for event", i)
		}
	}
}

func TestHub_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub(1, testLogger())
	defer hub.Close()

	_, ch := hub.Subscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Buffer holds one event; the second must be dropped, not block.
		hub.Publish(context.Background(), BookingCreated, testView("b1"))
		hub.Publish(context.Background(), BookingCreated, testView("b2"))
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	ev := <-ch
	if ev.Booking.ID != "b1" {
		t.Errorf("expected the first event to be delivered, got %q", ev.Booking.ID)
	}
	select {
	case ev := <-ch:
		t.Errorf("expected the second event to be dropped, got %q", ev.Booking.ID)
	default:
	}
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub(4, testLogger())
	defer hub.Close()

	id, ch := hub.Subscribe()
	hub.Unsubscribe(id)

	if _, open := <-ch; open {
		t.Error("expected channel to be closed after unsubscribe")
	}
	if got := hub.Observers(); got != 0 {
		t.Errorf("expected 0 observers, got %d", got)
	}

	// Unsubscribing twice is harmless.
	hub.Unsubscribe(id)
}

func TestHub_NoReplayForLateSubscriber(t *testing.T) {
	hub := NewHub(4, testLogger())
	defer hub.Close()

	hub.Publish(context.Background(), BookingCreated, testView("early"))

	_, ch := hub.Subscribe()
	select {
	case ev := <-ch:
		t.Errorf("late subscriber must not see earlier events, got %q", ev.Booking.ID)
	default:
	}
}

func TestHub_CloseClosesAllChannels(t *testing.T) {
	hub := NewHub(4, testLogger())

	_, ch1 := hub.Subscribe()
	_, ch2 := hub.Subscribe()

	hub.Close()

	for i, ch := range []<-chan Event{ch1, ch2} {
		if _, open := <-ch; open {
			t.Errorf("subscriber %d: expected closed channel after hub close", i)
		}
	}

	// Publish and Close after close are no-ops.
	hub.Publish(context.Background(), BookingCreated, testView("b1"))
	hub.Close()

	_, ch3 := hub.Subscribe()
	if _, open := <-ch3; open {
		t.Error("subscribe after close must return a closed channel")
	}
}

func TestHub_ConcurrentPublishAndSubscribe(t *testing.T) {
	hub := NewHub(64, testLogger())
	defer hub.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			id, ch := hub.Subscribe()
			for range ch {
			}
			_ = id
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				hub.Publish(context.Background(), BookingCreated, testView("b"))
			}
		}()
	}

	time.Sleep(50 * time.Millisecond)
	hub.Close()
	wg.Wait()
}

func TestFanout_DeliversToEachPublisher(t *testing.T) {
	var calls []Kind
	var mu sync.Mutex
	record := publisherFunc(func(_ context.Context, kind Kind, _ *model.BookingView) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, kind)
	})

	fanout := Fanout{record, record}
	fanout.Publish(context.Background(), BookingCancelled, testView("b1"))

	if len(calls) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(calls))
	}
	for _, kind := range calls {
		if kind != BookingCancelled {
			t.Errorf("expected kind %q, got %q", BookingCancelled, kind)
		}
	}
}

type publisherFunc func(ctx context.Context, kind Kind, view *model.BookingView)

func (f publisherFunc) Publish(ctx context.Context, kind Kind, view *model.BookingView) {
	f(ctx, kind, view)
}
