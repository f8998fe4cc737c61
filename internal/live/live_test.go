package live

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

func TestHubPublishSubscribe(t *testing.T) {
	hub := NewHub()
	a, unsubA := hub.Subscribe("p1")
	defer unsubA()
	b, unsubB := hub.Subscribe("p2")
	defer unsubB()

	hub.Publish("p1", Event{Type: EventProjectSaved, Version: 3})

	select {
	case evt := <-a:
		if evt.Type != EventProjectSaved || evt.ProjectID != "p1" || evt.Version != 3 {
			t.Errorf("unexpected event %+v", evt)
		}
		if evt.At.IsZero() {
			t.Error("Publish should stamp the event time")
		}
	default:
		t.Fatal("subscriber of p1 got nothing")
	}

	select {
	case evt := <-b:
		t.Errorf("subscriber of p2 got %+v", evt)
	default:
	}
}

func TestHubDropsForSlowSubscriber(t *testing.T) {
	hub := NewHub()
	ch, unsub := hub.Subscribe("p1")
	defer unsub()

	done := make(chan struct{})
	go func() {
		for i := 0; i < bufferSize*3; i++ {
			hub.Publish("p1", Event{Type: EventCodeGenerated, Version: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}
	if len(ch) != bufferSize {
		t.Errorf("buffered %d events, want %d", len(ch), bufferSize)
	}
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()
	ch, unsub := hub.Subscribe("p1")
	if hub.Subscribers("p1") != 1 {
		t.Fatalf("Subscribers = %d, want 1", hub.Subscribers("p1"))
	}

	unsub()
	unsub() // second call is a no-op

	if hub.Subscribers("p1") != 0 {
		t.Errorf("Subscribers = %d after unsubscribe", hub.Subscribers("p1"))
	}
	if _, ok := <-ch; ok {
		t.Error("channel should be closed")
	}
	hub.Publish("p1", Event{Type: EventProjectSaved})
}

func TestServeStreamsEvents(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Serve(w, r, hub, "p1", 7, nil)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.CloseNow()

	var hello Event
	if err := wsjson.Read(ctx, conn, &hello); err != nil {
		t.Fatalf("read hello: %v", err)
	}
	if hello.Type != EventHello || hello.ProjectID != "p1" || hello.Version != 7 {
		t.Errorf("unexpected hello %+v", hello)
	}

	// The subscription exists once hello was written.
	hub.Publish("p1", Event{Type: EventCodeGenerated, Version: 7, Data: map[string]string{"kind": "frontend"}})

	var evt Event
	if err := wsjson.Read(ctx, conn, &evt); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if evt.Type != EventCodeGenerated {
		t.Errorf("type = %q, want %q", evt.Type, EventCodeGenerated)
	}

	hub.Publish("p1", Event{Type: EventProjectDeleted})
	if err := wsjson.Read(ctx, conn, &evt); err != nil {
		t.Fatalf("read delete event: %v", err)
	}
	if err := wsjson.Read(ctx, conn, &evt); websocket.CloseStatus(err) != websocket.StatusNormalClosure {
		t.Errorf("expected normal closure after delete, got %v", err)
	}
}
