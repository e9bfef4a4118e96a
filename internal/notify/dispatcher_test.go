package notify

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bueroportal/bueroportal/internal/eventbus"
)

type capturingPusher struct {
	payloads chan *Payload
}

func (p *capturingPusher) SendToAll(_ context.Context, payload *Payload) {
	p.payloads <- payload
}

func TestDispatcherPushesOnStatusChange(t *testing.T) {
	bus := eventbus.New()
	pusher := &capturingPusher{payloads: make(chan *Payload, 4)}
	d := NewDispatcher(bus, pusher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Start(ctx)

	// Give the dispatcher a moment to subscribe before publishing.
	time.Sleep(50 * time.Millisecond)

	bus.PublishNew(eventbus.EventTypeTaskStatusChanged, "01TASK", "Marketingkampagne",
		map[string]string{"status": "Review"})

	select {
	case payload := <-pusher.payloads:
		if payload.Title != "Büroportal" {
			t.Errorf("unexpected title %q", payload.Title)
		}
		if !strings.Contains(payload.Body, "Marketingkampagne") || !strings.Contains(payload.Body, "Review") {
			t.Errorf("unexpected body %q", payload.Body)
		}
		if payload.URL != "/aufgaben/01TASK" {
			t.Errorf("unexpected url %q", payload.URL)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no push notification dispatched")
	}
}

func TestDispatcherIgnoresOtherEventTypes(t *testing.T) {
	bus := eventbus.New()
	pusher := &capturingPusher{payloads: make(chan *Payload, 4)}
	d := NewDispatcher(bus, pusher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Start(ctx)
	time.Sleep(50 * time.Millisecond)

	bus.PublishNew(eventbus.EventTypeTaskCreated, "01TASK", "Neu", nil)
	bus.PublishNew(eventbus.EventTypeComplaintCreated, "01BESW", "Beschwerde", nil)

	select {
	case payload := <-pusher.payloads:
		t.Errorf("unexpected push for non-status event: %+v", payload)
	case <-time.After(200 * time.Millisecond):
	}
}
