package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bueroportal/bueroportal/internal/eventbus"
)

// Pusher is the part of Sender the dispatcher needs.
type Pusher interface {
	SendToAll(ctx context.Context, payload *Payload)
}

// Dispatcher turns task status changes from the event bus into push
// notifications.
type Dispatcher struct {
	eventBus *eventbus.Bus
	sender   Pusher
}

func NewDispatcher(eventBus *eventbus.Bus, sender Pusher) *Dispatcher {
	return &Dispatcher{
		eventBus: eventBus,
		sender:   sender,
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	subID, ch := d.eventBus.Subscribe(256)
	defer d.eventBus.Unsubscribe(subID)

	slog.Info("push notification dispatcher started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("push notification dispatcher stopped")
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if event.Type == eventbus.EventTypeTaskStatusChanged {
				d.handleStatusChanged(ctx, event)
			}
		}
	}
}

func (d *Dispatcher) handleStatusChanged(ctx context.Context, event *eventbus.Event) {
	status := event.Metadata["status"]
	d.sender.SendToAll(ctx, &Payload{
		Title: "Büroportal",
		Body:  fmt.Sprintf("Aufgabe \"%s\" ist jetzt in %s", event.Payload, status),
		URL:   fmt.Sprintf("/aufgaben/%s", event.ResourceID),
		Tag:   event.ID,
	})
}
