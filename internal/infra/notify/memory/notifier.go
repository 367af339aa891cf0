package memory

import (
	"context"
	"log/slog"
	"sync"

	"bookingengine/internal/app/policies"
)

type Sent struct {
	Channel string
	Event   string
	Payload any
}

// Notifier keeps every notification in memory and logs it. Used when no
// realtime backend is configured.
type Notifier struct {
	Logger *slog.Logger

	mu   sync.Mutex
	sent []Sent
}

func (n *Notifier) Notify(ctx context.Context, channel, event string, payload any) error {
	n.mu.Lock()
	n.sent = append(n.sent, Sent{Channel: channel, Event: event, Payload: payload})
	n.mu.Unlock()
	if n.Logger != nil {
		n.Logger.InfoContext(ctx, "notification", "channel", channel, "event", event)
	}
	return nil
}

// Sent returns a copy of everything notified so far.
func (n *Notifier) Sent() []Sent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Sent(nil), n.sent...)
}

var _ policies.Notifier = (*Notifier)(nil)
