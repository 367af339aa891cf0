package redis

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"bookingengine/internal/app/policies"
)

// Message is what subscribers of a private channel receive.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type publisher interface {
	Publish(ctx context.Context, channel string, message any) *goredis.IntCmd
}

// Notifier broadcasts realtime events over Redis pub/sub.
type Notifier struct {
	client publisher
}

func NewClient(addr, password string, db int) *goredis.Client {
	return goredis.NewClient(&goredis.Options{Addr: addr, Password: password, DB: db})
}

func NewNotifier(client *goredis.Client) *Notifier {
	return &Notifier{client: client}
}

func (n *Notifier) Notify(ctx context.Context, channel, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notify: encode %s: %w", event, err)
	}
	msg, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		return err
	}
	if err := n.client.Publish(ctx, channel, msg).Err(); err != nil {
		return fmt.Errorf("notify: publish to %s: %w", channel, err)
	}
	return nil
}

var _ policies.Notifier = (*Notifier)(nil)
