package policies

import "context"

// Notifier broadcasts a realtime event on a named channel.
type Notifier interface {
	Notify(ctx context.Context, channel, event string, payload any) error
}
