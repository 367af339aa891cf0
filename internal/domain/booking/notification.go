package booking

import (
	"time"

	"bookingengine/internal/domain/resource"
	"bookingengine/internal/domain/shared/money"
)

// NotificationEvent is the realtime event name clients subscribe to.
const NotificationEvent = "booking-confirmed"

const channelPrefix = "private-user-"

type Notification struct {
	BookingID    ID
	ResourceID   resource.ID
	ResourceType resource.Type
	TotalPrice   money.Money
	Timestamp    time.Time
}

func NotificationFor(b *Booking) Notification {
	return Notification{
		BookingID:    b.ID,
		ResourceID:   b.ResourceID,
		ResourceType: b.ResourceType,
		TotalPrice:   b.TotalPrice,
		Timestamp:    b.CreatedAt,
	}
}

// ChannelFor names the private channel of a recipient.
func ChannelFor(recipientID string) string {
	return channelPrefix + recipientID
}
