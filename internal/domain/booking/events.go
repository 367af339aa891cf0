package booking

import (
	"time"

	"github.com/shopspring/decimal"

	"bookingengine/internal/domain/resource"
	"bookingengine/internal/domain/shared/money"
)

type BookingConfirmed struct {
	BookingID        ID
	ResourceID       resource.ID
	ResourceType     resource.Type
	GuestID          string
	Date             string
	SlotID           string
	ParticipantCount int
	Total            money.Money
	At               time.Time
}

func (e BookingConfirmed) EventName() string     { return "booking.confirmed" }
func (e BookingConfirmed) AggregateID() string   { return string(e.BookingID) }
func (e BookingConfirmed) OccurredAt() time.Time { return e.At }

// BookingRejected has no booking behind it; it is keyed by resource.
type BookingRejected struct {
	ResourceID resource.ID
	Date       string
	SlotID     string
	Kind       RejectionKind
	Message    string
	At         time.Time
}

func (e BookingRejected) EventName() string     { return "booking.rejected" }
func (e BookingRejected) AggregateID() string   { return string(e.ResourceID) }
func (e BookingRejected) OccurredAt() time.Time { return e.At }

type BookingCancelled struct {
	BookingID        ID
	ResourceID       resource.ID
	SlotKey          string
	RefundPercentage decimal.Decimal
	Refund           money.Money
	Penalty          money.Money
	Reason           string
	At               time.Time
}

func (e BookingCancelled) EventName() string     { return "booking.cancelled" }
func (e BookingCancelled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }
