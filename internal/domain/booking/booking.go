package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"bookingengine/internal/domain/availability"
	"bookingengine/internal/domain/cancellation"
	"bookingengine/internal/domain/pricing"
	"bookingengine/internal/domain/resource"
	"bookingengine/internal/domain/shared/daterange"
	"bookingengine/internal/domain/shared/events"
	"bookingengine/internal/domain/shared/money"
)

var (
	ErrNotFound           = errors.New("booking: not found")
	ErrInvalidState       = errors.New("booking: invalid state transition")
	ErrCapacityExhausted  = errors.New("booking: slot capacity exhausted")
	ErrConcurrentModified = errors.New("booking: concurrent modification")
	ErrDuplicate          = errors.New("booking: id already taken")
)

type ID string

type State string

const (
	StateDraft      State = "DRAFT"
	StateValidating State = "VALIDATING"
	StateConfirmed  State = "CONFIRMED"
	StateRejected   State = "REJECTED"
	StateCancelled  State = "CANCELLED"
)

// Request is what a caller submits; it is a Draft until validated.
type Request struct {
	ResourceID       resource.ID
	ResourceType     resource.Type
	GuestID          string
	Date             time.Time
	TimeSlotID       availability.SlotID
	DurationUnits    int
	ParticipantCount int
	AddOns           pricing.AddOns
	SpecialRequests  string
}

// SlotKey identifies the capacity counter a booking occupies.
type SlotKey struct {
	ResourceID resource.ID
	Date       string
	SlotID     availability.SlotID
}

func NewSlotKey(resourceID resource.ID, date time.Time, slot availability.SlotID) SlotKey {
	return SlotKey{ResourceID: resourceID, Date: daterange.FormatDay(date), SlotID: slot}
}

func (k SlotKey) String() string {
	return strings.Join([]string{string(k.ResourceID), k.Date, string(k.SlotID)}, "|")
}

// Booking is a confirmed booking handed to persistence. It only exists for
// requests that passed validation.
type Booking struct {
	ID               ID
	ResourceID       resource.ID
	ResourceType     resource.Type
	GuestID          string
	Date             time.Time
	Slot             availability.TimeSlot
	DurationUnits    int
	ParticipantCount int
	AddOns           pricing.AddOns
	SpecialRequests  string
	Price            pricing.PriceBreakdown
	TotalPrice       money.Money
	Policy           cancellation.Policy
	State            State
	Refund           money.Money
	Penalty          money.Money
	CancelReason     string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Version          int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	// CountForSlot returns the number of active bookings holding the slot.
	CountForSlot(ctx context.Context, key SlotKey) (int, error)
	// ReserveSlot atomically takes one unit of capacity, failing with
	// ErrCapacityExhausted once maxBookings units are held.
	ReserveSlot(ctx context.Context, key SlotKey, maxBookings int) error
	ReleaseSlot(ctx context.Context, key SlotKey) error
}

func (b *Booking) SlotKey() SlotKey {
	return NewSlotKey(b.ResourceID, b.Date, b.Slot.ID)
}

// StartsAt is the moment the booked slot begins, used for refund cutoffs.
func (b *Booking) StartsAt() time.Time {
	return b.Slot.Start.On(b.Date)
}

// Cancel applies the policy captured at confirmation time.
func (b *Booking) Cancel(reason string, now time.Time) (cancellation.RefundDecision, error) {
	if b.State != StateConfirmed {
		return cancellation.RefundDecision{}, ErrInvalidState
	}
	now = now.UTC()
	decision, refund, penalty, err := cancellation.RefundAmount(b.Policy, b.TotalPrice, now, b.StartsAt())
	if err != nil {
		return cancellation.RefundDecision{}, err
	}
	b.State = StateCancelled
	b.Refund = refund
	b.Penalty = penalty
	b.CancelReason = strings.TrimSpace(reason)
	b.UpdatedAt = now
	b.Record(BookingCancelled{
		BookingID:        b.ID,
		ResourceID:       b.ResourceID,
		SlotKey:          b.SlotKey().String(),
		RefundPercentage: decision.RefundPercentage,
		Refund:           refund,
		Penalty:          penalty,
		Reason:           b.CancelReason,
		At:               now,
	})
	return decision, nil
}
