package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookingengine/internal/domain/availability"
	"bookingengine/internal/domain/cancellation"
	"bookingengine/internal/domain/pricing"
	"bookingengine/internal/domain/shared/daterange"
	"bookingengine/internal/domain/shared/events"
)

// Input is everything a single validation needs. The validator never loads
// data itself.
type Input struct {
	Request          Request
	Availability     availability.Config
	SlotLength       time.Duration
	ExistingBookings int
	MaxBookings      int
	Pricing          pricing.Rule
	Policy           cancellation.Policy
}

// Outcome is the terminal state of one validation: either Booking or
// Rejection is set.
type Outcome struct {
	State     State
	Booking   *Booking
	Rejection *Rejection
	Request   Request
	At        time.Time
}

func (o Outcome) Confirmed() bool {
	return o.State == StateConfirmed && o.Booking != nil
}

// Events returns what the outcome should publish.
func (o Outcome) Events() []events.DomainEvent {
	if o.Confirmed() {
		return o.Booking.PendingEvents()
	}
	if o.Rejection == nil {
		return nil
	}
	return []events.DomainEvent{BookingRejected{
		ResourceID: o.Request.ResourceID,
		Date:       daterange.FormatDay(o.Request.Date),
		SlotID:     string(o.Request.TimeSlotID),
		Kind:       o.Rejection.Kind,
		Message:    o.Rejection.Message,
		At:         o.At,
	}}
}

// Validator runs availability, pricing and structural checks in that order
// and stops at the first failure. It keeps no state between calls.
type Validator struct {
	Resolver availability.Resolver
	Now      func() time.Time
	NewID    func() ID
}

func NewValidator(resolver availability.Resolver) Validator {
	return Validator{Resolver: resolver, Now: resolver.Now}
}

type attempt struct {
	state State
}

func (a *attempt) advance(to State) {
	switch {
	case a.state == StateDraft && to == StateValidating:
	case a.state == StateValidating && (to == StateConfirmed || to == StateRejected):
	default:
		panic(fmt.Sprintf("booking: illegal transition %s -> %s", a.state, to))
	}
	a.state = to
}

func (v Validator) Validate(in Input) Outcome {
	now := v.now()
	a := &attempt{state: StateDraft}
	a.advance(StateValidating)

	reject := func(r *Rejection) Outcome {
		a.advance(StateRejected)
		return Outcome{State: a.state, Rejection: r, Request: in.Request, At: now}
	}

	req := in.Request
	slot, decision := v.Resolver.ResolveSlot(in.Availability, req.Date, req.TimeSlotID, in.SlotLength)
	switch decision {
	case availability.Available:
	case availability.OutOfRange:
		return reject(Reject(RejectOutOfRange, fmt.Sprintf("bookings can be made at most %d days in advance", v.horizon())))
	default:
		return reject(Reject(RejectSlotUnavailable, "the selected date or time slot is not available"))
	}
	if !availability.HasCapacity(in.ExistingBookings, in.MaxBookings) {
		return reject(Reject(RejectSlotUnavailable, "the selected time slot is fully booked"))
	}

	price, err := pricing.ComputeTotal(in.Pricing, req.ParticipantCount, req.DurationUnits, req.AddOns)
	if err != nil {
		return reject(RejectionFromPricing(err))
	}

	if r := structural(req, now); r != nil {
		return reject(r)
	}

	a.advance(StateConfirmed)
	b := &Booking{
		ID:               v.newID(),
		ResourceID:       req.ResourceID,
		ResourceType:     req.ResourceType,
		GuestID:          strings.TrimSpace(req.GuestID),
		Date:             daterange.Day(req.Date),
		Slot:             slot,
		DurationUnits:    req.DurationUnits,
		ParticipantCount: req.ParticipantCount,
		AddOns:           req.AddOns,
		SpecialRequests:  strings.TrimSpace(req.SpecialRequests),
		Price:            price.Copy(),
		TotalPrice:       price.Total,
		Policy:           in.Policy,
		State:            StateConfirmed,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	b.Record(BookingConfirmed{
		BookingID:        b.ID,
		ResourceID:       b.ResourceID,
		ResourceType:     b.ResourceType,
		GuestID:          b.GuestID,
		Date:             daterange.FormatDay(b.Date),
		SlotID:           string(b.Slot.ID),
		ParticipantCount: b.ParticipantCount,
		Total:            b.TotalPrice,
		At:               now,
	})
	return Outcome{State: a.state, Booking: b, Request: req, At: now}
}

func structural(req Request, now time.Time) *Rejection {
	if strings.TrimSpace(string(req.ResourceID)) == "" {
		return Reject(RejectStructural, "resource id is required")
	}
	if req.ParticipantCount < 1 {
		return Reject(RejectStructural, "at least one participant is required")
	}
	if req.Date.IsZero() {
		return Reject(RejectStructural, "date is required")
	}
	if daterange.Day(req.Date).Before(daterange.Day(now)) {
		return Reject(RejectStructural, "date must not be in the past")
	}
	return nil
}

func (v Validator) now() time.Time {
	if v.Now != nil {
		return v.Now().UTC()
	}
	return time.Now().UTC()
}

func (v Validator) newID() ID {
	if v.NewID != nil {
		return v.NewID()
	}
	return ID(uuid.NewString())
}

func (v Validator) horizon() int {
	if v.Resolver.HorizonDays <= 0 {
		return availability.DefaultHorizonDays
	}
	return v.Resolver.HorizonDays
}
