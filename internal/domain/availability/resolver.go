package availability

import (
	"time"

	"bookingengine/internal/domain/shared/daterange"
)

// DefaultHorizonDays mirrors the 90 day cap of the booking calendars.
const DefaultHorizonDays = 90

type Decision string

const (
	Available   Decision = "AVAILABLE"
	Unavailable Decision = "UNAVAILABLE"
	OutOfRange  Decision = "OUT_OF_RANGE"
)

type SlotID string

// TimeSlot is one bookable unit within a day. Bookings are counted per
// resource, date and slot id.
type TimeSlot struct {
	ID        SlotID
	Start     TimeOfDay
	End       TimeOfDay
	Available bool
}

// Resolver decides whether a date/slot pair is offered. It holds no state
// besides its clock and horizon and is safe for concurrent use.
type Resolver struct {
	HorizonDays int
	Now         func() time.Time
}

func NewResolver(horizonDays int, now func() time.Time) Resolver {
	return Resolver{HorizonDays: horizonDays, Now: now}
}

// Resolve decides a single slot. For windowed kinds the slot must start
// inside the window and, when it has an end, finish by closing time.
func (r Resolver) Resolve(cfg Config, date time.Time, slot TimeSlot) Decision {
	day := daterange.Day(date)
	if d := r.bookableDay(day); d != Available {
		return d
	}

	switch cfg.Kind {
	case KindAlways:
		return Available
	case KindDateRange:
		if cfg.Range.ContainsDay(day) {
			return Available
		}
		return Unavailable
	case KindWeeklySchedule, KindCustom:
		sched, ok := cfg.window(day)
		if !ok {
			return Unavailable
		}
		if !slot.Available || !sched.Contains(slot.Start) || slot.End > sched.End {
			return Unavailable
		}
		return Available
	default:
		return Unavailable
	}
}

// bookableDay applies the past and horizon limits shared by every kind.
func (r Resolver) bookableDay(day time.Time) Decision {
	if day.IsZero() {
		return Unavailable
	}
	today := daterange.Day(r.now())
	if day.Before(today) {
		return Unavailable
	}
	if day.After(today.AddDate(0, 0, r.horizon())) {
		return OutOfRange
	}
	return Available
}

// HasCapacity reports whether another booking fits into the slot.
func HasCapacity(existingBookingsForSlot, maxBookings int) bool {
	return existingBookingsForSlot < maxBookings
}

func (r Resolver) horizon() int {
	if r.HorizonDays <= 0 {
		return DefaultHorizonDays
	}
	return r.HorizonDays
}

func (r Resolver) now() time.Time {
	if r.Now == nil {
		return time.Now().UTC()
	}
	return r.Now()
}
