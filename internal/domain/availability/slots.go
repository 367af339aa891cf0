package availability

import (
	"time"

	"bookingengine/internal/domain/shared/daterange"
)

// WholeDaySlotID identifies the single slot of whole-day bookings.
const WholeDaySlotID SlotID = "all-day"

var wholeDay = DaySchedule{Start: 0, End: endOfDay}

// Slots expands the open window of date into consecutive slots of the given
// length. A non-positive length yields the whole window as one slot. Dates
// the resolver would reject produce no slots.
func (r Resolver) Slots(cfg Config, date time.Time, length time.Duration) []TimeSlot {
	day := daterange.Day(date)
	open := TimeSlot{Available: true}

	var sched DaySchedule
	switch cfg.Kind {
	case KindAlways:
		sched = wholeDay
	case KindDateRange:
		if r.Resolve(cfg, day, open) != Available {
			return nil
		}
		return []TimeSlot{{ID: WholeDaySlotID, Start: 0, End: endOfDay, Available: true}}
	case KindWeeklySchedule, KindCustom:
		w, ok := cfg.window(day)
		if !ok {
			return nil
		}
		sched = w
	default:
		return nil
	}
	open.Start = sched.Start
	if r.Resolve(cfg, day, open) != Available {
		return nil
	}

	step := TimeOfDay(length / time.Minute)
	if step <= 0 {
		id := SlotID(sched.Start.String())
		if cfg.Kind == KindAlways {
			id = WholeDaySlotID
		}
		return []TimeSlot{{ID: id, Start: sched.Start, End: sched.End, Available: true}}
	}
	var out []TimeSlot
	for start := sched.Start; start+step <= sched.End; start += step {
		out = append(out, TimeSlot{ID: SlotID(start.String()), Start: start, End: start + step, Available: true})
	}
	return out
}

// WholeDay reports whether cfg books entire days rather than timed slots.
func WholeDay(cfg Config, length time.Duration) bool {
	switch cfg.Kind {
	case KindDateRange:
		return true
	case KindAlways:
		return length < time.Minute
	default:
		return false
	}
}

// ResolveSlot maps a requested slot id onto the day's slot grid and decides
// it. Whole-day configurations fold every id into WholeDaySlotID, and ids
// that are not on the grid are unavailable. The returned slot carries the
// canonical id that capacity is counted under.
func (r Resolver) ResolveSlot(cfg Config, date time.Time, id SlotID, length time.Duration) (TimeSlot, Decision) {
	day := daterange.Day(date)
	if d := r.bookableDay(day); d != Available {
		return TimeSlot{ID: id}, d
	}
	if WholeDay(cfg, length) {
		slot := TimeSlot{ID: WholeDaySlotID, Start: 0, End: endOfDay, Available: true}
		return slot, r.Resolve(cfg, day, slot)
	}
	slot, ok := FindSlot(r.Slots(cfg, day, length), id)
	if !ok {
		return TimeSlot{ID: id}, Unavailable
	}
	return slot, r.Resolve(cfg, day, slot)
}

// FindSlot looks up a slot by id.
func FindSlot(slots []TimeSlot, id SlotID) (TimeSlot, bool) {
	for _, s := range slots {
		if s.ID == id {
			return s, true
		}
	}
	return TimeSlot{}, false
}
