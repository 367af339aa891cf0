package availability

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"bookingengine/internal/domain/shared/daterange"
)

var (
	ErrUnknownKind        = errors.New("availability: unknown availability kind")
	ErrInvalidTimeOfDay   = errors.New("availability: time of day must be HH:MM")
	ErrInvalidDaySchedule = errors.New("availability: start time must be before end time")
	ErrInvalidDateRange   = errors.New("availability: end date must be after start date")
	ErrEmptySchedule      = errors.New("availability: schedule has no open days")
	ErrUnknownWeekday     = errors.New("availability: unknown weekday")
)

type Kind string

const (
	KindAlways         Kind = "ALWAYS"
	KindWeeklySchedule Kind = "WEEKLY_SCHEDULE"
	KindDateRange      Kind = "DATE_RANGE"
	KindCustom         Kind = "CUSTOM"
)

// ParseKind accepts both the canonical names and the lowercase forms the
// listing wizards store ("always", "weekly", "date_range", "custom").
func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "always", "always_available":
		return KindAlways, nil
	case "weekly", "weekly_schedule", "schedule":
		return KindWeeklySchedule, nil
	case "date_range", "daterange", "range":
		return KindDateRange, nil
	case "custom":
		return KindCustom, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, raw)
	}
}

// TimeOfDay counts minutes since midnight.
type TimeOfDay int

const endOfDay TimeOfDay = 24 * 60

func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	raw = strings.TrimSpace(raw)
	if raw == "24:00" {
		return endOfDay, nil
	}
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, raw)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

func MustTimeOfDay(raw string) TimeOfDay {
	t, err := ParseTimeOfDay(raw)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// On anchors the time of day to the calendar date of day (UTC).
func (t TimeOfDay) On(day time.Time) time.Time {
	return daterange.Day(day).Add(time.Duration(t) * time.Minute)
}

// DaySchedule is the open window of a single day, half-open [Start, End).
type DaySchedule struct {
	Start TimeOfDay
	End   TimeOfDay
}

func (d DaySchedule) Validate() error {
	if d.Start < 0 || d.End > endOfDay {
		return ErrInvalidTimeOfDay
	}
	if d.Start >= d.End {
		return ErrInvalidDaySchedule
	}
	return nil
}

func (d DaySchedule) Contains(t TimeOfDay) bool {
	return t >= d.Start && t < d.End
}

// Config describes when a resource can be booked.
//
// Weekly holds an entry only for open weekdays; a missing weekday is closed.
// Custom maps YYYY-MM-DD dates to that date's window.
type Config struct {
	Kind   Kind
	Weekly map[time.Weekday]DaySchedule
	Range  daterange.DateRange
	Custom map[string]DaySchedule
}

func Always() Config {
	return Config{Kind: KindAlways}
}

func Weekly(days map[time.Weekday]DaySchedule) Config {
	return Config{Kind: KindWeeklySchedule, Weekly: days}
}

func Between(dr daterange.DateRange) Config {
	return Config{Kind: KindDateRange, Range: dr}
}

func CustomDates(days map[string]DaySchedule) Config {
	return Config{Kind: KindCustom, Custom: days}
}

// Validate checks the per-kind invariants. Overlapping slot definitions
// within a day are not detected.
func (c Config) Validate() error {
	switch c.Kind {
	case KindAlways:
		return nil
	case KindWeeklySchedule:
		if len(c.Weekly) == 0 {
			return ErrEmptySchedule
		}
		for day, sched := range c.Weekly {
			if err := sched.Validate(); err != nil {
				return fmt.Errorf("%s: %w", strings.ToLower(day.String()), err)
			}
		}
		return nil
	case KindDateRange:
		if err := c.Range.Validate(); err != nil {
			return ErrInvalidDateRange
		}
		return nil
	case KindCustom:
		if len(c.Custom) == 0 {
			return ErrEmptySchedule
		}
		for date, sched := range c.Custom {
			if _, err := daterange.ParseDay(date); err != nil {
				return fmt.Errorf("availability: custom date %q: %w", date, err)
			}
			if err := sched.Validate(); err != nil {
				return fmt.Errorf("%s: %w", date, err)
			}
		}
		return nil
	default:
		return ErrUnknownKind
	}
}

// window returns the open window for the calendar date, if the config defines one.
func (c Config) window(day time.Time) (DaySchedule, bool) {
	switch c.Kind {
	case KindWeeklySchedule:
		sched, ok := c.Weekly[day.Weekday()]
		return sched, ok
	case KindCustom:
		sched, ok := c.Custom[daterange.FormatDay(day)]
		return sched, ok
	default:
		return DaySchedule{}, false
	}
}

func ParseWeekday(raw string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "monday", "mon":
		return time.Monday, nil
	case "tuesday", "tue":
		return time.Tuesday, nil
	case "wednesday", "wed":
		return time.Wednesday, nil
	case "thursday", "thu":
		return time.Thursday, nil
	case "friday", "fri":
		return time.Friday, nil
	case "saturday", "sat":
		return time.Saturday, nil
	case "sunday", "sun":
		return time.Sunday, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownWeekday, raw)
	}
}
