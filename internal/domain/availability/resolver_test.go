package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookingengine/internal/domain/shared/daterange"
)

// Thursday.
var fixedNow = time.Date(2026, 10, 15, 10, 30, 0, 0, time.UTC)

func testResolver() Resolver {
	return NewResolver(DefaultHorizonDays, func() time.Time { return fixedNow })
}

func slotAt(raw string) TimeSlot {
	start := MustTimeOfDay(raw)
	return TimeSlot{ID: SlotID(raw), Start: start, End: start + 60, Available: true}
}

func mondayOnly() Config {
	return Weekly(map[time.Weekday]DaySchedule{
		time.Monday: {Start: MustTimeOfDay("09:00"), End: MustTimeOfDay("17:00")},
	})
}

func TestResolve_Always(t *testing.T) {
	r := testResolver()
	assert.Equal(t, Available, r.Resolve(Always(), fixedNow, TimeSlot{}))
	assert.Equal(t, Available, r.Resolve(Always(), fixedNow.AddDate(0, 0, 30), slotAt("03:00")))
}

func TestResolve_WeeklySchedule(t *testing.T) {
	r := testResolver()
	monday := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)

	tests := []struct {
		name string
		date time.Time
		slot TimeSlot
		want Decision
	}{
		{"start boundary is open", monday, slotAt("09:00"), Available},
		{"inside window", monday, slotAt("13:30"), Available},
		{"ends at closing", monday, slotAt("16:00"), Available},
		{"runs past closing", monday, slotAt("16:30"), Unavailable},
		{"last minute without an end", monday, TimeSlot{ID: "16:59", Start: MustTimeOfDay("16:59"), Available: true}, Available},
		{"end boundary is closed", monday, slotAt("17:00"), Unavailable},
		{"before window", monday, slotAt("08:59"), Unavailable},
		{"weekday without entry", tuesday, slotAt("10:00"), Unavailable},
		{"slot flagged unavailable", monday, TimeSlot{ID: "x", Start: MustTimeOfDay("10:00")}, Unavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, r.Resolve(mondayOnly(), tc.date, tc.slot))
		})
	}
}

func TestResolve_WeeklySchedule_AvailableIffWeekdayAndWindow(t *testing.T) {
	r := testResolver()
	cfg := Weekly(map[time.Weekday]DaySchedule{
		time.Monday:    {Start: MustTimeOfDay("09:00"), End: MustTimeOfDay("12:00")},
		time.Wednesday: {Start: MustTimeOfDay("14:00"), End: MustTimeOfDay("18:00")},
		time.Saturday:  {Start: MustTimeOfDay("00:00"), End: MustTimeOfDay("24:00")},
	})
	start := daterange.Day(fixedNow)
	for d := 0; d < 14; d++ {
		day := start.AddDate(0, 0, d)
		for minute := TimeOfDay(0); minute < endOfDay; minute += 30 {
			slot := TimeSlot{ID: SlotID(minute.String()), Start: minute, Available: true}
			sched, ok := cfg.Weekly[day.Weekday()]
			want := Unavailable
			if ok && minute >= sched.Start && minute < sched.End {
				want = Available
			}
			require.Equal(t, want, r.Resolve(cfg, day, slot), "day=%s slot=%s", day.Format("Mon 2006-01-02"), minute)
		}
	}
}

func TestResolve_DateRange(t *testing.T) {
	r := testResolver()
	dr, err := daterange.Parse("2026-11-01", "2026-11-10")
	require.NoError(t, err)
	cfg := Between(dr)

	assert.Equal(t, Available, r.Resolve(cfg, dr.Start, TimeSlot{}))
	assert.Equal(t, Available, r.Resolve(cfg, dr.End, TimeSlot{}))
	assert.Equal(t, Available, r.Resolve(cfg, dr.Start.AddDate(0, 0, 4), slotAt("23:00")))
	assert.Equal(t, Unavailable, r.Resolve(cfg, dr.Start.AddDate(0, 0, -1), TimeSlot{}))
	assert.Equal(t, Unavailable, r.Resolve(cfg, dr.End.AddDate(0, 0, 1), TimeSlot{}))
}

func TestResolve_Custom(t *testing.T) {
	r := testResolver()
	cfg := CustomDates(map[string]DaySchedule{
		"2026-10-20": {Start: MustTimeOfDay("10:00"), End: MustTimeOfDay("12:00")},
	})
	day := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, Available, r.Resolve(cfg, day, slotAt("11:00")))
	assert.Equal(t, Unavailable, r.Resolve(cfg, day, slotAt("12:00")))
	assert.Equal(t, Unavailable, r.Resolve(cfg, day.AddDate(0, 0, 1), slotAt("11:00")))
}

func TestResolve_PastAndHorizon(t *testing.T) {
	r := testResolver()
	today := daterange.Day(fixedNow)

	assert.Equal(t, Unavailable, r.Resolve(Always(), today.AddDate(0, 0, -1), TimeSlot{}))
	assert.Equal(t, Available, r.Resolve(Always(), today, TimeSlot{}))
	assert.Equal(t, Available, r.Resolve(Always(), today.AddDate(0, 0, 90), TimeSlot{}))
	assert.Equal(t, OutOfRange, r.Resolve(Always(), today.AddDate(0, 0, 91), TimeSlot{}))
	assert.Equal(t, Unavailable, r.Resolve(Always(), time.Time{}, TimeSlot{}))
}

func TestResolve_CustomHorizon(t *testing.T) {
	r := NewResolver(7, func() time.Time { return fixedNow })
	assert.Equal(t, OutOfRange, r.Resolve(Always(), fixedNow.AddDate(0, 0, 8), TimeSlot{}))
}

func TestResolve_UnknownKind(t *testing.T) {
	r := testResolver()
	assert.Equal(t, Unavailable, r.Resolve(Config{Kind: "SOMETHING"}, fixedNow, TimeSlot{}))
}

func TestHasCapacity(t *testing.T) {
	assert.True(t, HasCapacity(0, 1))
	assert.True(t, HasCapacity(4, 5))
	assert.False(t, HasCapacity(5, 5))
	assert.False(t, HasCapacity(6, 5))

	for i := 0; i < 3; i++ {
		assert.True(t, HasCapacity(2, 3))
		assert.False(t, HasCapacity(3, 3))
	}
}

func TestSlots_WeeklyExpansion(t *testing.T) {
	r := testResolver()
	monday := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	slots := r.Slots(mondayOnly(), monday, 2*time.Hour)
	require.Len(t, slots, 4)
	assert.Equal(t, SlotID("09:00"), slots[0].ID)
	assert.Equal(t, MustTimeOfDay("17:00"), slots[3].End)

	whole := r.Slots(mondayOnly(), monday, 0)
	require.Len(t, whole, 1)
	assert.Equal(t, MustTimeOfDay("09:00"), whole[0].Start)

	assert.Empty(t, r.Slots(mondayOnly(), monday.AddDate(0, 0, 1), time.Hour))
	assert.Empty(t, r.Slots(Always(), fixedNow.AddDate(0, 0, 120), time.Hour))
}

func TestSlots_DateRangeIsWholeDay(t *testing.T) {
	r := testResolver()
	dr, _ := daterange.Parse("2026-11-01", "2026-11-03")

	slots := r.Slots(Between(dr), dr.Start, time.Hour)
	require.Len(t, slots, 1)
	assert.Equal(t, WholeDaySlotID, slots[0].ID)

	slot, ok := FindSlot(slots, WholeDaySlotID)
	require.True(t, ok)
	assert.Equal(t, Available, r.Resolve(Between(dr), dr.Start, slot))
}

func TestResolveSlot_OnlyGridIDs(t *testing.T) {
	r := testResolver()
	monday := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	slot, decision := r.ResolveSlot(mondayOnly(), monday, "10:00", time.Hour)
	assert.Equal(t, Available, decision)
	assert.Equal(t, SlotID("10:00"), slot.ID)
	assert.Equal(t, MustTimeOfDay("11:00"), slot.End)

	for _, id := range []SlotID{"10:15", "10:30", "9:00", "16:30", "17:00", "", "all-day", "noon"} {
		_, decision := r.ResolveSlot(mondayOnly(), monday, id, time.Hour)
		assert.Equal(t, Unavailable, decision, "slot %q", id)
	}

	_, decision = r.ResolveSlot(mondayOnly(), monday.AddDate(0, 0, 1), "10:00", time.Hour)
	assert.Equal(t, Unavailable, decision)
}

func TestResolveSlot_WholeDayKindsShareOneID(t *testing.T) {
	r := testResolver()
	dr, err := daterange.Parse("2026-11-01", "2026-11-10")
	require.NoError(t, err)

	for _, id := range []SlotID{"all-day", "a", "b", "", "12:00"} {
		slot, decision := r.ResolveSlot(Between(dr), dr.Start, id, time.Hour)
		assert.Equal(t, Available, decision, "slot %q", id)
		assert.Equal(t, WholeDaySlotID, slot.ID, "slot %q", id)
	}

	slot, decision := r.ResolveSlot(Always(), fixedNow, "whatever", 0)
	assert.Equal(t, Available, decision)
	assert.Equal(t, WholeDaySlotID, slot.ID)
	assert.Equal(t, []TimeSlot{slot}, r.Slots(Always(), fixedNow, 0))

	_, decision = r.ResolveSlot(Between(dr), dr.End.AddDate(0, 0, 1), "all-day", time.Hour)
	assert.Equal(t, Unavailable, decision)
}

func TestResolveSlot_DayLimitsComeFirst(t *testing.T) {
	r := testResolver()

	_, decision := r.ResolveSlot(Always(), fixedNow.AddDate(0, 0, 91), "not-a-slot", time.Hour)
	assert.Equal(t, OutOfRange, decision)

	_, decision = r.ResolveSlot(Always(), fixedNow.AddDate(0, 0, -1), "10:00", time.Hour)
	assert.Equal(t, Unavailable, decision)

	slot, decision := r.ResolveSlot(Always(), fixedNow, "10:00", time.Hour)
	assert.Equal(t, Available, decision)
	assert.Equal(t, SlotID("10:00"), slot.ID)
}
