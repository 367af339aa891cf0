package booking

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookingengine/internal/domain/availability"
	"bookingengine/internal/domain/cancellation"
	"bookingengine/internal/domain/pricing"
	"bookingengine/internal/domain/resource"
	"bookingengine/internal/domain/shared/daterange"
	"bookingengine/internal/domain/shared/money"
)

// Thursday.
var now = time.Date(2026, 10, 15, 10, 30, 0, 0, time.UTC)

var nextMonday = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func testValidator() Validator {
	v := NewValidator(availability.NewResolver(availability.DefaultHorizonDays, clock))
	v.NewID = func() ID { return "bk-1" }
	return v
}

func mondayOnly() availability.Config {
	return availability.Weekly(map[time.Weekday]availability.DaySchedule{
		time.Monday: {Start: availability.MustTimeOfDay("09:00"), End: availability.MustTimeOfDay("17:00")},
	})
}

func leisureInput() Input {
	return Input{
		Request: Request{
			ResourceID:       "kayak-tour",
			ResourceType:     resource.TypeLeisure,
			GuestID:          "guest-7",
			Date:             nextMonday,
			TimeSlotID:       "10:00",
			DurationUnits:    1,
			ParticipantCount: 6,
			AddOns:           pricing.AddOns{Insurance: true},
		},
		Availability:     mondayOnly(),
		SlotLength:       time.Hour,
		ExistingBookings: 0,
		MaxBookings:      2,
		Pricing: pricing.Rule{
			Mode:            pricing.ModePerPerson,
			BasePrice:       money.Must("25", "USD"),
			MinParticipants: 1,
			MaxParticipants: 30,
			GroupDiscount:   &pricing.GroupDiscount{ThresholdParticipants: 5, Percentage: decimal.NewFromInt(10)},
		},
		Policy: cancellation.Flexible,
	}
}

func TestValidate_Confirms(t *testing.T) {
	out := testValidator().Validate(leisureInput())

	require.True(t, out.Confirmed())
	assert.Equal(t, StateConfirmed, out.State)
	assert.Nil(t, out.Rejection)

	b := out.Booking
	assert.Equal(t, ID("bk-1"), b.ID)
	assert.Equal(t, "148.50", b.TotalPrice.StringFixed())
	assert.Equal(t, availability.SlotID("10:00"), b.Slot.ID)
	assert.Equal(t, now, b.CreatedAt)
	assert.Equal(t, time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC), b.StartsAt())

	evs := out.Events()
	require.Len(t, evs, 1)
	confirmed, ok := evs[0].(BookingConfirmed)
	require.True(t, ok)
	assert.Equal(t, "booking.confirmed", confirmed.EventName())
	assert.Equal(t, "2026-10-19", confirmed.Date)
}

func TestValidate_TuesdayOnMondaySchedule(t *testing.T) {
	in := leisureInput()
	in.Request.Date = nextMonday.AddDate(0, 0, 1)

	out := testValidator().Validate(in)
	assert.Equal(t, StateRejected, out.State)
	require.NotNil(t, out.Rejection)
	assert.Equal(t, RejectSlotUnavailable, out.Rejection.Kind)
	assert.Nil(t, out.Booking)
}

func TestValidate_BeyondHorizon(t *testing.T) {
	in := leisureInput()
	in.Availability = availability.Always()
	in.Request.Date = now.AddDate(0, 0, 91)

	out := testValidator().Validate(in)
	require.NotNil(t, out.Rejection)
	assert.Equal(t, RejectOutOfRange, out.Rejection.Kind)
	assert.Contains(t, out.Rejection.Message, "90 days")
}

func TestValidate_FailFastOrder(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *Input)
		want   RejectionKind
	}{
		{"slot outside window", func(in *Input) { in.Request.TimeSlotID = "18:00" }, RejectSlotUnavailable},
		{"malformed slot id", func(in *Input) { in.Request.TimeSlotID = "noon" }, RejectSlotUnavailable},
		{"slot off the hourly grid", func(in *Input) { in.Request.TimeSlotID = "10:15" }, RejectSlotUnavailable},
		{"unpadded slot id", func(in *Input) { in.Request.TimeSlotID = "9:00" }, RejectSlotUnavailable},
		{"slot running past closing", func(in *Input) {
			in.SlotLength = 90 * time.Minute
			in.Request.TimeSlotID = "16:00"
		}, RejectSlotUnavailable},
		{"fully booked", func(in *Input) { in.ExistingBookings = 2 }, RejectSlotUnavailable},
		{"unavailable wins over pricing", func(in *Input) {
			in.ExistingBookings = 2
			in.Request.ParticipantCount = 99
		}, RejectSlotUnavailable},
		{"too many participants", func(in *Input) { in.Request.ParticipantCount = 31 }, RejectInvalidParticipantCount},
		{"hourly without duration", func(in *Input) {
			in.Pricing = pricing.Rule{Mode: pricing.ModeHourly, BasePrice: money.Must("60", "USD")}
			in.Request.DurationUnits = 0
		}, RejectInvalidDuration},
		{"free resource", func(in *Input) { in.Pricing.BasePrice = money.Must("0", "USD") }, RejectInvalidBasePrice},
		{"broken rule", func(in *Input) { in.Pricing.Mode = "BARTER" }, RejectStructural},
		{"missing resource id", func(in *Input) { in.Request.ResourceID = "  " }, RejectStructural},
		{"no participants on flat price", func(in *Input) {
			in.Pricing = pricing.Rule{Mode: pricing.ModeFixed, BasePrice: money.Must("80", "USD")}
			in.Request.ParticipantCount = 0
		}, RejectStructural},
		{"past date", func(in *Input) {
			in.Availability = availability.Always()
			in.Request.Date = now.AddDate(0, 0, -1)
		}, RejectSlotUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := leisureInput()
			tc.mutate(&in)
			out := testValidator().Validate(in)
			require.NotNil(t, out.Rejection)
			assert.Equal(t, tc.want, out.Rejection.Kind)
			assert.NotEmpty(t, out.Rejection.Message)
			assert.Equal(t, StateRejected, out.State)
		})
	}
}

func TestValidate_HourlyScenario(t *testing.T) {
	in := leisureInput()
	in.Availability = availability.Always()
	in.Request.ParticipantCount = 1
	in.Request.DurationUnits = 2
	in.Request.AddOns = pricing.AddOns{}
	in.Pricing = pricing.Rule{Mode: pricing.ModeHourly, BasePrice: money.Must("60", "USD")}

	out := testValidator().Validate(in)
	require.True(t, out.Confirmed())
	assert.Equal(t, "120.00", out.Booking.TotalPrice.StringFixed())
}

func TestOutcome_RejectedEvent(t *testing.T) {
	in := leisureInput()
	in.ExistingBookings = 5

	out := testValidator().Validate(in)
	evs := out.Events()
	require.Len(t, evs, 1)
	rejected, ok := evs[0].(BookingRejected)
	require.True(t, ok)
	assert.Equal(t, RejectSlotUnavailable, rejected.Kind)
	assert.Equal(t, "kayak-tour", rejected.AggregateID())
	assert.Equal(t, now, rejected.OccurredAt())
}

func TestRejection_IsError(t *testing.T) {
	var err error = Reject(RejectOutOfRange, "too far ahead")
	r, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectOutOfRange, r.Kind)
	assert.Contains(t, err.Error(), "OUT_OF_RANGE")
}

func TestValidate_WholeDayBookingsShareOneSlot(t *testing.T) {
	october, err := daterange.Parse("2026-10-01", "2026-10-31")
	require.NoError(t, err)

	for _, id := range []availability.SlotID{"all-day", "a", "", "12:00"} {
		in := leisureInput()
		in.Availability = availability.Between(october)
		in.Request.TimeSlotID = id

		out := testValidator().Validate(in)
		require.True(t, out.Confirmed(), "slot %q", id)
		assert.Equal(t, availability.WholeDaySlotID, out.Booking.Slot.ID)
		assert.Equal(t, "kayak-tour|2026-10-19|all-day", out.Booking.SlotKey().String())
	}
}
