package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookingengine/internal/domain/shared/daterange"
)

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(570), got)
	assert.Equal(t, "09:30", got.String())

	end, err := ParseTimeOfDay("24:00")
	require.NoError(t, err)
	assert.Equal(t, endOfDay, end)

	_, err = ParseTimeOfDay("9am")
	assert.ErrorIs(t, err, ErrInvalidTimeOfDay)
}

func TestConfigValidate(t *testing.T) {
	dr, _ := daterange.Parse("2026-01-01", "2026-02-01")

	tests := []struct {
		name    string
		cfg     Config
		wantErr error
		anyErr  bool
	}{
		{"always", Always(), nil, false},
		{"weekly ok", mondayOnly(), nil, false},
		{"weekly start equals end", Weekly(map[time.Weekday]DaySchedule{
			time.Friday: {Start: MustTimeOfDay("10:00"), End: MustTimeOfDay("10:00")},
		}), ErrInvalidDaySchedule, false},
		{"weekly reversed", Weekly(map[time.Weekday]DaySchedule{
			time.Friday: {Start: MustTimeOfDay("18:00"), End: MustTimeOfDay("10:00")},
		}), ErrInvalidDaySchedule, false},
		{"weekly empty", Weekly(nil), ErrEmptySchedule, false},
		{"range ok", Between(dr), nil, false},
		{"range reversed", Config{Kind: KindDateRange, Range: daterange.DateRange{Start: dr.End, End: dr.Start}}, ErrInvalidDateRange, false},
		{"custom bad date", CustomDates(map[string]DaySchedule{"01/02/2026": {Start: 0, End: 60}}), nil, true},
		{"unknown", Config{Kind: "NOPE"}, ErrUnknownKind, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			switch {
			case tc.anyErr:
				assert.Error(t, err)
			case tc.wantErr == nil:
				assert.NoError(t, err)
			default:
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestConfigValidate_KeepsOverlappingDefinitions(t *testing.T) {
	cfg := CustomDates(map[string]DaySchedule{
		"2026-10-20": {Start: MustTimeOfDay("09:00"), End: MustTimeOfDay("12:00")},
		"2026-10-21": {Start: MustTimeOfDay("09:00"), End: MustTimeOfDay("12:00")},
	})
	assert.NoError(t, cfg.Validate())
}

func TestParseKindAndWeekday(t *testing.T) {
	k, err := ParseKind("weekly")
	require.NoError(t, err)
	assert.Equal(t, KindWeeklySchedule, k)

	_, err = ParseKind("hourly")
	assert.ErrorIs(t, err, ErrUnknownKind)

	d, err := ParseWeekday("Sunday")
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, d)

	_, err = ParseWeekday("someday")
	assert.ErrorIs(t, err, ErrUnknownWeekday)
}
