package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresStartBeforeEnd(t *testing.T) {
	day := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)

	_, err := New(day, day)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = New(day, day.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, ErrInvalidRange)

	dr, err := New(day, day.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), dr.End)
	assert.Equal(t, 0, dr.Start.Hour())
}

func TestContainsDay_Inclusive(t *testing.T) {
	dr, err := Parse("2026-03-01", "2026-03-10")
	require.NoError(t, err)

	assert.True(t, dr.ContainsDay(dr.Start))
	assert.True(t, dr.ContainsDay(dr.End.Add(23*time.Hour)))
	assert.False(t, dr.ContainsDay(dr.Start.AddDate(0, 0, -1)))
	assert.False(t, dr.ContainsDay(dr.End.AddDate(0, 0, 1)))
}

func TestFormatDay(t *testing.T) {
	assert.Equal(t, "2026-12-31", FormatDay(time.Date(2026, 12, 31, 22, 0, 0, 0, time.UTC)))
}
