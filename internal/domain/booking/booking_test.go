package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookingengine/internal/domain/cancellation"
)

func confirmedBooking(t *testing.T, policy cancellation.Policy) *Booking {
	t.Helper()
	in := leisureInput()
	in.Policy = policy
	out := testValidator().Validate(in)
	require.True(t, out.Confirmed())
	out.Booking.ClearEvents()
	return out.Booking
}

func TestCancel_EligibleRefund(t *testing.T) {
	b := confirmedBooking(t, cancellation.Flexible)

	// starts 2026-10-19 10:00, exactly 24h later
	decision, err := b.Cancel(" plans changed ", time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, decision.Eligible)
	assert.Equal(t, StateCancelled, b.State)
	assert.Equal(t, "148.50", b.Refund.StringFixed())
	assert.True(t, b.Penalty.IsZero())
	assert.Equal(t, "plans changed", b.CancelReason)

	evs := b.PendingEvents()
	require.Len(t, evs, 1)
	cancelled := evs[0].(BookingCancelled)
	assert.Equal(t, "kayak-tour|2026-10-19|10:00", cancelled.SlotKey)
}

func TestCancel_InsideCutoff(t *testing.T) {
	b := confirmedBooking(t, cancellation.Flexible)

	decision, err := b.Cancel("", time.Date(2026, 10, 18, 10, 1, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, decision.Eligible)
	assert.True(t, b.Refund.IsZero())
	assert.Equal(t, "148.50", b.Penalty.StringFixed())
}

func TestCancel_OnlyOnce(t *testing.T) {
	b := confirmedBooking(t, cancellation.Strict)
	_, err := b.Cancel("", now)
	require.NoError(t, err)

	_, err = b.Cancel("", now)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestNotification(t *testing.T) {
	b := confirmedBooking(t, cancellation.Moderate)
	n := NotificationFor(b)

	assert.Equal(t, b.ID, n.BookingID)
	assert.Equal(t, b.ResourceID, n.ResourceID)
	assert.Equal(t, "148.50", n.TotalPrice.StringFixed())
	assert.Equal(t, now, n.Timestamp)
	assert.Equal(t, "private-user-owner-1", ChannelFor("owner-1"))
	assert.Equal(t, "booking-confirmed", NotificationEvent)
}

func TestSlotKey(t *testing.T) {
	k := NewSlotKey("room-9", time.Date(2026, 12, 1, 22, 0, 0, 0, time.UTC), "all-day")
	assert.Equal(t, "room-9|2026-12-01|all-day", k.String())
}
