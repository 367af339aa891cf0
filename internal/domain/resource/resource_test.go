package resource

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookingengine/internal/domain/availability"
	"bookingengine/internal/domain/cancellation"
	"bookingengine/internal/domain/pricing"
	"bookingengine/internal/domain/shared/money"
)

func validResource() *Resource {
	return &Resource{
		ID:           "kayak-tour",
		Type:         TypeLeisure,
		OwnerID:      "owner-1",
		Title:        "Sunset kayak tour",
		Availability: availability.Always(),
		Pricing:      pricing.Rule{Mode: pricing.ModeFixed, BasePrice: money.Must("40", "USD")},
		Policy:       cancellation.Flexible,
		MaxBookings:  3,
		SlotLength:   time.Hour,
	}
}

func TestResourceValidate(t *testing.T) {
	require.NoError(t, validResource().Validate())

	tests := []struct {
		name    string
		mutate  func(r *Resource)
		wantErr error
	}{
		{"missing id", func(r *Resource) { r.ID = " " }, ErrIDRequired},
		{"missing owner", func(r *Resource) { r.OwnerID = "" }, ErrOwnerRequired},
		{"bad type", func(r *Resource) { r.Type = "boat" }, ErrUnknownType},
		{"zero capacity", func(r *Resource) { r.MaxBookings = 0 }, ErrInvalidCapacity},
		{"bad availability", func(r *Resource) { r.Availability = availability.Config{Kind: "nope"} }, availability.ErrUnknownKind},
		{"free price", func(r *Resource) { r.Pricing.BasePrice = money.Zero("USD") }, pricing.ErrInvalidBasePrice},
		{"bad policy", func(r *Resource) { r.Policy.CutoffHours = -1 }, cancellation.ErrInvalidCutoff},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := validResource()
			tc.mutate(r)
			assert.ErrorIs(t, r.Validate(), tc.wantErr)
		})
	}
}

func TestParseType(t *testing.T) {
	got, err := ParseType("Service")
	require.NoError(t, err)
	assert.Equal(t, TypeService, got)

	_, err = ParseType("vehicle")
	assert.ErrorIs(t, err, ErrUnknownType)
}
