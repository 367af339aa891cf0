package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainavailability "bookingengine/internal/domain/availability"
	"bookingengine/internal/domain/cancellation"
	domainpricing "bookingengine/internal/domain/pricing"
	domainresource "bookingengine/internal/domain/resource"
)

func TestLoadResources_ExampleFile(t *testing.T) {
	resources, err := LoadResources("../../../configs/resources.yaml")
	require.NoError(t, err)
	require.Len(t, resources, 4)

	kayak := resources[0]
	assert.Equal(t, domainresource.ID("kayak-tour"), kayak.ID)
	assert.Equal(t, domainresource.TypeLeisure, kayak.Type)
	assert.Equal(t, time.Hour, kayak.SlotLength)
	assert.Equal(t, domainavailability.KindWeeklySchedule, kayak.Availability.Kind)
	assert.Len(t, kayak.Availability.Weekly, 2)
	assert.Equal(t, domainpricing.ModePerPerson, kayak.Pricing.Mode)
	require.NotNil(t, kayak.Pricing.GroupDiscount)
	assert.Equal(t, "10", kayak.Pricing.GroupDiscount.Percentage.String())
	assert.Equal(t, cancellation.NameModerate, kayak.Policy.Name)

	studio := resources[1]
	assert.Equal(t, cancellation.NameCustom, studio.Policy.Name)
	assert.Equal(t, "75", studio.Policy.RefundPercentage.String())
	assert.Equal(t, 12.0, studio.Policy.CutoffHours)

	cabin := resources[2]
	assert.Equal(t, domainavailability.KindDateRange, cabin.Availability.Kind)
	assert.Equal(t, time.Duration(0), cabin.SlotLength)

	walk := resources[3]
	assert.Equal(t, domainavailability.KindAlways, walk.Availability.Kind)
	assert.Equal(t, "EUR", walk.Pricing.BasePrice.Currency)
}

func TestParseResources_CustomDates(t *testing.T) {
	data := []byte(`
resources:
  - id: xmas-market
    type: leisure
    owner_id: o1
    max_bookings: 5
    availability:
      kind: custom
      custom:
        "2026-12-24": {start: "10:00", end: "14:00"}
    pricing: {mode: per_session, base_price: "15", currency: usd}
`)
	resources, err := ParseResources(data)
	require.NoError(t, err)
	require.Len(t, resources, 1)
	res := resources[0]
	assert.Equal(t, domainavailability.KindCustom, res.Availability.Kind)
	assert.Equal(t, "USD", res.Pricing.BasePrice.Currency)
	assert.Equal(t, cancellation.NameFlexible, res.Policy.Name)
}

func TestParseResources_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown type", `resources: [{id: a, type: boat, owner_id: o, max_bookings: 1, availability: {kind: always}, pricing: {mode: fixed, base_price: "1", currency: USD}}]`, "unknown resource type"},
		{"no capacity", `resources: [{id: a, type: service, owner_id: o, availability: {kind: always}, pricing: {mode: fixed, base_price: "1", currency: USD}}]`, "max bookings"},
		{"bad weekday", `resources: [{id: a, type: service, owner_id: o, max_bookings: 1, availability: {kind: weekly, weekly: {funday: {start: "09:00", end: "10:00"}}}, pricing: {mode: fixed, base_price: "1", currency: USD}}]`, "weekday"},
		{"free", `resources: [{id: a, type: service, owner_id: o, max_bookings: 1, availability: {kind: always}, pricing: {mode: fixed, base_price: "0", currency: USD}}]`, "base price"},
		{"unknown policy", `resources: [{id: a, type: service, owner_id: o, max_bookings: 1, availability: {kind: always}, pricing: {mode: fixed, base_price: "1", currency: USD}, cancellation: {policy: lenient}}]`, "unknown policy"},
		{"duplicate", `resources: [{id: a, type: service, owner_id: o, max_bookings: 1, availability: {kind: always}, pricing: {mode: fixed, base_price: "1", currency: USD}}, {id: a, type: service, owner_id: o, max_bookings: 1, availability: {kind: always}, pricing: {mode: fixed, base_price: "1", currency: USD}}]`, "duplicate id"},
		{"not yaml", `resources: [`, "failed to parse"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseResources([]byte(tc.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
