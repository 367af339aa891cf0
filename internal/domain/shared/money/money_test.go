package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsBadCurrency(t *testing.T) {
	_, err := New(decimal.NewFromInt(10), "US")
	assert.ErrorIs(t, err, ErrInvalidCurrency)

	m, err := New(decimal.NewFromInt(10), "usd")
	require.NoError(t, err)
	assert.Equal(t, "USD", m.Currency)
}

func TestParse_InvalidAmount(t *testing.T) {
	_, err := Parse("ten", "USD")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestAdd_CurrencyMismatch(t *testing.T) {
	_, err := Must("1", "USD").Add(Must("1", "EUR"))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestPercent_KeepsFullPrecision(t *testing.T) {
	m := Must("33.33", "USD").Percent(decimal.NewFromInt(10))
	assert.Equal(t, "3.333", m.Amount.String())
}

func TestRoundHalfUp(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"148.5", "148.50"},
		{"1.005", "1.01"},
		{"1.004", "1.00"},
		{"2.675", "2.68"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got := Must(tc.in, "USD").RoundHalfUp(2)
			assert.Equal(t, tc.want, got.StringFixed())
		})
	}
}
