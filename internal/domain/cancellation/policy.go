package cancellation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bookingengine/internal/domain/shared/money"
)

var (
	ErrInvalidRefundPercentage = errors.New("cancellation: refund percentage must be within [0, 100]")
	ErrInvalidCutoff           = errors.New("cancellation: cutoff hours must not be negative")
	ErrUnknownPolicy           = errors.New("cancellation: unknown policy")
)

const (
	NameFlexible = "flexible"
	NameModerate = "moderate"
	NameStrict   = "strict"
	NameCustom   = "custom"
)

type Policy struct {
	Name             string
	RefundPercentage decimal.Decimal
	CutoffHours      float64
}

var (
	Flexible = Policy{Name: NameFlexible, RefundPercentage: decimal.NewFromInt(100), CutoffHours: 24}
	Moderate = Policy{Name: NameModerate, RefundPercentage: decimal.NewFromInt(50), CutoffHours: 48}
	Strict   = Policy{Name: NameStrict, RefundPercentage: decimal.NewFromInt(50), CutoffHours: 168}
)

// NewCustom builds a custom policy after validating its bounds.
func NewCustom(refundPercentage decimal.Decimal, cutoffHours float64) (Policy, error) {
	p := Policy{Name: NameCustom, RefundPercentage: refundPercentage, CutoffHours: cutoffHours}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

func (p Policy) Validate() error {
	if p.RefundPercentage.IsNegative() || p.RefundPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return ErrInvalidRefundPercentage
	}
	if p.CutoffHours < 0 {
		return ErrInvalidCutoff
	}
	return nil
}

// Lookup resolves a named policy. Custom policies carry their own values and
// are not resolvable by name.
func Lookup(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameFlexible:
		return Flexible, nil
	case NameModerate:
		return Moderate, nil
	case NameStrict:
		return Strict, nil
	default:
		return Policy{}, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
}

type RefundDecision struct {
	RefundPercentage decimal.Decimal
	Eligible         bool
}

// RefundFor applies the cutoff rule: the full policy percentage is owed when
// the cancellation happens at least CutoffHours before the start, nothing otherwise.
func RefundFor(policy Policy, hoursBeforeStart float64) RefundDecision {
	if hoursBeforeStart >= policy.CutoffHours {
		return RefundDecision{RefundPercentage: policy.RefundPercentage, Eligible: true}
	}
	return RefundDecision{RefundPercentage: decimal.Zero, Eligible: false}
}

// HoursBetween returns the fractional hours from cancelAt until startAt.
// Negative values mean the booking has already started.
func HoursBetween(cancelAt, startAt time.Time) float64 {
	return startAt.Sub(cancelAt).Hours()
}

// RefundAmount splits total into the refunded part and the retained penalty.
// The refund is rounded to cents and the penalty takes the remainder, so the
// two always add up to total.
func RefundAmount(policy Policy, total money.Money, cancelAt, startAt time.Time) (RefundDecision, money.Money, money.Money, error) {
	if cancelAt.IsZero() {
		cancelAt = time.Now().UTC()
	}
	decision := RefundFor(policy, HoursBetween(cancelAt, startAt))
	refund := total.Percent(decision.RefundPercentage).RoundHalfUp(2)
	penalty, err := total.Sub(refund)
	if err != nil {
		return RefundDecision{}, money.Money{}, money.Money{}, err
	}
	return decision, refund, penalty, nil
}
