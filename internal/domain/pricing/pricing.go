package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"bookingengine/internal/domain/shared/money"
)

var (
	ErrInvalidBasePrice        = errors.New("pricing: base price must be greater than zero")
	ErrInvalidParticipantCount = errors.New("pricing: participant count is outside the allowed range")
	ErrInvalidDuration         = errors.New("pricing: duration must be at least one unit")
	ErrInvalidRule             = errors.New("pricing: invalid pricing rule")
	ErrUnknownMode             = errors.New("pricing: unknown pricing mode")
)

type Mode string

const (
	ModePerPerson    Mode = "PER_PERSON"
	ModePerGroup     Mode = "PER_GROUP"
	ModePerSession   Mode = "PER_SESSION"
	ModeHourly       Mode = "HOURLY"
	ModeFixed        Mode = "FIXED"
	ModeSubscription Mode = "SUBSCRIPTION"
	ModeProject      Mode = "PROJECT"
)

// ParseMode accepts "per_person", "per-person", "perPerson" and the canonical form.
func ParseMode(raw string) (Mode, error) {
	key := strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(raw))
	switch key {
	case "perperson":
		return ModePerPerson, nil
	case "pergroup":
		return ModePerGroup, nil
	case "persession", "session":
		return ModePerSession, nil
	case "hourly", "perhour":
		return ModeHourly, nil
	case "fixed":
		return ModeFixed, nil
	case "subscription":
		return ModeSubscription, nil
	case "project":
		return ModeProject, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, raw)
	}
}

// GroupDiscount takes Percentage off the base once ThresholdParticipants is reached.
type GroupDiscount struct {
	ThresholdParticipants int
	Percentage            decimal.Decimal
}

type Rule struct {
	Mode            Mode
	BasePrice       money.Money
	MinParticipants int
	MaxParticipants int
	GroupDiscount   *GroupDiscount
}

// Validate checks the rule's structural invariants. A non-positive base
// price is reported by ComputeTotal instead.
func (r Rule) Validate() error {
	switch r.Mode {
	case ModePerPerson:
		if r.MinParticipants < 1 {
			return fmt.Errorf("%w: min participants must be at least 1", ErrInvalidRule)
		}
		if r.MaxParticipants < r.MinParticipants {
			return fmt.Errorf("%w: max participants must be >= min participants", ErrInvalidRule)
		}
	case ModePerGroup, ModePerSession, ModeHourly, ModeFixed, ModeSubscription, ModeProject:
		if r.MaxParticipants > 0 && r.MaxParticipants < r.MinParticipants {
			return fmt.Errorf("%w: max participants must be >= min participants", ErrInvalidRule)
		}
	default:
		return ErrUnknownMode
	}
	if r.BasePrice.Currency == "" {
		return fmt.Errorf("%w: currency must be defined", ErrInvalidRule)
	}
	if gd := r.GroupDiscount; gd != nil {
		if gd.ThresholdParticipants < 2 {
			return fmt.Errorf("%w: discount threshold must be at least 2", ErrInvalidRule)
		}
		if !gd.Percentage.IsPositive() || gd.Percentage.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("%w: discount percentage must be in (0, 100]", ErrInvalidRule)
		}
	}
	return nil
}

// withinLimits reports participant limits for modes that price per booking;
// unset limits always pass.
func (r Rule) withinLimits(participants int) bool {
	if r.MinParticipants > 0 && participants < r.MinParticipants {
		return false
	}
	if r.MaxParticipants > 0 && participants > r.MaxParticipants {
		return false
	}
	return true
}

type AddOns struct {
	Insurance bool
}

type Fee struct {
	Name   string
	Amount money.Money
}

type Discount struct {
	Name   string
	Amount money.Money
}

// PriceBreakdown keeps every intermediate value unrounded; only Total is
// rounded to cents.
type PriceBreakdown struct {
	Mode                    Mode
	Quantity                int
	Base                    money.Money
	DiscountApplied         money.Money
	Discounted              money.Money
	InsuranceCost           money.Money
	Total                   money.Money
	Fees                    []Fee
	Discounts               []Discount
	WithinParticipantLimits bool
}

func (p PriceBreakdown) HasDiscount() bool {
	return len(p.Discounts) > 0
}

func (p PriceBreakdown) Copy() PriceBreakdown {
	clone := p
	clone.Fees = append([]Fee(nil), p.Fees...)
	clone.Discounts = append([]Discount(nil), p.Discounts...)
	return clone
}
