package pricing

import (
	"github.com/shopspring/decimal"

	"bookingengine/internal/domain/shared/money"
)

const (
	FeeInsurance       = "insurance"
	DiscountGroupName  = "group_discount"
	totalDecimalPlaces = 2
)

// InsuranceRate is the fixed insurance surcharge, in percent of the discounted base.
var InsuranceRate = decimal.NewFromInt(10)

// ComputeTotal prices a booking. The group discount is applied to the base
// and the insurance surcharge to the discounted amount.
func ComputeTotal(rule Rule, participantCount, durationUnits int, addOns AddOns) (PriceBreakdown, error) {
	if !rule.BasePrice.IsPositive() {
		return PriceBreakdown{}, ErrInvalidBasePrice
	}
	if err := rule.Validate(); err != nil {
		return PriceBreakdown{}, err
	}

	breakdown := PriceBreakdown{Mode: rule.Mode, Quantity: 1, WithinParticipantLimits: true}
	switch rule.Mode {
	case ModePerPerson:
		if participantCount < rule.MinParticipants || participantCount > rule.MaxParticipants {
			return PriceBreakdown{}, ErrInvalidParticipantCount
		}
		breakdown.Quantity = participantCount
	case ModeHourly:
		if durationUnits < 1 {
			return PriceBreakdown{}, ErrInvalidDuration
		}
		breakdown.Quantity = durationUnits
		breakdown.WithinParticipantLimits = rule.withinLimits(participantCount)
	case ModePerGroup, ModePerSession, ModeFixed, ModeSubscription, ModeProject:
		breakdown.WithinParticipantLimits = rule.withinLimits(participantCount)
	default:
		return PriceBreakdown{}, ErrUnknownMode
	}

	currency := rule.BasePrice.Currency
	breakdown.Base = rule.BasePrice.Multiply(int64(breakdown.Quantity))
	breakdown.DiscountApplied = money.Zero(currency)
	breakdown.Discounted = breakdown.Base
	breakdown.InsuranceCost = money.Zero(currency)

	if gd := rule.GroupDiscount; gd != nil && participantCount >= gd.ThresholdParticipants {
		off := breakdown.Base.Percent(gd.Percentage)
		discounted, err := breakdown.Base.Sub(off)
		if err != nil {
			return PriceBreakdown{}, err
		}
		breakdown.DiscountApplied = off
		breakdown.Discounted = discounted
		breakdown.Discounts = append(breakdown.Discounts, Discount{Name: DiscountGroupName, Amount: off})
	}

	if addOns.Insurance {
		breakdown.InsuranceCost = breakdown.Discounted.Percent(InsuranceRate)
		breakdown.Fees = append(breakdown.Fees, Fee{Name: FeeInsurance, Amount: breakdown.InsuranceCost})
	}

	total, err := breakdown.Discounted.Add(breakdown.InsuranceCost)
	if err != nil {
		return PriceBreakdown{}, err
	}
	if total.IsNegative() {
		total = money.Zero(currency)
	}
	breakdown.Total = total.RoundHalfUp(totalDecimalPlaces)
	return breakdown, nil
}
