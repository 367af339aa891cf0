package dto

import domainpricing "bookingengine/internal/domain/pricing"

type LineItem struct {
	Name   string   `json:"name"`
	Amount MoneyDTO `json:"amount"`
}

type PriceBreakdown struct {
	Mode                    string     `json:"mode"`
	Quantity                int        `json:"quantity"`
	Base                    MoneyDTO   `json:"base"`
	DiscountApplied         MoneyDTO   `json:"discount_applied"`
	Discounted              MoneyDTO   `json:"discounted"`
	InsuranceCost           MoneyDTO   `json:"insurance_cost"`
	Total                   MoneyDTO   `json:"total"`
	Fees                    []LineItem `json:"fees"`
	Discounts               []LineItem `json:"discounts"`
	GroupDiscount           bool       `json:"group_discount"`
	WithinParticipantLimits bool       `json:"within_participant_limits"`
}

func MapPriceBreakdown(p domainpricing.PriceBreakdown) PriceBreakdown {
	out := PriceBreakdown{
		Mode:                    string(p.Mode),
		Quantity:                p.Quantity,
		Base:                    MapExactMoney(p.Base),
		DiscountApplied:         MapExactMoney(p.DiscountApplied),
		Discounted:              MapExactMoney(p.Discounted),
		InsuranceCost:           MapExactMoney(p.InsuranceCost),
		Total:                   MapMoney(p.Total),
		Fees:                    make([]LineItem, 0, len(p.Fees)),
		Discounts:               make([]LineItem, 0, len(p.Discounts)),
		GroupDiscount:           p.HasDiscount(),
		WithinParticipantLimits: p.WithinParticipantLimits,
	}
	for _, f := range p.Fees {
		out.Fees = append(out.Fees, LineItem{Name: f.Name, Amount: MapExactMoney(f.Amount)})
	}
	for _, d := range p.Discounts {
		out.Discounts = append(out.Discounts, LineItem{Name: d.Name, Amount: MapExactMoney(d.Amount)})
	}
	return out
}

type PriceQuote struct {
	ResourceID string         `json:"resource_id"`
	Currency   string         `json:"currency"`
	Price      PriceBreakdown `json:"price"`
}
