// Package records flattens aggregates into storage documents shared by the
// Mongo and Postgres stores. Amounts are kept as exact decimal strings.
package records

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	domainavailability "bookingengine/internal/domain/availability"
	domainbooking "bookingengine/internal/domain/booking"
	"bookingengine/internal/domain/cancellation"
	domainpricing "bookingengine/internal/domain/pricing"
	domainresource "bookingengine/internal/domain/resource"
	"bookingengine/internal/domain/shared/daterange"
	"bookingengine/internal/domain/shared/money"
)

type Money struct {
	Amount   string `bson:"amount" json:"amount"`
	Currency string `bson:"currency" json:"currency"`
}

func FromMoney(m money.Money) Money {
	if m.Currency == "" && m.Amount.IsZero() {
		return Money{}
	}
	return Money{Amount: m.Amount.String(), Currency: m.Currency}
}

func (m Money) ToDomain() (money.Money, error) {
	if m.Amount == "" && m.Currency == "" {
		return money.Money{}, nil
	}
	return money.Parse(m.Amount, m.Currency)
}

type Line struct {
	Name   string `bson:"name" json:"name"`
	Amount Money  `bson:"amount" json:"amount"`
}

type Price struct {
	Mode            string `bson:"mode" json:"mode"`
	Quantity        int    `bson:"quantity" json:"quantity"`
	Base            Money  `bson:"base" json:"base"`
	DiscountApplied Money  `bson:"discount_applied" json:"discount_applied"`
	Discounted      Money  `bson:"discounted" json:"discounted"`
	InsuranceCost   Money  `bson:"insurance_cost" json:"insurance_cost"`
	Total           Money  `bson:"total" json:"total"`
	Fees            []Line `bson:"fees" json:"fees"`
	Discounts       []Line `bson:"discounts" json:"discounts"`
	WithinLimits    bool   `bson:"within_limits" json:"within_limits"`
}

type Policy struct {
	Name             string  `bson:"name" json:"name"`
	RefundPercentage string  `bson:"refund_percentage" json:"refund_percentage"`
	CutoffHours      float64 `bson:"cutoff_hours" json:"cutoff_hours"`
}

type Slot struct {
	ID    string `bson:"id" json:"id"`
	Start int    `bson:"start" json:"start"`
	End   int    `bson:"end" json:"end"`
}

type Booking struct {
	ID               string    `bson:"_id" json:"id"`
	ResourceID       string    `bson:"resource_id" json:"resource_id"`
	ResourceType     string    `bson:"resource_type" json:"resource_type"`
	GuestID          string    `bson:"guest_id" json:"guest_id"`
	Date             string    `bson:"date" json:"date"`
	Slot             Slot      `bson:"slot" json:"slot"`
	DurationUnits    int       `bson:"duration_units" json:"duration_units"`
	ParticipantCount int       `bson:"participant_count" json:"participant_count"`
	Insurance        bool      `bson:"insurance" json:"insurance"`
	SpecialRequests  string    `bson:"special_requests" json:"special_requests"`
	Price            Price     `bson:"price" json:"price"`
	Policy           Policy    `bson:"policy" json:"policy"`
	State            string    `bson:"state" json:"state"`
	Refund           Money     `bson:"refund" json:"refund"`
	Penalty          Money     `bson:"penalty" json:"penalty"`
	CancelReason     string    `bson:"cancel_reason" json:"cancel_reason"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at" json:"updated_at"`
	Version          int64     `bson:"version" json:"version"`
}

func FromBooking(b *domainbooking.Booking) Booking {
	rec := Booking{
		ID:               string(b.ID),
		ResourceID:       string(b.ResourceID),
		ResourceType:     string(b.ResourceType),
		GuestID:          b.GuestID,
		Date:             daterange.FormatDay(b.Date),
		Slot:             Slot{ID: string(b.Slot.ID), Start: int(b.Slot.Start), End: int(b.Slot.End)},
		DurationUnits:    b.DurationUnits,
		ParticipantCount: b.ParticipantCount,
		Insurance:        b.AddOns.Insurance,
		SpecialRequests:  b.SpecialRequests,
		Price:            FromPrice(b.Price),
		Policy:           FromPolicy(b.Policy),
		State:            string(b.State),
		CancelReason:     b.CancelReason,
		CreatedAt:        b.CreatedAt.UTC(),
		UpdatedAt:        b.UpdatedAt.UTC(),
		Version:          b.Version,
	}
	if b.State == domainbooking.StateCancelled {
		rec.Refund = FromMoney(b.Refund)
		rec.Penalty = FromMoney(b.Penalty)
	}
	return rec
}

func (r Booking) ToDomain() (*domainbooking.Booking, error) {
	day, err := daterange.ParseDay(r.Date)
	if err != nil {
		return nil, fmt.Errorf("booking %s: %w", r.ID, err)
	}
	price, err := r.Price.ToDomain()
	if err != nil {
		return nil, fmt.Errorf("booking %s price: %w", r.ID, err)
	}
	policy, err := r.Policy.ToDomain()
	if err != nil {
		return nil, fmt.Errorf("booking %s policy: %w", r.ID, err)
	}
	refund, err := r.Refund.ToDomain()
	if err != nil {
		return nil, err
	}
	penalty, err := r.Penalty.ToDomain()
	if err != nil {
		return nil, err
	}
	return &domainbooking.Booking{
		ID:           domainbooking.ID(r.ID),
		ResourceID:   domainresource.ID(r.ResourceID),
		ResourceType: domainresource.Type(r.ResourceType),
		GuestID:      r.GuestID,
		Date:         day,
		Slot: domainavailability.TimeSlot{
			ID:        domainavailability.SlotID(r.Slot.ID),
			Start:     domainavailability.TimeOfDay(r.Slot.Start),
			End:       domainavailability.TimeOfDay(r.Slot.End),
			Available: true,
		},
		DurationUnits:    r.DurationUnits,
		ParticipantCount: r.ParticipantCount,
		AddOns:           domainpricing.AddOns{Insurance: r.Insurance},
		SpecialRequests:  r.SpecialRequests,
		Price:            price,
		TotalPrice:       price.Total,
		Policy:           policy,
		State:            domainbooking.State(r.State),
		Refund:           refund,
		Penalty:          penalty,
		CancelReason:     r.CancelReason,
		CreatedAt:        r.CreatedAt.UTC(),
		UpdatedAt:        r.UpdatedAt.UTC(),
		Version:          r.Version,
	}, nil
}

func FromPrice(p domainpricing.PriceBreakdown) Price {
	out := Price{
		Mode:            string(p.Mode),
		Quantity:        p.Quantity,
		Base:            FromMoney(p.Base),
		DiscountApplied: FromMoney(p.DiscountApplied),
		Discounted:      FromMoney(p.Discounted),
		InsuranceCost:   FromMoney(p.InsuranceCost),
		Total:           FromMoney(p.Total),
		WithinLimits:    p.WithinParticipantLimits,
	}
	for _, f := range p.Fees {
		out.Fees = append(out.Fees, Line{Name: f.Name, Amount: FromMoney(f.Amount)})
	}
	for _, d := range p.Discounts {
		out.Discounts = append(out.Discounts, Line{Name: d.Name, Amount: FromMoney(d.Amount)})
	}
	return out
}

func (p Price) ToDomain() (domainpricing.PriceBreakdown, error) {
	out := domainpricing.PriceBreakdown{
		Mode:                    domainpricing.Mode(p.Mode),
		Quantity:                p.Quantity,
		WithinParticipantLimits: p.WithinLimits,
	}
	fields := []struct {
		src Money
		dst *money.Money
	}{
		{p.Base, &out.Base},
		{p.DiscountApplied, &out.DiscountApplied},
		{p.Discounted, &out.Discounted},
		{p.InsuranceCost, &out.InsuranceCost},
		{p.Total, &out.Total},
	}
	for _, f := range fields {
		m, err := f.src.ToDomain()
		if err != nil {
			return domainpricing.PriceBreakdown{}, err
		}
		*f.dst = m
	}
	for _, l := range p.Fees {
		m, err := l.Amount.ToDomain()
		if err != nil {
			return domainpricing.PriceBreakdown{}, err
		}
		out.Fees = append(out.Fees, domainpricing.Fee{Name: l.Name, Amount: m})
	}
	for _, l := range p.Discounts {
		m, err := l.Amount.ToDomain()
		if err != nil {
			return domainpricing.PriceBreakdown{}, err
		}
		out.Discounts = append(out.Discounts, domainpricing.Discount{Name: l.Name, Amount: m})
	}
	return out, nil
}

func FromPolicy(p cancellation.Policy) Policy {
	return Policy{Name: p.Name, RefundPercentage: p.RefundPercentage.String(), CutoffHours: p.CutoffHours}
}

func (p Policy) ToDomain() (cancellation.Policy, error) {
	pct, err := decimal.NewFromString(p.RefundPercentage)
	if err != nil {
		return cancellation.Policy{}, err
	}
	policy := cancellation.Policy{Name: p.Name, RefundPercentage: pct, CutoffHours: p.CutoffHours}
	return policy, policy.Validate()
}
