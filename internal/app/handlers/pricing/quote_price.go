package pricing

import (
	"context"

	"bookingengine/internal/app/dto"
	"bookingengine/internal/app/queries"
	"bookingengine/internal/app/uow"
	domainbooking "bookingengine/internal/domain/booking"
	domainpricing "bookingengine/internal/domain/pricing"
	domainresource "bookingengine/internal/domain/resource"
)

const quotePriceKey = "pricing.quote"

type QuotePriceQuery struct {
	ResourceID       string
	ParticipantCount int
	DurationUnits    int
	Insurance        bool
}

func (q QuotePriceQuery) Key() string { return quotePriceKey }

type QuotePriceHandler struct {
	UoWFactory uow.UoWFactory
}

// Handle prices a prospective booking. Pricing failures come back as a
// *booking.Rejection so callers render them like booking rejections.
func (h *QuotePriceHandler) Handle(ctx context.Context, q QuotePriceQuery) (dto.PriceQuote, error) {
	var quote dto.PriceQuote
	err := uow.Run(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true}, func(ctx context.Context, unit uow.UnitOfWork) error {
		res, err := unit.Resources().ByID(ctx, domainresource.ID(q.ResourceID))
		if err != nil {
			return err
		}
		breakdown, err := domainpricing.ComputeTotal(res.Pricing, q.ParticipantCount, q.DurationUnits, domainpricing.AddOns{Insurance: q.Insurance})
		if err != nil {
			return domainbooking.RejectionFromPricing(err)
		}
		quote = dto.PriceQuote{
			ResourceID: string(res.ID),
			Currency:   res.Pricing.BasePrice.Currency,
			Price:      dto.MapPriceBreakdown(breakdown),
		}
		return nil
	})
	if err != nil {
		return dto.PriceQuote{}, err
	}
	return quote, nil
}

var _ queries.Handler[QuotePriceQuery, dto.PriceQuote] = (*QuotePriceHandler)(nil)
