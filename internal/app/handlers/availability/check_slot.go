package availability

import (
	"context"
	"time"

	"bookingengine/internal/app/dto"
	"bookingengine/internal/app/queries"
	"bookingengine/internal/app/uow"
	domainavailability "bookingengine/internal/domain/availability"
	domainbooking "bookingengine/internal/domain/booking"
	domainresource "bookingengine/internal/domain/resource"
	"bookingengine/internal/domain/shared/daterange"
)

const checkSlotKey = "availability.check_slot"

type CheckSlotQuery struct {
	ResourceID string
	Date       time.Time
	SlotID     string
}

func (q CheckSlotQuery) Key() string { return checkSlotKey }

type CheckSlotHandler struct {
	UoWFactory uow.UoWFactory
	Resolver   domainavailability.Resolver
}

func (h *CheckSlotHandler) Handle(ctx context.Context, q CheckSlotQuery) (dto.SlotAvailability, error) {
	var out dto.SlotAvailability
	err := uow.Run(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true}, func(ctx context.Context, unit uow.UnitOfWork) error {
		res, err := unit.Resources().ByID(ctx, domainresource.ID(q.ResourceID))
		if err != nil {
			return err
		}
		slot, decision := h.Resolver.ResolveSlot(res.Availability, q.Date, domainavailability.SlotID(q.SlotID), res.SlotLength)
		booked, err := unit.Bookings().CountForSlot(ctx, domainbooking.NewSlotKey(res.ID, q.Date, slot.ID))
		if err != nil {
			return err
		}
		out = dto.SlotAvailability{
			ResourceID: string(res.ID),
			Date:       daterange.FormatDay(q.Date),
			SlotID:     string(slot.ID),
			Decision:   string(decision),
			Bookable:   decision == domainavailability.Available && domainavailability.HasCapacity(booked, res.MaxBookings),
			Booked:     booked,
			Capacity:   res.MaxBookings,
			Remaining:  dto.Remaining(booked, res.MaxBookings),
		}
		return nil
	})
	if err != nil {
		return dto.SlotAvailability{}, err
	}
	return out, nil
}

var _ queries.Handler[CheckSlotQuery, dto.SlotAvailability] = (*CheckSlotHandler)(nil)
