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

const listSlotsKey = "availability.list_slots"

type ListSlotsQuery struct {
	ResourceID string
	Date       time.Time
}

func (q ListSlotsQuery) Key() string { return listSlotsKey }

// ListSlotsHandler expands a resource's day into slots with their remaining capacity.
type ListSlotsHandler struct {
	UoWFactory uow.UoWFactory
	Resolver   domainavailability.Resolver
}

func (h *ListSlotsHandler) Handle(ctx context.Context, q ListSlotsQuery) (dto.DaySlots, error) {
	var out dto.DaySlots
	err := uow.Run(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true}, func(ctx context.Context, unit uow.UnitOfWork) error {
		res, err := unit.Resources().ByID(ctx, domainresource.ID(q.ResourceID))
		if err != nil {
			return err
		}
		out = dto.DaySlots{
			ResourceID: string(res.ID),
			Date:       daterange.FormatDay(q.Date),
			Slots:      []dto.Slot{},
		}
		slots := h.Resolver.Slots(res.Availability, q.Date, res.SlotLength)
		if len(slots) == 0 {
			out.Decision = string(h.Resolver.Resolve(res.Availability, q.Date, domainavailability.TimeSlot{}))
			return nil
		}
		out.Decision = string(domainavailability.Available)
		for _, s := range slots {
			booked, err := unit.Bookings().CountForSlot(ctx, domainbooking.NewSlotKey(res.ID, q.Date, s.ID))
			if err != nil {
				return err
			}
			out.Slots = append(out.Slots, dto.Slot{
				ID:        string(s.ID),
				Start:     s.Start.String(),
				End:       s.End.String(),
				Booked:    booked,
				Remaining: dto.Remaining(booked, res.MaxBookings),
				Bookable:  domainavailability.HasCapacity(booked, res.MaxBookings),
			})
		}
		return nil
	})
	if err != nil {
		return dto.DaySlots{}, err
	}
	return out, nil
}

var _ queries.Handler[ListSlotsQuery, dto.DaySlots] = (*ListSlotsHandler)(nil)
