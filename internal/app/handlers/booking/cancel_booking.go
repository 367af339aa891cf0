package booking

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"bookingengine/internal/app/commands"
	"bookingengine/internal/app/dto"
	"bookingengine/internal/app/outbox"
	"bookingengine/internal/app/uow"
	domainbooking "bookingengine/internal/domain/booking"
)

const cancelBookingKey = "booking.cancel"

type CancelBookingCommand struct {
	BookingID string
	Reason    string
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

func (c CancelBookingCommand) Validate() error {
	if strings.TrimSpace(c.BookingID) == "" {
		return domainbooking.ErrNotFound
	}
	return nil
}

// CancelBookingHandler applies the booking's cancellation policy and frees
// the slot it held.
type CancelBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
	Logger     *slog.Logger
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*dto.Cancellation, error) {
	var result dto.Cancellation
	err := uow.Run(ctx, h.UoWFactory, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		b, err := unit.Bookings().ByID(ctx, domainbooking.ID(cmd.BookingID))
		if err != nil {
			return err
		}
		decision, err := b.Cancel(cmd.Reason, h.now())
		if err != nil {
			return err
		}
		if err := unit.Bookings().Save(ctx, b); err != nil {
			return err
		}
		if err := unit.Bookings().ReleaseSlot(ctx, b.SlotKey()); err != nil {
			return err
		}
		if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, b.Drain()); err != nil {
			return err
		}
		result = dto.MapCancellation(b, decision.Eligible, decision.RefundPercentage.String())
		return nil
	})
	if err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.InfoContext(ctx, "booking cancelled",
			slog.String("booking_id", result.BookingID),
			slog.Bool("eligible", result.Eligible),
			slog.String("refund", result.Refund.Amount))
	}
	return &result, nil
}

func (h *CancelBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[CancelBookingCommand, *dto.Cancellation] = (*CancelBookingHandler)(nil)
