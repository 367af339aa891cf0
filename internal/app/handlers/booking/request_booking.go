package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bookingengine/internal/app/commands"
	"bookingengine/internal/app/dto"
	"bookingengine/internal/app/middleware"
	"bookingengine/internal/app/outbox"
	"bookingengine/internal/app/policies"
	"bookingengine/internal/app/uow"
	domainavailability "bookingengine/internal/domain/availability"
	domainbooking "bookingengine/internal/domain/booking"
	domainpricing "bookingengine/internal/domain/pricing"
	domainresource "bookingengine/internal/domain/resource"
	"bookingengine/internal/domain/shared/daterange"
	"bookingengine/internal/domain/shared/events"
)

const requestBookingKey = "booking.request"

type RequestBookingCommand struct {
	IdempotencyKeyV  string
	ResourceID       string
	GuestID          string
	Date             time.Time
	SlotID           string
	DurationUnits    int
	ParticipantCount int
	Insurance        bool
	SpecialRequests  string
}

func (c RequestBookingCommand) Key() string { return requestBookingKey }

func (c RequestBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c RequestBookingCommand) ResultPrototype() any { return &dto.BookingOutcome{} }

func (c RequestBookingCommand) Fingerprint() string {
	return fmt.Sprintf("%s|%s|%s|%s|%d|%d|%t", c.ResourceID, c.GuestID, daterange.FormatDay(c.Date), c.SlotID, c.DurationUnits, c.ParticipantCount, c.Insurance)
}

// RequestBookingHandler validates a request against the resource's rules and
// persists it once capacity has been reserved. Rejections are results, not errors.
type RequestBookingHandler struct {
	UoWFactory uow.UoWFactory
	Validator  domainbooking.Validator
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Notifier   policies.Notifier
	Logger     *slog.Logger
}

func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*dto.BookingOutcome, error) {
	if strings.TrimSpace(cmd.ResourceID) == "" {
		out := dto.RejectedOutcome(domainbooking.Reject(domainbooking.RejectStructural, "resource id is required"))
		return &out, nil
	}

	var result dto.BookingOutcome
	err := uow.Run(ctx, h.UoWFactory, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		res, err := unit.Resources().ByID(ctx, domainresource.ID(cmd.ResourceID))
		if err != nil {
			return err
		}

		// Capacity is counted under the slot's canonical id, so aliases such
		// as "9:00" or arbitrary whole-day ids share one counter.
		slot, _ := h.Validator.Resolver.ResolveSlot(res.Availability, cmd.Date, domainavailability.SlotID(cmd.SlotID), res.SlotLength)
		req := domainbooking.Request{
			ResourceID:       res.ID,
			ResourceType:     res.Type,
			GuestID:          cmd.GuestID,
			Date:             cmd.Date,
			TimeSlotID:       slot.ID,
			DurationUnits:    cmd.DurationUnits,
			ParticipantCount: cmd.ParticipantCount,
			AddOns:           domainpricing.AddOns{Insurance: cmd.Insurance},
			SpecialRequests:  cmd.SpecialRequests,
		}
		key := domainbooking.NewSlotKey(res.ID, cmd.Date, slot.ID)
		existing, err := unit.Bookings().CountForSlot(ctx, key)
		if err != nil {
			return err
		}

		outcome := h.Validator.Validate(domainbooking.Input{
			Request:          req,
			Availability:     res.Availability,
			SlotLength:       res.SlotLength,
			ExistingBookings: existing,
			MaxBookings:      res.MaxBookings,
			Pricing:          res.Pricing,
			Policy:           res.Policy,
		})
		if !outcome.Confirmed() {
			h.logger().InfoContext(ctx, "booking rejected",
				slog.String("resource_id", cmd.ResourceID),
				slog.String("kind", string(outcome.Rejection.Kind)),
				slog.String("message", outcome.Rejection.Message))
			result = dto.RejectedOutcome(outcome.Rejection)
			return h.record(ctx, outcome.Events())
		}

		b := outcome.Booking
		if err := unit.Bookings().ReserveSlot(ctx, b.SlotKey(), res.MaxBookings); err != nil {
			if !errors.Is(err, domainbooking.ErrCapacityExhausted) {
				return err
			}
			rejection := domainbooking.Reject(domainbooking.RejectSlotUnavailable, "the selected time slot has just been fully booked")
			result = dto.RejectedOutcome(rejection)
			return h.record(ctx, []events.DomainEvent{domainbooking.BookingRejected{
				ResourceID: b.ResourceID,
				Date:       daterange.FormatDay(b.Date),
				SlotID:     string(b.Slot.ID),
				Kind:       rejection.Kind,
				Message:    rejection.Message,
				At:         b.CreatedAt,
			}})
		}
		if err := unit.Bookings().Save(ctx, b); err != nil {
			return err
		}
		if err := h.record(ctx, b.Drain()); err != nil {
			return err
		}

		notification := domainbooking.NotificationFor(b)
		ownerID := res.OwnerID
		unit.AfterCommit(func(ctx context.Context) { h.notify(ctx, ownerID, notification) })

		result = dto.ConfirmedOutcome(b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (h *RequestBookingHandler) record(ctx context.Context, evs []events.DomainEvent) error {
	return outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, evs)
}

// notify is best effort; a failed broadcast never undoes a committed booking.
func (h *RequestBookingHandler) notify(ctx context.Context, recipientID string, n domainbooking.Notification) {
	if h.Notifier == nil || recipientID == "" {
		return
	}
	payload := dto.MapNotification(n)
	if err := h.Notifier.Notify(ctx, domainbooking.ChannelFor(recipientID), domainbooking.NotificationEvent, payload); err != nil {
		h.logger().ErrorContext(ctx, "booking notification failed",
			slog.String("booking_id", string(n.BookingID)),
			slog.Any("err", err))
	}
}

func (h *RequestBookingHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

var _ commands.Handler[RequestBookingCommand, *dto.BookingOutcome] = (*RequestBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*RequestBookingCommand)(nil)
var _ middleware.Fingerprinted = RequestBookingCommand{}
