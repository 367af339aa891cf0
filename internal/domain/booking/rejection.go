package booking

import (
	"errors"

	"bookingengine/internal/domain/pricing"
)

type RejectionKind string

const (
	RejectSlotUnavailable         RejectionKind = "SLOT_UNAVAILABLE"
	RejectOutOfRange              RejectionKind = "OUT_OF_RANGE"
	RejectInvalidParticipantCount RejectionKind = "INVALID_PARTICIPANT_COUNT"
	RejectInvalidDuration         RejectionKind = "INVALID_DURATION"
	RejectInvalidBasePrice        RejectionKind = "INVALID_BASE_PRICE"
	RejectStructural              RejectionKind = "STRUCTURAL_VALIDATION_FAILURE"
)

// Rejection is the single reason a request was turned down.
type Rejection struct {
	Kind    RejectionKind
	Message string
}

func (r *Rejection) Error() string {
	return "booking rejected: " + string(r.Kind) + ": " + r.Message
}

func Reject(kind RejectionKind, message string) *Rejection {
	return &Rejection{Kind: kind, Message: message}
}

// AsRejection extracts a Rejection from err, if it carries one.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

// RejectionFromPricing maps a pricing failure to the rejection kind shown to callers.
func RejectionFromPricing(err error) *Rejection {
	switch {
	case errors.Is(err, pricing.ErrInvalidParticipantCount):
		return Reject(RejectInvalidParticipantCount, "number of participants is outside the allowed range")
	case errors.Is(err, pricing.ErrInvalidDuration):
		return Reject(RejectInvalidDuration, "duration must be at least one unit")
	case errors.Is(err, pricing.ErrInvalidBasePrice):
		return Reject(RejectInvalidBasePrice, "base price must be greater than zero")
	default:
		return Reject(RejectStructural, err.Error())
	}
}
