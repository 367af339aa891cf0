package dto

import (
	"time"

	domainbooking "bookingengine/internal/domain/booking"
	"bookingengine/internal/domain/shared/daterange"
)

const (
	OutcomeConfirmed = "CONFIRMED"
	OutcomeRejected  = "REJECTED"
)

type Rejection struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type Booking struct {
	ID               string         `json:"id"`
	ResourceID       string         `json:"resource_id"`
	ResourceType     string         `json:"resource_type"`
	GuestID          string         `json:"guest_id,omitempty"`
	Date             string         `json:"date"`
	SlotID           string         `json:"slot_id"`
	StartsAt         time.Time      `json:"starts_at"`
	DurationUnits    int            `json:"duration_units"`
	ParticipantCount int            `json:"participant_count"`
	Insurance        bool           `json:"insurance"`
	SpecialRequests  string         `json:"special_requests,omitempty"`
	Status           string         `json:"status"`
	CancellationTerm string         `json:"cancellation_policy"`
	Price            PriceBreakdown `json:"price"`
	Total            MoneyDTO       `json:"total"`
	CreatedAt        time.Time      `json:"created_at"`
}

// BookingOutcome is the result of a booking request; exactly one of Booking
// and Rejection is set.
type BookingOutcome struct {
	Status    string     `json:"status"`
	Booking   *Booking   `json:"booking,omitempty"`
	Rejection *Rejection `json:"rejection,omitempty"`
}

func (o BookingOutcome) Confirmed() bool {
	return o.Status == OutcomeConfirmed && o.Booking != nil
}

type Cancellation struct {
	BookingID        string    `json:"booking_id"`
	Policy           string    `json:"policy"`
	Eligible         bool      `json:"eligible"`
	RefundPercentage string    `json:"refund_percentage"`
	Refund           MoneyDTO  `json:"refund"`
	Penalty          MoneyDTO  `json:"penalty"`
	CancelledAt      time.Time `json:"cancelled_at"`
}

func MapBooking(b *domainbooking.Booking) Booking {
	return Booking{
		ID:               string(b.ID),
		ResourceID:       string(b.ResourceID),
		ResourceType:     string(b.ResourceType),
		GuestID:          b.GuestID,
		Date:             daterange.FormatDay(b.Date),
		SlotID:           string(b.Slot.ID),
		StartsAt:         b.StartsAt(),
		DurationUnits:    b.DurationUnits,
		ParticipantCount: b.ParticipantCount,
		Insurance:        b.AddOns.Insurance,
		SpecialRequests:  b.SpecialRequests,
		Status:           string(b.State),
		CancellationTerm: b.Policy.Name,
		Price:            MapPriceBreakdown(b.Price),
		Total:            MapMoney(b.TotalPrice),
		CreatedAt:        b.CreatedAt,
	}
}

func MapRejection(r *domainbooking.Rejection) *Rejection {
	if r == nil {
		return nil
	}
	return &Rejection{Kind: string(r.Kind), Message: r.Message}
}

func ConfirmedOutcome(b *domainbooking.Booking) BookingOutcome {
	mapped := MapBooking(b)
	return BookingOutcome{Status: OutcomeConfirmed, Booking: &mapped}
}

func RejectedOutcome(r *domainbooking.Rejection) BookingOutcome {
	return BookingOutcome{Status: OutcomeRejected, Rejection: MapRejection(r)}
}

func MapCancellation(b *domainbooking.Booking, eligible bool, refundPercentage string) Cancellation {
	return Cancellation{
		BookingID:        string(b.ID),
		Policy:           b.Policy.Name,
		Eligible:         eligible,
		RefundPercentage: refundPercentage,
		Refund:           MapMoney(b.Refund),
		Penalty:          MapMoney(b.Penalty),
		CancelledAt:      b.UpdatedAt,
	}
}

type Notification struct {
	BookingID    string    `json:"bookingId"`
	ResourceID   string    `json:"resourceId"`
	ResourceType string    `json:"resourceType"`
	TotalPrice   string    `json:"totalPrice"`
	Currency     string    `json:"currency"`
	Timestamp    time.Time `json:"timestamp"`
}

func MapNotification(n domainbooking.Notification) Notification {
	return Notification{
		BookingID:    string(n.BookingID),
		ResourceID:   string(n.ResourceID),
		ResourceType: string(n.ResourceType),
		TotalPrice:   n.TotalPrice.StringFixed(),
		Currency:     n.TotalPrice.Currency,
		Timestamp:    n.Timestamp,
	}
}
