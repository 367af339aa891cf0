package ginserver

import (
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"bookingengine/internal/app/commands"
	"bookingengine/internal/app/dto"
	bookingapp "bookingengine/internal/app/handlers/booking"
	domainbooking "bookingengine/internal/domain/booking"
	"bookingengine/internal/domain/shared/daterange"
)

const headerIdempotencyKey = "Idempotency-Key"

type BookingHandler struct {
	Commands commands.Bus
}

type createBookingRequest struct {
	ResourceID       string `json:"resource_id"`
	GuestID          string `json:"guest_id"`
	Date             string `json:"date"`
	SlotID           string `json:"slot_id"`
	DurationUnits    int    `json:"duration_units"`
	ParticipantCount int    `json:"participant_count"`
	Insurance        bool   `json:"insurance"`
	SpecialRequests  string `json:"special_requests"`
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

// Create answers 201 with the confirmed booking or 422 with the rejection.
func (h BookingHandler) Create(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeRejection(c, domainbooking.Reject(domainbooking.RejectStructural, "request body is malformed: "+err.Error()))
		return
	}
	date, err := daterange.ParseDay(req.Date)
	if err != nil {
		writeRejection(c, domainbooking.Reject(domainbooking.RejectStructural, "date must be YYYY-MM-DD"))
		return
	}
	cmd := bookingapp.RequestBookingCommand{
		IdempotencyKeyV:  strings.TrimSpace(c.GetHeader(headerIdempotencyKey)),
		ResourceID:       req.ResourceID,
		GuestID:          req.GuestID,
		Date:             date,
		SlotID:           req.SlotID,
		DurationUnits:    req.DurationUnits,
		ParticipantCount: req.ParticipantCount,
		Insurance:        req.Insurance,
		SpecialRequests:  req.SpecialRequests,
	}
	result, err := commands.Dispatch[bookingapp.RequestBookingCommand, *dto.BookingOutcome](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	if result == nil || !result.Confirmed() {
		rejection := dto.Rejection{}
		if result != nil && result.Rejection != nil {
			rejection = *result.Rejection
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": dto.OutcomeRejected, "error": rejection})
		return
	}
	c.JSON(http.StatusCreated, result)
}

// writeRejection answers a request the engine never saw in the same shape
// as a validator rejection.
func writeRejection(c *gin.Context, r *domainbooking.Rejection) {
	out := dto.RejectedOutcome(r)
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"status": dto.OutcomeRejected, "error": out.Rejection})
}

func (h BookingHandler) Cancel(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req cancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	cmd := bookingapp.CancelBookingCommand{BookingID: c.Param("id"), Reason: req.Reason}
	result, err := commands.Dispatch[bookingapp.CancelBookingCommand, *dto.Cancellation](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ BookingHTTP = BookingHandler{}
