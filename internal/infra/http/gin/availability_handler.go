package ginserver

import (
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"bookingengine/internal/app/dto"
	availabilityapp "bookingengine/internal/app/handlers/availability"
	"bookingengine/internal/app/queries"
	"bookingengine/internal/domain/shared/daterange"
)

type AvailabilityHandler struct {
	Queries queries.Bus
}

func (h AvailabilityHandler) Check(c *gin.Context) {
	date, err := daterange.ParseDay(c.Query("date"))
	if err != nil {
		badRequest(c, "date must be YYYY-MM-DD")
		return
	}
	slot := strings.TrimSpace(c.Query("slot"))
	if slot == "" {
		badRequest(c, "slot is required")
		return
	}
	query := availabilityapp.CheckSlotQuery{ResourceID: c.Param("id"), Date: date, SlotID: slot}
	result, err := queries.Ask[availabilityapp.CheckSlotQuery, dto.SlotAvailability](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AvailabilityHandler) Slots(c *gin.Context) {
	date, err := daterange.ParseDay(c.Query("date"))
	if err != nil {
		badRequest(c, "date must be YYYY-MM-DD")
		return
	}
	query := availabilityapp.ListSlotsQuery{ResourceID: c.Param("id"), Date: date}
	result, err := queries.Ask[availabilityapp.ListSlotsQuery, dto.DaySlots](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AvailabilityHTTP = AvailabilityHandler{}
