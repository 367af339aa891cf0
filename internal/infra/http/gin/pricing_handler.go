package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"bookingengine/internal/app/dto"
	pricingapp "bookingengine/internal/app/handlers/pricing"
	"bookingengine/internal/app/queries"
)

type PricingHandler struct {
	Queries queries.Bus
}

type quoteRequest struct {
	ParticipantCount int  `json:"participant_count"`
	DurationUnits    int  `json:"duration_units"`
	Insurance        bool `json:"insurance"`
}

func (h PricingHandler) Quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	query := pricingapp.QuotePriceQuery{
		ResourceID:       c.Param("id"),
		ParticipantCount: req.ParticipantCount,
		DurationUnits:    req.DurationUnits,
		Insurance:        req.Insurance,
	}
	result, err := queries.Ask[pricingapp.QuotePriceQuery, dto.PriceQuote](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ PricingHTTP = PricingHandler{}
