package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"bookingengine/internal/app/middleware"
	domainbooking "bookingengine/internal/domain/booking"
	domainresource "bookingengine/internal/domain/resource"
)

const (
	kindBadRequest = "BAD_REQUEST"
	kindNotFound   = "NOT_FOUND"
	kindConflict   = "CONFLICT"
	kindInternal   = "INTERNAL"
)

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func abort(c *gin.Context, status int, kind, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": errorBody{Kind: kind, Message: message}})
}

func badRequest(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, kindBadRequest, message)
}

// writeError maps application errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	if r, ok := domainbooking.AsRejection(err); ok {
		abort(c, http.StatusUnprocessableEntity, string(r.Kind), r.Message)
		return
	}
	switch {
	case errors.Is(err, domainresource.ErrNotFound), errors.Is(err, domainbooking.ErrNotFound):
		abort(c, http.StatusNotFound, kindNotFound, err.Error())
	case errors.Is(err, domainbooking.ErrInvalidState),
		errors.Is(err, domainbooking.ErrConcurrentModified),
		errors.Is(err, domainbooking.ErrDuplicate),
		errors.Is(err, middleware.ErrIdempotencyConflict),
		errors.Is(err, middleware.ErrIdempotencyInFlight):
		abort(c, http.StatusConflict, kindConflict, err.Error())
	default:
		_ = c.Error(err)
		abort(c, http.StatusInternalServerError, kindInternal, "internal error")
	}
}
