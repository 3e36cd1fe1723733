package api

import (
	"errors"
	"net/http"

	"github.com/arkadyv/railbooking/internal/inventory"
	"github.com/arkadyv/railbooking/internal/repository"
	"github.com/arkadyv/railbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

// respondError maps sentinel errors to HTTP status codes: unknown resources
// to 404, malformed input to 400, seat conflicts to 409 and everything else
// to 500. Store faults are never converted into fabricated success data.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrSeatUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, inventory.ErrInvalidSegment),
		errors.Is(err, booking.ErrValidation),
		errors.Is(err, booking.ErrPromoInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
