package api

import (
	"io"
	"log"
	"net/http"

	"github.com/arkadyv/railbooking/internal/payment"
	"github.com/arkadyv/railbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

// WebhookParser verifies a raw webhook payload and reduces it to a local
// booking action.
type WebhookParser interface {
	ParseWebhook(payload []byte, signature string) (payment.Event, error)
}

type WebhookHandler struct {
	payments WebhookParser
	bookings booking.BookingUseCase
}

func NewWebhookHandler(payments WebhookParser, bookings booking.BookingUseCase) *WebhookHandler {
	return &WebhookHandler{payments: payments, bookings: bookings}
}

func (h *WebhookHandler) Register(router *gin.RouterGroup) {
	router.POST("/stripe", h.stripe)
}

func (h *WebhookHandler) stripe(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable payload"})
		return
	}

	event, err := h.payments.ParseWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch event.Action {
	case payment.ActionConfirm:
		if _, err := h.bookings.ConfirmBooking(c.Request.Context(), event.BookingToken); err != nil {
			log.Printf("confirm booking %s from webhook: %v", event.BookingToken, err)
			respondError(c, err)
			return
		}
	case payment.ActionCancel:
		if _, err := h.bookings.CancelBooking(c.Request.Context(), event.BookingToken); err != nil {
			log.Printf("cancel booking %s from webhook: %v", event.BookingToken, err)
			respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
