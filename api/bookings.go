package api

import (
	"net/http"
	"time"

	"github.com/arkadyv/railbooking/internal/domain"
	"github.com/arkadyv/railbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type bookingResponse struct {
	Token         string              `json:"token"`
	Status        string              `json:"status"`
	ScheduleID    int64               `json:"schedule_id"`
	DepartureCode string              `json:"departure_code"`
	ArrivalCode   string              `json:"arrival_code"`
	AmountCents   int64               `json:"amount_cents"`
	Email         string              `json:"email"`
	ExpiresAt     string              `json:"expires_at"`
	Passengers    []passengerResponse `json:"passengers,omitempty"`
}

type passengerResponse struct {
	Name   string `json:"name"`
	SeatID int64  `json:"seat_id"`
}

type removeSegmentRequest struct {
	ScheduleID int64 `json:"schedule_id"`
	SeatID     int64 `json:"seat_id"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/:token", h.get)
	router.PUT("/:token", h.confirm)
	router.DELETE("/:token", h.cancel)
	router.POST("/:token/segments", h.addSegment)
	router.DELETE("/:token/segments", h.removeSegment)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req booking.CreateBookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(created, nil))
}

func (h *BookingHandler) get(c *gin.Context) {
	b, passengers, err := h.service.GetBooking(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b, passengers))
}

func (h *BookingHandler) confirm(c *gin.Context) {
	b, err := h.service.ConfirmBooking(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b, nil))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	b, err := h.service.CancelBooking(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b, nil))
}

func (h *BookingHandler) addSegment(c *gin.Context) {
	var req booking.AddSegmentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.service.AddSegment(c.Request.Context(), c.Param("token"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"schedule_id":     res.ScheduleID,
		"seat_id":         res.SeatID,
		"departure_order": res.DepartureOrder,
		"arrival_order":   res.ArrivalOrder,
	})
}

func (h *BookingHandler) removeSegment(c *gin.Context) {
	var req removeSegmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ScheduleID <= 0 || req.SeatID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "schedule_id and seat_id are required"})
		return
	}

	if err := h.service.RemoveSegment(c.Request.Context(), c.Param("token"), req.ScheduleID, req.SeatID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"released": true})
}

func toBookingResponse(b *domain.Booking, passengers []domain.Passenger) bookingResponse {
	resp := bookingResponse{
		Token:         b.Token,
		Status:        string(b.Status),
		ScheduleID:    b.ScheduleID,
		DepartureCode: b.DepartureCode,
		ArrivalCode:   b.ArrivalCode,
		AmountCents:   b.AmountCents,
		Email:         b.Email,
		ExpiresAt:     b.ExpiresAt.Format(time.RFC3339),
	}
	for _, p := range passengers {
		resp.Passengers = append(resp.Passengers, passengerResponse{Name: p.Name, SeatID: p.SeatID})
	}
	return resp
}
