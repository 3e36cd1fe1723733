package api

import (
	"net/http"
	"strconv"

	"github.com/arkadyv/railbooking/internal/domain"
	"github.com/arkadyv/railbooking/internal/inventory"
	"github.com/gin-gonic/gin"
)

type SeatHandler struct {
	inventory inventory.UseCase
}

type seatResponse struct {
	ID         int64  `json:"id"`
	CoachCode  string `json:"coach_code"`
	SeatNumber string `json:"seat_number"`
	Class      string `json:"class"`
	PriceCents int64  `json:"price_cents"`
}

func NewSeatHandler(inv inventory.UseCase) *SeatHandler {
	return &SeatHandler{inventory: inv}
}

func (h *SeatHandler) Register(router *gin.RouterGroup) {
	router.GET("/:id/seats", h.availableSeats)
}

func (h *SeatHandler) availableSeats(c *gin.Context) {
	scheduleID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid schedule id"})
		return
	}
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required"})
		return
	}

	seats, err := h.inventory.AvailableSeats(c.Request.Context(), scheduleID, from, to, domain.SeatClass(c.Query("class")))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]seatResponse, 0, len(seats))
	for _, s := range seats {
		response = append(response, seatResponse{
			ID:         s.ID,
			CoachCode:  s.CoachCode,
			SeatNumber: s.SeatNumber,
			Class:      string(s.Class),
			PriceCents: s.PriceCents,
		})
	}
	c.JSON(http.StatusOK, gin.H{"schedule_id": scheduleID, "from": from, "to": to, "seats": response})
}
