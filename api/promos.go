package api

import (
	"net/http"
	"time"

	"github.com/arkadyv/railbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type PromoHandler struct {
	service booking.BookingUseCase
}

func NewPromoHandler(service booking.BookingUseCase) *PromoHandler {
	return &PromoHandler{service: service}
}

func (h *PromoHandler) Register(router *gin.RouterGroup) {
	router.GET("/:code", h.check)
}

func (h *PromoHandler) check(c *gin.Context) {
	promo, err := h.service.CheckPromo(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":        promo.Code,
		"percent_off": promo.PercentOff,
		"valid_until": promo.ValidUntil.Format(time.RFC3339),
	})
}
