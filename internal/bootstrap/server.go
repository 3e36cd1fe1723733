package bootstrap

import (
	"context"
	"net/http"
	"time"

	"github.com/arkadyv/railbooking/api"
	"github.com/arkadyv/railbooking/config"
	"github.com/arkadyv/railbooking/internal/inventory"
	"github.com/arkadyv/railbooking/internal/service/booking"
	"github.com/arkadyv/railbooking/internal/service/schedules"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Schedules schedules.ScheduleUseCase
	Bookings  booking.BookingUseCase
	Inventory inventory.UseCase
	Webhooks  api.WebhookParser
}

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, deps Deps) error {
	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: newRouter(cfg, deps),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func newRouter(cfg *config.Config, deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	v1 := router.Group("/api/v1")
	scheduleGroup := v1.Group("/schedules")
	api.NewScheduleHandler(deps.Schedules).Register(scheduleGroup)
	api.NewSeatHandler(deps.Inventory).Register(scheduleGroup)
	api.NewBookingHandler(deps.Bookings).Register(v1.Group("/bookings"))
	api.NewPromoHandler(deps.Bookings).Register(v1.Group("/promos"))
	api.NewWebhookHandler(deps.Webhooks, deps.Bookings).Register(router.Group("/webhooks"))

	if cfg.HTTP.SwaggerDir != "" {
		router.Static("/swagger", cfg.HTTP.SwaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(
			httpSwagger.URL("/swagger/railbooking.swagger.json"),
		)))
	}

	return router
}
