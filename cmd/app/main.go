package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arkadyv/railbooking/config"
	"github.com/arkadyv/railbooking/internal/bootstrap"
	"github.com/arkadyv/railbooking/internal/cache"
	"github.com/arkadyv/railbooking/internal/inventory"
	"github.com/arkadyv/railbooking/internal/kafka"
	"github.com/arkadyv/railbooking/internal/payment"
	"github.com/arkadyv/railbooking/internal/repository"
	"github.com/arkadyv/railbooking/internal/service/booking"
	"github.com/arkadyv/railbooking/internal/service/schedules"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.SchedulesCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	payments := payment.NewClient(cfg.Stripe)

	scheduleRepo := repository.NewScheduleRepository(pool)
	seatRepo := repository.NewSeatRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	promoRepo := repository.NewPromoRepository(pool)

	inventoryService := inventory.NewService(
		scheduleRepo,
		seatRepo,
		reservationRepo,
		inventory.WithSegmentLocker(redisCache, time.Duration(cfg.Booking.SegmentLockSeconds)*time.Second),
	)
	scheduleService := schedules.NewScheduleService(scheduleRepo, redisCache)
	bookingService := booking.NewBookingService(
		bookingRepo,
		promoRepo,
		seatRepo,
		inventoryService,
		producer,
		cfg.Kafka.BookingEventsTopic,
		time.Duration(cfg.Booking.HoldTTLMinutes)*time.Minute,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithPaymentProvider(payments),
	)

	deps := bootstrap.Deps{
		Schedules: scheduleService,
		Bookings:  bookingService,
		Inventory: inventoryService,
		Webhooks:  payments,
	}
	if err := bootstrap.Run(ctx, cfg, deps); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
