package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/arkadyv/railbooking/internal/domain"
	"github.com/arkadyv/railbooking/internal/inventory"
	"github.com/arkadyv/railbooking/internal/kafka"
	"github.com/arkadyv/railbooking/internal/repository"
	"github.com/google/uuid"
)

// ErrValidation marks malformed caller input. Handlers translate it into a
// 400 response.
var ErrValidation = errors.New("validation")

// ErrPromoInvalid is returned when a promo code exists but is inactive or
// outside its validity window.
var ErrPromoInvalid = errors.New("promo code not valid")

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, token string) (*domain.Booking, []domain.Passenger, error)
	ConfirmBooking(ctx context.Context, token string) (*domain.Booking, error)
	CancelBooking(ctx context.Context, token string) (*domain.Booking, error)
	ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error)
	AddSegment(ctx context.Context, token string, input AddSegmentInput) (*domain.SegmentReservation, error)
	RemoveSegment(ctx context.Context, token string, scheduleID, seatID int64) error
	CheckPromo(ctx context.Context, code string) (*domain.PromoCode, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
	PublishWithRetry(ctx context.Context, topic, key string, value interface{}, maxRetries int) error
}

// PaymentProvider opens a checkout session for a pending booking and returns
// the session id and redirect URL.
type PaymentProvider interface {
	CreateSession(ctx context.Context, booking *domain.Booking) (string, string, error)
}

type BookingService struct {
	bookings           repository.BookingRepository
	promos             repository.PromoRepository
	seats              repository.SeatRepository
	inventory          inventory.UseCase
	producer           Producer
	payments           PaymentProvider
	bookingTopic       string
	notificationsTopic string
	holdTTL            time.Duration
}

type PassengerInput struct {
	Name   string `json:"name"`
	SeatID int64  `json:"seat_id"`
}

type CreateBookingInput struct {
	ScheduleID    int64            `json:"schedule_id"`
	DepartureCode string           `json:"departure_code"`
	ArrivalCode   string           `json:"arrival_code"`
	Email         string           `json:"email"`
	PromoCode     string           `json:"promo_code"`
	Passengers    []PassengerInput `json:"passengers"`
}

type AddSegmentInput struct {
	ScheduleID    int64  `json:"schedule_id"`
	SeatID        int64  `json:"seat_id"`
	DepartureCode string `json:"departure_code"`
	ArrivalCode   string `json:"arrival_code"`
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithPaymentProvider(payments PaymentProvider) BookingServiceOption {
	return func(s *BookingService) {
		s.payments = payments
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	promos repository.PromoRepository,
	seats repository.SeatRepository,
	inv inventory.UseCase,
	producer Producer,
	bookingTopic string,
	holdTTL time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		promos:       promos,
		seats:        seats,
		inventory:    inv,
		producer:     producer,
		bookingTopic: bookingTopic,
		holdTTL:      holdTTL,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBooking creates a pending booking, reserves one segment per
// passenger through the inventory, prices the total and opens a payment
// session. If any seat is refused, the segments already held are released
// and the booking is cancelled; a partial hold never survives.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	departureOrder, err := s.inventory.ResolveStationOrder(ctx, input.ScheduleID, input.DepartureCode)
	if err != nil {
		return nil, fmt.Errorf("departure station %s: %w", input.DepartureCode, err)
	}
	arrivalOrder, err := s.inventory.ResolveStationOrder(ctx, input.ScheduleID, input.ArrivalCode)
	if err != nil {
		return nil, fmt.Errorf("arrival station %s: %w", input.ArrivalCode, err)
	}
	if departureOrder >= arrivalOrder {
		return nil, fmt.Errorf("%w: departure must precede arrival", ErrValidation)
	}

	amount, err := s.priceBooking(ctx, input)
	if err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		Token:         uuid.NewString(),
		ScheduleID:    input.ScheduleID,
		Email:         input.Email,
		DepartureCode: input.DepartureCode,
		ArrivalCode:   input.ArrivalCode,
		AmountCents:   amount,
		PromoCode:     input.PromoCode,
		ExpiresAt:     time.Now().Add(s.holdTTL),
	}
	passengers := make([]domain.Passenger, len(input.Passengers))
	for i, p := range input.Passengers {
		passengers[i] = domain.Passenger{Name: p.Name, SeatID: p.SeatID}
	}
	if err := s.bookings.CreatePending(ctx, booking, passengers); err != nil {
		return nil, err
	}

	for i, p := range passengers {
		_, err := s.inventory.Book(ctx, inventory.BookSegmentInput{
			BookingID:      booking.ID,
			ScheduleID:     input.ScheduleID,
			SeatID:         p.SeatID,
			DepartureOrder: departureOrder,
			ArrivalOrder:   arrivalOrder,
			DepartureCode:  input.DepartureCode,
			ArrivalCode:    input.ArrivalCode,
		})
		if err != nil {
			for _, held := range passengers[:i] {
				_ = s.inventory.Cancel(ctx, booking.ID, held.SeatID, input.ScheduleID)
			}
			if _, cancelErr := s.bookings.UpdateStatus(ctx, booking.Token, domain.BookingStatusCancelled); cancelErr != nil {
				log.Printf("cancel booking %s after failed reservation: %v", booking.Token, cancelErr)
			}
			return nil, fmt.Errorf("seat %d: %w", p.SeatID, err)
		}
	}

	if s.payments != nil {
		sessionID, _, err := s.payments.CreateSession(ctx, booking)
		if err != nil {
			// The hold stands; the sweeper releases it if payment never starts.
			log.Printf("create payment session for booking %s: %v", booking.Token, err)
		} else {
			booking.PaymentSessionID = sessionID
			if err := s.bookings.SetPaymentSession(ctx, booking.Token, sessionID); err != nil {
				log.Printf("store payment session for booking %s: %v", booking.Token, err)
			}
		}
	}

	if err := s.publish(ctx, "booking_created", booking); err != nil {
		log.Printf("publish booking_created for %s: %v", booking.Token, err)
	}
	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, token string) (*domain.Booking, []domain.Passenger, error) {
	booking, err := s.bookings.GetByToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	passengers, err := s.bookings.Passengers(ctx, booking.ID)
	if err != nil {
		return nil, nil, err
	}
	return booking, passengers, nil
}

func (s *BookingService) ConfirmBooking(ctx context.Context, token string) (*domain.Booking, error) {
	current, err := s.bookings.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.BookingStatusPending {
		return nil, fmt.Errorf("%w: booking is not pending", ErrValidation)
	}

	updated, err := s.bookings.UpdateStatus(ctx, token, domain.BookingStatusConfirmed)
	if err != nil {
		return nil, err
	}
	if err := s.publish(ctx, "booking_confirmed", updated); err != nil {
		log.Printf("publish booking_confirmed for %s: %v", updated.Token, err)
	}
	return updated, nil
}

// CancelBooking cancels the booking and cascade-releases every segment
// reservation it owns. Cancelling an already cancelled or expired booking
// returns it unchanged.
func (s *BookingService) CancelBooking(ctx context.Context, token string) (*domain.Booking, error) {
	current, err := s.bookings.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.BookingStatusCancelled || current.Status == domain.BookingStatusExpired {
		return current, nil
	}

	updated, err := s.bookings.UpdateStatus(ctx, token, domain.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}
	if err := s.releaseReservations(ctx, updated); err != nil {
		log.Printf("release reservations for %s: %v", updated.Token, err)
	}
	if err := s.publish(ctx, "booking_cancelled", updated); err != nil {
		log.Printf("publish booking_cancelled for %s: %v", updated.Token, err)
	}
	return updated, nil
}

// ExpirePendingBookings marks pending bookings past their hold deadline as
// expired and releases their seats. Called by the worker sweeper.
func (s *BookingService) ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error) {
	expired, err := s.bookings.ExpirePendingBefore(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	for i := range expired {
		b := &expired[i]
		if err := s.releaseReservations(ctx, b); err != nil {
			log.Printf("release reservations for %s: %v", b.Token, err)
		}
		if err := s.publishDurable(ctx, "booking_expired", b); err != nil {
			log.Printf("publish booking_expired for %s: %v", b.Token, err)
		}
	}
	return expired, nil
}

// AddSegment books one extra segment on an existing booking, used by the
// transit flow when a journey continues on another schedule.
func (s *BookingService) AddSegment(ctx context.Context, token string, input AddSegmentInput) (*domain.SegmentReservation, error) {
	booking, err := s.bookings.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if booking.Status == domain.BookingStatusCancelled || booking.Status == domain.BookingStatusExpired {
		return nil, fmt.Errorf("%w: booking is %s", ErrValidation, booking.Status)
	}

	departureOrder, err := s.inventory.ResolveStationOrder(ctx, input.ScheduleID, input.DepartureCode)
	if err != nil {
		return nil, fmt.Errorf("departure station %s: %w", input.DepartureCode, err)
	}
	arrivalOrder, err := s.inventory.ResolveStationOrder(ctx, input.ScheduleID, input.ArrivalCode)
	if err != nil {
		return nil, fmt.Errorf("arrival station %s: %w", input.ArrivalCode, err)
	}

	return s.inventory.Book(ctx, inventory.BookSegmentInput{
		BookingID:      booking.ID,
		ScheduleID:     input.ScheduleID,
		SeatID:         input.SeatID,
		DepartureOrder: departureOrder,
		ArrivalOrder:   arrivalOrder,
		DepartureCode:  input.DepartureCode,
		ArrivalCode:    input.ArrivalCode,
	})
}

// RemoveSegment releases one segment of the booking. Removing a segment
// that does not exist succeeds.
func (s *BookingService) RemoveSegment(ctx context.Context, token string, scheduleID, seatID int64) error {
	booking, err := s.bookings.GetByToken(ctx, token)
	if err != nil {
		return err
	}
	return s.inventory.Cancel(ctx, booking.ID, seatID, scheduleID)
}

func (s *BookingService) CheckPromo(ctx context.Context, code string) (*domain.PromoCode, error) {
	promo, err := s.promos.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !promo.ValidAt(time.Now()) {
		return nil, ErrPromoInvalid
	}
	return promo, nil
}

func (s *BookingService) priceBooking(ctx context.Context, input CreateBookingInput) (int64, error) {
	var amount int64
	for _, p := range input.Passengers {
		seat, err := s.seats.GetByID(ctx, p.SeatID)
		if err != nil {
			return 0, fmt.Errorf("seat %d: %w", p.SeatID, err)
		}
		amount += seat.PriceCents
	}
	if input.PromoCode != "" {
		promo, err := s.CheckPromo(ctx, input.PromoCode)
		if err != nil {
			return 0, err
		}
		amount -= promo.Discount(amount)
	}
	return amount, nil
}

// releaseReservations drops every segment the booking holds, including
// transit segments added on other schedules.
func (s *BookingService) releaseReservations(ctx context.Context, booking *domain.Booking) error {
	return s.inventory.CancelAll(ctx, booking.ID)
}

func validateCreateInput(input CreateBookingInput) error {
	if input.Email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if input.DepartureCode == "" || input.ArrivalCode == "" {
		return fmt.Errorf("%w: departure and arrival stations are required", ErrValidation)
	}
	if len(input.Passengers) == 0 {
		return fmt.Errorf("%w: at least one passenger is required", ErrValidation)
	}
	for _, p := range input.Passengers {
		if p.Name == "" {
			return fmt.Errorf("%w: passenger name is required", ErrValidation)
		}
		if p.SeatID <= 0 {
			return fmt.Errorf("%w: passenger seat is required", ErrValidation)
		}
	}
	return nil
}

const sweeperPublishRetries = 3

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	event := newBookingEvent(eventType, booking)
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.Token, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, booking.Token, event)
	}
	return nil
}

// publishDurable is the sweeper's variant: no caller is waiting on the
// response, so transient broker failures are retried.
func (s *BookingService) publishDurable(ctx context.Context, eventType string, booking *domain.Booking) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	event := newBookingEvent(eventType, booking)
	if err := s.producer.PublishWithRetry(ctx, s.bookingTopic, booking.Token, event, sweeperPublishRetries); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.PublishWithRetry(ctx, s.notificationsTopic, booking.Token, event, sweeperPublishRetries)
	}
	return nil
}

func newBookingEvent(eventType string, booking *domain.Booking) kafka.BookingEvent {
	return kafka.BookingEvent{
		Type:        eventType,
		Token:       booking.Token,
		ScheduleID:  booking.ScheduleID,
		Email:       booking.Email,
		Status:      string(booking.Status),
		Departure:   booking.DepartureCode,
		Arrival:     booking.ArrivalCode,
		AmountCents: booking.AmountCents,
		ExpiresAt:   booking.ExpiresAt,
	}
}

var _ BookingUseCase = (*BookingService)(nil)
