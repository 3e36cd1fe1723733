// Package inventory implements the segmented seat inventory: resolving a
// station to its ordinal position along a schedule's route, deciding whether
// a seat is free for a half-open [departure_order, arrival_order) range, and
// recording or releasing the segment reservations that consume inventory.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arkadyv/railbooking/internal/domain"
	"github.com/arkadyv/railbooking/internal/repository"
)

// ErrInvalidSegment is returned when the departure order is not strictly
// before the arrival order. This is a caller error, not a storage error.
var ErrInvalidSegment = errors.New("departure must precede arrival")

type UseCase interface {
	ResolveStationOrder(ctx context.Context, scheduleID int64, stationCode string) (int, error)
	SeatAvailable(ctx context.Context, scheduleID, seatID int64, departureOrder, arrivalOrder int) (bool, error)
	Book(ctx context.Context, input BookSegmentInput) (*domain.SegmentReservation, error)
	Cancel(ctx context.Context, bookingID, seatID, scheduleID int64) error
	CancelAll(ctx context.Context, bookingID int64) error
	AvailableSeats(ctx context.Context, scheduleID int64, fromCode, toCode string, class domain.SeatClass) ([]domain.Seat, error)
}

// SegmentLocker is an optional short-lived lock in front of the database so
// concurrent bookers of the same (schedule, seat) fail fast instead of
// queueing on the transaction. The reservation row itself is the durable
// hold; the lock is released as soon as Book returns.
type SegmentLocker interface {
	AcquireSegmentLock(ctx context.Context, scheduleID, seatID int64, ttl time.Duration) (bool, error)
	ReleaseSegmentLock(ctx context.Context, scheduleID, seatID int64) error
}

type Service struct {
	schedules    repository.ScheduleRepository
	seats        repository.SeatRepository
	reservations repository.ReservationRepository
	locker       SegmentLocker
	lockTTL      time.Duration
}

type ServiceOption func(*Service)

// WithSegmentLocker enables the fast-fail lock around Book.
func WithSegmentLocker(locker SegmentLocker, ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.locker = locker
		s.lockTTL = ttl
	}
}

func NewService(
	schedules repository.ScheduleRepository,
	seats repository.SeatRepository,
	reservations repository.ReservationRepository,
	opts ...ServiceOption,
) *Service {
	service := &Service{
		schedules:    schedules,
		seats:        seats,
		reservations: reservations,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// ResolveStationOrder maps a station code to its 1-based position on the
// schedule's route. A station that is not on the route resolves to
// repository.ErrNotFound.
func (s *Service) ResolveStationOrder(ctx context.Context, scheduleID int64, stationCode string) (int, error) {
	if _, err := s.schedules.GetByID(ctx, scheduleID); err != nil {
		return 0, err
	}
	return s.schedules.StationOrder(ctx, scheduleID, stationCode)
}

// SeatAvailable reports whether the seat is free for the half-open range.
// A store fault propagates as an error; availability is never fabricated.
func (s *Service) SeatAvailable(ctx context.Context, scheduleID, seatID int64, departureOrder, arrivalOrder int) (bool, error) {
	if departureOrder >= arrivalOrder {
		return false, ErrInvalidSegment
	}

	existing, err := s.reservations.ListBySeat(ctx, scheduleID, seatID)
	if err != nil {
		return false, err
	}
	for _, res := range existing {
		if res.Overlaps(departureOrder, arrivalOrder) {
			return false, nil
		}
	}
	return true, nil
}

type BookSegmentInput struct {
	BookingID      int64
	ScheduleID     int64
	SeatID         int64
	DepartureOrder int
	ArrivalOrder   int
	DepartureCode  string
	ArrivalCode    string
}

// Book allocates the seat for the requested segment. The repository performs
// the authoritative overlap check and insert atomically; on refusal no
// reservation exists and the caller must not treat the seat as held.
func (s *Service) Book(ctx context.Context, input BookSegmentInput) (*domain.SegmentReservation, error) {
	if input.DepartureOrder >= input.ArrivalOrder {
		return nil, ErrInvalidSegment
	}
	if _, err := s.schedules.GetByID(ctx, input.ScheduleID); err != nil {
		return nil, fmt.Errorf("schedule %d: %w", input.ScheduleID, err)
	}
	if _, err := s.seats.GetByID(ctx, input.SeatID); err != nil {
		return nil, fmt.Errorf("seat %d: %w", input.SeatID, err)
	}

	if s.locker != nil {
		ok, err := s.locker.AcquireSegmentLock(ctx, input.ScheduleID, input.SeatID, s.lockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, repository.ErrSeatUnavailable
		}
		defer func() {
			_ = s.locker.ReleaseSegmentLock(ctx, input.ScheduleID, input.SeatID)
		}()
	}

	res := &domain.SegmentReservation{
		ScheduleID:     input.ScheduleID,
		SeatID:         input.SeatID,
		BookingID:      input.BookingID,
		DepartureOrder: input.DepartureOrder,
		ArrivalOrder:   input.ArrivalOrder,
		DepartureCode:  input.DepartureCode,
		ArrivalCode:    input.ArrivalCode,
	}
	if err := s.reservations.Book(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Cancel releases the reservation for the exact (booking, seat, schedule)
// key. Cancelling a reservation that does not exist is a success: the
// desired end state already holds.
func (s *Service) Cancel(ctx context.Context, bookingID, seatID, scheduleID int64) error {
	return s.reservations.Cancel(ctx, bookingID, seatID, scheduleID)
}

// CancelAll releases every segment the booking holds, across schedules.
// Used when a booking is cancelled or expires.
func (s *Service) CancelAll(ctx context.Context, bookingID int64) error {
	return s.reservations.CancelByBooking(ctx, bookingID)
}

// AvailableSeats returns the seats of the schedule's train that are free for
// the boarding/alighting pair, ordered by coach and seat number. Both
// station codes must resolve to stops on the schedule's route.
func (s *Service) AvailableSeats(ctx context.Context, scheduleID int64, fromCode, toCode string, class domain.SeatClass) ([]domain.Seat, error) {
	schedule, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	departureOrder, err := s.schedules.StationOrder(ctx, scheduleID, fromCode)
	if err != nil {
		return nil, fmt.Errorf("station %s: %w", fromCode, err)
	}
	arrivalOrder, err := s.schedules.StationOrder(ctx, scheduleID, toCode)
	if err != nil {
		return nil, fmt.Errorf("station %s: %w", toCode, err)
	}
	if departureOrder >= arrivalOrder {
		return nil, ErrInvalidSegment
	}

	seats, err := s.seats.ListByTrain(ctx, schedule.TrainID, class)
	if err != nil {
		return nil, err
	}
	reservations, err := s.reservations.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	bySeat := make(map[int64][]domain.SegmentReservation, len(seats))
	for _, res := range reservations {
		bySeat[res.SeatID] = append(bySeat[res.SeatID], res)
	}

	available := make([]domain.Seat, 0, len(seats))
	for _, seat := range seats {
		free := true
		for _, res := range bySeat[seat.ID] {
			if res.Overlaps(departureOrder, arrivalOrder) {
				free = false
				break
			}
		}
		if free {
			available = append(available, seat)
		}
	}
	return available, nil
}

var _ UseCase = (*Service)(nil)
