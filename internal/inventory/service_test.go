package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/arkadyv/railbooking/internal/domain"
	"github.com/arkadyv/railbooking/internal/repository"
	"github.com/stretchr/testify/assert"
)

// In-memory fakes implementing the repository interfaces. The reservation
// fake checks overlap and inserts under one mutex, matching the atomicity
// the postgres exclusion constraint provides.

type fakeScheduleRepo struct {
	schedules map[int64]domain.Schedule
	stops     []domain.RouteStop
}

func (f *fakeScheduleRepo) List(ctx context.Context) ([]domain.Schedule, error) { return nil, nil }

func (f *fakeScheduleRepo) GetByID(ctx context.Context, id int64) (*domain.Schedule, error) {
	s, ok := f.schedules[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (f *fakeScheduleRepo) Search(ctx context.Context, fromCode, toCode string, date time.Time) ([]domain.Schedule, error) {
	return nil, nil
}

func (f *fakeScheduleRepo) RouteStops(ctx context.Context, scheduleID int64) ([]domain.RouteStop, error) {
	var stops []domain.RouteStop
	for _, st := range f.stops {
		if st.ScheduleID == scheduleID {
			stops = append(stops, st)
		}
	}
	return stops, nil
}

func (f *fakeScheduleRepo) StationOrder(ctx context.Context, scheduleID int64, stationCode string) (int, error) {
	for _, st := range f.stops {
		if st.ScheduleID == scheduleID && st.StationCode == stationCode {
			return st.StationOrder, nil
		}
	}
	return 0, repository.ErrNotFound
}

type fakeSeatRepo struct {
	seats map[int64]domain.Seat
}

func (f *fakeSeatRepo) ListByTrain(ctx context.Context, trainID int64, class domain.SeatClass) ([]domain.Seat, error) {
	var seats []domain.Seat
	for _, s := range f.seats {
		if s.TrainID == trainID && (class == "" || s.Class == class) {
			seats = append(seats, s)
		}
	}
	return seats, nil
}

func (f *fakeSeatRepo) GetByID(ctx context.Context, id int64) (*domain.Seat, error) {
	s, ok := f.seats[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

type fakeReservationRepo struct {
	mu           sync.Mutex
	nextID       int64
	reservations []domain.SegmentReservation
}

func (f *fakeReservationRepo) ListBySeat(ctx context.Context, scheduleID, seatID int64) ([]domain.SegmentReservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.SegmentReservation
	for _, r := range f.reservations {
		if r.ScheduleID == scheduleID && r.SeatID == seatID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) ListBySchedule(ctx context.Context, scheduleID int64) ([]domain.SegmentReservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.SegmentReservation
	for _, r := range f.reservations {
		if r.ScheduleID == scheduleID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) Book(ctx context.Context, res *domain.SegmentReservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reservations {
		if r.ScheduleID == res.ScheduleID && r.SeatID == res.SeatID && r.Overlaps(res.DepartureOrder, res.ArrivalOrder) {
			return repository.ErrSeatUnavailable
		}
	}
	f.nextID++
	res.ID = f.nextID
	res.CreatedAt = time.Now()
	f.reservations = append(f.reservations, *res)
	return nil
}

func (f *fakeReservationRepo) Cancel(ctx context.Context, bookingID, seatID, scheduleID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.reservations[:0]
	for _, r := range f.reservations {
		if !(r.BookingID == bookingID && r.SeatID == seatID && r.ScheduleID == scheduleID) {
			kept = append(kept, r)
		}
	}
	f.reservations = kept
	return nil
}

func (f *fakeReservationRepo) CancelByBooking(ctx context.Context, bookingID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.reservations[:0]
	for _, r := range f.reservations {
		if r.BookingID != bookingID {
			kept = append(kept, r)
		}
	}
	f.reservations = kept
	return nil
}

// newTestService builds an inventory over schedule 1 (train 1) with stops
// Jakarta(1), Cirebon(2), Semarang(3), Surabaya(4) and two seats.
func newTestService() (*Service, *fakeReservationRepo) {
	scheduleRepo := &fakeScheduleRepo{
		schedules: map[int64]domain.Schedule{
			1: {ID: 1, TrainID: 1, TrainName: "Argo Bromo", Status: domain.ScheduleStatusScheduled},
		},
		stops: []domain.RouteStop{
			{ScheduleID: 1, StationCode: "GMR", StationName: "Jakarta", StationOrder: 1},
			{ScheduleID: 1, StationCode: "CN", StationName: "Cirebon", StationOrder: 2},
			{ScheduleID: 1, StationCode: "SMT", StationName: "Semarang", StationOrder: 3},
			{ScheduleID: 1, StationCode: "SBI", StationName: "Surabaya", StationOrder: 4},
		},
	}
	seatRepo := &fakeSeatRepo{
		seats: map[int64]domain.Seat{
			11: {ID: 11, TrainID: 1, CoachCode: "EKS-1", SeatNumber: "1A", Class: domain.SeatClassExecutive},
			12: {ID: 12, TrainID: 1, CoachCode: "EKO-1", SeatNumber: "2B", Class: domain.SeatClassEconomy},
		},
	}
	reservationRepo := &fakeReservationRepo{}
	return NewService(scheduleRepo, seatRepo, reservationRepo), reservationRepo
}

func TestService_ResolveStationOrder(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	for i, code := range []string{"GMR", "CN", "SMT", "SBI"} {
		order, err := service.ResolveStationOrder(ctx, 1, code)
		assert.NoError(t, err)
		assert.Equal(t, i+1, order)
	}

	_, err := service.ResolveStationOrder(ctx, 1, "BD")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = service.ResolveStationOrder(ctx, 99, "GMR")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestService_BookRefusesOverlapAllowsAdjacent(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	_, err := service.Book(ctx, BookSegmentInput{BookingID: 100, ScheduleID: 1, SeatID: 11, DepartureOrder: 1, ArrivalOrder: 3, DepartureCode: "GMR", ArrivalCode: "SMT"})
	assert.NoError(t, err)

	// partial overlap at [2,3) is refused
	_, err = service.Book(ctx, BookSegmentInput{BookingID: 101, ScheduleID: 1, SeatID: 11, DepartureOrder: 2, ArrivalOrder: 4, DepartureCode: "CN", ArrivalCode: "SBI"})
	assert.ErrorIs(t, err, repository.ErrSeatUnavailable)

	// adjacent half-open ranges touch but do not overlap
	_, err = service.Book(ctx, BookSegmentInput{BookingID: 101, ScheduleID: 1, SeatID: 11, DepartureOrder: 3, ArrivalOrder: 4, DepartureCode: "SMT", ArrivalCode: "SBI"})
	assert.NoError(t, err)
}

func TestService_BookValidation(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	_, err := service.Book(ctx, BookSegmentInput{BookingID: 100, ScheduleID: 1, SeatID: 11, DepartureOrder: 3, ArrivalOrder: 3})
	assert.ErrorIs(t, err, ErrInvalidSegment)

	_, err = service.Book(ctx, BookSegmentInput{BookingID: 100, ScheduleID: 1, SeatID: 11, DepartureOrder: 3, ArrivalOrder: 1})
	assert.ErrorIs(t, err, ErrInvalidSegment)

	_, err = service.Book(ctx, BookSegmentInput{BookingID: 100, ScheduleID: 99, SeatID: 11, DepartureOrder: 1, ArrivalOrder: 2})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = service.Book(ctx, BookSegmentInput{BookingID: 100, ScheduleID: 1, SeatID: 99, DepartureOrder: 1, ArrivalOrder: 2})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestService_CancelIsIdempotent(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	// cancelling a reservation that never existed is a no-op success
	assert.NoError(t, service.Cancel(ctx, 100, 11, 1))

	_, err := service.Book(ctx, BookSegmentInput{BookingID: 100, ScheduleID: 1, SeatID: 11, DepartureOrder: 1, ArrivalOrder: 3})
	assert.NoError(t, err)
	assert.NoError(t, service.Cancel(ctx, 100, 11, 1))
	assert.NoError(t, service.Cancel(ctx, 100, 11, 1))
}

func TestService_CancelAllReleasesEverySegment(t *testing.T) {
	service, reservationRepo := newTestService()
	ctx := context.Background()

	_, err := service.Book(ctx, BookSegmentInput{BookingID: 100, ScheduleID: 1, SeatID: 11, DepartureOrder: 1, ArrivalOrder: 2, DepartureCode: "GMR", ArrivalCode: "CN"})
	assert.NoError(t, err)
	_, err = service.Book(ctx, BookSegmentInput{BookingID: 100, ScheduleID: 1, SeatID: 12, DepartureOrder: 2, ArrivalOrder: 4, DepartureCode: "CN", ArrivalCode: "SBI"})
	assert.NoError(t, err)
	_, err = service.Book(ctx, BookSegmentInput{BookingID: 200, ScheduleID: 1, SeatID: 11, DepartureOrder: 3, ArrivalOrder: 4, DepartureCode: "SMT", ArrivalCode: "SBI"})
	assert.NoError(t, err)

	assert.NoError(t, service.CancelAll(ctx, 100))

	// only the other booking's reservation survives
	assert.Len(t, reservationRepo.reservations, 1)
	assert.Equal(t, int64(200), reservationRepo.reservations[0].BookingID)
}

func TestService_BookCancelRebook(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()
	input := BookSegmentInput{BookingID: 100, ScheduleID: 1, SeatID: 11, DepartureOrder: 1, ArrivalOrder: 3, DepartureCode: "GMR", ArrivalCode: "SMT"}

	_, err := service.Book(ctx, input)
	assert.NoError(t, err)
	assert.NoError(t, service.Cancel(ctx, 100, 11, 1))

	// the identical range must be bookable again after release
	_, err = service.Book(ctx, input)
	assert.NoError(t, err)
}

func TestService_SeatAvailableScenario(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	// seat 1A held Jakarta -> Semarang (orders 1 -> 3)
	_, err := service.Book(ctx, BookSegmentInput{BookingID: 100, ScheduleID: 1, SeatID: 11, DepartureOrder: 1, ArrivalOrder: 3, DepartureCode: "GMR", ArrivalCode: "SMT"})
	assert.NoError(t, err)

	// Cirebon -> Surabaya overlaps at [2,3)
	available, err := service.SeatAvailable(ctx, 1, 11, 2, 4)
	assert.NoError(t, err)
	assert.False(t, available)

	// Semarang -> Surabaya is adjacent, not overlapping
	available, err = service.SeatAvailable(ctx, 1, 11, 3, 4)
	assert.NoError(t, err)
	assert.True(t, available)

	// a seat with no reservations is trivially available
	available, err = service.SeatAvailable(ctx, 1, 12, 1, 4)
	assert.NoError(t, err)
	assert.True(t, available)

	_, err = service.SeatAvailable(ctx, 1, 11, 2, 2)
	assert.ErrorIs(t, err, ErrInvalidSegment)
}

func TestService_AvailableSeats(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	_, err := service.Book(ctx, BookSegmentInput{BookingID: 100, ScheduleID: 1, SeatID: 11, DepartureOrder: 1, ArrivalOrder: 3, DepartureCode: "GMR", ArrivalCode: "SMT"})
	assert.NoError(t, err)

	seats, err := service.AvailableSeats(ctx, 1, "CN", "SBI", "")
	assert.NoError(t, err)
	ids := seatIDs(seats)
	assert.NotContains(t, ids, int64(11))
	assert.Contains(t, ids, int64(12))

	seats, err = service.AvailableSeats(ctx, 1, "SMT", "SBI", "")
	assert.NoError(t, err)
	assert.Contains(t, seatIDs(seats), int64(11))

	// class filter
	seats, err = service.AvailableSeats(ctx, 1, "SMT", "SBI", domain.SeatClassEconomy)
	assert.NoError(t, err)
	assert.Equal(t, []int64{12}, seatIDs(seats))

	// unknown station or inverted pair
	_, err = service.AvailableSeats(ctx, 1, "BD", "SBI", "")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = service.AvailableSeats(ctx, 1, "SBI", "GMR", "")
	assert.ErrorIs(t, err, ErrInvalidSegment)
}

func TestService_ConcurrentBookSingleWinner(t *testing.T) {
	service, reservationRepo := newTestService()
	ctx := context.Background()

	const bookers = 32
	var wg sync.WaitGroup
	errs := make([]error, bookers)

	for i := 0; i < bookers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = service.Book(ctx, BookSegmentInput{
				BookingID:      int64(1000 + i),
				ScheduleID:     1,
				SeatID:         11,
				DepartureOrder: 1,
				ArrivalOrder:   4,
				DepartureCode:  "GMR",
				ArrivalCode:    "SBI",
			})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.True(t, errors.Is(err, repository.ErrSeatUnavailable))
		}
	}
	assert.Equal(t, 1, successes)
	assert.Len(t, reservationRepo.reservations, 1)
}

func seatIDs(seats []domain.Seat) []int64 {
	ids := make([]int64, 0, len(seats))
	for _, s := range seats {
		ids = append(ids, s.ID)
	}
	return ids
}
