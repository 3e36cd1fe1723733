package repository

import (
	"context"
	"errors"

	"github.com/arkadyv/railbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReservationRepository interface {
	ListBySeat(ctx context.Context, scheduleID, seatID int64) ([]domain.SegmentReservation, error)
	ListBySchedule(ctx context.Context, scheduleID int64) ([]domain.SegmentReservation, error)
	Book(ctx context.Context, res *domain.SegmentReservation) error
	Cancel(ctx context.Context, bookingID, seatID, scheduleID int64) error
	CancelByBooking(ctx context.Context, bookingID int64) error
}

type PGReservationRepository struct {
	db *pgxpool.Pool
}

func NewReservationRepository(db *pgxpool.Pool) ReservationRepository {
	return &PGReservationRepository{db: db}
}

const reservationColumns = `id, schedule_id, seat_id, booking_id, departure_order, arrival_order, departure_code, arrival_code, created_at`

func (r *PGReservationRepository) ListBySeat(ctx context.Context, scheduleID, seatID int64) ([]domain.SegmentReservation, error) {
	rows, err := r.db.Query(ctx, `SELECT `+reservationColumns+` FROM segment_reservations WHERE schedule_id=$1 AND seat_id=$2 ORDER BY departure_order`, scheduleID, seatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReservations(rows)
}

func (r *PGReservationRepository) ListBySchedule(ctx context.Context, scheduleID int64) ([]domain.SegmentReservation, error) {
	rows, err := r.db.Query(ctx, `SELECT `+reservationColumns+` FROM segment_reservations WHERE schedule_id=$1 ORDER BY seat_id, departure_order`, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReservations(rows)
}

// Book inserts a segment reservation if no live reservation overlaps the
// requested half-open range. The overlap check and insert run in one
// transaction serialized per (schedule, seat) by an advisory lock, and the
// segment_reservations exclusion constraint has the final word: a 23P01
// violation from a concurrent writer is reported as ErrSeatUnavailable,
// never as a fault.
func (r *PGReservationRepository) Book(ctx context.Context, res *domain.SegmentReservation) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1::text || ':' || $2::text, 0))`, res.ScheduleID, res.SeatID); err != nil {
		return err
	}

	var overlapping int
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM segment_reservations
		WHERE schedule_id=$1 AND seat_id=$2 AND departure_order < $4 AND $3 < arrival_order`,
		res.ScheduleID, res.SeatID, res.DepartureOrder, res.ArrivalOrder).Scan(&overlapping); err != nil {
		return err
	}
	if overlapping > 0 {
		return ErrSeatUnavailable
	}

	if err := tx.QueryRow(ctx, `INSERT INTO segment_reservations (schedule_id, seat_id, booking_id, departure_order, arrival_order, departure_code, arrival_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		res.ScheduleID, res.SeatID, res.BookingID, res.DepartureOrder, res.ArrivalOrder, res.DepartureCode, res.ArrivalCode).
		Scan(&res.ID, &res.CreatedAt); err != nil {
		if isExclusionViolation(err) {
			return ErrSeatUnavailable
		}
		return err
	}

	return tx.Commit(ctx)
}

// Cancel deletes the reservation rows for the exact (booking, seat, schedule)
// key. Deleting a reservation that does not exist is a no-op success.
func (r *PGReservationRepository) Cancel(ctx context.Context, bookingID, seatID, scheduleID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM segment_reservations WHERE booking_id=$1 AND seat_id=$2 AND schedule_id=$3`, bookingID, seatID, scheduleID)
	return err
}

func (r *PGReservationRepository) CancelByBooking(ctx context.Context, bookingID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM segment_reservations WHERE booking_id=$1`, bookingID)
	return err
}

func isExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

func scanReservations(rows pgx.Rows) ([]domain.SegmentReservation, error) {
	reservations := make([]domain.SegmentReservation, 0)
	for rows.Next() {
		var res domain.SegmentReservation
		if err := rows.Scan(&res.ID, &res.ScheduleID, &res.SeatID, &res.BookingID, &res.DepartureOrder, &res.ArrivalOrder, &res.DepartureCode, &res.ArrivalCode, &res.CreatedAt); err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

var _ ReservationRepository = (*PGReservationRepository)(nil)
