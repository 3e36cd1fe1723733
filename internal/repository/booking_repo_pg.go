package repository

import (
	"context"
	"errors"
	"time"

	"github.com/arkadyv/railbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	CreatePending(ctx context.Context, booking *domain.Booking, passengers []domain.Passenger) error
	GetByToken(ctx context.Context, token string) (*domain.Booking, error)
	Passengers(ctx context.Context, bookingID int64) ([]domain.Passenger, error)
	UpdateStatus(ctx context.Context, token string, status domain.BookingStatus) (*domain.Booking, error)
	SetPaymentSession(ctx context.Context, token, sessionID string) error
	ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, token, schedule_id, status, email, departure_code, arrival_code, amount_cents, promo_code, payment_session_id, expires_at, created_at, updated_at`

// CreatePending inserts the booking and its passengers in one transaction.
func (r *PGBookingRepository) CreatePending(ctx context.Context, booking *domain.Booking, passengers []domain.Passenger) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	booking.Status = domain.BookingStatusPending
	if err := tx.QueryRow(ctx, `INSERT INTO bookings (token, schedule_id, status, email, departure_code, arrival_code, amount_cents, promo_code, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		booking.Token, booking.ScheduleID, booking.Status, booking.Email, booking.DepartureCode, booking.ArrivalCode, booking.AmountCents, booking.PromoCode, booking.ExpiresAt).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return err
	}

	for i := range passengers {
		passengers[i].BookingID = booking.ID
		if err := tx.QueryRow(ctx, `INSERT INTO passengers (booking_id, name, seat_id) VALUES ($1, $2, $3) RETURNING id`,
			booking.ID, passengers[i].Name, passengers[i].SeatID).Scan(&passengers[i].ID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByToken(ctx context.Context, token string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE token=$1`, token)
	return scanBooking(row)
}

func (r *PGBookingRepository) Passengers(ctx context.Context, bookingID int64) ([]domain.Passenger, error) {
	rows, err := r.db.Query(ctx, `SELECT id, booking_id, name, seat_id FROM passengers WHERE booking_id=$1 ORDER BY id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	passengers := make([]domain.Passenger, 0)
	for rows.Next() {
		var p domain.Passenger
		if err := rows.Scan(&p.ID, &p.BookingID, &p.Name, &p.SeatID); err != nil {
			return nil, err
		}
		passengers = append(passengers, p)
	}
	return passengers, rows.Err()
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, token string, status domain.BookingStatus) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE token=$2 RETURNING `+bookingColumns, status, token)
	return scanBooking(row)
}

func (r *PGBookingRepository) SetPaymentSession(ctx context.Context, token, sessionID string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE bookings SET payment_session_id=$1, updated_at=now() WHERE token=$2`, sessionID, token)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGBookingRepository) ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE status=$2 AND expires_at <= $3 RETURNING `+bookingColumns,
		domain.BookingStatusExpired, domain.BookingStatusPending, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expired []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.Token, &b.ScheduleID, &b.Status, &b.Email, &b.DepartureCode, &b.ArrivalCode, &b.AmountCents, &b.PromoCode, &b.PaymentSessionID, &b.ExpiresAt, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		expired = append(expired, b)
	}
	return expired, rows.Err()
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.Token, &b.ScheduleID, &b.Status, &b.Email, &b.DepartureCode, &b.ArrivalCode, &b.AmountCents, &b.PromoCode, &b.PaymentSessionID, &b.ExpiresAt, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
