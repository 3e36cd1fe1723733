package repository

import (
	"context"
	"errors"

	"github.com/arkadyv/railbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SeatRepository interface {
	ListByTrain(ctx context.Context, trainID int64, class domain.SeatClass) ([]domain.Seat, error)
	GetByID(ctx context.Context, id int64) (*domain.Seat, error)
}

type PGSeatRepository struct {
	db *pgxpool.Pool
}

func NewSeatRepository(db *pgxpool.Pool) SeatRepository {
	return &PGSeatRepository{db: db}
}

// ListByTrain returns the train's seats ordered for display. An empty class
// means no class filter.
func (r *PGSeatRepository) ListByTrain(ctx context.Context, trainID int64, class domain.SeatClass) ([]domain.Seat, error) {
	query := `SELECT id, train_id, coach_code, seat_number, class, price_cents FROM seats WHERE train_id=$1`
	args := []interface{}{trainID}
	if class != "" {
		query += ` AND class=$2`
		args = append(args, class)
	}
	query += ` ORDER BY coach_code, seat_number`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]domain.Seat, 0)
	for rows.Next() {
		var s domain.Seat
		if err := rows.Scan(&s.ID, &s.TrainID, &s.CoachCode, &s.SeatNumber, &s.Class, &s.PriceCents); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

func (r *PGSeatRepository) GetByID(ctx context.Context, id int64) (*domain.Seat, error) {
	row := r.db.QueryRow(ctx, `SELECT id, train_id, coach_code, seat_number, class, price_cents FROM seats WHERE id=$1`, id)
	var s domain.Seat
	if err := row.Scan(&s.ID, &s.TrainID, &s.CoachCode, &s.SeatNumber, &s.Class, &s.PriceCents); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

var _ SeatRepository = (*PGSeatRepository)(nil)
