package repository

import (
	"context"
	"errors"

	"github.com/arkadyv/railbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PromoRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.PromoCode, error)
}

type PGPromoRepository struct {
	db *pgxpool.Pool
}

func NewPromoRepository(db *pgxpool.Pool) PromoRepository {
	return &PGPromoRepository{db: db}
}

func (r *PGPromoRepository) GetByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	row := r.db.QueryRow(ctx, `SELECT code, percent_off, valid_from, valid_until, active FROM promo_codes WHERE code=$1`, code)
	var p domain.PromoCode
	if err := row.Scan(&p.Code, &p.PercentOff, &p.ValidFrom, &p.ValidUntil, &p.Active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

var _ PromoRepository = (*PGPromoRepository)(nil)
