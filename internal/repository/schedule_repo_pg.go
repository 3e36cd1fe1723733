package repository

import (
	"context"
	"errors"
	"time"

	"github.com/arkadyv/railbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ScheduleRepository interface {
	List(ctx context.Context) ([]domain.Schedule, error)
	GetByID(ctx context.Context, id int64) (*domain.Schedule, error)
	Search(ctx context.Context, fromCode, toCode string, date time.Time) ([]domain.Schedule, error)
	RouteStops(ctx context.Context, scheduleID int64) ([]domain.RouteStop, error)
	StationOrder(ctx context.Context, scheduleID int64, stationCode string) (int, error)
}

type PGScheduleRepository struct {
	db *pgxpool.Pool
}

func NewScheduleRepository(db *pgxpool.Pool) ScheduleRepository {
	return &PGScheduleRepository{db: db}
}

const scheduleColumns = `s.id, s.train_id, t.name, s.travel_date, s.status, s.created_at, s.updated_at`

func (r *PGScheduleRepository) List(ctx context.Context) ([]domain.Schedule, error) {
	rows, err := r.db.Query(ctx, `SELECT `+scheduleColumns+` FROM schedules s JOIN trains t ON t.id = s.train_id ORDER BY s.travel_date, s.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSchedules(rows)
}

func (r *PGScheduleRepository) GetByID(ctx context.Context, id int64) (*domain.Schedule, error) {
	row := r.db.QueryRow(ctx, `SELECT `+scheduleColumns+` FROM schedules s JOIN trains t ON t.id = s.train_id WHERE s.id=$1`, id)
	var s domain.Schedule
	if err := row.Scan(&s.ID, &s.TrainID, &s.TrainName, &s.TravelDate, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Search matches schedules on the travel date where both stations are on the
// route and the origin precedes the destination.
func (r *PGScheduleRepository) Search(ctx context.Context, fromCode, toCode string, date time.Time) ([]domain.Schedule, error) {
	rows, err := r.db.Query(ctx, `SELECT `+scheduleColumns+`
		FROM schedules s
		JOIN trains t ON t.id = s.train_id
		JOIN route_stops dep ON dep.schedule_id = s.id AND dep.station_code = $1
		JOIN route_stops arr ON arr.schedule_id = s.id AND arr.station_code = $2
		WHERE s.travel_date = $3 AND dep.station_order < arr.station_order
		ORDER BY dep.departure_time`, fromCode, toCode, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSchedules(rows)
}

func (r *PGScheduleRepository) RouteStops(ctx context.Context, scheduleID int64) ([]domain.RouteStop, error) {
	rows, err := r.db.Query(ctx, `SELECT schedule_id, station_code, station_name, station_order, arrival_time, departure_time
		FROM route_stops WHERE schedule_id=$1 ORDER BY station_order`, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stops := make([]domain.RouteStop, 0)
	for rows.Next() {
		var st domain.RouteStop
		if err := rows.Scan(&st.ScheduleID, &st.StationCode, &st.StationName, &st.StationOrder, &st.ArrivalTime, &st.DepartureTime); err != nil {
			return nil, err
		}
		stops = append(stops, st)
	}
	return stops, rows.Err()
}

func (r *PGScheduleRepository) StationOrder(ctx context.Context, scheduleID int64, stationCode string) (int, error) {
	row := r.db.QueryRow(ctx, `SELECT station_order FROM route_stops WHERE schedule_id=$1 AND station_code=$2`, scheduleID, stationCode)
	var order int
	if err := row.Scan(&order); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return order, nil
}

func scanSchedules(rows pgx.Rows) ([]domain.Schedule, error) {
	schedules := make([]domain.Schedule, 0)
	for rows.Next() {
		var s domain.Schedule
		if err := rows.Scan(&s.ID, &s.TrainID, &s.TrainName, &s.TravelDate, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

var _ ScheduleRepository = (*PGScheduleRepository)(nil)
