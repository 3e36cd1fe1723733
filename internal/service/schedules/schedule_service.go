package schedules

import (
	"context"
	"time"

	"github.com/arkadyv/railbooking/internal/domain"
	"github.com/arkadyv/railbooking/internal/repository"
)

type ScheduleUseCase interface {
	List(ctx context.Context) ([]domain.Schedule, error)
	Search(ctx context.Context, fromCode, toCode string, date time.Time) ([]domain.Schedule, error)
	GetByID(ctx context.Context, id int64) (*domain.Schedule, []domain.RouteStop, error)
}

// Cache is the read cache for the schedule list. Only this cosmetic read
// path may serve cached data; availability and reservation reads always go
// to the store.
type Cache interface {
	GetSchedules(ctx context.Context) ([]domain.Schedule, error)
	SetSchedules(ctx context.Context, schedules []domain.Schedule) error
}

type ScheduleService struct {
	repo  repository.ScheduleRepository
	cache Cache
}

func NewScheduleService(repo repository.ScheduleRepository, cache Cache) *ScheduleService {
	return &ScheduleService{repo: repo, cache: cache}
}

func (s *ScheduleService) List(ctx context.Context) ([]domain.Schedule, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetSchedules(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	schedules, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetSchedules(ctx, schedules)
	}
	return schedules, nil
}

func (s *ScheduleService) Search(ctx context.Context, fromCode, toCode string, date time.Time) ([]domain.Schedule, error) {
	return s.repo.Search(ctx, fromCode, toCode, date)
}

func (s *ScheduleService) GetByID(ctx context.Context, id int64) (*domain.Schedule, []domain.RouteStop, error) {
	schedule, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	stops, err := s.repo.RouteStops(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return schedule, stops, nil
}

var _ ScheduleUseCase = (*ScheduleService)(nil)
