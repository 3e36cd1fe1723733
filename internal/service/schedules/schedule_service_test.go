package schedules

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arkadyv/railbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockScheduleRepository struct {
	mock.Mock
}

func (m *MockScheduleRepository) List(ctx context.Context) ([]domain.Schedule, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Schedule), args.Error(1)
}

func (m *MockScheduleRepository) GetByID(ctx context.Context, id int64) (*domain.Schedule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Schedule), args.Error(1)
}

func (m *MockScheduleRepository) Search(ctx context.Context, fromCode, toCode string, date time.Time) ([]domain.Schedule, error) {
	args := m.Called(ctx, fromCode, toCode, date)
	return args.Get(0).([]domain.Schedule), args.Error(1)
}

func (m *MockScheduleRepository) RouteStops(ctx context.Context, scheduleID int64) ([]domain.RouteStop, error) {
	args := m.Called(ctx, scheduleID)
	return args.Get(0).([]domain.RouteStop), args.Error(1)
}

func (m *MockScheduleRepository) StationOrder(ctx context.Context, scheduleID int64, stationCode string) (int, error) {
	args := m.Called(ctx, scheduleID, stationCode)
	return args.Int(0), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetSchedules(ctx context.Context) ([]domain.Schedule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Schedule), args.Error(1)
}

func (m *MockCache) SetSchedules(ctx context.Context, schedules []domain.Schedule) error {
	args := m.Called(ctx, schedules)
	return args.Error(0)
}

func TestScheduleService_List_CacheHit(t *testing.T) {
	repo := &MockScheduleRepository{}
	cache := &MockCache{}
	service := NewScheduleService(repo, cache)
	ctx := context.Background()

	cached := []domain.Schedule{{ID: 1, TrainName: "Argo Bromo"}}
	cache.On("GetSchedules", ctx).Return(cached, nil).Once()

	result, err := service.List(ctx)
	assert.NoError(t, err)
	assert.Equal(t, cached, result)
	repo.AssertNotCalled(t, "List", mock.Anything)
}

func TestScheduleService_List_CacheMiss(t *testing.T) {
	repo := &MockScheduleRepository{}
	cache := &MockCache{}
	service := NewScheduleService(repo, cache)
	ctx := context.Background()

	fromStore := []domain.Schedule{{ID: 2, TrainName: "Taksaka"}}
	cache.On("GetSchedules", ctx).Return(nil, nil).Once()
	repo.On("List", ctx).Return(fromStore, nil).Once()
	cache.On("SetSchedules", ctx, fromStore).Return(nil).Once()

	result, err := service.List(ctx)
	assert.NoError(t, err)
	assert.Equal(t, fromStore, result)
	cache.AssertExpectations(t)
}

func TestScheduleService_List_StoreFaultPropagates(t *testing.T) {
	repo := &MockScheduleRepository{}
	service := NewScheduleService(repo, nil)
	ctx := context.Background()

	storeErr := errors.New("connection refused")
	repo.On("List", ctx).Return([]domain.Schedule(nil), storeErr).Once()

	_, err := service.List(ctx)
	assert.ErrorIs(t, err, storeErr)
}

func TestScheduleService_GetByID(t *testing.T) {
	repo := &MockScheduleRepository{}
	service := NewScheduleService(repo, nil)
	ctx := context.Background()

	repo.On("GetByID", ctx, int64(1)).Return(&domain.Schedule{ID: 1}, nil).Once()
	repo.On("RouteStops", ctx, int64(1)).Return([]domain.RouteStop{
		{ScheduleID: 1, StationCode: "GMR", StationOrder: 1},
		{ScheduleID: 1, StationCode: "SBI", StationOrder: 2},
	}, nil).Once()

	schedule, stops, err := service.GetByID(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), schedule.ID)
	assert.Len(t, stops, 2)
}

func TestScheduleService_Search(t *testing.T) {
	repo := &MockScheduleRepository{}
	service := NewScheduleService(repo, nil)
	ctx := context.Background()
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	repo.On("Search", ctx, "GMR", "SBI", date).Return([]domain.Schedule{{ID: 3}}, nil).Once()

	result, err := service.Search(ctx, "GMR", "SBI", date)
	assert.NoError(t, err)
	assert.Len(t, result, 1)
}
