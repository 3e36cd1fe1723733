package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arkadyv/railbooking/internal/domain"
	"github.com/arkadyv/railbooking/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockScheduleUseCase is a mock implementation of schedules.ScheduleUseCase
type MockScheduleUseCase struct {
	mock.Mock
}

func (m *MockScheduleUseCase) List(ctx context.Context) ([]domain.Schedule, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Schedule), args.Error(1)
}

func (m *MockScheduleUseCase) Search(ctx context.Context, fromCode, toCode string, date time.Time) ([]domain.Schedule, error) {
	args := m.Called(ctx, fromCode, toCode, date)
	return args.Get(0).([]domain.Schedule), args.Error(1)
}

func (m *MockScheduleUseCase) GetByID(ctx context.Context, id int64) (*domain.Schedule, []domain.RouteStop, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Schedule), args.Get(1).([]domain.RouteStop), args.Error(2)
}

func TestScheduleHandler_list(t *testing.T) {
	mockService := &MockScheduleUseCase{}
	handler := NewScheduleHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/schedules", nil)

	mockService.On("List", c.Request.Context()).Return([]domain.Schedule{
		{ID: 1, TrainName: "Argo Bromo", Status: domain.ScheduleStatusScheduled},
	}, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response []domain.Schedule
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Len(t, response, 1)
}

func TestScheduleHandler_search(t *testing.T) {
	mockService := &MockScheduleUseCase{}
	handler := NewScheduleHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/schedules/search?from=GMR&to=SBI&date=2026-09-01", nil)

	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	mockService.On("Search", c.Request.Context(), "GMR", "SBI", date).Return([]domain.Schedule{{ID: 3}}, nil)

	handler.search(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestScheduleHandler_search_badDate(t *testing.T) {
	mockService := &MockScheduleUseCase{}
	handler := NewScheduleHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/schedules/search?from=GMR&to=SBI&date=tomorrow", nil)

	handler.search(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestScheduleHandler_get(t *testing.T) {
	mockService := &MockScheduleUseCase{}
	handler := NewScheduleHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	c.Request = httptest.NewRequest("GET", "/schedules/1", nil)

	mockService.On("GetByID", c.Request.Context(), int64(1)).Return(
		&domain.Schedule{ID: 1, TrainName: "Argo Bromo"},
		[]domain.RouteStop{
			{ScheduleID: 1, StationCode: "GMR", StationOrder: 1},
			{ScheduleID: 1, StationCode: "SBI", StationOrder: 2},
		},
		nil,
	)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestScheduleHandler_get_notFound(t *testing.T) {
	mockService := &MockScheduleUseCase{}
	handler := NewScheduleHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "99"}}
	c.Request = httptest.NewRequest("GET", "/schedules/99", nil)

	mockService.On("GetByID", c.Request.Context(), int64(99)).Return(nil, nil, repository.ErrNotFound)

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
