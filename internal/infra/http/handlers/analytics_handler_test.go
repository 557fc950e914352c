package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kklick/funnel-api/internal/entity"
	"github.com/kklick/funnel-api/internal/infra/http/middleware"
	"github.com/kklick/funnel-api/internal/usecase"
)

// MockAnalyticsRepository
type MockAnalyticsRepository struct {
	mock.Mock
}

func (m *MockAnalyticsRepository) CreatePageView(ctx context.Context, pv *entity.PageView) error {
	args := m.Called(ctx, pv)
	return args.Error(0)
}

func (m *MockAnalyticsRepository) CreateEvent(ctx context.Context, ev *entity.AnalyticsEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *MockAnalyticsRepository) CountPageViews(ctx context.Context, start, end time.Time) (int, error) {
	args := m.Called(ctx, start, end)
	return args.Int(0), args.Error(1)
}

func (m *MockAnalyticsRepository) CountDistinctVisitors(ctx context.Context, start, end time.Time) (int, error) {
	args := m.Called(ctx, start, end)
	return args.Int(0), args.Error(1)
}

func (m *MockAnalyticsRepository) CountReturningVisitors(ctx context.Context, start, end time.Time) (int, error) {
	args := m.Called(ctx, start, end)
	return args.Int(0), args.Error(1)
}

func (m *MockAnalyticsRepository) CountEventsByType(ctx context.Context, eventType string, start, end time.Time) (int, error) {
	args := m.Called(ctx, eventType, start, end)
	return args.Int(0), args.Error(1)
}

func (m *MockAnalyticsRepository) StepEventCounts(ctx context.Context, start, end time.Time) (map[string]int, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

// MockUserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func TestPageViewHandler(t *testing.T) {
	analytics := new(MockAnalyticsRepository)
	var persisted *entity.PageView
	analytics.On("CreatePageView", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		persisted = args.Get(1).(*entity.PageView)
	}).Return(nil)

	h := NewAnalyticsHandler(analytics, nil)

	body, _ := json.Marshal(map[string]any{
		"visitorId": "v1",
		"page":      "/quiz",
		"referrer":  "https://instagram.com",
		"userAgent": "Mozilla/5.0",
	})
	req := httptest.NewRequest("POST", "/api/analytics/pageview", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.PageView(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, persisted)
	assert.Equal(t, "v1", persisted.VisitorID)
	assert.Equal(t, "/quiz", persisted.Page)
	assert.NotEmpty(t, persisted.ID)
}

func TestPageViewHandlerValidation(t *testing.T) {
	cases := []struct {
		name string
		body map[string]any
	}{
		{"missing visitorId", map[string]any{"page": "/quiz"}},
		{"missing page", map[string]any{"visitorId": "v1"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			analytics := new(MockAnalyticsRepository)
			h := NewAnalyticsHandler(analytics, nil)

			body, _ := json.Marshal(tc.body)
			req := httptest.NewRequest("POST", "/api/analytics/pageview", bytes.NewReader(body))
			w := httptest.NewRecorder()
			h.PageView(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			analytics.AssertNotCalled(t, "CreatePageView", mock.Anything, mock.Anything)
		})
	}
}

func TestEventHandler(t *testing.T) {
	analytics := new(MockAnalyticsRepository)
	var persisted *entity.AnalyticsEvent
	analytics.On("CreateEvent", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		persisted = args.Get(1).(*entity.AnalyticsEvent)
	}).Return(nil)

	h := NewAnalyticsHandler(analytics, nil)

	body, _ := json.Marshal(map[string]any{
		"visitorId": "v1",
		"eventType": "quiz_step_3",
		"eventData": `{"answer":"zwischen 18-26"}`,
		"page":      "/quiz",
	})
	req := httptest.NewRequest("POST", "/api/analytics/event", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.Event(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, persisted)
	assert.Equal(t, "quiz_step_3", persisted.EventType)
}

func TestEventHandlerRequiresEventType(t *testing.T) {
	h := NewAnalyticsHandler(new(MockAnalyticsRepository), nil)

	body, _ := json.Marshal(map[string]any{"visitorId": "v1"})
	req := httptest.NewRequest("POST", "/api/analytics/event", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.Event(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func statsHandler(analytics *MockAnalyticsRepository, leads *MockLeadRepository) *AnalyticsHandler {
	return NewAnalyticsHandler(analytics, usecase.NewStatsUseCase(analytics, leads))
}

func stubStats(analytics *MockAnalyticsRepository, leads *MockLeadRepository) {
	analytics.On("CountPageViews", mock.Anything, mock.Anything, mock.Anything).Return(42, nil)
	analytics.On("CountDistinctVisitors", mock.Anything, mock.Anything, mock.Anything).Return(10, nil)
	analytics.On("CountReturningVisitors", mock.Anything, mock.Anything, mock.Anything).Return(3, nil)
	analytics.On("CountEventsByType", mock.Anything, entity.EventQuizStart, mock.Anything, mock.Anything).Return(5, nil)
	analytics.On("CountEventsByType", mock.Anything, entity.EventQuizComplete, mock.Anything, mock.Anything).Return(2, nil)
	analytics.On("CountEventsByType", mock.Anything, entity.EventQuizDisqualified, mock.Anything, mock.Anything).Return(1, nil)
	analytics.On("StepEventCounts", mock.Anything, mock.Anything, mock.Anything).Return(map[string]int{"quiz_step_2": 3}, nil)
	leads.On("CountCreatedBetween", mock.Anything, mock.Anything, mock.Anything).Return(7, nil)
}

func TestStatsHandler(t *testing.T) {
	analytics := new(MockAnalyticsRepository)
	leads := new(MockLeadRepository)
	stubStats(analytics, leads)

	h := statsHandler(analytics, leads)
	req := httptest.NewRequest("GET", "/api/analytics/stats?startDate=2025-03-01&endDate=2025-03-31", nil)
	w := httptest.NewRecorder()
	h.Stats(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Cache-Control"), "no-store")
	assert.Equal(t, "no-cache", w.Header().Get("Pragma"))

	var resp struct {
		Success bool              `json:"success"`
		Data    usecase.StatsData `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 42, resp.Data.TotalPageViews)
	assert.Equal(t, 10, resp.Data.UniqueVisitors)
	assert.Equal(t, 7, resp.Data.NewVisitors)
	assert.Equal(t, 7, resp.Data.LeadsGenerated)
	assert.Equal(t, usecase.StepCounts{"quiz_step_2": 3}, resp.Data.QuizStepCounts)
}

func TestStatsHandlerDateValidation(t *testing.T) {
	h := statsHandler(new(MockAnalyticsRepository), new(MockLeadRepository))

	cases := []string{
		"/api/analytics/stats",
		"/api/analytics/stats?startDate=2025-03-01",
		"/api/analytics/stats?startDate=nope&endDate=2025-03-31",
		"/api/analytics/stats?startDate=2025-03-01&endDate=31.03.2025",
	}

	for _, url := range cases {
		req := httptest.NewRequest("GET", url, nil)
		w := httptest.NewRecorder()
		h.Stats(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, url)
	}
}

func TestStatsEndpointRejectsWrongCredential(t *testing.T) {
	analytics := new(MockAnalyticsRepository)
	leads := new(MockLeadRepository)
	stubStats(analytics, leads)

	users := new(MockUserRepository)
	users.On("FindByUsername", mock.Anything, "admin").
		Return(&entity.User{ID: "u1", Username: "admin", Password: "s3cret"}, nil)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.AdminAuth(users))
		r.Get("/api/analytics/stats", statsHandler(analytics, leads).Stats)
	})

	req := httptest.NewRequest("GET", "/api/analytics/stats?startDate=2025-03-01&endDate=2025-03-31", nil)
	req.SetBasicAuth("admin", "wrong")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotContains(t, w.Body.String(), "data")
	analytics.AssertNotCalled(t, "CountPageViews", mock.Anything, mock.Anything, mock.Anything)
}
