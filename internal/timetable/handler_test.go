package timetable

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) GetWeeklySessions(ctx context.Context, weekStart time.Time) ([]WeeklySession, error) {
	args := m.Called(ctx, weekStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]WeeklySession), args.Error(1)
}

func (m *MockService) HasConflictingSession(ctx context.Context, coachID int, start, end time.Time) (bool, error) {
	args := m.Called(ctx, coachID, start, end)
	return args.Bool(0), args.Error(1)
}

func (m *MockService) AddTrainingSession(ctx context.Context, clientID, coachID int, start, end time.Time, title string) (*TrainingSession, error) {
	args := m.Called(ctx, clientID, coachID, start, end, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TrainingSession), args.Error(1)
}

func (m *MockService) FindTrainingSession(ctx context.Context, id int) (*TrainingSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TrainingSession), args.Error(1)
}

func (m *MockService) BookSession(ctx context.Context, req BookSessionRequest) (*TrainingSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TrainingSession), args.Error(1)
}

func (m *MockService) DeleteSessionAndRestoreAvailability(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func setupRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc)
	h.now = func() time.Time { return at(13, 15) } // Thursday

	router := gin.New()
	router.POST("/sessions", h.BookSession)
	router.GET("/sessions/:sessionID", h.GetSession)
	router.DELETE("/sessions/:sessionID", h.CancelSession)
	router.GET("/timetable", h.GetWeeklySessions)
	return router
}

const bookBody = `{"coach_id":3,"client_id":5,"slot_id":11,"title":"Legs","start":"2025-03-10T10:00:00Z","end":"2025-03-10T11:00:00Z"}`

func TestHandler_BookSession(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"booked", nil, http.StatusCreated},
		{"slot gone", ErrSlotNotFound, http.StatusNotFound},
		{"conflict", ErrSessionConflict, http.StatusConflict},
		{"outside slot", ErrOutsideSlot, http.StatusUnprocessableEntity},
		{"not available", ErrNotAvailable, http.StatusUnprocessableEntity},
		{"storage failure", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			if tt.err == nil {
				svc.On("BookSession", mock.Anything, bookReq()).Return(&TrainingSession{ID: 21}, nil)
			} else {
				svc.On("BookSession", mock.Anything, bookReq()).Return(nil, tt.err)
			}

			req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewBufferString(bookBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			setupRouter(svc).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_BookSession_MissingSlot(t *testing.T) {
	svc := new(MockService)

	req := httptest.NewRequest(http.MethodPost, "/sessions",
		bytes.NewBufferString(`{"coach_id":3,"client_id":5,"start":"2025-03-10T10:00:00Z","end":"2025-03-10T11:00:00Z"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "SlotID is required")
	svc.AssertNotCalled(t, "BookSession", mock.Anything, mock.Anything)
}

func TestHandler_CancelSession(t *testing.T) {
	t.Run("cancelled", func(t *testing.T) {
		svc := new(MockService)
		svc.On("DeleteSessionAndRestoreAvailability", mock.Anything, 21).Return(nil)

		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/sessions/21", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown session", func(t *testing.T) {
		svc := new(MockService)
		svc.On("DeleteSessionAndRestoreAvailability", mock.Anything, 21).Return(ErrSessionNotFound)

		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/sessions/21", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		w := httptest.NewRecorder()
		setupRouter(new(MockService)).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/sessions/x", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_GetSession(t *testing.T) {
	svc := new(MockService)
	svc.On("FindTrainingSession", mock.Anything, 21).Return(&TrainingSession{ID: 21, Title: "Legs"}, nil)
	svc.On("FindTrainingSession", mock.Anything, 22).Return(nil, ErrSessionNotFound)

	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/21", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"Legs"`)

	w = httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/22", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_GetWeeklySessions(t *testing.T) {
	t.Run("defaults to this week's monday", func(t *testing.T) {
		svc := new(MockService)
		svc.On("GetWeeklySessions", mock.Anything, at(10, 0)).Return([]WeeklySession{}, nil)

		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/timetable", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("explicit week", func(t *testing.T) {
		svc := new(MockService)
		svc.On("GetWeeklySessions", mock.Anything, at(17, 0)).Return([]WeeklySession{}, nil)

		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/timetable?week=2025-03-17", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("bad week", func(t *testing.T) {
		w := httptest.NewRecorder()
		setupRouter(new(MockService)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/timetable?week=next", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMondayOf(t *testing.T) {
	assert.Equal(t, at(10, 0), mondayOf(at(10, 8)))
	assert.Equal(t, at(10, 0), mondayOf(at(16, 23))) // Sunday
	assert.Equal(t, at(17, 0), mondayOf(at(17, 0)))
}
