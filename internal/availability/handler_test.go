package availability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fitcoach/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) AddAvailability(ctx context.Context, coachID int, start, end time.Time, note string) error {
	return m.Called(ctx, coachID, start, end, note).Error(0)
}

func (m *MockService) IsWithinAvailability(ctx context.Context, coachID int, start, end time.Time) (bool, error) {
	args := m.Called(ctx, coachID, start, end)
	return args.Bool(0), args.Error(1)
}

func (m *MockService) HasOverlap(ctx context.Context, coachID int, start, end time.Time) (bool, error) {
	args := m.Called(ctx, coachID, start, end)
	return args.Bool(0), args.Error(1)
}

func (m *MockService) GetAvailabilityForDate(ctx context.Context, coachID int, date time.Time) ([]Slot, error) {
	args := m.Called(ctx, coachID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Slot), args.Error(1)
}

func (m *MockService) ListForCoach(ctx context.Context, coachID int) ([]Slot, error) {
	args := m.Called(ctx, coachID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Slot), args.Error(1)
}

func (m *MockService) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockService) ConsumeAvailability(ctx context.Context, coachID int, slot Slot, start, end time.Time) error {
	return m.Called(ctx, coachID, slot, start, end).Error(0)
}

func (m *MockService) RestoreAvailability(ctx context.Context, coachID int, start, end time.Time) error {
	return m.Called(ctx, coachID, start, end).Error(0)
}

func (m *MockService) MergeAvailability(ctx context.Context, coachID int) error {
	return m.Called(ctx, coachID).Error(0)
}

func setupRouter(svc Service, actor auth.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("actor", actor)
		c.Next()
	})
	router.POST("/coaches/:coachID/availability", h.AddAvailability)
	router.GET("/coaches/:coachID/availability", h.ListAvailability)
	router.POST("/coaches/:coachID/availability/merge", h.MergeAvailability)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_AddAvailability(t *testing.T) {
	coach := auth.Actor{UserID: 7, Role: auth.RoleCoach, CoachID: 3}
	body := `{"start":"2025-03-10T09:00:00Z","end":"2025-03-10T17:00:00Z","note":"Gym floor"}`

	t.Run("created", func(t *testing.T) {
		svc := new(MockService)
		svc.On("AddAvailability", mock.Anything, 3, at(9, 0), at(17, 0), "Gym floor").Return(nil)

		w := postJSON(setupRouter(svc, coach), "/coaches/3/availability", body)

		assert.Equal(t, http.StatusCreated, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("other coach forbidden", func(t *testing.T) {
		svc := new(MockService)

		w := postJSON(setupRouter(svc, coach), "/coaches/4/availability", body)

		assert.Equal(t, http.StatusForbidden, w.Code)
		svc.AssertNotCalled(t, "AddAvailability", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("end before start fails validation", func(t *testing.T) {
		svc := new(MockService)

		w := postJSON(setupRouter(svc, coach), "/coaches/3/availability",
			`{"start":"2025-03-10T17:00:00Z","end":"2025-03-10T09:00:00Z"}`)

		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp struct {
			Details []struct {
				Field string `json:"field"`
				Tag   string `json:"tag"`
			} `json:"details"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Details, 1)
		assert.Equal(t, "End", resp.Details[0].Field)
		assert.Equal(t, "gtfield", resp.Details[0].Tag)
	})

	t.Run("in the past", func(t *testing.T) {
		svc := new(MockService)
		svc.On("AddAvailability", mock.Anything, 3, at(9, 0), at(17, 0), "Gym floor").Return(ErrInPast)

		w := postJSON(setupRouter(svc, coach), "/coaches/3/availability", body)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("storage failure", func(t *testing.T) {
		svc := new(MockService)
		svc.On("AddAvailability", mock.Anything, 3, at(9, 0), at(17, 0), "Gym floor").Return(errors.New("boom"))

		w := postJSON(setupRouter(svc, coach), "/coaches/3/availability", body)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"operation failed"}`, w.Body.String())
	})
}

func TestHandler_ListAvailability(t *testing.T) {
	staff := auth.Actor{UserID: 2, Role: auth.RoleStaff}
	slots := []Slot{{ID: 1, CoachID: 3, Start: at(9, 0), End: at(10, 0), Note: DefaultNote}}

	t.Run("by date", func(t *testing.T) {
		svc := new(MockService)
		day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
		svc.On("GetAvailabilityForDate", mock.Anything, 3, day).Return(slots, nil)

		w := httptest.NewRecorder()
		setupRouter(svc, staff).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/coaches/3/availability?date=2025-03-10", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var got []Slot
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, slots, got)
	})

	t.Run("all slots", func(t *testing.T) {
		svc := new(MockService)
		svc.On("ListForCoach", mock.Anything, 3).Return(slots, nil)

		w := httptest.NewRecorder()
		setupRouter(svc, staff).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/coaches/3/availability", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("bad date", func(t *testing.T) {
		w := httptest.NewRecorder()
		setupRouter(new(MockService), staff).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/coaches/3/availability?date=10.03.2025", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad coach id", func(t *testing.T) {
		w := httptest.NewRecorder()
		setupRouter(new(MockService), staff).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/coaches/abc/availability", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_MergeAvailability(t *testing.T) {
	svc := new(MockService)
	svc.On("MergeAvailability", mock.Anything, 3).Return(nil)

	w := postJSON(setupRouter(svc, auth.Actor{Role: auth.RoleAdmin}), "/coaches/3/availability/merge", "")

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}
