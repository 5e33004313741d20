package timetable

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"fitcoach/internal/api"
	"fitcoach/internal/interval"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
	now     func() time.Time
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
		now:     time.Now,
	}
}

// @Summary      Book a session
// @Description  Books a client with a coach inside one of the coach's availability slots
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body timetable.BookSessionRequest true "Booking"
// @Success      201 {object} timetable.TrainingSession
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      422 {object} api.ErrorResponse
// @Router       /sessions [post]
func (h *Handler) BookSession(c *gin.Context) {
	var req BookSessionRequest
	if !api.BindJSON(c, &req) {
		return
	}

	session, err := h.service.BookSession(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRange):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, ErrSlotNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Availability slot not found"})
		case errors.Is(err, ErrSessionConflict):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, ErrOutsideSlot), errors.Is(err, ErrNotAvailable):
			c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: err.Error()})
		default:
			api.RespondStorageError(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, session)
}

// @Summary      Get a session
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        sessionID path int true "Session ID"
// @Success      200 {object} timetable.TrainingSession
// @Failure      404 {object} api.ErrorResponse
// @Router       /sessions/{sessionID} [get]
func (h *Handler) GetSession(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}

	session, err := h.service.FindTrainingSession(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Session not found"})
			return
		}
		api.RespondStorageError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// @Summary      Cancel a session
// @Description  Deletes the session and gives its window back to the coach
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        sessionID path int true "Session ID"
// @Success      200 {object} api.MessageResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /sessions/{sessionID} [delete]
func (h *Handler) CancelSession(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}

	if err := h.service.DeleteSessionAndRestoreAvailability(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Session not found"})
			return
		}
		api.RespondStorageError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Session cancelled"})
}

// @Summary      Weekly timetable
// @Description  Sessions starting in the seven days from week (default: this week's Monday)
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        week query string false "First day (YYYY-MM-DD)"
// @Success      200 {array} timetable.WeeklySession
// @Failure      400 {object} api.ErrorResponse
// @Router       /timetable [get]
func (h *Handler) GetWeeklySessions(c *gin.Context) {
	week := mondayOf(interval.Naive(h.now()))
	if weekStr := c.Query("week"); weekStr != "" {
		parsed, err := time.Parse(dateLayout, weekStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "week must be YYYY-MM-DD"})
			return
		}
		week = parsed
	}

	sessions, err := h.service.GetWeeklySessions(c.Request.Context(), week)
	if err != nil {
		api.RespondStorageError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessions)
}

func mondayOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return interval.Day(t).AddDate(0, 0, -offset)
}

func sessionIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("sessionID"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid session ID"})
		return 0, false
	}
	return id, true
}
