package availability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"fitcoach/internal/api"
	"fitcoach/internal/auth"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// @Summary      Add availability
// @Description  Coaches add their own windows, admins any coach's
// @Tags         availability
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        coachID path int true "Coach ID"
// @Param        request body availability.AddAvailabilityRequest true "Window"
// @Success      201 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      422 {object} api.ErrorResponse
// @Router       /coaches/{coachID}/availability [post]
func (h *Handler) AddAvailability(c *gin.Context) {
	coachID, ok := coachIDParam(c)
	if !ok {
		return
	}

	actor, _ := auth.ActorFrom(c)
	if !actor.CanManageCoach(coachID) {
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "Cannot change another coach's availability"})
		return
	}

	var req AddAvailabilityRequest
	if !api.BindJSON(c, &req) {
		return
	}

	err := h.service.AddAvailability(c.Request.Context(), coachID, req.Start, req.End, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRange):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, ErrInPast):
			c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: err.Error()})
		default:
			api.RespondStorageError(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, api.MessageResponse{Message: "Availability added"})
}

// @Summary      List availability
// @Description  Slots of a coach, optionally restricted to one day
// @Tags         availability
// @Produce      json
// @Security     BearerAuth
// @Param        coachID path int true "Coach ID"
// @Param        date query string false "Day (YYYY-MM-DD)"
// @Success      200 {array} availability.Slot
// @Failure      400 {object} api.ErrorResponse
// @Router       /coaches/{coachID}/availability [get]
func (h *Handler) ListAvailability(c *gin.Context) {
	coachID, ok := coachIDParam(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	var (
		slots []Slot
		err   error
	)
	if dateStr := c.Query("date"); dateStr != "" {
		date, parseErr := time.Parse(dateLayout, dateStr)
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "date must be YYYY-MM-DD"})
			return
		}
		slots, err = h.service.GetAvailabilityForDate(ctx, coachID, date)
	} else {
		slots, err = h.service.ListForCoach(ctx, coachID)
	}
	if err != nil {
		api.RespondStorageError(c, err)
		return
	}

	c.JSON(http.StatusOK, slots)
}

// @Summary      Merge availability
// @Description  Admin-only: re-normalize a coach's slots
// @Tags         availability,admin
// @Produce      json
// @Security     BearerAuth
// @Param        coachID path int true "Coach ID"
// @Success      200 {object} api.MessageResponse
// @Router       /coaches/{coachID}/availability/merge [post]
func (h *Handler) MergeAvailability(c *gin.Context) {
	coachID, ok := coachIDParam(c)
	if !ok {
		return
	}

	if err := h.service.MergeAvailability(c.Request.Context(), coachID); err != nil {
		api.RespondStorageError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Availability merged"})
}

func coachIDParam(c *gin.Context) (int, bool) {
	coachID, err := strconv.Atoi(c.Param("coachID"))
	if err != nil || coachID <= 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid coach ID"})
		return 0, false
	}
	return coachID, true
}
