package visit

import (
	"errors"
	"net/http"
	"strconv"

	"fitcoach/internal/api"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// @Summary      Check a client in
// @Description  Records a visit and spends one entry of a visit-counted membership
// @Tags         visits
// @Produce      json
// @Security     BearerAuth
// @Param        clientID path int true "Client ID"
// @Success      201 {object} visit.Visit
// @Failure      400 {object} api.ErrorResponse
// @Failure      422 {object} api.ErrorResponse
// @Router       /clients/{clientID}/check-in [post]
func (h *Handler) CheckIn(c *gin.Context) {
	clientID, ok := clientIDParam(c)
	if !ok {
		return
	}

	v, err := h.service.CheckIn(c.Request.Context(), clientID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoActiveMembership), errors.Is(err, ErrVisitsExhausted):
			c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: err.Error()})
		default:
			api.RespondStorageError(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, v)
}

// @Summary      Count client visits
// @Tags         visits
// @Produce      json
// @Security     BearerAuth
// @Param        clientID path int true "Client ID"
// @Success      200 {object} visit.CountResponse
// @Router       /clients/{clientID}/visits/count [get]
func (h *Handler) CountVisits(c *gin.Context) {
	clientID, ok := clientIDParam(c)
	if !ok {
		return
	}

	count, err := h.service.CountVisitsForClient(c.Request.Context(), clientID)
	if err != nil {
		api.RespondStorageError(c, err)
		return
	}

	c.JSON(http.StatusOK, CountResponse{ClientID: clientID, Count: count})
}

// @Summary      Recent visits
// @Description  Newest first; filter matches client name or email, ignoring case
// @Tags         visits
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Maximum rows (default 50)"
// @Param        filter query string false "Name or email substring"
// @Success      200 {array} visit.Row
// @Failure      400 {object} api.ErrorResponse
// @Router       /visits [get]
func (h *Handler) ListVisits(c *gin.Context) {
	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "limit must be a number"})
			return
		}
	}

	rows, err := h.service.GetRecentVisitsForClient(c.Request.Context(), c.Query("filter"), limit)
	if err != nil {
		api.RespondStorageError(c, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

func clientIDParam(c *gin.Context) (int, bool) {
	clientID, err := strconv.Atoi(c.Param("clientID"))
	if err != nil || clientID <= 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid client ID"})
		return 0, false
	}
	return clientID, true
}
