package membership

import (
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

// @Summary      Client membership
// @Description  Current membership label, visits left and whether the client may check in today
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        clientID path int true "Client ID"
// @Success      200 {object} membership.Summary
// @Failure      400 {object} api.ErrorResponse
// @Router       /clients/{clientID}/membership [get]
func (h *Handler) GetMembership(c *gin.Context) {
	clientID, err := strconv.Atoi(c.Param("clientID"))
	if err != nil || clientID <= 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid client ID"})
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), clientID)
	if err != nil {
		api.RespondStorageError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
