package api

import (
	"net/http"

	"fitcoach/internal/db"
	"fitcoach/internal/logger"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// RespondStorageError answers for a failure the caller could not classify.
// Lock timeouts become 409 so clients can retry; anything else is logged and
// reported as a generic 500.
func RespondStorageError(c *gin.Context, err error) {
	if db.IsLockNotAvailable(err) {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "Resource is busy, retry"})
		return
	}
	logger.Error("request failed", "error", err, "path", c.FullPath())
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "operation failed"})
}
