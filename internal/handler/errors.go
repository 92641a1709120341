package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/statustrack/backend/internal/client"
	"github.com/statustrack/backend/internal/service"
)

// writeServiceError translates the service error taxonomy into HTTP
// responses. Unrecognized errors are reported as a generic 500 so
// internals never leak to the client.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid input"})
	case errors.Is(err, service.ErrUnresolvedOwner):
		c.JSON(http.StatusBadRequest, gin.H{"error": "identity does not map to a local user"})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, client.ErrIdentityUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "identity provider unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
	}
}
