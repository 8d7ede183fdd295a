package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"rental-portal/internal/apperr"
	"rental-portal/internal/models"

	"github.com/gin-gonic/gin"
)

// actorFrom reads the acting user from request headers. Authentication is
// handled upstream of this service; these headers are set by the gateway.
func actorFrom(c *gin.Context) (id uint, role string) {
	if v, err := strconv.ParseUint(c.GetHeader("X-User-ID"), 10, 32); err == nil {
		id = uint(v)
	}
	role = c.GetHeader("X-User-Role")
	if role == "" {
		role = models.ActorRoleManager
	}
	return id, role
}

// respondError maps application error kinds to HTTP statuses.
func respondError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Kind {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindAuthorization:
		status = http.StatusForbidden
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindInvalidState:
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, gin.H{"error": appErr.Message})
}

// pathID parses a numeric path parameter.
func pathID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || v == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(v), true
}
