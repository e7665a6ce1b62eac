package middleware

import (
	"errors"
	"net/http"

	"quest-server/internal/models"

	"github.com/gin-gonic/gin"
)

// abortWithError маппит ошибки аутентификации/авторизации на HTTP-статусы.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusUnauthorized
	msg := "Unauthorized: invalid token"

	switch {
	case errors.Is(err, models.ErrTokenExpired):
		msg = "Unauthorized: token expired"
	case errors.Is(err, models.ErrTokenMalformed):
		msg = "Unauthorized: malformed token"
	case errors.Is(err, models.ErrForbidden):
		status = http.StatusForbidden
		msg = "Forbidden: insufficient permissions"
	}

	c.AbortWithStatusJSON(status, models.ErrorResponse{Error: msg})
}
