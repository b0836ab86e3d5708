package handlers

import (
	"errors"
	"net/http"

	"frodi/internal/logger"
	"frodi/internal/models"
	"frodi/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AuthMiddleware guards a route group with the shared bearer secret.
func AuthMiddleware(tokens *services.TokenValidator) gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		if err := tokens.ValidateHeader(c.GetHeader("Authorization")); err != nil {
			detail := "Not authenticated"
			var authErr *services.AuthError
			if errors.As(err, &authErr) {
				detail = authErr.Error()
				logger.WithFields(logrus.Fields{
					"path":   c.Request.URL.Path,
					"reason": authErr.Reason,
				}).Warn("Rejected bearer token")
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Detail: detail})
			return
		}

		c.Next()
	})
}
