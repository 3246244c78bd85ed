package middleware

import (
	"errors"
	"net/http"

	"ml-backend-settings/pkg/api"
	"ml-backend-settings/pkg/mlsettings"
	"ml-backend-settings/templates"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ErrorBoundary turns the first error a handler recorded with c.Error
// into a generic error page. Handlers never render failures themselves.
func ErrorBoundary() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors[0].Err
		status := StatusFor(err)
		requestID := RequestIDFromContext(c)

		zerolog.Ctx(c.Request.Context()).Error().
			Err(err).
			Int("status", status).
			Msg("request failed")

		c.Status(status)
		c.Header("Content-Type", "text/html; charset=utf-8")
		if rerr := templates.ErrorPage(status, requestID).Render(c.Request.Context(), c.Writer); rerr != nil {
			c.String(http.StatusInternalServerError, "Template rendering error")
		}
	}
}

// StatusFor maps handler errors to HTTP status codes
func StatusFor(err error) int {
	var apiErr *api.Error
	switch {
	case errors.Is(err, mlsettings.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, mlsettings.ErrActionDisabled):
		return http.StatusConflict
	case errors.Is(err, mlsettings.ErrEditUnavailable):
		return http.StatusNotImplemented
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
