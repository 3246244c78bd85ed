package middleware

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ml-backend-settings/pkg/api"
	"ml-backend-settings/pkg/mlsettings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(buf *bytes.Buffer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), RequestLogger(zerolog.New(buf)), ErrorBoundary())
	return r
}

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	var buf bytes.Buffer
	r := newRouter(&buf)
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, RequestIDFromContext(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	id := w.Header().Get("X-Request-Id")
	require.NotEmpty(t, id)
	assert.Equal(t, id, w.Body.String())
	assert.Contains(t, buf.String(), `"request_id":"`+id+`"`)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-Id", "given")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "given", w.Header().Get("X-Request-Id"))
}

func TestErrorBoundaryRendersGenericPage(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", fmt.Errorf("lookup: %w", mlsettings.ErrNotFound), http.StatusNotFound},
		{"disabled", mlsettings.ErrActionDisabled, http.StatusConflict},
		{"edit unavailable", mlsettings.ErrEditUnavailable, http.StatusNotImplemented},
		{"upstream", &api.Error{Op: "train ml backend 1", StatusCode: 500, Body: "secret detail"}, http.StatusBadGateway},
		{"other", errors.New("anything"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			r := newRouter(&buf)
			r.POST("/fail", func(c *gin.Context) {
				_ = c.Error(tt.err)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/fail", nil))

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), "Something went wrong")
			assert.NotContains(t, w.Body.String(), "secret detail")
			assert.Contains(t, w.Body.String(), w.Header().Get("X-Request-Id"))
			assert.Contains(t, buf.String(), "request failed")
		})
	}
}

func TestErrorBoundaryLeavesSuccessAlone(t *testing.T) {
	var buf bytes.Buffer
	r := newRouter(&buf)
	r.GET("/ok", func(c *gin.Context) {
		c.String(http.StatusOK, "fine")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fine", w.Body.String())
}
