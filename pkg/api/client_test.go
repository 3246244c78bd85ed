package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"ml-backend-settings/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
}

func newTestAPI(t *testing.T, handler http.HandlerFunc) (*Client, *[]recordedRequest) {
	t.Helper()
	var (
		mu       sync.Mutex
		requests []recordedRequest
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests = append(requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
		})
		mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client := NewClient(Options{
		BaseURL:   server.URL + "/",
		Token:     "secret",
		ProjectID: 4,
		Timeout:   5 * time.Second,
	})
	return client, &requests
}

func TestListMLBackends(t *testing.T) {
	client, requests := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 1, "title": "yolo", "url": "http://ml-1:9090", "state": "CO", "version": "2024-01-02T03:04:05Z"},
			{"id": 2, "title": "bert", "url": "http://ml-2:9090", "description": "ner", "state": "DI"}
		]`))
	})

	backends, err := client.ListMLBackends(context.Background())
	require.NoError(t, err)
	require.Len(t, backends, 2)

	assert.Equal(t, 1, backends[0].ID)
	assert.Equal(t, models.StateConnected, backends[0].State)
	require.NotNil(t, backends[0].Version)
	assert.Equal(t, 2024, backends[0].Version.Year())
	assert.Equal(t, "ner", backends[1].Description)
	assert.Nil(t, backends[1].Version)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/ml/", req.Path)
	assert.Equal(t, "project=4", req.Query)
	assert.Equal(t, "Token secret", req.Auth)
}

func TestListMLBackendsEmpty(t *testing.T) {
	client, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	backends, err := client.ListMLBackends(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, backends)
	assert.Empty(t, backends)
}

func TestActionsHitExpectedRoutes(t *testing.T) {
	tests := []struct {
		name   string
		call   func(*Client) error
		method string
		path   string
	}{
		{"delete", func(c *Client) error { return c.DeleteMLBackend(context.Background(), 9) }, http.MethodDelete, "/api/ml/9"},
		{"train", func(c *Client) error { return c.TrainMLBackend(context.Background(), 9) }, http.MethodPost, "/api/ml/9/train"},
		{"central train", func(c *Client) error { return c.TrainCentral(context.Background(), 9) }, http.MethodPost, "/api/ml/9/central-train"},
		{"central experiment", func(c *Client) error { return c.ExperimentCentral(context.Background(), 9) }, http.MethodPost, "/api/ml/9/experiment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, requests := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			require.NoError(t, tt.call(client))
			require.Len(t, *requests, 1)
			assert.Equal(t, tt.method, (*requests)[0].Method)
			assert.Equal(t, tt.path, (*requests)[0].Path)
			assert.Equal(t, "Token secret", (*requests)[0].Auth)
		})
	}
}

func TestActionReturnsAPIError(t *testing.T) {
	client, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"boom"}`))
	})

	err := client.TrainMLBackend(context.Background(), 3)
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "train ml backend 3")
	assert.Contains(t, apiErr.Error(), "boom")
}

func TestListReturnsAPIError(t *testing.T) {
	client, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := client.ListMLBackends(context.Background())
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

func TestActionTransportError(t *testing.T) {
	client := NewClient(Options{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})

	err := client.DeleteMLBackend(context.Background(), 5)
	require.Error(t, err)

	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr))
	assert.Contains(t, err.Error(), "delete ml backend 5")
}
