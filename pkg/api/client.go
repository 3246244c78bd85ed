package api

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ml-backend-settings/pkg/models"

	"github.com/go-resty/resty/v2"
)

const userAgent = "ml-settings-panel/1.0"

// Error is a non-2xx answer from the ML backend API
type Error struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("%s: ml api returned status %d: %s", e.Op, e.StatusCode, body)
}

// Client talks to the labeling API that owns the ML backends of a project
type Client struct {
	httpClient *resty.Client
	projectID  int
}

// Options configures a Client
type Options struct {
	BaseURL   string
	Token     string
	ProjectID int
	Timeout   time.Duration
}

// NewClient creates a new ML backend API client
func NewClient(opts Options) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if opts.Token != "" {
		client.SetAuthScheme("Token").SetAuthToken(opts.Token)
	}

	return &Client{
		httpClient: client,
		projectID:  opts.ProjectID,
	}
}

// ListMLBackends returns the ML backends of the configured project
func (c *Client) ListMLBackends(ctx context.Context) ([]models.Backend, error) {
	var backends []models.Backend
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("project", strconv.Itoa(c.projectID)).
		SetResult(&backends).
		Get("/api/ml/")
	if err != nil {
		return nil, fmt.Errorf("list ml backends: %w", err)
	}
	if resp.IsError() {
		return nil, &Error{Op: "list ml backends", StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	if backends == nil {
		backends = []models.Backend{}
	}
	return backends, nil
}

// DeleteMLBackend removes the backend
func (c *Client) DeleteMLBackend(ctx context.Context, id int) error {
	return c.call(ctx, "delete ml backend", resty.MethodDelete, "/api/ml/{pk}", id)
}

// TrainMLBackend schedules training on the backend itself
func (c *Client) TrainMLBackend(ctx context.Context, id int) error {
	return c.call(ctx, "train ml backend", resty.MethodPost, "/api/ml/{pk}/train", id)
}

// TrainCentral starts a central training job for the backend
func (c *Client) TrainCentral(ctx context.Context, id int) error {
	return c.call(ctx, "central train", resty.MethodPost, "/api/ml/{pk}/central-train", id)
}

// ExperimentCentral starts a central experiment for the backend
func (c *Client) ExperimentCentral(ctx context.Context, id int) error {
	return c.call(ctx, "central experiment", resty.MethodPost, "/api/ml/{pk}/experiment", id)
}

func (c *Client) call(ctx context.Context, op, method, path string, id int) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("pk", strconv.Itoa(id)).
		Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %d: %w", op, id, err)
	}
	if resp.IsError() {
		return &Error{Op: fmt.Sprintf("%s %d", op, id), StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return nil
}
