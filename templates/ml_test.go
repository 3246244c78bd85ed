package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"ml-backend-settings/pkg/mlsettings"
	"ml-backend-settings/pkg/models"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func cardsFor(backends ...models.Backend) []*mlsettings.Card {
	fetch := func(context.Context) ([]models.Backend, error) { return backends, nil }
	return mlsettings.NewList(backends, fetch, nil, nil).WithLocation(time.UTC).Cards()
}

func TestBackendCardDisabledUnlessConnected(t *testing.T) {
	for _, state := range models.States {
		t.Run(string(state), func(t *testing.T) {
			html := render(t, BackendCard(cardsFor(models.Backend{ID: 3, Title: "yolo", State: state})[0]))

			disabled := strings.Count(html, " disabled>")
			if state == models.StateConnected {
				assert.Equal(t, 0, disabled)
				assert.Equal(t, 3, strings.Count(html, `class="ml__run"`))
			} else {
				assert.Equal(t, 3, disabled)
				assert.Equal(t, 3, strings.Count(html, `class="ml__run ml__run_disabled"`))
			}
			assert.Contains(t, html, `hx-post="/ml/3/train"`)
			assert.Contains(t, html, `hx-post="/ml/3/central-train"`)
			assert.Contains(t, html, `hx-post="/ml/3/experiment"`)
			assert.Contains(t, html, ">Start Training</button>")
			assert.Contains(t, html, ">Start Central Training</button>")
			assert.Contains(t, html, ">Start Experimenting</button>")
		})
	}
}

func TestBackendCardMetadata(t *testing.T) {
	version := &models.Version{Time: time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)}
	html := render(t, BackendCard(cardsFor(models.Backend{
		ID:          9,
		Title:       "<script>alert(1)</script>",
		URL:         "http://very-long-hostname.example.com:9090/predict",
		Description: "object detection",
		Version:     version,
		State:       models.StateConnected,
	})[0]))

	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, ">http://very-long-hos...90/predict</dd>")
	assert.Contains(t, html, "<dt>Description</dt><dd>object detection</dd>")
	assert.Contains(t, html, "March 05, 2024 ∙ 14:07:09")
	assert.Contains(t, html, `hx-get="/ml/9/edit"`)
	assert.Contains(t, html, `hx-get="/ml/9/delete"`)
}

func TestBackendCardWithoutOptionalFields(t *testing.T) {
	html := render(t, BackendCard(cardsFor(models.Backend{ID: 1, Title: "bare", URL: "http://ml:9090", State: models.StateDisconnected})[0]))

	assert.NotContains(t, html, "Description")
	assert.Contains(t, html, "<dt>Version</dt><dd>unknown</dd>")
	assert.Contains(t, html, ">http://ml:9090</dd>")
}

func TestBackendState(t *testing.T) {
	html := render(t, BackendState(mlsettings.Status(models.StateTraining)))
	assert.Contains(t, html, `class="ml__indicator ml__indicator_state_TR"`)
	assert.Contains(t, html, `<span class="ml__status-label">Training</span>`)

	html = render(t, BackendState(mlsettings.Status(models.State("??"))))
	assert.Contains(t, html, `class="ml__indicator ml__indicator_state_unknown"`)
	assert.Contains(t, html, `<span class="ml__status-label ml__status-label_unknown">Unknown</span>`)
}

func TestMLList(t *testing.T) {
	html := render(t, MLList(cardsFor(
		models.Backend{ID: 1, Title: "first", State: models.StateConnected},
		models.Backend{ID: 2, Title: "second", State: models.StateError},
	)))

	assert.True(t, strings.HasPrefix(html, `<div id="ml-list" class="ml">`))
	assert.Less(t, strings.Index(html, "first"), strings.Index(html, "second"))

	empty := render(t, MLList(nil))
	assert.Contains(t, empty, "No ML backends connected.")
}

func TestConfirmDelete(t *testing.T) {
	html := render(t, ConfirmDelete(4))

	assert.Contains(t, html, "<h3>Delete ML Backend</h3>")
	assert.Contains(t, html, "This action cannot be undone. Are you sure?")
	assert.Contains(t, html, `<button type="submit" class="destructive">OK</button>`)
	assert.Contains(t, html, `<input type="hidden" name="confirmed" value="true">`)

	// only the OK form talks to the server
	assert.Equal(t, 1, strings.Count(html, "hx-post="))
	assert.Contains(t, html, `<form class="modal__footer" hx-post="/ml/4/delete"`)
	assert.NotContains(t, html, "hx-get=")
	assert.NotContains(t, html, `"confirmed":"false"`)
}

func TestConfirmDeleteCancelStaysClientSide(t *testing.T) {
	html := render(t, ConfirmDelete(4))

	start := strings.Index(html, `<button type="button"`)
	require.GreaterOrEqual(t, start, 0)
	end := strings.Index(html[start:], "</button>")
	require.Greater(t, end, 0)
	cancel := html[start : start+end]

	assert.Contains(t, cancel, ">Cancel")
	assert.Contains(t, cancel, `onclick="closeModal()"`)
	assert.NotContains(t, cancel, "hx-")
	assert.NotContains(t, cancel, `type="submit"`)
}

func TestStaticAssets(t *testing.T) {
	script, err := Static.ReadFile("static/ml.js")
	require.NoError(t, err)
	assert.Contains(t, string(script), "function closeModal()")

	css, err := Static.ReadFile("static/ml.css")
	require.NoError(t, err)
	for _, state := range models.States {
		assert.Contains(t, string(css), ".ml__indicator_state_"+string(state))
	}
}

func TestSettingsPageAndLayout(t *testing.T) {
	html := render(t, SettingsPage(cardsFor(models.Backend{ID: 1, Title: "yolo"})))

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "<h1>Machine Learning</h1>")
	assert.Contains(t, html, `<div id="modal"></div>`)
	assert.Contains(t, html, `<script src="/static/ml.js"></script>`)
	assert.Contains(t, html, `<a href="/logout">Sign out</a>`)
	assert.Contains(t, html, "yolo")
}

func TestLoginAndErrorPages(t *testing.T) {
	login := render(t, LoginPage())
	assert.Contains(t, login, `action="/api/login"`)

	errPage := render(t, ErrorPage(502, "req-123"))
	assert.Contains(t, errPage, "Bad Gateway")
	assert.Contains(t, errPage, "req-123")
	assert.NotContains(t, render(t, ErrorPage(500, "")), "Request ID")
}
