package handlers

import (
	"context"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ml-backend-settings/pkg/auth"
	"ml-backend-settings/pkg/config"
	"ml-backend-settings/pkg/mlsettings"
	"ml-backend-settings/pkg/models"
	"ml-backend-settings/templates"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// BackendAPI is the upstream API the panel reads from and writes to
type BackendAPI interface {
	mlsettings.Actions
	ListMLBackends(ctx context.Context) ([]models.Backend, error)
}

// Handlers contains all HTTP handlers
type Handlers struct {
	config   *config.Config
	auth     *auth.Auth
	api      BackendAPI
	location *time.Location
}

// New creates a new Handlers instance
func New(cfg *config.Config, auth *auth.Auth, api BackendAPI, loc *time.Location) *Handlers {
	if loc == nil {
		loc = time.Local
	}
	return &Handlers{
		config:   cfg,
		auth:     auth,
		api:      api,
		location: loc,
	}
}

// Register mounts every panel route on r
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/healthz", h.Health)
	r.GET("/login", h.LoginPage)
	r.GET("/logout", h.Logout)
	r.POST("/api/login", h.Login)

	static, _ := fs.Sub(templates.Static, "static")
	r.StaticFS("/static", http.FS(static))

	r.GET("/", h.SettingsPage)

	ml := r.Group("/ml")
	{
		ml.GET("", h.ListBackends)
		ml.GET("/:id/edit", h.EditBackend)
		ml.GET("/:id/delete", h.ConfirmDelete)
		ml.POST("/:id/delete", h.DeleteBackend)
		ml.POST("/:id/train", h.StartTraining)
		ml.POST("/:id/central-train", h.StartCentralTraining)
		ml.POST("/:id/experiment", h.StartExperimenting)
	}
}

// render renders a templ component
func render(c *gin.Context, status int, template templ.Component) {
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := template.Render(c.Request.Context(), c.Writer); err != nil {
		c.String(http.StatusInternalServerError, "Template rendering error")
	}
}

// Health reports liveness
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "ml-settings"})
}

// ============== Auth Handlers ==============

// LoginPage renders the login form
func (h *Handlers) LoginPage(c *gin.Context) {
	render(c, http.StatusOK, templates.LoginPage())
}

// Login handles user login from the form or a JSON body
func (h *Handlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.auth.ValidateCredentials(req.Username, req.Password); err != nil {
		zerolog.Ctx(c.Request.Context()).Warn().Str("username", req.Username).Msg("login rejected")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.auth.GenerateToken(req.Username)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.auth.SetSession(c, token)

	if strings.HasPrefix(c.ContentType(), "application/json") {
		c.JSON(http.StatusOK, models.LoginResponse{Token: token, Message: "login successful"})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// Logout handles user logout
func (h *Handlers) Logout(c *gin.Context) {
	h.auth.ClearSession(c)
	c.Redirect(http.StatusTemporaryRedirect, "/login")
}

// ============== ML Backend Handlers ==============

// newList reads the current backends and wraps them in a list whose edit
// callback redirects the request to the configured edit page
func (h *Handlers) newList(c *gin.Context) (*mlsettings.List, error) {
	backends, err := h.api.ListMLBackends(c.Request.Context())
	if err != nil {
		return nil, err
	}
	onEdit := func(b models.Backend) error {
		return h.redirectToEdit(c, b)
	}
	list := mlsettings.NewList(backends, h.api.ListMLBackends, onEdit, h.api).WithLocation(h.location)
	return list, nil
}

// findCard loads the list and looks up the :id path parameter in it
func (h *Handlers) findCard(c *gin.Context) (*mlsettings.List, *mlsettings.Card, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return nil, nil, mlsettings.ErrNotFound
	}
	list, err := h.newList(c)
	if err != nil {
		return nil, nil, err
	}
	card, err := list.Find(id)
	if err != nil {
		return nil, nil, err
	}
	return list, card, nil
}

func (h *Handlers) cards(c *gin.Context, list *mlsettings.List) []*mlsettings.Card {
	cards := list.Cards()
	for _, card := range cards {
		if st := card.Status(); !st.Known {
			zerolog.Ctx(c.Request.Context()).Warn().
				Int("backend_id", card.Backend().ID).
				Str("state", string(card.Backend().State)).
				Msg("unrecognized ml backend state")
		}
	}
	return cards
}

// SettingsPage renders the full settings page
func (h *Handlers) SettingsPage(c *gin.Context) {
	list, err := h.newList(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	render(c, http.StatusOK, templates.SettingsPage(h.cards(c, list)))
}

// ListBackends renders the list fragment
func (h *Handlers) ListBackends(c *gin.Context) {
	list, err := h.newList(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.renderList(c, list)
}

func (h *Handlers) renderList(c *gin.Context, list *mlsettings.List) {
	render(c, http.StatusOK, templates.MLList(h.cards(c, list)))
}

// EditBackend hands the backend to the edit page
func (h *Handlers) EditBackend(c *gin.Context) {
	_, card, err := h.findCard(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := card.Edit(); err != nil {
		_ = c.Error(err)
	}
}

func (h *Handlers) redirectToEdit(c *gin.Context, b models.Backend) error {
	tmpl := h.config.EditURLTemplate()
	if tmpl == "" {
		return mlsettings.ErrEditUnavailable
	}
	target := strings.ReplaceAll(tmpl, "{id}", strconv.Itoa(b.ID))
	if c.GetHeader("HX-Request") != "" {
		c.Header("HX-Redirect", target)
		c.Status(http.StatusNoContent)
		return nil
	}
	c.Redirect(http.StatusSeeOther, target)
	return nil
}

// ConfirmDelete renders the delete confirmation modal. Opening it reads
// nothing upstream; the id is resolved when the deletion is confirmed.
func (h *Handlers) ConfirmDelete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		_ = c.Error(mlsettings.ErrNotFound)
		return
	}
	render(c, http.StatusOK, templates.ConfirmDelete(id))
}

// formConfirmer answers the delete dialog from the posted confirmed field
type formConfirmer struct {
	c *gin.Context
}

func (f formConfirmer) Confirm(_ context.Context, _ mlsettings.Dialog) bool {
	confirmed, _ := strconv.ParseBool(f.c.PostForm("confirmed"))
	return confirmed
}

// DeleteBackend deletes the backend when the modal was confirmed, then
// renders the refreshed list. An unconfirmed post does nothing.
func (h *Handlers) DeleteBackend(c *gin.Context) {
	confirm := formConfirmer{c: c}
	if !confirm.Confirm(c.Request.Context(), mlsettings.DeleteDialog) {
		c.Status(http.StatusNoContent)
		return
	}

	list, card, err := h.findCard(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	deleted, err := card.Delete(c.Request.Context(), confirm)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if deleted {
		zerolog.Ctx(c.Request.Context()).Info().Int("backend_id", card.Backend().ID).Msg("ml backend deleted")
	}
	h.renderList(c, list)
}

// StartTraining trains the backend, then renders the refreshed list
func (h *Handlers) StartTraining(c *gin.Context) {
	h.runAction(c, "train", (*mlsettings.Card).StartTraining)
}

// StartCentralTraining starts central training, then renders the refreshed list
func (h *Handlers) StartCentralTraining(c *gin.Context) {
	h.runAction(c, "central-train", (*mlsettings.Card).StartCentralTraining)
}

// StartExperimenting starts a central experiment, then renders the refreshed list
func (h *Handlers) StartExperimenting(c *gin.Context) {
	h.runAction(c, "central-experiment", (*mlsettings.Card).StartExperimenting)
}

func (h *Handlers) runAction(c *gin.Context, name string, action func(*mlsettings.Card, context.Context) error) {
	list, card, err := h.findCard(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := action(card, c.Request.Context()); err != nil {
		_ = c.Error(err)
		return
	}

	zerolog.Ctx(c.Request.Context()).Info().
		Str("action", name).
		Int("backend_id", card.Backend().ID).
		Msg("ml backend action issued")
	h.renderList(c, list)
}
