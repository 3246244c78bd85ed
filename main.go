package main

import (
	"flag"
	"fmt"
	"net/http"
	"time"

	"ml-backend-settings/pkg/api"
	"ml-backend-settings/pkg/auth"
	"ml-backend-settings/pkg/config"
	"ml-backend-settings/pkg/handlers"
	"ml-backend-settings/pkg/logger"
	"ml-backend-settings/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("Failed to load config")
	}

	l := logger.Init(cfg.LogLevel, cfg.LogFormat)

	loc, err := cfg.Location()
	if err != nil {
		l.Fatal().Err(err).Str("timezone", cfg.Panel.Timezone).Msg("Invalid panel timezone")
	}

	// Initialize auth
	authService := auth.New(&cfg.Auth)

	// Initialize the upstream ML backend API client
	mlAPI := api.NewClient(api.Options{
		BaseURL:   cfg.API.BaseURL,
		Token:     cfg.API.Token,
		ProjectID: cfg.API.ProjectID,
		Timeout:   cfg.API.Timeout,
	})

	// Initialize handlers
	h := handlers.New(cfg, authService, mlAPI, loc)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(l))
	r.Use(middleware.ErrorBoundary())
	r.Use(authService.Middleware())

	h.Register(r)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	l.Info().
		Str("address", addr).
		Str("ml_api", cfg.API.BaseURL).
		Int("project_id", cfg.API.ProjectID).
		Msg("Starting ML backend settings panel")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		l.Fatal().Err(err).Msg("Failed to start server")
	}
}
