// Package internal provides the main application initialization and
// runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/designsystemsinternational/react-admin-github/internal/api"
	"github.com/designsystemsinternational/react-admin-github/internal/authn"
	"github.com/designsystemsinternational/react-admin-github/internal/backend"
	"github.com/designsystemsinternational/react-admin-github/internal/mcpserver"
	"github.com/designsystemsinternational/react-admin-github/internal/resource"
)

// services bundles everything built from configuration.
type services struct {
	svc  *resource.Service
	auth *authn.Service
}

func buildServices(cfg *Config) (*services, error) {
	var store backend.Provider
	switch cfg.Backend.Kind {
	case BackendKindFS:
		if err := os.MkdirAll(cfg.Backend.Root, 0o755); err != nil {
			return nil, fmt.Errorf("create backend root: %w", err)
		}
		fs, err := backend.NewFS(cfg.Backend.Root)
		if err != nil {
			return nil, fmt.Errorf("init fs backend: %w", err)
		}
		store = fs
	case BackendKindHTTP:
		h, err := backend.NewHTTP(cfg.Backend.BaseURL, backend.WithAuthToken(cfg.Backend.Token))
		if err != nil {
			return nil, fmt.Errorf("init http backend: %w", err)
		}
		store = h
	default:
		return nil, fmt.Errorf("unknown backend kind: %s", cfg.Backend.Kind)
	}

	previewTTL, err := cfg.Preview.TTLDuration()
	if err != nil {
		return nil, err
	}
	tokenTTL, err := cfg.Auth.TokenTTLDuration()
	if err != nil {
		return nil, err
	}

	secret := []byte(cfg.Auth.Secret)
	svc := resource.NewService(store, resource.Options{
		Secret:     secret,
		ContentDir: cfg.Backend.ContentDir,
		PreviewTTL: previewTTL,
	})
	auth := authn.NewService(store, cfg.Auth.UsersDir, secret, tokenTTL)
	return &services{svc: svc, auth: auth}, nil
}

// Run starts the HTTP proxy with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("backend_kind", cfg.Backend.Kind),
		slog.String("content_dir", cfg.Backend.ContentDir),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svcs, err := buildServices(cfg)
	if err != nil {
		return err
	}

	proxyRouter := api.NewRouter(svcs.svc, svcs.auth, []byte(cfg.Auth.Secret))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", api.Healthz)
	r.Get("/health/ready", api.Healthz)

	r.Mount("/", proxyRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP starts the MCP stdio server exposing the resource operations as
// tools, without the HTTP layer.
func RunMCP(_ context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	// Logs go to stderr so stdout stays clean for the MCP transport.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))
	slog.SetDefault(logger)

	svcs, err := buildServices(app.config)
	if err != nil {
		return err
	}
	return mcpserver.New(svcs.svc).ServeStdio()
}
