package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "blogapp/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"blogapp/internal/auth"
	"blogapp/internal/cache"
	"blogapp/internal/config"
	"blogapp/internal/db"
	"blogapp/internal/handler"
	"blogapp/internal/metrics"
	"blogapp/internal/repository"
	"blogapp/internal/router"
	"blogapp/internal/service"
)

// @title Blog API
// @version 1.0
// @description Blog API with user accounts, session login and owner-only post editing.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg := config.Load()
	if cfg.SessionSecret == "change-me" {
		logger.Warn("SESSION_SECRET is not set, using an insecure default")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := db.NewMySQL(ctx, cfg.MySQLDSN, cfg.DBConnectAttempts)
	if err != nil {
		return err
	}

	if cfg.ResetDB {
		logger.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			logger.Warn("failed to drop tables", "error", err)
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(ctx); err != nil {
		logger.Warn("redis unavailable, logins will fail until it is reachable", "addr", cfg.RedisAddr, "error", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.RegisterMetrics(registry)

	// Repositories
	userRepo := repository.NewUserRepository(gormDB)
	postRepo := repository.NewPostRepository(gormDB)

	// Auth components
	hasher := auth.NewBcryptHasher()
	tokens := auth.NewTokenService(cfg.SessionSecret)
	sessions := auth.NewRedisSessionStore(cacheClient)

	// Services
	userService := service.NewUserService(userRepo, hasher, cacheClient, cfg.DefaultAvatar)
	authService := service.NewAuthService(userRepo, userService, hasher, tokens, sessions, service.SessionConfig{
		TTL:         cfg.SessionTTL,
		RememberTTL: cfg.RememberTTL,
	}, logger)
	postService := service.NewPostService(postRepo, userRepo, cfg.PostsPerPage)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Deps{
		Logger:        logger,
		Gatherer:      registry,
		SessionSecret: tokens.Secret(),
		AuthService:   authService,
		AuthHandler:   handler.NewAuthHandler(authService, userService, cfg.CookieSecure, logger),
		PostHandler:   handler.NewPostHandler(postService),
	})

	logger.Info("swagger documentation available", "url", swaggerURL(cfg.SwaggerHost))

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.ServerPort
		logger.Info("starting server", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// swaggerURL builds the docs link. SwaggerHost may already carry a scheme.
func swaggerURL(host string) string {
	switch {
	case host == "":
		// docker-compose maps the container's 8080 to 5000
		return "http://localhost:5000/swagger/index.html"
	case strings.HasPrefix(host, "http://"), strings.HasPrefix(host, "https://"):
		return host + "/swagger/index.html"
	default:
		return "http://" + host + "/swagger/index.html"
	}
}
