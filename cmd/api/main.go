// Package main is the entry point for the blog web server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/config"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/handler"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/middleware"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/repo"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/service"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/session"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/view"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// Cancelled on SIGINT/SIGTERM; background workers stop with it.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database ---------------------------------------------------------
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// goose speaks database/sql; borrow a *sql.DB view of the same pool.
	sqlDB := stdlib.OpenDBFromPool(pool)
	applied, err := migrations.Up(ctx, sqlDB)
	_ = sqlDB.Close()
	if err != nil {
		slog.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("migrations applied", "versions", applied)

	// --- Sessions ---------------------------------------------------------
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.Error("invalid REDIS_URL", "error", err)
		os.Exit(1)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	sessions := session.NewManager(session.NewRedisStore(rdb), cfg.SessionTTL, cfg.CookieSecure, logger)

	// --- Services ---------------------------------------------------------
	repos := repo.NewRepos(pool)
	validate := service.NewValidator(cfg.BannedWords)

	views, err := view.New()
	if err != nil {
		slog.Error("failed to parse templates", "error", err)
		os.Exit(1)
	}

	srv := handler.NewServer(handler.Deps{
		Posts:    service.NewPostService(repos, repo.NewTransactor(pool), validate, logger),
		Auth:     service.NewAuthService(repos.Users, validate, logger),
		Tags:     service.NewTagService(repos.Tags),
		Export:   service.NewExportService(repos.Posts, repos.Tags, repos.Comments),
		Sessions: sessions,
		Views:    views,
		Log:      logger,
		Debug:    cfg.Debug,
	})
	if cfg.Debug {
		slog.Warn("debug mode: dev login and /debug/ endpoints are enabled")
	}

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → body limit. SlogLogger sits outside Recoverer so a panic is
	// still logged as a 500.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	limiter := middleware.NewRateLimiter(ctx, cfg.LoginRatePerMin)
	r.Mount("/", srv.Routes(limiter.Handler))

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	// In-flight requests get up to 15 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
