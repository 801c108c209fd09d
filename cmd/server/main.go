// Command articles-api starts the articles REST server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/okarpov/articles-api/internal/cache"
	"github.com/okarpov/articles-api/internal/config"
	"github.com/okarpov/articles-api/internal/crypto"
	"github.com/okarpov/articles-api/internal/limiter"
	"github.com/okarpov/articles-api/internal/migrate"
	"github.com/okarpov/articles-api/internal/repository/postgres"
	"github.com/okarpov/articles-api/internal/server/httpapi"
	"github.com/okarpov/articles-api/internal/service"
	"github.com/okarpov/articles-api/internal/token"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, runs migrations, and serves the HTTP API until
// SIGINT or SIGTERM.
func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("load config", zap.Error(err))
	}

	logger := newLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr()),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.DatabaseDSN); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	// DB pool
	db, err := postgres.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres connect", zap.Error(err))
	}
	defer db.Close()

	// Redis is shared by the article cache and the login limiter.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer func() { _ = rdb.Close() }()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("redis ping", zap.Error(err))
	}

	// Repositories
	credRepo := postgres.NewCredentialRepo(db)
	articleRepo := postgres.NewArticleRepo(db)

	lim := limiter.NewRedis(rdb, cfg.LoginFailWindow, cfg.LoginMaxFails, cfg.LoginBlockFor)

	// Services
	issuer := token.NewIssuer([]byte(cfg.JWTSecret), cfg.AccessExpires, cfg.RefreshExpires)
	hasher := crypto.NewHasher(cfg.BcryptCost)
	authSvc := service.NewAuthService(credRepo, hasher, issuer, lim, logger)
	articleSvc := service.NewArticleService(articleRepo, cache.NewRedis(rdb), cfg.CacheTTL, logger)

	router := httpapi.NewRouter(
		httpapi.NewAuthHandler(authSvc, issuer),
		httpapi.NewArticleHandler(articleSvc),
		issuer,
		logger,
	)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr()))
		errCh <- srv.ListenAndServe()
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}

func newLogger(level string) *zap.Logger {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		lvl = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	logger, err := cfg.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}
