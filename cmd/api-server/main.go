package main

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

	"podcasthub/database"
	"podcasthub/internal/app"
	"podcasthub/internal/config"
	"podcasthub/internal/microservices/http-api/handler"
	"podcasthub/internal/microservices/http-api/middleware"
	"podcasthub/internal/microservices/http-api/repository"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const (
	limiterSweepInterval = 5 * time.Minute
	tokenCleanupInterval = time.Hour
	shutdownTimeout      = 10 * time.Second
	maxMultipartMemory   = 8 << 20
)

func main() {
	if err := run(); err != nil {
		slog.Error("server_exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := database.RunMigrations(a.SQL, logger); err != nil {
		return err
	}

	router, limiter := handler.NewRouter(a.Services, handler.RouterOptions{
		AccessTokenTTL:      cfg.AccessTokenTTL,
		PopularDefaultCount: cfg.PopularDefaultCount,
		CORSOrigins:         cfg.CORSOrigins,
		AuthRateLimit:       cfg.AuthRateLimit,
		AuthRateBurst:       cfg.AuthRateBurst,
		MaxMultipartMemory:  maxMultipartMemory,
		Ping:                a.Ping,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http_server_starting", "addr", srv.Addr, "env", cfg.GoEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("http_server_stopping")
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		sweepLimiter(gctx, limiter, logger)
		return nil
	})
	g.Go(func() error {
		purgeExpiredTokens(gctx, a.RefreshTokens, logger)
		return nil
	})
	return g.Wait()
}

func sweepLimiter(ctx context.Context, limiter *middleware.IPRateLimiter, logger *slog.Logger) {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.Sweep(); n > 0 {
				logger.Debug("rate_limiter_swept", "removed", n)
			}
		}
	}
}

func purgeExpiredTokens(ctx context.Context, tokens repository.RefreshTokenRepository, logger *slog.Logger) {
	ticker := time.NewTicker(tokenCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := tokens.DeleteExpired(ctx, time.Now())
			if err != nil {
				logger.Warn("refresh_token_cleanup_failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("refresh_tokens_purged", "count", n)
			}
		}
	}
}
