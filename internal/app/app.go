// Package app assembles stores and services from configuration. Both the API
// server and the admin CLI start from here.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"podcasthub/database"
	"podcasthub/internal/blobstore"
	"podcasthub/internal/config"
	"podcasthub/internal/microservices/http-api/handler"
	"podcasthub/internal/microservices/http-api/repository"
	"podcasthub/internal/microservices/http-api/service"
	"podcasthub/internal/policy"
	"podcasthub/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// NewLogger builds the process logger from LOG_FORMAT and LOG_LEVEL.
func NewLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

type App struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *gorm.DB
	SQL    *sql.DB
	Redis  *redis.Client

	Repos         seed.Repositories
	RefreshTokens repository.RefreshTokenRepository
	Services      handler.Services
}

// New connects to Postgres (and Redis when COMMENT_STORE=redis) and builds
// every repository and service.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	gdb, sqlDB, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Logger: logger, DB: gdb, SQL: sqlDB}

	comments := repository.NewCommentRepository(gdb)
	if cfg.CommentStore == config.CommentStoreRedis {
		rdb, err := repository.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Redis = rdb
		comments = repository.NewCommentRedisRepository(rdb)
	}
	logger.Info("comment_store_selected", "store", cfg.CommentStore)

	maxUpload, err := cfg.UploadMaxBytes()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Repos = seed.Repositories{
		Users:         repository.NewUserRepository(gdb),
		Podcasts:      repository.NewPodcastRepository(gdb),
		Episodes:      repository.NewEpisodeRepository(gdb),
		Subscriptions: repository.NewSubscriptionRepository(gdb),
		Comments:      comments,
	}
	a.RefreshTokens = repository.NewRefreshTokenRepository(gdb)

	pol := policy.New(policy.WithEditWindow(cfg.CommentEditWindow))
	audio := blobstore.NewSupabaseAudioStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.AudioBucket)
	r := a.Repos
	a.Services = handler.Services{
		Auth:          service.NewAuthService(r.Users, a.RefreshTokens, cfg),
		Podcasts:      service.NewPodcastService(r.Podcasts, r.Episodes, r.Comments, pol),
		Episodes:      service.NewEpisodeService(r.Episodes, r.Podcasts, r.Comments, audio, pol, maxUpload),
		Comments:      service.NewCommentService(r.Comments, r.Episodes, r.Podcasts, pol),
		Subscriptions: service.NewSubscriptionService(r.Subscriptions, r.Podcasts, pol),
		Users:         service.NewUserService(r.Users, a.RefreshTokens, r.Podcasts, r.Episodes, r.Subscriptions, r.Comments, pol),
	}
	return a, nil
}

// Ping checks Postgres and, if configured, Redis.
func (a *App) Ping(ctx context.Context) error {
	if err := a.SQL.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	if a.Redis != nil {
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warn("redis_close_failed", "error", err)
		}
	}
	if a.SQL != nil {
		if err := a.SQL.Close(); err != nil {
			a.Logger.Warn("database_close_failed", "error", err)
		}
	}
}
