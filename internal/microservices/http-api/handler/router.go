package handler

import (
	"context"
	"net/http"
	"time"

	"podcasthub/internal/microservices/http-api/middleware"
	"podcasthub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// Services bundles what the HTTP layer calls into.
type Services struct {
	Auth          service.AuthService
	Podcasts      service.PodcastService
	Episodes      service.EpisodeService
	Comments      service.CommentService
	Subscriptions service.SubscriptionService
	Users         service.UserService
}

type RouterOptions struct {
	AccessTokenTTL      time.Duration
	PopularDefaultCount int
	CORSOrigins         []string
	AuthRateLimit       float64
	AuthRateBurst       int
	// MaxMultipartMemory caps the in-memory part of multipart forms; the rest spills to disk.
	MaxMultipartMemory int64
	// Ping checks the backing stores for /check-conn.
	Ping func(ctx context.Context) error
}

// NewRouter wires every route. /api resolves the caller on each request;
// routes that need a signed-in user add RequireAuth themselves. /api/admin
// requires a token up front.
func NewRouter(s Services, opts RouterOptions) (*gin.Engine, *middleware.IPRateLimiter) {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(opts.CORSOrigins))
	if opts.MaxMultipartMemory > 0 {
		r.MaxMultipartMemory = opts.MaxMultipartMemory
	}

	r.GET("/check-conn", func(c *gin.Context) {
		if opts.Ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
			defer cancel()
			if err := opts.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"message": "database unreachable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"message": "API is alive and database connected"})
	})

	limiter := middleware.NewIPRateLimiter(opts.AuthRateLimit, opts.AuthRateBurst)
	authGroup := r.Group("/api/auth", middleware.RateLimit(limiter))
	NewAuthHandler(s.Auth, opts.AccessTokenTTL).RegisterRoutes(authGroup)

	api := r.Group("/api", middleware.OptionalAuth(s.Auth))
	NewPodcastHandler(s.Podcasts).RegisterRoutes(api.Group("/podcasts"))
	NewEpisodeHandler(s.Episodes, opts.PopularDefaultCount).RegisterRoutes(api.Group("/episodes"))
	NewCommentHandler(s.Comments).RegisterRoutes(api)
	NewSubscriptionHandler(s.Subscriptions).RegisterRoutes(api)
	users := NewUserHandler(s.Users, s.Podcasts, s.Episodes, s.Comments)
	users.RegisterRoutes(api)

	// admin routes never serve anonymous callers, so the token is mandatory
	users.RegisterAdminRoutes(r.Group("/api/admin", middleware.AuthMiddleware(s.Auth)))

	return r, limiter
}
