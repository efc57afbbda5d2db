package handler

import (
	"context"
	"net/http"

	"podcasthub/internal/microservices/http-api/dto"
	"podcasthub/internal/microservices/http-api/middleware"
	"podcasthub/internal/microservices/http-api/service"
	"podcasthub/internal/policy"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the caller's profile and the admin area.
type UserHandler struct {
	userService    service.UserService
	podcastService service.PodcastService
	episodeService service.EpisodeService
	commentService service.CommentService
}

func NewUserHandler(
	userService service.UserService,
	podcastService service.PodcastService,
	episodeService service.EpisodeService,
	commentService service.CommentService,
) *UserHandler {
	return &UserHandler{
		userService:    userService,
		podcastService: podcastService,
		episodeService: episodeService,
		commentService: commentService,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/me", middleware.RequireAuth(), h.Profile)
}

// RegisterAdminRoutes expects a group that has already authenticated the caller.
func (h *UserHandler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/dashboard", h.Dashboard)
		admin.GET("/users", h.ListUsers)
		admin.DELETE("/users/:user_id", h.DeleteUser)
		admin.PUT("/users/:user_id/role", h.ChangeRole)
		admin.GET("/podcasts", h.Podcasts)
		admin.GET("/episodes", h.Episodes)
		admin.GET("/comments", h.Comments)
	}
}

func (h *UserHandler) Profile(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	profile, err := h.userService.Profile(ctx, middleware.PrincipalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromProfile(profile))
}

func (h *UserHandler) Dashboard(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	d, err := h.userService.Dashboard(ctx, middleware.PrincipalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromDashboard(d))
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	users, err := h.userService.List(ctx, middleware.PrincipalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.FromModelsToUserResponses(users)})
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.userService.Delete(ctx, middleware.PrincipalFrom(c), c.Param("user_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

func (h *UserHandler) ChangeRole(c *gin.Context) {
	var req dto.ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	role, err := policy.ParseRole(req.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	user, err := h.userService.ChangeRole(ctx, middleware.PrincipalFrom(c), c.Param("user_id"), role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToUserResponse(user))
}

// Podcasts lists every podcast with its episode count.
func (h *UserHandler) Podcasts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	p := middleware.PrincipalFrom(c)
	podcasts, err := h.podcastService.Managed(ctx, p)
	if err != nil {
		respondError(c, err)
		return
	}
	counts, err := h.podcastService.EpisodeCounts(ctx, p, podcasts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.WithEpisodeCounts(dto.FromModelsToPodcastResponses(podcasts), counts)})
}

func (h *UserHandler) Episodes(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	episodes, err := h.episodeService.Managed(ctx, middleware.PrincipalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.FromModelsToEpisodeResponses(episodes)})
}

// Comments is the moderation listing.
func (h *UserHandler) Comments(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	views, err := h.commentService.Moderation(ctx, middleware.PrincipalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.FromViewsToCommentResponses(views)})
}
