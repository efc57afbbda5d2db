package handler

import (
	"context"
	"net/http"

	"podcasthub/internal/microservices/http-api/dto"
	"podcasthub/internal/microservices/http-api/middleware"
	"podcasthub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// RegisterRoutes registers comment-related routes under /api
func (h *CommentHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Episode comments
	episodeComments := router.Group("/episodes/:id/comments")
	{
		episodeComments.GET("", h.ListByEpisode)
		episodeComments.POST("", middleware.RequireAuth(), h.Create)
	}

	comments := router.Group("/comments", middleware.RequireAuth())
	{
		comments.GET("/mine", h.ListOnMyEpisodes) // comments on the caller's episodes
		comments.GET("/:id", h.GetByID)
		comments.PUT("/:id", h.Update)    // author only, inside the edit window
		comments.DELETE("/:id", h.Delete) // author, podcast owner or admin
	}
}

// ListByEpisode lists comments newest first
// GET /api/episodes/:id/comments
func (h *CommentHandler) ListByEpisode(c *gin.Context) {
	episodeID, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	views, err := h.commentService.ListForEpisode(ctx, middleware.PrincipalFrom(c), episodeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.FromViewsToCommentResponses(views)})
}

// Create creates a new comment on an episode
// POST /api/episodes/:id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	episodeID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateCommentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	view, err := h.commentService.Create(ctx, middleware.PrincipalFrom(c), episodeID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromViewToCommentResponse(view))
}

// GetByID returns a comment with the caller's edit state
// GET /api/comments/:id
func (h *CommentHandler) GetByID(c *gin.Context) {
	commentID, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	view, err := h.commentService.Get(ctx, middleware.PrincipalFrom(c), commentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromViewToCommentResponse(view))
}

// Update updates an existing comment
// PUT /api/comments/:id
func (h *CommentHandler) Update(c *gin.Context) {
	commentID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateCommentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	view, err := h.commentService.Update(ctx, middleware.PrincipalFrom(c), commentID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromViewToCommentResponse(view))
}

// Delete deletes a comment
// DELETE /api/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	commentID, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.commentService.Delete(ctx, middleware.PrincipalFrom(c), commentID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

// ListOnMyEpisodes
// GET /api/comments/mine
func (h *CommentHandler) ListOnMyEpisodes(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	views, err := h.commentService.OnMyEpisodes(ctx, middleware.PrincipalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.FromViewsToCommentResponses(views)})
}
