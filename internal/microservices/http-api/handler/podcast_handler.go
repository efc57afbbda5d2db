package handler

import (
	"context"
	"net/http"

	"podcasthub/internal/microservices/http-api/dto"
	"podcasthub/internal/microservices/http-api/middleware"
	"podcasthub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type PodcastHandler struct {
	podcastService service.PodcastService
}

func NewPodcastHandler(podcastService service.PodcastService) *PodcastHandler {
	return &PodcastHandler{podcastService: podcastService}
}

// RegisterRoutes mounts /podcasts on a group that already resolved the caller.
func (h *PodcastHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/mine", middleware.RequireAuth(), h.Managed)
	rg.GET("/:id", h.Get)
	rg.GET("/:id/episodes", h.Episodes)

	rg.POST("", middleware.RequireAuth(), h.Create)
	rg.PUT("/:id", middleware.RequireAuth(), h.Update)
	rg.DELETE("/:id", middleware.RequireAuth(), h.Delete)
}

func (h *PodcastHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	podcasts, err := h.podcastService.List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.FromModelsToPodcastResponses(podcasts)})
}

func (h *PodcastHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	podcast, err := h.podcastService.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToPodcastResponse(podcast))
}

func (h *PodcastHandler) Episodes(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	episodes, err := h.podcastService.Episodes(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.FromModelsToEpisodeResponses(episodes)})
}

// Managed lists the podcasts the caller can manage.
func (h *PodcastHandler) Managed(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	podcasts, err := h.podcastService.Managed(ctx, middleware.PrincipalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.FromModelsToPodcastResponses(podcasts)})
}

func (h *PodcastHandler) Create(c *gin.Context) {
	var req dto.PodcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	podcast, err := h.podcastService.Create(ctx, middleware.PrincipalFrom(c), service.PodcastInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromModelToPodcastResponse(podcast))
}

func (h *PodcastHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.PodcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	podcast, err := h.podcastService.Update(ctx, middleware.PrincipalFrom(c), id, service.PodcastInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToPodcastResponse(podcast))
}

func (h *PodcastHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.podcastService.Delete(ctx, middleware.PrincipalFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Podcast deleted successfully"})
}
