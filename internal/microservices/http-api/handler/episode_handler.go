package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"podcasthub/internal/microservices/http-api/dto"
	"podcasthub/internal/microservices/http-api/middleware"
	"podcasthub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type EpisodeHandler struct {
	episodeService      service.EpisodeService
	popularDefaultCount int
}

func NewEpisodeHandler(episodeService service.EpisodeService, popularDefaultCount int) *EpisodeHandler {
	return &EpisodeHandler{episodeService: episodeService, popularDefaultCount: popularDefaultCount}
}

// RegisterRoutes mounts /episodes on a group that already resolved the caller.
func (h *EpisodeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Browse)
	rg.GET("/search", h.Search)
	rg.GET("/popular", h.Popular)
	rg.GET("/mine", middleware.RequireAuth(), h.Managed)
	rg.GET("/:id", h.Details)
	rg.POST("/:id/play", h.Play)
	rg.POST("/:id/view", h.View)

	rg.POST("", middleware.RequireAuth(), h.Create)
	rg.PUT("/:id", middleware.RequireAuth(), h.Update)
	rg.DELETE("/:id", middleware.RequireAuth(), h.Delete)
}

// Browse lists podcasts with their episodes, optionally limited to a release date range.
func (h *EpisodeHandler) Browse(c *gin.Context) {
	var q dto.BrowseQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dates must be formatted as YYYY-MM-DD"})
		return
	}
	to := q.To
	if !to.IsZero() {
		// the whole "to" day is included
		to = to.Add(24*time.Hour - time.Nanosecond)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	list, err := h.episodeService.Browse(ctx, q.From, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.FromBrowse(list)})
}

func (h *EpisodeHandler) Search(c *gin.Context) {
	var q dto.SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	episodes, err := h.episodeService.Search(ctx, q.Q, service.SearchType(q.Type))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.FromModelsToEpisodeResponses(episodes), "query": q.Q})
}

func (h *EpisodeHandler) Popular(c *gin.Context) {
	count := h.popularDefaultCount
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "count must be between 1 and 100"})
			return
		}
		count = n
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	episodes, err := h.episodeService.Popular(ctx, count)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.FromModelsToEpisodeResponses(episodes)})
}

// Details returns one episode and counts the view.
func (h *EpisodeHandler) Details(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	episode, err := h.episodeService.Details(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToEpisodeResponse(episode))
}

func (h *EpisodeHandler) Play(c *gin.Context) {
	h.count(c, h.episodeService.RecordPlay)
}

func (h *EpisodeHandler) View(c *gin.Context) {
	h.count(c, h.episodeService.RecordView)
}

func (h *EpisodeHandler) count(c *gin.Context, record func(context.Context, int64) error) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := record(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *EpisodeHandler) Managed(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	episodes, err := h.episodeService.Managed(ctx, middleware.PrincipalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.FromModelsToEpisodeResponses(episodes)})
}

// Create accepts a multipart form with an "audio" file part.
func (h *EpisodeHandler) Create(c *gin.Context) {
	var form dto.EpisodeForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if form.PodcastID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "podcast_id is required"})
		return
	}
	if form.Audio == nil {
		respondError(c, service.ErrAudioRequired)
		return
	}
	h.save(c, http.StatusCreated, func(ctx context.Context, in service.EpisodeInput) (dto.EpisodeResponse, error) {
		episode, err := h.episodeService.Create(ctx, middleware.PrincipalFrom(c), in)
		if err != nil {
			return dto.EpisodeResponse{}, err
		}
		return dto.FromModelToEpisodeResponse(episode), nil
	}, form)
}

// Update accepts the same form; the audio part is optional.
func (h *EpisodeHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var form dto.EpisodeForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.save(c, http.StatusOK, func(ctx context.Context, in service.EpisodeInput) (dto.EpisodeResponse, error) {
		episode, err := h.episodeService.Update(ctx, middleware.PrincipalFrom(c), id, in)
		if err != nil {
			return dto.EpisodeResponse{}, err
		}
		return dto.FromModelToEpisodeResponse(episode), nil
	}, form)
}

func (h *EpisodeHandler) save(
	c *gin.Context,
	status int,
	write func(context.Context, service.EpisodeInput) (dto.EpisodeResponse, error),
	form dto.EpisodeForm,
) {
	in := service.EpisodeInput{
		PodcastID:       form.PodcastID,
		Title:           form.Title,
		ReleaseDate:     form.ReleaseDate,
		DurationSeconds: form.DurationSeconds,
	}
	if form.Audio != nil {
		f, err := form.Audio.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read audio file"})
			return
		}
		defer f.Close()
		in.Audio = &service.AudioUpload{
			Filename:    form.Audio.Filename,
			ContentType: form.Audio.Header.Get("Content-Type"),
			Body:        f,
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), uploadTimeout)
	defer cancel()

	resp, err := write(ctx, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, resp)
}

func (h *EpisodeHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.episodeService.Delete(ctx, middleware.PrincipalFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Episode deleted successfully"})
}
