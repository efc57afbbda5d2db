package dto

import (
	"fmt"
	"mime/multipart"
	"time"

	"podcasthub/internal/microservices/http-api/models"
)

// EpisodeForm is the multipart form for creating or editing an episode.
// Audio is required on create and optional on edit.
type EpisodeForm struct {
	PodcastID       int64                 `form:"podcast_id"`
	Title           string                `form:"title" binding:"required,max=300"`
	ReleaseDate     time.Time             `form:"release_date" time_format:"2006-01-02"`
	DurationSeconds int64                 `form:"duration_seconds" binding:"gte=0"`
	Audio           *multipart.FileHeader `form:"audio"`
}

// SearchQuery: /episodes/search?q=&type=
type SearchQuery struct {
	Q    string `form:"q"`
	Type string `form:"type"`
}

// BrowseQuery filters the browse listing by release date, both ends inclusive.
type BrowseQuery struct {
	From time.Time `form:"from" time_format:"2006-01-02"`
	To   time.Time `form:"to" time_format:"2006-01-02"`
}

type EpisodeResponse struct {
	ID              int64            `json:"id"`
	PodcastID       int64            `json:"podcast_id"`
	Title           string           `json:"title"`
	ReleaseDate     time.Time        `json:"release_date"`
	DurationSeconds int64            `json:"duration_seconds"`
	Duration        string           `json:"duration"`
	PlayCount       int64            `json:"play_count"`
	ViewCount       int64            `json:"view_count"`
	AudioURL        string           `json:"audio_url"`
	Podcast         *PodcastResponse `json:"podcast,omitempty"`
}

func FromModelToEpisodeResponse(e *models.Episode) EpisodeResponse {
	resp := EpisodeResponse{
		ID:              e.ID,
		PodcastID:       e.PodcastID,
		Title:           e.Title,
		ReleaseDate:     e.ReleaseDate,
		DurationSeconds: e.DurationSeconds,
		Duration:        clock(e.Duration()),
		PlayCount:       e.PlayCount,
		ViewCount:       e.ViewCount,
		AudioURL:        e.AudioURL,
	}
	if e.Podcast != nil {
		p := FromModelToPodcastResponse(e.Podcast)
		resp.Podcast = &p
	}
	return resp
}

func FromModelsToEpisodeResponses(episodes []models.Episode) []EpisodeResponse {
	out := make([]EpisodeResponse, 0, len(episodes))
	for i := range episodes {
		out = append(out, FromModelToEpisodeResponse(&episodes[i]))
	}
	return out
}

// clock renders d as HH:MM:SS.
func clock(d time.Duration) string {
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total%3600/60, total%60)
}
