package dto

import (
	"time"

	"podcasthub/internal/microservices/http-api/models"
	"podcasthub/internal/microservices/http-api/service"
)

const timeLayout = time.RFC3339

// PodcastRequest is the create and edit payload.
type PodcastRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
}

type PodcastResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatorID   string    `json:"creator_id"`
	CreatedDate time.Time `json:"created_date"`
	// EpisodeCount is only filled on management listings.
	EpisodeCount *int64 `json:"episode_count,omitempty"`
}

func FromModelToPodcastResponse(p *models.Podcast) PodcastResponse {
	return PodcastResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		CreatorID:   p.CreatorID,
		CreatedDate: p.CreatedAt,
	}
}

func FromModelsToPodcastResponses(podcasts []models.Podcast) []PodcastResponse {
	out := make([]PodcastResponse, 0, len(podcasts))
	for i := range podcasts {
		out = append(out, FromModelToPodcastResponse(&podcasts[i]))
	}
	return out
}

// WithEpisodeCounts attaches counts; podcasts missing from counts get zero.
func WithEpisodeCounts(podcasts []PodcastResponse, counts map[int64]int64) []PodcastResponse {
	for i := range podcasts {
		n := counts[podcasts[i].ID]
		podcasts[i].EpisodeCount = &n
	}
	return podcasts
}

// PodcastWithEpisodesResponse is one entry of the browse listing.
type PodcastWithEpisodesResponse struct {
	PodcastResponse
	Episodes []EpisodeResponse `json:"episodes"`
}

func FromBrowse(list []service.PodcastWithEpisodes) []PodcastWithEpisodesResponse {
	out := make([]PodcastWithEpisodesResponse, 0, len(list))
	for i := range list {
		out = append(out, PodcastWithEpisodesResponse{
			PodcastResponse: FromModelToPodcastResponse(&list[i].Podcast),
			Episodes:        FromModelsToEpisodeResponses(list[i].Episodes),
		})
	}
	return out
}
