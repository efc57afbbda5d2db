package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"podcasthub/internal/microservices/http-api/models"
	"podcasthub/internal/microservices/http-api/repository"
	"podcasthub/internal/policy"
)

var ErrInvalidPodcast = errors.New("podcast title is required")

type PodcastInput struct {
	Title       string
	Description string
}

// PodcastWithEpisodes is one entry of the browse listing.
type PodcastWithEpisodes struct {
	models.Podcast
	Episodes []models.Episode
}

type PodcastService interface {
	List(ctx context.Context) ([]models.Podcast, error)
	Get(ctx context.Context, id int64) (*models.Podcast, error)
	Episodes(ctx context.Context, id int64) ([]models.Episode, error)
	// Managed lists every podcast for an Admin and the caller's own for a Podcaster.
	Managed(ctx context.Context, p policy.Principal) ([]models.Podcast, error)
	// EpisodeCounts maps podcast id to number of episodes, Admin only.
	EpisodeCounts(ctx context.Context, p policy.Principal, podcasts []models.Podcast) (map[int64]int64, error)
	Create(ctx context.Context, p policy.Principal, in PodcastInput) (*models.Podcast, error)
	Update(ctx context.Context, p policy.Principal, id int64, in PodcastInput) (*models.Podcast, error)
	Delete(ctx context.Context, p policy.Principal, id int64) error
}

type podcastService struct {
	podcasts repository.PodcastRepository
	episodes repository.EpisodeRepository
	comments repository.CommentRepository
	policy   *policy.Policy
	now      func() time.Time
}

func NewPodcastService(
	podcasts repository.PodcastRepository,
	episodes repository.EpisodeRepository,
	comments repository.CommentRepository,
	pol *policy.Policy,
) PodcastService {
	return &podcastService{
		podcasts: podcasts,
		episodes: episodes,
		comments: comments,
		policy:   pol,
		now:      time.Now,
	}
}

func (in PodcastInput) normalize() (PodcastInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" || len(in.Title) > 200 {
		return in, ErrInvalidPodcast
	}
	return in, nil
}

// load resolves id into a podcast, or nil when it does not exist.
func (s *podcastService) load(ctx context.Context, id int64) (*models.Podcast, error) {
	podcast, err := s.podcasts.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return podcast, err
}

func (s *podcastService) List(ctx context.Context) ([]models.Podcast, error) {
	return s.podcasts.List(ctx)
}

func (s *podcastService) Get(ctx context.Context, id int64) (*models.Podcast, error) {
	podcast, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Podcast(policy.Anonymous(), policy.ActionRead, podcast.Ref()).Err(); err != nil {
		return nil, err
	}
	return podcast, nil
}

func (s *podcastService) Episodes(ctx context.Context, id int64) ([]models.Episode, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.episodes.ListByPodcast(ctx, id)
}

func (s *podcastService) Managed(ctx context.Context, p policy.Principal) ([]models.Podcast, error) {
	if err := s.policy.RequireCreator(p).Err(); err != nil {
		return nil, err
	}
	switch p.Role {
	case policy.RoleAdmin:
		return s.podcasts.List(ctx)
	default:
		return s.podcasts.ListByCreator(ctx, p.ID)
	}
}

func (s *podcastService) EpisodeCounts(ctx context.Context, p policy.Principal, podcasts []models.Podcast) (map[int64]int64, error) {
	if err := s.policy.RequireCreator(p).Err(); err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(podcasts))
	for _, podcast := range podcasts {
		ids = append(ids, podcast.ID)
	}
	return s.podcasts.EpisodeCounts(ctx, ids)
}

func (s *podcastService) Create(ctx context.Context, p policy.Principal, in PodcastInput) (*models.Podcast, error) {
	if err := s.policy.Podcast(p, policy.ActionCreate, nil).Err(); err != nil {
		return nil, err
	}
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	podcast := &models.Podcast{
		Title:       in.Title,
		Description: in.Description,
		CreatorID:   p.ID,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.podcasts.Create(ctx, podcast); err != nil {
		return nil, err
	}
	slog.Info("podcast_created", "podcast_id", podcast.ID, "creator_id", podcast.CreatorID)
	return podcast, nil
}

// Update changes title and description. Creator and creation date stay as stored.
func (s *podcastService) Update(ctx context.Context, p policy.Principal, id int64, in PodcastInput) (*models.Podcast, error) {
	if !p.Authenticated() {
		return nil, s.policy.Podcast(p, policy.ActionUpdate, nil).Err()
	}
	podcast, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Podcast(p, policy.ActionUpdate, podcast.Ref()).Err(); err != nil {
		return nil, err
	}
	in, err = in.normalize()
	if err != nil {
		return nil, err
	}

	podcast.Title = in.Title
	podcast.Description = in.Description
	if err := s.podcasts.Update(ctx, podcast); err != nil {
		return nil, err
	}
	slog.Info("podcast_updated", "podcast_id", podcast.ID, "by", p.ID)
	return podcast, nil
}

// Delete removes the podcast, its episodes, their comments and its subscriptions.
func (s *podcastService) Delete(ctx context.Context, p policy.Principal, id int64) error {
	if !p.Authenticated() {
		return s.policy.Podcast(p, policy.ActionDelete, nil).Err()
	}
	podcast, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.policy.Podcast(p, policy.ActionDelete, podcast.Ref()).Err(); err != nil {
		return err
	}

	episodes, err := s.episodes.ListByPodcast(ctx, id)
	if err != nil {
		return err
	}
	episodeIDs := make([]int64, 0, len(episodes))
	for _, e := range episodes {
		episodeIDs = append(episodeIDs, e.ID)
	}
	// The relational delete drops comments in the same transaction. A separate
	// comment store is cleaned afterwards; a failure there only leaves comments
	// on episodes that no longer exist.
	if err := s.podcasts.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.comments.DeleteByEpisodes(ctx, episodeIDs); err != nil {
		slog.Warn("podcast_comment_cleanup_failed", "podcast_id", id, "error", err)
	}
	slog.Info("podcast_deleted", "podcast_id", id, "by", p.ID, "episodes", len(episodeIDs))
	return nil
}
