package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"podcasthub/internal/blobstore"
	"podcasthub/internal/microservices/http-api/models"
	"podcasthub/internal/microservices/http-api/repository"
	"podcasthub/internal/policy"
)

var (
	ErrInvalidEpisode    = errors.New("episode title is required")
	ErrAudioRequired     = errors.New("an audio file is required")
	ErrAudioTooLarge     = errors.New("audio file exceeds the upload limit")
	ErrAudioUpload       = errors.New("audio upload failed")
	ErrInvalidSearchType = errors.New("search type must be one of all, topic, host")
	ErrInvalidDateRange  = errors.New("from must not be after to")
	ErrNegativeDuration  = errors.New("duration must not be negative")
)

const (
	DefaultPopularCount   = 10
	maxEpisodeTitleLength = 300
)

// SearchType selects which fields a search matches.
type SearchType string

const (
	SearchAll   SearchType = "all"
	SearchTopic SearchType = "topic"
	SearchHost  SearchType = "host"
)

// AudioUpload is an audio file received with a create or edit request.
type AudioUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type EpisodeInput struct {
	PodcastID       int64
	Title           string
	ReleaseDate     time.Time
	DurationSeconds int64
	Audio           *AudioUpload
}

type EpisodeService interface {
	Browse(ctx context.Context, from, to time.Time) ([]PodcastWithEpisodes, error)
	Search(ctx context.Context, term string, kind SearchType) ([]models.Episode, error)
	Popular(ctx context.Context, n int) ([]models.Episode, error)
	// Details returns the episode and counts the view.
	Details(ctx context.Context, id int64) (*models.Episode, error)
	Get(ctx context.Context, id int64) (*models.Episode, error)
	RecordView(ctx context.Context, id int64) error
	RecordPlay(ctx context.Context, id int64) error
	Managed(ctx context.Context, p policy.Principal) ([]models.Episode, error)
	Create(ctx context.Context, p policy.Principal, in EpisodeInput) (*models.Episode, error)
	Update(ctx context.Context, p policy.Principal, id int64, in EpisodeInput) (*models.Episode, error)
	Delete(ctx context.Context, p policy.Principal, id int64) error
}

type episodeService struct {
	episodes       repository.EpisodeRepository
	podcasts       repository.PodcastRepository
	comments       repository.CommentRepository
	audio          blobstore.AudioStore
	policy         *policy.Policy
	maxUploadBytes int64
	now            func() time.Time
}

func NewEpisodeService(
	episodes repository.EpisodeRepository,
	podcasts repository.PodcastRepository,
	comments repository.CommentRepository,
	audio blobstore.AudioStore,
	pol *policy.Policy,
	maxUploadBytes int64,
) EpisodeService {
	return &episodeService{
		episodes:       episodes,
		podcasts:       podcasts,
		comments:       comments,
		audio:          audio,
		policy:         pol,
		maxUploadBytes: maxUploadBytes,
		now:            time.Now,
	}
}

func (s *episodeService) loadEpisode(ctx context.Context, id int64) (*models.Episode, error) {
	e, err := s.episodes.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return e, err
}

func (s *episodeService) loadPodcast(ctx context.Context, id int64) (*models.Podcast, error) {
	p, err := s.podcasts.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

func (s *episodeService) Browse(ctx context.Context, from, to time.Time) ([]PodcastWithEpisodes, error) {
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, ErrInvalidDateRange
	}
	podcasts, err := s.podcasts.List(ctx)
	if err != nil {
		return nil, err
	}
	episodes, err := s.episodes.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	byPodcast := make(map[int64][]models.Episode, len(podcasts))
	for _, e := range episodes {
		e.Podcast = nil
		byPodcast[e.PodcastID] = append(byPodcast[e.PodcastID], e)
	}
	filtered := !from.IsZero() || !to.IsZero()
	out := make([]PodcastWithEpisodes, 0, len(podcasts))
	for _, p := range podcasts {
		list := byPodcast[p.ID]
		if filtered && len(list) == 0 {
			continue
		}
		if list == nil {
			list = []models.Episode{}
		}
		out = append(out, PodcastWithEpisodes{Podcast: p, Episodes: list})
	}
	return out, nil
}

func (s *episodeService) Search(ctx context.Context, term string, kind SearchType) ([]models.Episode, error) {
	term = strings.TrimSpace(term)
	switch kind {
	case SearchAll, "":
		return s.episodes.Search(ctx, term)
	case SearchTopic:
		return s.episodes.SearchByTopic(ctx, term)
	case SearchHost:
		return s.episodes.SearchByHost(ctx, term)
	}
	return nil, ErrInvalidSearchType
}

func (s *episodeService) Popular(ctx context.Context, n int) ([]models.Episode, error) {
	if n <= 0 {
		n = DefaultPopularCount
	}
	return s.episodes.Popular(ctx, n)
}

func (s *episodeService) Get(ctx context.Context, id int64) (*models.Episode, error) {
	e, err := s.loadEpisode(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Episode(policy.Anonymous(), policy.ActionRead, e.Ref(nil)).Err(); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *episodeService) Details(ctx context.Context, id int64) (*models.Episode, error) {
	if err := s.RecordView(ctx, id); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *episodeService) RecordView(ctx context.Context, id int64) error {
	return notFoundAs(s.episodes.IncrementViews(ctx, id), "episode")
}

func (s *episodeService) RecordPlay(ctx context.Context, id int64) error {
	return notFoundAs(s.episodes.IncrementPlayCount(ctx, id), "episode")
}

func (s *episodeService) Managed(ctx context.Context, p policy.Principal) ([]models.Episode, error) {
	if err := s.policy.RequireCreator(p).Err(); err != nil {
		return nil, err
	}
	if p.Role == policy.RoleAdmin {
		return s.episodes.List(ctx)
	}
	podcasts, err := s.podcasts.ListByCreator(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(podcasts))
	for _, podcast := range podcasts {
		ids = append(ids, podcast.ID)
	}
	return s.episodes.ListByPodcasts(ctx, ids)
}

func validateEpisode(in *EpisodeInput) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" || len(in.Title) > maxEpisodeTitleLength {
		return ErrInvalidEpisode
	}
	if in.DurationSeconds < 0 {
		return ErrNegativeDuration
	}
	return nil
}

// Create checks ownership of the target podcast, then uploads the audio, and
// only then writes the episode row. A failed upload leaves nothing behind.
func (s *episodeService) Create(ctx context.Context, p policy.Principal, in EpisodeInput) (*models.Episode, error) {
	if !p.Authenticated() {
		return nil, s.policy.Episode(p, policy.ActionCreate, nil).Err()
	}
	podcast, err := s.loadPodcast(ctx, in.PodcastID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Episode(p, policy.ActionCreate, &policy.EpisodeRef{Podcast: podcast.Ref()}).Err(); err != nil {
		return nil, err
	}
	if err := validateEpisode(&in); err != nil {
		return nil, err
	}
	if in.Audio == nil || in.Audio.Body == nil {
		return nil, ErrAudioRequired
	}

	url, duration, err := s.storeAudio(ctx, in.Audio)
	if err != nil {
		return nil, err
	}
	if duration <= 0 {
		duration = in.DurationSeconds
	}
	releaseDate := in.ReleaseDate
	if releaseDate.IsZero() {
		releaseDate = s.now()
	}

	episode := &models.Episode{
		PodcastID:       podcast.ID,
		Title:           in.Title,
		ReleaseDate:     releaseDate.UTC(),
		DurationSeconds: duration,
		AudioURL:        url,
	}
	if err := s.episodes.Create(ctx, episode); err != nil {
		s.discardAudio(ctx, url)
		return nil, err
	}
	episode.Podcast = podcast
	slog.Info("episode_created", "episode_id", episode.ID, "podcast_id", podcast.ID, "by", p.ID)
	return episode, nil
}

// Update edits title, release date and duration, and swaps the audio when a
// new file is supplied. The previous object is removed after the row points
// at the new one.
func (s *episodeService) Update(ctx context.Context, p policy.Principal, id int64, in EpisodeInput) (*models.Episode, error) {
	if !p.Authenticated() {
		return nil, s.policy.Episode(p, policy.ActionUpdate, nil).Err()
	}
	episode, err := s.loadEpisode(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Episode(p, policy.ActionUpdate, episode.OwnedRef()).Err(); err != nil {
		return nil, err
	}
	if err := validateEpisode(&in); err != nil {
		return nil, err
	}

	episode.Title = in.Title
	if !in.ReleaseDate.IsZero() {
		episode.ReleaseDate = in.ReleaseDate.UTC()
	}
	if in.DurationSeconds > 0 {
		episode.DurationSeconds = in.DurationSeconds
	}

	oldURL := ""
	if in.Audio != nil && in.Audio.Body != nil {
		url, duration, err := s.storeAudio(ctx, in.Audio)
		if err != nil {
			return nil, err
		}
		oldURL = episode.AudioURL
		episode.AudioURL = url
		if duration > 0 {
			episode.DurationSeconds = duration
		}
	}

	if err := s.episodes.Update(ctx, episode); err != nil {
		if oldURL != "" {
			s.discardAudio(ctx, episode.AudioURL)
		}
		return nil, err
	}
	if oldURL != "" {
		s.discardAudio(ctx, oldURL)
	}
	slog.Info("episode_updated", "episode_id", episode.ID, "by", p.ID, "audio_replaced", oldURL != "")
	return episode, nil
}

func (s *episodeService) Delete(ctx context.Context, p policy.Principal, id int64) error {
	if !p.Authenticated() {
		return s.policy.Episode(p, policy.ActionDelete, nil).Err()
	}
	episode, err := s.loadEpisode(ctx, id)
	if err != nil {
		return err
	}
	if err := s.policy.Episode(p, policy.ActionDelete, episode.OwnedRef()).Err(); err != nil {
		return err
	}

	if err := s.comments.DeleteByEpisodes(ctx, []int64{id}); err != nil {
		return fmt.Errorf("delete episode comments: %w", err)
	}
	if err := s.episodes.Delete(ctx, id); err != nil {
		return err
	}
	s.discardAudio(ctx, episode.AudioURL)
	slog.Info("episode_deleted", "episode_id", id, "by", p.ID)
	return nil
}

// storeAudio buffers the upload (bounded by maxUploadBytes), reads its
// duration when it decodes as MP3, and pushes it to the audio store.
func (s *episodeService) storeAudio(ctx context.Context, upload *AudioUpload) (string, int64, error) {
	limit := s.maxUploadBytes
	if limit <= 0 {
		limit = 50 << 20
	}
	data, err := io.ReadAll(io.LimitReader(upload.Body, limit+1))
	if err != nil {
		return "", 0, fmt.Errorf("read audio: %w", err)
	}
	if int64(len(data)) > limit {
		return "", 0, ErrAudioTooLarge
	}
	if len(data) == 0 {
		return "", 0, ErrAudioRequired
	}

	var seconds int64
	if d, err := blobstore.ProbeMP3Duration(bytes.NewReader(data)); err == nil {
		seconds = int64(d.Round(time.Second) / time.Second)
	} else {
		slog.Debug("audio_duration_unknown", "filename", upload.Filename, "error", err)
	}

	key := blobstore.AudioKey(upload.Filename, s.now())
	contentType := upload.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = blobstore.AudioContentType
	}
	url, err := s.audio.Upload(ctx, key, bytes.NewReader(data), contentType)
	if err != nil {
		slog.Error("audio_upload_failed", "key", key, "error", err)
		return "", 0, fmt.Errorf("%w: %v", ErrAudioUpload, err)
	}
	return url, seconds, nil
}

func (s *episodeService) discardAudio(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.audio.Delete(ctx, url); err != nil {
		slog.Warn("audio_delete_failed", "url", url, "error", err)
	}
}

// notFoundAs turns a repository miss into a policy NotFound so handlers map it
// the same way as an unresolved policy target.
func notFoundAs(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s not found: %w", what, policy.ErrNotFound)
	}
	return err
}
