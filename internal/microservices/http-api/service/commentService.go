package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"podcasthub/internal/microservices/http-api/models"
	"podcasthub/internal/microservices/http-api/repository"
	"podcasthub/internal/policy"
)

var ErrInvalidComment = errors.New("comment must be between 1 and 1000 characters")

// CommentView is a comment plus what the caller may still do with it.
type CommentView struct {
	models.Comment
	Editable           bool
	EditHoursRemaining int
}

type CommentService interface {
	ListForEpisode(ctx context.Context, p policy.Principal, episodeID int64) ([]CommentView, error)
	Get(ctx context.Context, p policy.Principal, id int64) (*CommentView, error)
	Create(ctx context.Context, p policy.Principal, episodeID int64, text string) (*CommentView, error)
	Update(ctx context.Context, p policy.Principal, id int64, text string) (*CommentView, error)
	Delete(ctx context.Context, p policy.Principal, id int64) error
	// OnMyEpisodes lists comments left on episodes of podcasts p created.
	OnMyEpisodes(ctx context.Context, p policy.Principal) ([]CommentView, error)
	// Moderation lists every comment, Admin only.
	Moderation(ctx context.Context, p policy.Principal) ([]CommentView, error)
}

type commentService struct {
	comments repository.CommentRepository
	episodes repository.EpisodeRepository
	podcasts repository.PodcastRepository
	policy   *policy.Policy
	now      func() time.Time
}

// NewCommentService works the same whichever CommentRepository backs it.
func NewCommentService(
	comments repository.CommentRepository,
	episodes repository.EpisodeRepository,
	podcasts repository.PodcastRepository,
	pol *policy.Policy,
) CommentService {
	return &commentService{
		comments: comments,
		episodes: episodes,
		podcasts: podcasts,
		policy:   pol,
		now:      time.Now,
	}
}

func normalizeCommentText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if n := utf8.RuneCountInString(text); n == 0 || n > models.MaxCommentLength {
		return "", ErrInvalidComment
	}
	return text, nil
}

func (s *commentService) loadEpisode(ctx context.Context, id int64) (*models.Episode, error) {
	e, err := s.episodes.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return e, err
}

// loadRef resolves a comment with its episode and podcast. A missing comment
// yields a nil ref, a missing episode a ref without one.
func (s *commentService) loadRef(ctx context.Context, id int64) (*models.Comment, *policy.CommentRef, error) {
	c, err := s.comments.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	episode, err := s.loadEpisode(ctx, c.EpisodeID)
	if err != nil {
		return nil, nil, err
	}
	var parent *models.Podcast
	if episode != nil {
		parent = episode.Podcast
	}
	return c, c.Ref(episode, parent), nil
}

func (s *commentService) view(p policy.Principal, c models.Comment) CommentView {
	ref := c.Ref(nil, nil)
	v := CommentView{Comment: c}
	if p.Authenticated() && p.ID == c.UserID && s.policy.CommentState(ref) == policy.Fresh {
		v.Editable = true
		v.EditHoursRemaining = int(s.policy.EditTimeRemaining(ref) / time.Hour)
	}
	return v
}

func (s *commentService) views(p policy.Principal, list []models.Comment) []CommentView {
	out := make([]CommentView, 0, len(list))
	for _, c := range list {
		out = append(out, s.view(p, c))
	}
	return out
}

func (s *commentService) ListForEpisode(ctx context.Context, p policy.Principal, episodeID int64) ([]CommentView, error) {
	episode, err := s.loadEpisode(ctx, episodeID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Episode(p, policy.ActionRead, episode.OwnedRef()).Err(); err != nil {
		return nil, err
	}
	list, err := s.comments.ListByEpisode(ctx, episodeID)
	if err != nil {
		return nil, err
	}
	return s.views(p, list), nil
}

func (s *commentService) Get(ctx context.Context, p policy.Principal, id int64) (*CommentView, error) {
	c, ref, err := s.loadRef(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Comment(p, policy.ActionRead, ref).Err(); err != nil {
		return nil, err
	}
	v := s.view(p, *c)
	return &v, nil
}

func (s *commentService) Create(ctx context.Context, p policy.Principal, episodeID int64, text string) (*CommentView, error) {
	if !p.Authenticated() {
		return nil, s.policy.Comment(p, policy.ActionCreate, nil).Err()
	}
	episode, err := s.loadEpisode(ctx, episodeID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Comment(p, policy.ActionCreate, &policy.CommentRef{Episode: episode.OwnedRef()}).Err(); err != nil {
		return nil, err
	}
	text, err = normalizeCommentText(text)
	if err != nil {
		return nil, err
	}

	c := &models.Comment{
		EpisodeID:   episode.ID,
		UserID:      p.ID,
		Text:        text,
		CommentDate: s.now().UTC(),
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	slog.Info("comment_created", "comment_id", c.ID, "episode_id", c.EpisodeID, "user_id", c.UserID)
	v := s.view(p, *c)
	return &v, nil
}

// Update replaces the text. Only the author may edit, and only inside the edit window.
func (s *commentService) Update(ctx context.Context, p policy.Principal, id int64, text string) (*CommentView, error) {
	if !p.Authenticated() {
		return nil, s.policy.Comment(p, policy.ActionUpdate, nil).Err()
	}
	c, ref, err := s.loadRef(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Comment(p, policy.ActionUpdate, ref).Err(); err != nil {
		var denied *policy.DeniedError
		if errors.As(err, &denied) {
			slog.Info("comment_edit_denied", "comment_id", id, "user_id", p.ID, "reason", denied.Reason, "hours_ago", denied.HoursAgo)
		}
		return nil, err
	}
	text, err = normalizeCommentText(text)
	if err != nil {
		return nil, err
	}

	if err := s.comments.UpdateText(ctx, id, text); err != nil {
		return nil, notFoundAs(err, "comment")
	}
	c.Text = text
	v := s.view(p, *c)
	return &v, nil
}

func (s *commentService) Delete(ctx context.Context, p policy.Principal, id int64) error {
	if !p.Authenticated() {
		return s.policy.Comment(p, policy.ActionDelete, nil).Err()
	}
	_, ref, err := s.loadRef(ctx, id)
	if err != nil {
		return err
	}
	if err := s.policy.Comment(p, policy.ActionDelete, ref).Err(); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		return notFoundAs(err, "comment")
	}
	slog.Info("comment_deleted", "comment_id", id, "by", p.ID, "role", p.Role)
	return nil
}

func (s *commentService) OnMyEpisodes(ctx context.Context, p policy.Principal) ([]CommentView, error) {
	if err := s.policy.RequireCreator(p).Err(); err != nil {
		return nil, err
	}
	podcasts, err := s.podcasts.ListByCreator(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	podcastIDs := make([]int64, 0, len(podcasts))
	for _, podcast := range podcasts {
		podcastIDs = append(podcastIDs, podcast.ID)
	}
	episodes, err := s.episodes.ListByPodcasts(ctx, podcastIDs)
	if err != nil {
		return nil, err
	}
	episodeIDs := make([]int64, 0, len(episodes))
	for _, e := range episodes {
		episodeIDs = append(episodeIDs, e.ID)
	}
	list, err := s.comments.ListByEpisodes(ctx, episodeIDs)
	if err != nil {
		return nil, err
	}
	return s.views(p, list), nil
}

func (s *commentService) Moderation(ctx context.Context, p policy.Principal) ([]CommentView, error) {
	if err := s.policy.RequireAdmin(p).Err(); err != nil {
		return nil, err
	}
	list, err := s.comments.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.views(p, list), nil
}
