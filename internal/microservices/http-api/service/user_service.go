package service

import (
	"context"
	"errors"
	"log/slog"

	"podcasthub/internal/microservices/http-api/models"
	"podcasthub/internal/microservices/http-api/repository"
	"podcasthub/internal/policy"

	"golang.org/x/sync/errgroup"
)

const dashboardRecentCount = 5

// Dashboard is the admin overview.
type Dashboard struct {
	TotalUsers         int64
	TotalPodcasts      int64
	TotalEpisodes      int64
	TotalSubscriptions int64
	TotalComments      int64
	UsersByRole        map[policy.Role]int64
	RecentPodcasts     []models.Podcast
	RecentEpisodes     []models.Episode
}

// Profile is what a signed-in user sees about their own account.
type Profile struct {
	User          *models.User
	Podcasts      []models.Podcast
	Episodes      []models.Episode
	Subscriptions []models.Subscription
}

type UserService interface {
	Profile(ctx context.Context, p policy.Principal) (*Profile, error)
	List(ctx context.Context, p policy.Principal) ([]models.User, error)
	Delete(ctx context.Context, p policy.Principal, id string) error
	ChangeRole(ctx context.Context, p policy.Principal, id string, role policy.Role) (*models.User, error)
	Dashboard(ctx context.Context, p policy.Principal) (*Dashboard, error)
}

type userService struct {
	users         repository.UserRepository
	refreshTokens repository.RefreshTokenRepository
	podcasts      repository.PodcastRepository
	episodes      repository.EpisodeRepository
	subscriptions repository.SubscriptionRepository
	comments      repository.CommentRepository
	policy        *policy.Policy
}

func NewUserService(
	users repository.UserRepository,
	refreshTokens repository.RefreshTokenRepository,
	podcasts repository.PodcastRepository,
	episodes repository.EpisodeRepository,
	subscriptions repository.SubscriptionRepository,
	comments repository.CommentRepository,
	pol *policy.Policy,
) UserService {
	return &userService{
		users:         users,
		refreshTokens: refreshTokens,
		podcasts:      podcasts,
		episodes:      episodes,
		subscriptions: subscriptions,
		comments:      comments,
		policy:        pol,
	}
}

func (s *userService) loadUser(ctx context.Context, id string) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return u, err
}

func (s *userService) Profile(ctx context.Context, p policy.Principal) (*Profile, error) {
	if !p.Authenticated() {
		return nil, s.policy.User(p, policy.ActionRead, nil).Err()
	}
	user, err := s.loadUser(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.User(p, policy.ActionRead, user.Ref()).Err(); err != nil {
		return nil, err
	}

	profile := &Profile{User: user}
	profile.Subscriptions, err = s.subscriptions.ListByUser(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if user.Role == policy.RoleListener {
		return profile, nil
	}

	profile.Podcasts, err = s.podcasts.ListByCreator(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(profile.Podcasts))
	for _, podcast := range profile.Podcasts {
		ids = append(ids, podcast.ID)
	}
	profile.Episodes, err = s.episodes.ListByPodcasts(ctx, ids)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *userService) List(ctx context.Context, p policy.Principal) ([]models.User, error) {
	if err := s.policy.RequireAdmin(p).Err(); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

// Delete removes the account, its subscriptions and sessions. Podcasts and
// comments it authored are kept.
func (s *userService) Delete(ctx context.Context, p policy.Principal, id string) error {
	if err := s.policy.RequireAdmin(p).Err(); err != nil {
		return err
	}
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return err
	}
	if err := s.policy.User(p, policy.ActionDelete, user.Ref()).Err(); err != nil {
		return err
	}

	if err := s.subscriptions.DeleteByUser(ctx, user.ID); err != nil {
		return err
	}
	if err := s.refreshTokens.RevokeAllForUser(ctx, user.ID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return notFoundAs(err, "user")
	}
	slog.Info("user_deleted", "user_id", user.ID, "by", p.ID)
	return nil
}

func (s *userService) ChangeRole(ctx context.Context, p policy.Principal, id string, role policy.Role) (*models.User, error) {
	if err := s.policy.RequireAdmin(p).Err(); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, ErrRoleNotAllowed
	}
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.User(p, policy.ActionUpdate, user.Ref()).Err(); err != nil {
		return nil, err
	}
	if user.Role == role {
		return user, nil
	}

	if err := s.users.UpdateRole(ctx, user.ID, role); err != nil {
		return nil, notFoundAs(err, "user")
	}
	// outstanding refresh tokens would keep minting the old role
	if err := s.refreshTokens.RevokeAllForUser(ctx, user.ID); err != nil {
		slog.Warn("refresh_token_revoke_failed", "user_id", user.ID, "error", err)
	}
	slog.Info("user_role_changed", "user_id", user.ID, "from", user.Role, "to", role, "by", p.ID)
	user.Role = role
	return user, nil
}

// Dashboard gathers the totals concurrently.
func (s *userService) Dashboard(ctx context.Context, p policy.Principal) (*Dashboard, error) {
	if err := s.policy.RequireAdmin(p).Err(); err != nil {
		return nil, err
	}

	d := &Dashboard{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.UsersByRole, err = s.users.CountByRole(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.TotalPodcasts, err = s.podcasts.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.TotalEpisodes, err = s.episodes.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.TotalSubscriptions, err = s.subscriptions.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.TotalComments, err = s.comments.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.RecentPodcasts, err = s.podcasts.Recent(gctx, dashboardRecentCount)
		return err
	})
	g.Go(func() (err error) {
		d.RecentEpisodes, err = s.episodes.Recent(gctx, dashboardRecentCount)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, n := range d.UsersByRole {
		d.TotalUsers += n
	}
	return d, nil
}
