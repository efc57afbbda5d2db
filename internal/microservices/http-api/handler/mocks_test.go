package handler

import (
	"context"
	"time"

	"podcasthub/internal/microservices/http-api/models"
	"podcasthub/internal/microservices/http-api/service"
	"podcasthub/internal/policy"

	"github.com/stretchr/testify/mock"
)

// MockAuthService also stands in as the token validator: tokens map to principals.
type MockAuthService struct {
	mock.Mock
	tokens map[string]policy.Principal
}

func (m *MockAuthService) Register(ctx context.Context, in service.RegisterInput) (*models.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Provision(ctx context.Context, in service.RegisterInput) (*models.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, string, *models.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(2) == nil {
		return args.String(0), args.String(1), nil, args.Error(3)
	}
	return args.String(0), args.String(1), args.Get(2).(*models.User), args.Error(3)
}

func (m *MockAuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Revoke(ctx context.Context, refreshToken string) error {
	return m.Called(ctx, refreshToken).Error(0)
}

func (m *MockAuthService) ValidateToken(token string) (policy.Principal, error) {
	p, ok := m.tokens[token]
	if !ok {
		return policy.Principal{}, service.ErrInvalidToken
	}
	return p, nil
}

type MockPodcastService struct {
	mock.Mock
}

func (m *MockPodcastService) podcasts(args mock.Arguments) ([]models.Podcast, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Podcast), args.Error(1)
}

func (m *MockPodcastService) podcast(args mock.Arguments) (*models.Podcast, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Podcast), args.Error(1)
}

func (m *MockPodcastService) List(ctx context.Context) ([]models.Podcast, error) {
	return m.podcasts(m.Called(ctx))
}

func (m *MockPodcastService) Get(ctx context.Context, id int64) (*models.Podcast, error) {
	return m.podcast(m.Called(ctx, id))
}

func (m *MockPodcastService) Episodes(ctx context.Context, id int64) ([]models.Episode, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Episode), args.Error(1)
}

func (m *MockPodcastService) Managed(ctx context.Context, p policy.Principal) ([]models.Podcast, error) {
	return m.podcasts(m.Called(ctx, p))
}

func (m *MockPodcastService) EpisodeCounts(ctx context.Context, p policy.Principal, podcasts []models.Podcast) (map[int64]int64, error) {
	args := m.Called(ctx, p, podcasts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]int64), args.Error(1)
}

func (m *MockPodcastService) Create(ctx context.Context, p policy.Principal, in service.PodcastInput) (*models.Podcast, error) {
	return m.podcast(m.Called(ctx, p, in))
}

func (m *MockPodcastService) Update(ctx context.Context, p policy.Principal, id int64, in service.PodcastInput) (*models.Podcast, error) {
	return m.podcast(m.Called(ctx, p, id, in))
}

func (m *MockPodcastService) Delete(ctx context.Context, p policy.Principal, id int64) error {
	return m.Called(ctx, p, id).Error(0)
}

type MockEpisodeService struct {
	mock.Mock
}

func (m *MockEpisodeService) episodes(args mock.Arguments) ([]models.Episode, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Episode), args.Error(1)
}

func (m *MockEpisodeService) episode(args mock.Arguments) (*models.Episode, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Episode), args.Error(1)
}

func (m *MockEpisodeService) Browse(ctx context.Context, from, to time.Time) ([]service.PodcastWithEpisodes, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.PodcastWithEpisodes), args.Error(1)
}

func (m *MockEpisodeService) Search(ctx context.Context, term string, kind service.SearchType) ([]models.Episode, error) {
	return m.episodes(m.Called(ctx, term, kind))
}

func (m *MockEpisodeService) Popular(ctx context.Context, n int) ([]models.Episode, error) {
	return m.episodes(m.Called(ctx, n))
}

func (m *MockEpisodeService) Details(ctx context.Context, id int64) (*models.Episode, error) {
	return m.episode(m.Called(ctx, id))
}

func (m *MockEpisodeService) Get(ctx context.Context, id int64) (*models.Episode, error) {
	return m.episode(m.Called(ctx, id))
}

func (m *MockEpisodeService) RecordView(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockEpisodeService) RecordPlay(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockEpisodeService) Managed(ctx context.Context, p policy.Principal) ([]models.Episode, error) {
	return m.episodes(m.Called(ctx, p))
}

func (m *MockEpisodeService) Create(ctx context.Context, p policy.Principal, in service.EpisodeInput) (*models.Episode, error) {
	return m.episode(m.Called(ctx, p, in))
}

func (m *MockEpisodeService) Update(ctx context.Context, p policy.Principal, id int64, in service.EpisodeInput) (*models.Episode, error) {
	return m.episode(m.Called(ctx, p, id, in))
}

func (m *MockEpisodeService) Delete(ctx context.Context, p policy.Principal, id int64) error {
	return m.Called(ctx, p, id).Error(0)
}

type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) views(args mock.Arguments) ([]service.CommentView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.CommentView), args.Error(1)
}

func (m *MockCommentService) view(args mock.Arguments) (*service.CommentView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CommentView), args.Error(1)
}

func (m *MockCommentService) ListForEpisode(ctx context.Context, p policy.Principal, episodeID int64) ([]service.CommentView, error) {
	return m.views(m.Called(ctx, p, episodeID))
}

func (m *MockCommentService) Get(ctx context.Context, p policy.Principal, id int64) (*service.CommentView, error) {
	return m.view(m.Called(ctx, p, id))
}

func (m *MockCommentService) Create(ctx context.Context, p policy.Principal, episodeID int64, text string) (*service.CommentView, error) {
	return m.view(m.Called(ctx, p, episodeID, text))
}

func (m *MockCommentService) Update(ctx context.Context, p policy.Principal, id int64, text string) (*service.CommentView, error) {
	return m.view(m.Called(ctx, p, id, text))
}

func (m *MockCommentService) Delete(ctx context.Context, p policy.Principal, id int64) error {
	return m.Called(ctx, p, id).Error(0)
}

func (m *MockCommentService) OnMyEpisodes(ctx context.Context, p policy.Principal) ([]service.CommentView, error) {
	return m.views(m.Called(ctx, p))
}

func (m *MockCommentService) Moderation(ctx context.Context, p policy.Principal) ([]service.CommentView, error) {
	return m.views(m.Called(ctx, p))
}

type MockSubscriptionService struct {
	mock.Mock
}

func (m *MockSubscriptionService) Subscribe(ctx context.Context, p policy.Principal, podcastID int64) (*models.Subscription, error) {
	args := m.Called(ctx, p, podcastID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionService) Unsubscribe(ctx context.Context, p policy.Principal, podcastID int64) error {
	return m.Called(ctx, p, podcastID).Error(0)
}

func (m *MockSubscriptionService) IsSubscribed(ctx context.Context, p policy.Principal, podcastID int64) (bool, error) {
	args := m.Called(ctx, p, podcastID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubscriptionService) List(ctx context.Context, p policy.Principal) ([]models.Subscription, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Subscription), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Profile(ctx context.Context, p policy.Principal) (*service.Profile, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Profile), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context, p policy.Principal) ([]models.User, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, p policy.Principal, id string) error {
	return m.Called(ctx, p, id).Error(0)
}

func (m *MockUserService) ChangeRole(ctx context.Context, p policy.Principal, id string, role policy.Role) (*models.User, error) {
	args := m.Called(ctx, p, id, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Dashboard(ctx context.Context, p policy.Principal) (*service.Dashboard, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Dashboard), args.Error(1)
}
