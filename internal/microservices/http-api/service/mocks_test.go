package service

import (
	"context"
	"io"
	"time"

	"podcasthub/internal/microservices/http-api/models"
	"podcasthub/internal/policy"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id string, role policy.Role) error {
	return m.Called(ctx, id, role).Error(0)
}

func (m *MockUserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepository) CountByRole(ctx context.Context) (map[policy.Role]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[policy.Role]int64), args.Error(1)
}

// MockRefreshTokenRepository mocks the RefreshTokenRepository interface
type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenRepository) Revoke(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockRefreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockPodcastRepository struct {
	mock.Mock
}

func (m *MockPodcastRepository) List(ctx context.Context) ([]models.Podcast, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Podcast), args.Error(1)
}

func (m *MockPodcastRepository) ListByCreator(ctx context.Context, creatorID string) ([]models.Podcast, error) {
	args := m.Called(ctx, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Podcast), args.Error(1)
}

func (m *MockPodcastRepository) GetByID(ctx context.Context, id int64) (*models.Podcast, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Podcast), args.Error(1)
}

func (m *MockPodcastRepository) Create(ctx context.Context, p *models.Podcast) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPodcastRepository) Update(ctx context.Context, p *models.Podcast) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPodcastRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPodcastRepository) Recent(ctx context.Context, n int) ([]models.Podcast, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Podcast), args.Error(1)
}

func (m *MockPodcastRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPodcastRepository) EpisodeCounts(ctx context.Context, ids []int64) (map[int64]int64, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]int64), args.Error(1)
}

type MockEpisodeRepository struct {
	mock.Mock
}

func (m *MockEpisodeRepository) episodes(args mock.Arguments) ([]models.Episode, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Episode), args.Error(1)
}

func (m *MockEpisodeRepository) List(ctx context.Context) ([]models.Episode, error) {
	return m.episodes(m.Called(ctx))
}

func (m *MockEpisodeRepository) ListByPodcast(ctx context.Context, podcastID int64) ([]models.Episode, error) {
	return m.episodes(m.Called(ctx, podcastID))
}

func (m *MockEpisodeRepository) ListByPodcasts(ctx context.Context, podcastIDs []int64) ([]models.Episode, error) {
	return m.episodes(m.Called(ctx, podcastIDs))
}

func (m *MockEpisodeRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]models.Episode, error) {
	return m.episodes(m.Called(ctx, from, to))
}

func (m *MockEpisodeRepository) GetByID(ctx context.Context, id int64) (*models.Episode, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Episode), args.Error(1)
}

func (m *MockEpisodeRepository) Create(ctx context.Context, e *models.Episode) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockEpisodeRepository) Update(ctx context.Context, e *models.Episode) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockEpisodeRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockEpisodeRepository) SearchByTopic(ctx context.Context, term string) ([]models.Episode, error) {
	return m.episodes(m.Called(ctx, term))
}

func (m *MockEpisodeRepository) SearchByHost(ctx context.Context, term string) ([]models.Episode, error) {
	return m.episodes(m.Called(ctx, term))
}

func (m *MockEpisodeRepository) Search(ctx context.Context, term string) ([]models.Episode, error) {
	return m.episodes(m.Called(ctx, term))
}

func (m *MockEpisodeRepository) Popular(ctx context.Context, n int) ([]models.Episode, error) {
	return m.episodes(m.Called(ctx, n))
}

func (m *MockEpisodeRepository) IncrementViews(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockEpisodeRepository) IncrementPlayCount(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockEpisodeRepository) Recent(ctx context.Context, n int) ([]models.Episode, error) {
	return m.episodes(m.Called(ctx, n))
}

func (m *MockEpisodeRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) Find(ctx context.Context, userID string, podcastID int64) (*models.Subscription, error) {
	args := m.Called(ctx, userID, podcastID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) Create(ctx context.Context, s *models.Subscription) (bool, error) {
	args := m.Called(ctx, s)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubscriptionRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSubscriptionRepository) DeleteByUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockSubscriptionRepository) ListByUser(ctx context.Context, userID string) ([]models.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) comments(args mock.Arguments) ([]models.Comment, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Comment), args.Error(1)
}

func (m *MockCommentRepository) Create(ctx context.Context, c *models.Comment) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCommentRepository) UpdateText(ctx context.Context, id int64, text string) error {
	return m.Called(ctx, id, text).Error(0)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCommentRepository) DeleteByEpisodes(ctx context.Context, episodeIDs []int64) error {
	return m.Called(ctx, episodeIDs).Error(0)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListByEpisode(ctx context.Context, episodeID int64) ([]models.Comment, error) {
	return m.comments(m.Called(ctx, episodeID))
}

func (m *MockCommentRepository) ListByEpisodes(ctx context.Context, episodeIDs []int64) ([]models.Comment, error) {
	return m.comments(m.Called(ctx, episodeIDs))
}

func (m *MockCommentRepository) ListAll(ctx context.Context) ([]models.Comment, error) {
	return m.comments(m.Called(ctx))
}

func (m *MockCommentRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockAudioStore records uploads so tests can assert none happened.
type MockAudioStore struct {
	mock.Mock
}

func (m *MockAudioStore) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, key, body, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockAudioStore) Delete(ctx context.Context, publicURL string) error {
	return m.Called(ctx, publicURL).Error(0)
}

var (
	fixedNow   = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	ownerA     = policy.Principal{ID: "a@x.com", Role: policy.RolePodcaster}
	podcasterB = policy.Principal{ID: "b@x.com", Role: policy.RolePodcaster}
	podcasterC = policy.Principal{ID: "c@x.com", Role: policy.RolePodcaster}
	listenerL  = policy.Principal{ID: "l@x.com", Role: policy.RoleListener}
	adminP     = policy.Principal{ID: "admin@podcasthub.com", Role: policy.RoleAdmin}
)

func testPolicy() *policy.Policy {
	return policy.New(policy.WithClock(func() time.Time { return fixedNow }))
}
