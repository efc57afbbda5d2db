package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"podcasthub/internal/microservices/http-api/models"
	"podcasthub/internal/microservices/http-api/repository"
	"podcasthub/internal/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type podcastFixture struct {
	podcasts *MockPodcastRepository
	episodes *MockEpisodeRepository
	comments *MockCommentRepository
	svc      *podcastService
}

func newPodcastFixture() *podcastFixture {
	f := &podcastFixture{
		podcasts: new(MockPodcastRepository),
		episodes: new(MockEpisodeRepository),
		comments: new(MockCommentRepository),
	}
	f.svc = NewPodcastService(f.podcasts, f.episodes, f.comments, testPolicy()).(*podcastService)
	f.svc.now = func() time.Time { return fixedNow }

	f.podcasts.On("GetByID", mock.Anything, int64(1)).Return(&models.Podcast{
		ID: 1, Title: "Moonshot", CreatorID: ownerA.ID, CreatedAt: fixedNow.Add(-72 * time.Hour),
	}, nil)
	f.podcasts.On("GetByID", mock.Anything, int64(99)).Return(nil, repository.ErrNotFound)
	return f
}

func TestPodcastCreate(t *testing.T) {
	f := newPodcastFixture()
	ctx := context.Background()
	f.podcasts.On("Create", ctx, mock.MatchedBy(func(p *models.Podcast) bool {
		return p.CreatorID == ownerA.ID && p.Title == "Moonshot" && p.CreatedAt.Equal(fixedNow)
	})).Return(nil)

	podcast, err := f.svc.Create(ctx, ownerA, PodcastInput{Title: " Moonshot ", Description: "Space news"})
	require.NoError(t, err)
	assert.Equal(t, ownerA.ID, podcast.CreatorID)

	_, err = f.svc.Create(ctx, listenerL, PodcastInput{Title: "Mine"})
	var denied *policy.DeniedError
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, policy.ReasonRole, denied.Reason)

	_, err = f.svc.Create(ctx, ownerA, PodcastInput{Title: ""})
	assert.ErrorIs(t, err, ErrInvalidPodcast)

	f.podcasts.AssertNumberOfCalls(t, "Create", 1)
}

func TestPodcastUpdate(t *testing.T) {
	t.Run("non-owner is refused", func(t *testing.T) {
		f := newPodcastFixture()
		_, err := f.svc.Update(context.Background(), podcasterB, 1, PodcastInput{Title: "Mine now"})

		var denied *policy.DeniedError
		require.True(t, errors.As(err, &denied))
		assert.Equal(t, policy.ReasonOwnership, denied.Reason)
		assert.Equal(t, "You can only edit your own podcasts.", denied.Message)
		f.podcasts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("admin may edit any podcast", func(t *testing.T) {
		f := newPodcastFixture()
		ctx := context.Background()
		f.podcasts.On("Update", ctx, mock.Anything).Return(nil)

		podcast, err := f.svc.Update(ctx, adminP, 1, PodcastInput{Title: "Moonshot Weekly"})
		require.NoError(t, err)
		assert.Equal(t, "Moonshot Weekly", podcast.Title)
		assert.Equal(t, ownerA.ID, podcast.CreatorID, "creator survives an admin edit")
	})

	t.Run("missing podcast", func(t *testing.T) {
		f := newPodcastFixture()
		_, err := f.svc.Update(context.Background(), ownerA, 99, PodcastInput{Title: "x"})
		assert.ErrorIs(t, err, policy.ErrNotFound)
	})
}

func TestPodcastDelete_PodcastThenCommentStore(t *testing.T) {
	f := newPodcastFixture()
	ctx := context.Background()

	var order []string
	f.episodes.On("ListByPodcast", ctx, int64(1)).Return([]models.Episode{{ID: 10}, {ID: 11}}, nil)
	f.podcasts.On("Delete", ctx, int64(1)).Return(nil).
		Run(func(mock.Arguments) { order = append(order, "podcast") })
	f.comments.On("DeleteByEpisodes", ctx, []int64{10, 11}).Return(nil).
		Run(func(mock.Arguments) { order = append(order, "comments") })

	require.NoError(t, f.svc.Delete(ctx, ownerA, 1))
	assert.Equal(t, []string{"podcast", "comments"}, order)
}

func TestPodcastDelete_FailedDeleteKeepsComments(t *testing.T) {
	f := newPodcastFixture()
	ctx := context.Background()
	boom := errors.New("db down")
	f.episodes.On("ListByPodcast", ctx, int64(1)).Return([]models.Episode{{ID: 10}}, nil)
	f.podcasts.On("Delete", ctx, int64(1)).Return(boom)

	assert.ErrorIs(t, f.svc.Delete(ctx, ownerA, 1), boom)
	f.comments.AssertNotCalled(t, "DeleteByEpisodes", mock.Anything, mock.Anything)
}

func TestPodcastDelete_CommentCleanupFailureIsNotFatal(t *testing.T) {
	f := newPodcastFixture()
	ctx := context.Background()
	f.episodes.On("ListByPodcast", ctx, int64(1)).Return([]models.Episode{{ID: 10}}, nil)
	f.podcasts.On("Delete", ctx, int64(1)).Return(nil)
	f.comments.On("DeleteByEpisodes", ctx, []int64{10}).Return(errors.New("redis down"))

	assert.NoError(t, f.svc.Delete(ctx, ownerA, 1))
}

func TestPodcastDelete_Refusals(t *testing.T) {
	f := newPodcastFixture()
	ctx := context.Background()

	err := f.svc.Delete(ctx, podcasterB, 1)
	var denied *policy.DeniedError
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, "You can only delete your own podcasts.", denied.Message)

	err = f.svc.Delete(ctx, listenerL, 1)
	assert.ErrorIs(t, err, policy.ErrForbidden)

	err = f.svc.Delete(ctx, policy.Anonymous(), 1)
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, policy.ReasonUnauthenticated, denied.Reason)

	f.comments.AssertNotCalled(t, "DeleteByEpisodes", mock.Anything, mock.Anything)
	f.podcasts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestPodcastReadsAndManaged(t *testing.T) {
	f := newPodcastFixture()
	ctx := context.Background()
	f.episodes.On("ListByPodcast", ctx, int64(1)).Return([]models.Episode{{ID: 10}}, nil)
	f.podcasts.On("ListByCreator", ctx, ownerA.ID).Return([]models.Podcast{{ID: 1}}, nil)
	f.podcasts.On("List", ctx).Return([]models.Podcast{{ID: 1}, {ID: 2}}, nil)
	f.podcasts.On("EpisodeCounts", ctx, []int64{1, 2}).Return(map[int64]int64{1: 1, 2: 0}, nil)

	episodes, err := f.svc.Episodes(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, episodes, 1)

	_, err = f.svc.Get(ctx, 99)
	assert.ErrorIs(t, err, policy.ErrNotFound)

	mine, err := f.svc.Managed(ctx, ownerA)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := f.svc.Managed(ctx, adminP)
	require.NoError(t, err)
	counts, err := f.svc.EpisodeCounts(ctx, adminP, all)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[1])

	_, err = f.svc.Managed(ctx, listenerL)
	assert.ErrorIs(t, err, policy.ErrForbidden)
}
