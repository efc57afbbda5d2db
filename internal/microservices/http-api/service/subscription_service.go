package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"podcasthub/internal/microservices/http-api/models"
	"podcasthub/internal/microservices/http-api/repository"
	"podcasthub/internal/policy"
)

// ErrAlreadySubscribed is informational: the subscription exists and nothing changed.
var ErrAlreadySubscribed = errors.New("already subscribed")

type SubscriptionService interface {
	// Subscribe returns ErrAlreadySubscribed together with the existing row
	// when the pair is already present.
	Subscribe(ctx context.Context, p policy.Principal, podcastID int64) (*models.Subscription, error)
	// Unsubscribe is a no-op when no subscription exists.
	Unsubscribe(ctx context.Context, p policy.Principal, podcastID int64) error
	IsSubscribed(ctx context.Context, p policy.Principal, podcastID int64) (bool, error)
	List(ctx context.Context, p policy.Principal) ([]models.Subscription, error)
}

type subscriptionService struct {
	subscriptions repository.SubscriptionRepository
	podcasts      repository.PodcastRepository
	policy        *policy.Policy
	now           func() time.Time
}

func NewSubscriptionService(
	subscriptions repository.SubscriptionRepository,
	podcasts repository.PodcastRepository,
	pol *policy.Policy,
) SubscriptionService {
	return &subscriptionService{
		subscriptions: subscriptions,
		podcasts:      podcasts,
		policy:        pol,
		now:           time.Now,
	}
}

// target builds the policy view of p's subscription to podcastID, or nil when
// the podcast does not exist.
func (s *subscriptionService) target(ctx context.Context, p policy.Principal, podcastID int64) (*policy.SubscriptionRef, error) {
	if _, err := s.podcasts.GetByID(ctx, podcastID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	sub := models.Subscription{UserID: p.ID, PodcastID: podcastID}
	return sub.Ref(), nil
}

func (s *subscriptionService) authorize(ctx context.Context, p policy.Principal, action policy.Action, podcastID int64) error {
	if !p.Authenticated() {
		return s.policy.Subscription(p, action, nil).Err()
	}
	ref, err := s.target(ctx, p, podcastID)
	if err != nil {
		return err
	}
	if ref == nil {
		return notFoundAs(repository.ErrNotFound, "podcast")
	}
	return s.policy.Subscription(p, action, ref).Err()
}

func (s *subscriptionService) Subscribe(ctx context.Context, p policy.Principal, podcastID int64) (*models.Subscription, error) {
	if err := s.authorize(ctx, p, policy.ActionCreate, podcastID); err != nil {
		return nil, err
	}

	existing, err := s.subscriptions.Find(ctx, p.ID, podcastID)
	if err == nil {
		return existing, ErrAlreadySubscribed
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	sub := &models.Subscription{
		UserID:           p.ID,
		PodcastID:        podcastID,
		SubscriptionDate: s.now().UTC(),
	}
	created, err := s.subscriptions.Create(ctx, sub)
	if err != nil {
		return nil, err
	}
	if !created {
		// lost a race with a concurrent subscribe; the unique index kept one row
		existing, err := s.subscriptions.Find(ctx, p.ID, podcastID)
		if err != nil {
			return nil, err
		}
		return existing, ErrAlreadySubscribed
	}
	slog.Info("subscription_created", "user_id", p.ID, "podcast_id", podcastID)
	return sub, nil
}

func (s *subscriptionService) Unsubscribe(ctx context.Context, p policy.Principal, podcastID int64) error {
	if err := s.authorize(ctx, p, policy.ActionDelete, podcastID); err != nil {
		return err
	}

	existing, err := s.subscriptions.Find(ctx, p.ID, podcastID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.subscriptions.Delete(ctx, existing.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	slog.Info("subscription_removed", "user_id", p.ID, "podcast_id", podcastID)
	return nil
}

func (s *subscriptionService) IsSubscribed(ctx context.Context, p policy.Principal, podcastID int64) (bool, error) {
	if err := s.authorize(ctx, p, policy.ActionRead, podcastID); err != nil {
		return false, err
	}
	_, err := s.subscriptions.Find(ctx, p.ID, podcastID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *subscriptionService) List(ctx context.Context, p policy.Principal) ([]models.Subscription, error) {
	if !p.Authenticated() {
		return nil, s.policy.Subscription(p, policy.ActionRead, nil).Err()
	}
	return s.subscriptions.ListByUser(ctx, p.ID)
}
