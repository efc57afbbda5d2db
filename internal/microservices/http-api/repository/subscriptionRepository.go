package repository

import (
	"context"

	"podcasthub/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubscriptionRepository interface {
	Find(ctx context.Context, userID string, podcastID int64) (*models.Subscription, error)
	// Create inserts s unless the (user, podcast) pair already exists, in
	// which case created is false and no error is returned.
	Create(ctx context.Context, s *models.Subscription) (created bool, err error)
	Delete(ctx context.Context, id int64) error
	DeleteByUser(ctx context.Context, userID string) error
	ListByUser(ctx context.Context, userID string) ([]models.Subscription, error)
	Count(ctx context.Context) (int64, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Find(ctx context.Context, userID string, podcastID int64) (*models.Subscription, error) {
	var s models.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND podcast_id = ?", normalizeID(userID), podcastID).
		First(&s).Error
	if err != nil {
		return nil, wrap("find subscription", err)
	}
	return &s, nil
}

func (r *subscriptionRepository) Create(ctx context.Context, s *models.Subscription) (bool, error) {
	s.UserID = normalizeID(s.UserID)
	result := r.db.WithContext(ctx).
		Omit("Podcast").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "podcast_id"}},
			DoNothing: true,
		}).
		Create(s)
	if result.Error != nil {
		return false, wrap("create subscription", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *subscriptionRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Subscription{}, id)
	if result.Error != nil {
		return wrap("delete subscription", result.Error)
	}
	if result.RowsAffected == 0 {
		return wrap("delete subscription", ErrNotFound)
	}
	return nil
}

func (r *subscriptionRepository) DeleteByUser(ctx context.Context, userID string) error {
	return wrap("delete user subscriptions", r.db.WithContext(ctx).
		Where("user_id = ?", normalizeID(userID)).
		Delete(&models.Subscription{}).Error)
}

func (r *subscriptionRepository) ListByUser(ctx context.Context, userID string) ([]models.Subscription, error) {
	var list []models.Subscription
	if err := r.db.WithContext(ctx).
		Preload("Podcast").
		Where("user_id = ?", normalizeID(userID)).
		Order("subscription_date desc").
		Find(&list).Error; err != nil {
		return nil, wrap("list subscriptions", err)
	}
	return list, nil
}

func (r *subscriptionRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Subscription{}).Count(&total).Error; err != nil {
		return 0, wrap("count subscriptions", err)
	}
	return total, nil
}
