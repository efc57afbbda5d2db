package repository

import (
	"context"
	"fmt"

	"podcasthub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type PodcastRepository interface {
	List(ctx context.Context) ([]models.Podcast, error)
	ListByCreator(ctx context.Context, creatorID string) ([]models.Podcast, error)
	GetByID(ctx context.Context, id int64) (*models.Podcast, error)
	Create(ctx context.Context, p *models.Podcast) error
	Update(ctx context.Context, p *models.Podcast) error
	Delete(ctx context.Context, id int64) error
	Recent(ctx context.Context, n int) ([]models.Podcast, error)
	Count(ctx context.Context) (int64, error)
	EpisodeCounts(ctx context.Context, ids []int64) (map[int64]int64, error)
}

type podcastRepository struct {
	db *gorm.DB
}

func NewPodcastRepository(db *gorm.DB) PodcastRepository {
	return &podcastRepository{db: db}
}

func (r *podcastRepository) List(ctx context.Context) ([]models.Podcast, error) {
	var list []models.Podcast
	if err := r.db.WithContext(ctx).Order("title").Find(&list).Error; err != nil {
		return nil, wrap("list podcasts", err)
	}
	return list, nil
}

func (r *podcastRepository) ListByCreator(ctx context.Context, creatorID string) ([]models.Podcast, error) {
	var list []models.Podcast
	if err := r.db.WithContext(ctx).
		Where("creator_id = ?", normalizeID(creatorID)).
		Order("created_date desc").
		Find(&list).Error; err != nil {
		return nil, wrap("list podcasts by creator", err)
	}
	return list, nil
}

func (r *podcastRepository) GetByID(ctx context.Context, id int64) (*models.Podcast, error) {
	var p models.Podcast
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, wrap("get podcast", err)
	}
	return &p, nil
}

func (r *podcastRepository) Create(ctx context.Context, p *models.Podcast) error {
	// GORM populates p.ID
	return wrap("create podcast", r.db.WithContext(ctx).Create(p).Error)
}

// Update writes title and description only. Creator and creation date are
// fixed once the row exists.
func (r *podcastRepository) Update(ctx context.Context, p *models.Podcast) error {
	result := r.db.WithContext(ctx).Model(&models.Podcast{}).
		Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"title":       p.Title,
			"description": p.Description,
		})
	if result.Error != nil {
		return wrap("update podcast", result.Error)
	}
	if result.RowsAffected == 0 {
		return wrap("update podcast", ErrNotFound)
	}
	return nil
}

// Delete removes the podcast together with its episodes, their comments and
// its subscriptions in one transaction. The schema has no ON DELETE CASCADE.
// Comments kept in Redis are the caller's job.
func (r *podcastRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		episodeIDs := tx.Model(&models.Episode{}).Select("id").Where("podcast_id = ?", id)
		if err := tx.Where("episode_id IN (?)", episodeIDs).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete podcast comments: %w", err)
		}
		if err := tx.Where("podcast_id = ?", id).Delete(&models.Subscription{}).Error; err != nil {
			return fmt.Errorf("delete podcast subscriptions: %w", err)
		}
		if err := tx.Where("podcast_id = ?", id).Delete(&models.Episode{}).Error; err != nil {
			return fmt.Errorf("delete podcast episodes: %w", err)
		}
		result := tx.Delete(&models.Podcast{}, id)
		if result.Error != nil {
			return wrap("delete podcast", result.Error)
		}
		if result.RowsAffected == 0 {
			return wrap("delete podcast", ErrNotFound)
		}
		return nil
	})
}

func (r *podcastRepository) Recent(ctx context.Context, n int) ([]models.Podcast, error) {
	var list []models.Podcast
	if err := r.db.WithContext(ctx).Order("created_date desc").Limit(n).Find(&list).Error; err != nil {
		return nil, wrap("recent podcasts", err)
	}
	return list, nil
}

func (r *podcastRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Podcast{}).Count(&total).Error; err != nil {
		return 0, wrap("count podcasts", err)
	}
	return total, nil
}

// EpisodeCounts returns podcast id -> number of episodes. Podcasts without
// episodes are present with 0.
func (r *podcastRepository) EpisodeCounts(ctx context.Context, ids []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}
	var rows []struct {
		PodcastID int64
		Total     int64
	}
	if err := r.db.WithContext(ctx).Model(&models.Episode{}).
		Select("podcast_id, COUNT(*) AS total").
		Where("podcast_id IN ?", ids).
		Group("podcast_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count episodes per podcast: %w", err)
	}
	for _, id := range ids {
		counts[id] = 0
	}
	for _, row := range rows {
		counts[row.PodcastID] = row.Total
	}
	return counts, nil
}
