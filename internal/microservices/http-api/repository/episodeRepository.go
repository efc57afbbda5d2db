package repository

import (
	"context"
	"strings"
	"time"

	"podcasthub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type EpisodeRepository interface {
	List(ctx context.Context) ([]models.Episode, error)
	ListByPodcast(ctx context.Context, podcastID int64) ([]models.Episode, error)
	ListByPodcasts(ctx context.Context, podcastIDs []int64) ([]models.Episode, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]models.Episode, error)
	GetByID(ctx context.Context, id int64) (*models.Episode, error)
	Create(ctx context.Context, e *models.Episode) error
	Update(ctx context.Context, e *models.Episode) error
	Delete(ctx context.Context, id int64) error

	SearchByTopic(ctx context.Context, term string) ([]models.Episode, error)
	SearchByHost(ctx context.Context, term string) ([]models.Episode, error)
	Search(ctx context.Context, term string) ([]models.Episode, error)
	Popular(ctx context.Context, n int) ([]models.Episode, error)

	IncrementViews(ctx context.Context, id int64) error
	IncrementPlayCount(ctx context.Context, id int64) error

	Recent(ctx context.Context, n int) ([]models.Episode, error)
	Count(ctx context.Context) (int64, error)
}

type episodeRepository struct {
	db *gorm.DB
}

func NewEpisodeRepository(db *gorm.DB) EpisodeRepository {
	return &episodeRepository{db: db}
}

// withPodcast preloads the parent so callers can resolve ownership.
func (r *episodeRepository) withPodcast(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Podcast")
}

func (r *episodeRepository) List(ctx context.Context) ([]models.Episode, error) {
	var list []models.Episode
	if err := r.withPodcast(ctx).Order("release_date desc").Find(&list).Error; err != nil {
		return nil, wrap("list episodes", err)
	}
	return list, nil
}

func (r *episodeRepository) ListByPodcast(ctx context.Context, podcastID int64) ([]models.Episode, error) {
	var list []models.Episode
	if err := r.db.WithContext(ctx).
		Where("podcast_id = ?", podcastID).
		Order("release_date desc").
		Find(&list).Error; err != nil {
		return nil, wrap("list episodes by podcast", err)
	}
	return list, nil
}

func (r *episodeRepository) ListByPodcasts(ctx context.Context, podcastIDs []int64) ([]models.Episode, error) {
	list := []models.Episode{}
	if len(podcastIDs) == 0 {
		return list, nil
	}
	if err := r.withPodcast(ctx).
		Where("podcast_id IN ?", podcastIDs).
		Order("release_date desc").
		Find(&list).Error; err != nil {
		return nil, wrap("list episodes by podcasts", err)
	}
	return list, nil
}

// ListByDateRange returns episodes released in [from, to]. A zero bound is open.
func (r *episodeRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]models.Episode, error) {
	q := r.withPodcast(ctx)
	if !from.IsZero() {
		q = q.Where("release_date >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("release_date <= ?", to)
	}
	var list []models.Episode
	if err := q.Order("release_date desc").Find(&list).Error; err != nil {
		return nil, wrap("list episodes by date range", err)
	}
	return list, nil
}

func (r *episodeRepository) GetByID(ctx context.Context, id int64) (*models.Episode, error) {
	var e models.Episode
	if err := r.withPodcast(ctx).First(&e, id).Error; err != nil {
		return nil, wrap("get episode", err)
	}
	return &e, nil
}

func (r *episodeRepository) Create(ctx context.Context, e *models.Episode) error {
	return wrap("create episode", r.db.WithContext(ctx).Omit("Podcast").Create(e).Error)
}

// Update writes the editable columns. Counters are only touched through the
// increment methods so an edit never rolls them back.
func (r *episodeRepository) Update(ctx context.Context, e *models.Episode) error {
	result := r.db.WithContext(ctx).Model(&models.Episode{}).
		Where("id = ?", e.ID).
		Updates(map[string]interface{}{
			"title":            e.Title,
			"release_date":     e.ReleaseDate,
			"duration_seconds": e.DurationSeconds,
			"audio_url":        e.AudioURL,
		})
	if result.Error != nil {
		return wrap("update episode", result.Error)
	}
	if result.RowsAffected == 0 {
		return wrap("update episode", ErrNotFound)
	}
	return nil
}

func (r *episodeRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Episode{}, id)
	if result.Error != nil {
		return wrap("delete episode", result.Error)
	}
	if result.RowsAffected == 0 {
		return wrap("delete episode", ErrNotFound)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// likePattern wraps term for a substring ILIKE. Wildcards in the term match
// literally; backslash is the Postgres default LIKE escape.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(term)) + "%"
}

func (r *episodeRepository) SearchByTopic(ctx context.Context, term string) ([]models.Episode, error) {
	list := []models.Episode{}
	if strings.TrimSpace(term) == "" {
		return list, nil
	}
	if err := r.withPodcast(ctx).
		Where("episodes.title ILIKE ?", likePattern(term)).
		Order("release_date desc").
		Find(&list).Error; err != nil {
		return nil, wrap("search episodes by topic", err)
	}
	return list, nil
}

func (r *episodeRepository) SearchByHost(ctx context.Context, term string) ([]models.Episode, error) {
	list := []models.Episode{}
	if strings.TrimSpace(term) == "" {
		return list, nil
	}
	if err := r.withPodcast(ctx).
		Joins("JOIN podcasts ON podcasts.id = episodes.podcast_id").
		Where("podcasts.creator_id ILIKE ?", likePattern(term)).
		Order("episodes.release_date desc").
		Find(&list).Error; err != nil {
		return nil, wrap("search episodes by host", err)
	}
	return list, nil
}

// Search matches episode title, podcast title or creator. The join is one row
// per episode so the result is already distinct by episode id.
func (r *episodeRepository) Search(ctx context.Context, term string) ([]models.Episode, error) {
	list := []models.Episode{}
	if strings.TrimSpace(term) == "" {
		return list, nil
	}
	p := likePattern(term)
	if err := r.withPodcast(ctx).
		Joins("JOIN podcasts ON podcasts.id = episodes.podcast_id").
		Where("episodes.title ILIKE ? OR podcasts.title ILIKE ? OR podcasts.creator_id ILIKE ?", p, p, p).
		Order("episodes.release_date desc").
		Find(&list).Error; err != nil {
		return nil, wrap("search episodes", err)
	}
	return list, nil
}

func (r *episodeRepository) Popular(ctx context.Context, n int) ([]models.Episode, error) {
	var list []models.Episode
	if err := r.withPodcast(ctx).
		Order("view_count desc").
		Order("id").
		Limit(n).
		Find(&list).Error; err != nil {
		return nil, wrap("popular episodes", err)
	}
	return list, nil
}

// increment bumps a counter column in a single statement so concurrent
// requests never lose an update.
func (r *episodeRepository) increment(ctx context.Context, id int64, column string) error {
	result := r.db.WithContext(ctx).Model(&models.Episode{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1))
	if result.Error != nil {
		return wrap("increment "+column, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrap("increment "+column, ErrNotFound)
	}
	return nil
}

func (r *episodeRepository) IncrementViews(ctx context.Context, id int64) error {
	return r.increment(ctx, id, "view_count")
}

func (r *episodeRepository) IncrementPlayCount(ctx context.Context, id int64) error {
	return r.increment(ctx, id, "play_count")
}

func (r *episodeRepository) Recent(ctx context.Context, n int) ([]models.Episode, error) {
	var list []models.Episode
	if err := r.withPodcast(ctx).Order("release_date desc").Limit(n).Find(&list).Error; err != nil {
		return nil, wrap("recent episodes", err)
	}
	return list, nil
}

func (r *episodeRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Episode{}).Count(&total).Error; err != nil {
		return 0, wrap("count episodes", err)
	}
	return total, nil
}
