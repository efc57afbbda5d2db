package repository

import (
	"context"

	"podcasthub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// CommentRepository is the storage capability for comments. Postgres and
// Redis both implement it; one is chosen when the server starts.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	UpdateText(ctx context.Context, id int64, text string) error
	Delete(ctx context.Context, id int64) error
	DeleteByEpisodes(ctx context.Context, episodeIDs []int64) error
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	// ListByEpisode returns newest first.
	ListByEpisode(ctx context.Context, episodeID int64) ([]models.Comment, error)
	ListByEpisodes(ctx context.Context, episodeIDs []int64) ([]models.Comment, error)
	ListAll(ctx context.Context) ([]models.Comment, error)
	Count(ctx context.Context) (int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create a new comment
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return wrap("create comment", r.db.WithContext(ctx).Create(comment).Error)
}

// UpdateText replaces the text only; author and date never change.
func (r *commentRepository) UpdateText(ctx context.Context, id int64, text string) error {
	result := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", id).
		Update("comment_text", text)
	if result.Error != nil {
		return wrap("update comment", result.Error)
	}
	if result.RowsAffected == 0 {
		return wrap("update comment", ErrNotFound)
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if result.Error != nil {
		return wrap("delete comment", result.Error)
	}
	if result.RowsAffected == 0 {
		return wrap("delete comment", ErrNotFound)
	}
	return nil
}

func (r *commentRepository) DeleteByEpisodes(ctx context.Context, episodeIDs []int64) error {
	if len(episodeIDs) == 0 {
		return nil
	}
	return wrap("delete episode comments", r.db.WithContext(ctx).
		Where("episode_id IN ?", episodeIDs).
		Delete(&models.Comment{}).Error)
}

// GetByID retrieves a comment by its ID
func (r *commentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, wrap("get comment", err)
	}
	return &comment, nil
}

func (r *commentRepository) ListByEpisode(ctx context.Context, episodeID int64) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("episode_id = ?", episodeID).
		Order("comment_date DESC").
		Find(&comments).Error
	if err != nil {
		return nil, wrap("list episode comments", err)
	}
	return comments, nil
}

func (r *commentRepository) ListByEpisodes(ctx context.Context, episodeIDs []int64) ([]models.Comment, error) {
	comments := []models.Comment{}
	if len(episodeIDs) == 0 {
		return comments, nil
	}
	err := r.db.WithContext(ctx).
		Where("episode_id IN ?", episodeIDs).
		Order("comment_date DESC").
		Find(&comments).Error
	if err != nil {
		return nil, wrap("list comments by episodes", err)
	}
	return comments, nil
}

func (r *commentRepository) ListAll(ctx context.Context) ([]models.Comment, error) {
	var comments []models.Comment
	if err := r.db.WithContext(ctx).Order("comment_date DESC").Find(&comments).Error; err != nil {
		return nil, wrap("list comments", err)
	}
	return comments, nil
}

func (r *commentRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Count(&total).Error; err != nil {
		return 0, wrap("count comments", err)
	}
	return total, nil
}
