package repository

import (
	"context"
	"time"

	"podcasthub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// RefreshTokenRepository handles database operations for refresh tokens
type RefreshTokenRepository interface {
	Create(ctx context.Context, refreshToken *models.RefreshToken) error
	FindByToken(ctx context.Context, tokenString string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, tokenID string) error
	RevokeAllForUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type refreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (r *refreshTokenRepository) Create(ctx context.Context, refreshToken *models.RefreshToken) error {
	return wrap("create refresh token", r.db.WithContext(ctx).Create(refreshToken).Error)
}

func (r *refreshTokenRepository) FindByToken(ctx context.Context, tokenString string) (*models.RefreshToken, error) {
	var refreshToken models.RefreshToken
	if err := r.db.WithContext(ctx).Where("token = ?", tokenString).First(&refreshToken).Error; err != nil {
		return nil, wrap("find refresh token", err)
	}
	return &refreshToken, nil
}

func (r *refreshTokenRepository) Revoke(ctx context.Context, tokenID string) error {
	return wrap("revoke refresh token", r.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("id = ?", tokenID).
		Update("revoked", true).Error)
}

// RevokeAllForUser is used when an account's role changes or it is deleted.
func (r *refreshTokenRepository) RevokeAllForUser(ctx context.Context, userID string) error {
	return wrap("revoke user refresh tokens", r.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error)
}

// DeleteExpired removes tokens past expiry and returns how many rows went away.
func (r *refreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.RefreshToken{})
	return result.RowsAffected, wrap("delete expired refresh tokens", result.Error)
}
