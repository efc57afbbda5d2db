package repository

import (
	"context"
	"strings"
	"time"

	"podcasthub/internal/microservices/http-api/models"
	"podcasthub/internal/policy"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateRole(ctx context.Context, id string, role policy.Role) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	CountByRole(ctx context.Context) (map[policy.Role]int64, error)
}

// userRepository is the GORM implementation of UserRepository.
type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// normalizeID lowercases emails so lookups are case-insensitive.
func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = normalizeID(user.ID)
	return wrap("create user", r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	// return nil on error: a zero-value user would look like a found record
	if err := r.db.WithContext(ctx).First(&user, "id = ?", normalizeID(id)).Error; err != nil {
		return nil, wrap("find user", err)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("role, id").Find(&users).Error; err != nil {
		return nil, wrap("list users", err)
	}
	return users, nil
}

func (r *userRepository) UpdateRole(ctx context.Context, id string, role policy.Role) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", normalizeID(id)).
		Update("role", role)
	if result.Error != nil {
		return wrap("update role", result.Error)
	}
	if result.RowsAffected == 0 {
		return wrap("update role", ErrNotFound)
	}
	return nil
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return wrap("touch last login", r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", normalizeID(id)).
		UpdateColumn("last_login", at).Error)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", normalizeID(id)).Delete(&models.User{})
	if result.Error != nil {
		return wrap("delete user", result.Error)
	}
	if result.RowsAffected == 0 {
		return wrap("delete user", ErrNotFound)
	}
	return nil
}

func (r *userRepository) CountByRole(ctx context.Context) (map[policy.Role]int64, error) {
	var rows []struct {
		Role  policy.Role
		Count int64
	}
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&rows).Error; err != nil {
		return nil, wrap("count users by role", err)
	}
	counts := make(map[policy.Role]int64, len(policy.Roles))
	for _, role := range policy.Roles {
		counts[role] = 0
	}
	for _, row := range rows {
		counts[row.Role] = row.Count
	}
	return counts, nil
}
