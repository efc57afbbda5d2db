package models

import (
	"time"

	"podcasthub/internal/policy"
)

// User is an account. The email doubles as the stable user id referenced by
// podcasts (creator_id), subscriptions and comments.
type User struct {
	ID          string      `gorm:"primaryKey;size:254" json:"id"`
	DisplayName string      `gorm:"size:100" json:"display_name"`
	Password    string      `gorm:"column:password_hash;not null" json:"-"` // Not show in JSON
	Role        policy.Role `gorm:"type:varchar(20);not null" json:"role"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	LastLogin   *time.Time  `json:"last_login,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) Principal() policy.Principal {
	return policy.Principal{ID: u.ID, Role: u.Role}
}

func (u *User) Ref() *policy.UserRef {
	if u == nil {
		return nil
	}
	return &policy.UserRef{ID: u.ID}
}
