package models

import (
	"time"

	"podcasthub/internal/policy"
)

// Subscription links a user to a podcast. (user_id, podcast_id) carries a unique index.
type Subscription struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID           string    `gorm:"size:254;not null;uniqueIndex:ux_subscriptions_user_podcast" json:"user_id"`
	PodcastID        int64     `gorm:"not null;uniqueIndex:ux_subscriptions_user_podcast" json:"podcast_id"`
	SubscriptionDate time.Time `gorm:"not null" json:"subscription_date"`

	// Associations
	Podcast *Podcast `gorm:"foreignKey:PodcastID" json:"podcast,omitempty"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

func (s *Subscription) Ref() *policy.SubscriptionRef {
	if s == nil {
		return nil
	}
	return &policy.SubscriptionRef{UserID: s.UserID, PodcastID: s.PodcastID}
}
