package models

import (
	"time"

	"podcasthub/internal/policy"
)

type Podcast struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string    `json:"title" gorm:"size:200;not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatorID   string    `json:"creator_id" gorm:"size:254;not null;index"`
	CreatedAt   time.Time `json:"created_date" gorm:"column:created_date;not null"`
}

func (Podcast) TableName() string {
	return "podcasts"
}

// Ref is nil-safe so a failed lookup flows into the policy as NotFound.
func (p *Podcast) Ref() *policy.PodcastRef {
	if p == nil {
		return nil
	}
	return &policy.PodcastRef{ID: p.ID, CreatorID: p.CreatorID}
}
