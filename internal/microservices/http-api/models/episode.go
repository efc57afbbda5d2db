package models

import (
	"time"

	"podcasthub/internal/policy"
)

type Episode struct {
	ID              int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	PodcastID       int64     `json:"podcast_id" gorm:"not null;index"`
	Title           string    `json:"title" gorm:"size:300;not null"`
	ReleaseDate     time.Time `json:"release_date" gorm:"not null;index"`
	DurationSeconds int64     `json:"duration_seconds" gorm:"not null;default:0"`
	PlayCount       int64     `json:"play_count" gorm:"not null;default:0"`
	ViewCount       int64     `json:"view_count" gorm:"not null;default:0;index"`
	AudioURL        string    `json:"audio_url" gorm:"type:text;not null"`

	// Associations
	Podcast *Podcast `json:"podcast,omitempty" gorm:"foreignKey:PodcastID"`
}

func (Episode) TableName() string {
	return "episodes"
}

func (e *Episode) Duration() time.Duration {
	return time.Duration(e.DurationSeconds) * time.Second
}

// Ref pairs the episode with parent, which may be nil when the podcast no longer exists.
func (e *Episode) Ref(parent *Podcast) *policy.EpisodeRef {
	if e == nil {
		return nil
	}
	return &policy.EpisodeRef{ID: e.ID, Podcast: parent.Ref()}
}

// OwnedRef resolves ownership through the preloaded Podcast.
func (e *Episode) OwnedRef() *policy.EpisodeRef {
	if e == nil {
		return nil
	}
	return e.Ref(e.Podcast)
}
