package models

import (
	"time"

	"podcasthub/internal/policy"
)

// MaxCommentLength is the longest comment text accepted, in characters.
const MaxCommentLength = 1000

type Comment struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	EpisodeID   int64     `json:"episode_id" gorm:"not null;index"`
	UserID      string    `json:"user_id" gorm:"size:254;not null;index"`
	Text        string    `json:"text" gorm:"column:comment_text;size:1000;not null"`
	CommentDate time.Time `json:"comment_date" gorm:"not null"`
}

func (Comment) TableName() string {
	return "comments"
}

// Ref builds the policy view; episode and parent may be nil.
func (c *Comment) Ref(episode *Episode, parent *Podcast) *policy.CommentRef {
	if c == nil {
		return nil
	}
	return &policy.CommentRef{
		ID:       c.ID,
		AuthorID: c.UserID,
		PostedAt: c.CommentDate,
		Episode:  episode.Ref(parent),
	}
}
