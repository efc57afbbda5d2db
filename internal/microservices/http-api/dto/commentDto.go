package dto

import (
	"time"

	"podcasthub/internal/microservices/http-api/service"
)

// CreateCommentDTO for creating a comment
type CreateCommentDTO struct {
	Text string `json:"text" binding:"required,min=1,max=1000"`
}

// UpdateCommentDTO for updating a comment
type UpdateCommentDTO struct {
	Text string `json:"text" binding:"required,min=1,max=1000"`
}

// CommentResponse carries the caller's edit state so clients can show or hide the edit form.
type CommentResponse struct {
	ID                 int64     `json:"id"`
	EpisodeID          int64     `json:"episode_id"`
	UserID             string    `json:"user_id"`
	Text               string    `json:"text"`
	CommentDate        time.Time `json:"comment_date"`
	Editable           bool      `json:"editable"`
	EditHoursRemaining int       `json:"edit_hours_remaining"`
}

func FromViewToCommentResponse(v *service.CommentView) CommentResponse {
	return CommentResponse{
		ID:                 v.ID,
		EpisodeID:          v.EpisodeID,
		UserID:             v.UserID,
		Text:               v.Text,
		CommentDate:        v.CommentDate,
		Editable:           v.Editable,
		EditHoursRemaining: v.EditHoursRemaining,
	}
}

func FromViewsToCommentResponses(views []service.CommentView) []CommentResponse {
	out := make([]CommentResponse, 0, len(views))
	for i := range views {
		out = append(out, FromViewToCommentResponse(&views[i]))
	}
	return out
}
