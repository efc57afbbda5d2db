package dto

import (
	"time"

	"podcasthub/internal/microservices/http-api/models"
)

type SubscriptionResponse struct {
	ID               int64            `json:"id"`
	PodcastID        int64            `json:"podcast_id"`
	SubscriptionDate time.Time        `json:"subscription_date"`
	Podcast          *PodcastResponse `json:"podcast,omitempty"`
}

// SubscribeResponse reports already_subscribed instead of failing on a repeat subscribe.
type SubscribeResponse struct {
	Subscription      SubscriptionResponse `json:"subscription"`
	AlreadySubscribed bool                 `json:"already_subscribed"`
}

type SubscriptionStatusResponse struct {
	PodcastID  int64 `json:"podcast_id"`
	Subscribed bool  `json:"subscribed"`
}

func FromModelToSubscriptionResponse(s *models.Subscription) SubscriptionResponse {
	resp := SubscriptionResponse{
		ID:               s.ID,
		PodcastID:        s.PodcastID,
		SubscriptionDate: s.SubscriptionDate,
	}
	if s.Podcast != nil {
		p := FromModelToPodcastResponse(s.Podcast)
		resp.Podcast = &p
	}
	return resp
}

func FromModelsToSubscriptionResponses(subs []models.Subscription) []SubscriptionResponse {
	out := make([]SubscriptionResponse, 0, len(subs))
	for i := range subs {
		out = append(out, FromModelToSubscriptionResponse(&subs[i]))
	}
	return out
}
