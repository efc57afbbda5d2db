package dto

import "podcasthub/internal/microservices/http-api/service"

type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type DashboardResponse struct {
	TotalUsers         int64             `json:"total_users"`
	TotalPodcasts      int64             `json:"total_podcasts"`
	TotalEpisodes      int64             `json:"total_episodes"`
	TotalSubscriptions int64             `json:"total_subscriptions"`
	TotalComments      int64             `json:"total_comments"`
	UsersByRole        map[string]int64  `json:"users_by_role"`
	RecentPodcasts     []PodcastResponse `json:"recent_podcasts"`
	RecentEpisodes     []EpisodeResponse `json:"recent_episodes"`
}

func FromDashboard(d *service.Dashboard) DashboardResponse {
	byRole := make(map[string]int64, len(d.UsersByRole))
	for role, n := range d.UsersByRole {
		byRole[role.String()] = n
	}
	return DashboardResponse{
		TotalUsers:         d.TotalUsers,
		TotalPodcasts:      d.TotalPodcasts,
		TotalEpisodes:      d.TotalEpisodes,
		TotalSubscriptions: d.TotalSubscriptions,
		TotalComments:      d.TotalComments,
		UsersByRole:        byRole,
		RecentPodcasts:     FromModelsToPodcastResponses(d.RecentPodcasts),
		RecentEpisodes:     FromModelsToEpisodeResponses(d.RecentEpisodes),
	}
}

type ProfileResponse struct {
	User          UserResponse           `json:"user"`
	Podcasts      []PodcastResponse      `json:"podcasts"`
	Episodes      []EpisodeResponse      `json:"episodes"`
	Subscriptions []SubscriptionResponse `json:"subscriptions"`
}

func FromProfile(p *service.Profile) ProfileResponse {
	return ProfileResponse{
		User:          FromModelToUserResponse(p.User),
		Podcasts:      FromModelsToPodcastResponses(p.Podcasts),
		Episodes:      FromModelsToEpisodeResponses(p.Episodes),
		Subscriptions: FromModelsToSubscriptionResponses(p.Subscriptions),
	}
}
