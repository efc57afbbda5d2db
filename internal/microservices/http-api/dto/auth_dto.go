package dto

import "podcasthub/internal/microservices/http-api/models"

// Data Transfer Objects for authentication requests and responses

// RegisterRequest: payload for account registration. Role is Podcaster or Listener.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name" binding:"omitempty,max=100"`
	Role        string `json:"role" binding:"required"`
}

// LoginRequest: payload for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse: response payload after successful authentication
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	UserID       string `json:"user_id"`
	Role         string `json:"role"`
	ExpiresIn    int64  `json:"expires_in"` // seconds
}

// RefreshTokenRequest: payload for refreshing access token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshResponse: response payload after refreshing access token
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type RevokeTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type RevokeTokenResponse struct {
	Message string `json:"message"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Role        string  `json:"role"`
	CreatedAt   string  `json:"created_at"`
	LastLogin   *string `json:"last_login,omitempty"`
}

func FromModelToUserResponse(u *models.User) UserResponse {
	resp := UserResponse{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Role:        u.Role.String(),
		CreatedAt:   u.CreatedAt.UTC().Format(timeLayout),
	}
	if u.LastLogin != nil {
		s := u.LastLogin.UTC().Format(timeLayout)
		resp.LastLogin = &s
	}
	return resp
}

func FromModelsToUserResponses(users []models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, FromModelToUserResponse(&users[i]))
	}
	return out
}
