package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"podcasthub/internal/config"
	"podcasthub/internal/microservices/http-api/models"
	"podcasthub/internal/microservices/http-api/repository"
	"podcasthub/internal/middleware/auth"
	"podcasthub/internal/policy"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrRoleNotAllowed     = errors.New("role cannot be chosen at registration")
)

const minPasswordLength = 8

// RegisterInput is what a new account needs.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	Role        policy.Role
}

// Claims is the JWT payload for access tokens.
type Claims struct {
	UserID string      `json:"user_id"`
	Role   policy.Role `json:"role"`
	Type   string      `json:"type"`
	jwt.RegisteredClaims
}

type AuthService interface {
	// Register creates a Podcaster or Listener account.
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	// Provision creates an account with any role. Used by the seeder and CLI.
	Provision(ctx context.Context, in RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user *models.User, err error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (newAccessToken string, err error)
	Revoke(ctx context.Context, refreshToken string) error
	ValidateToken(tokenString string) (policy.Principal, error)
}

type authService struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	jwtSecret        string
	accessTokenTTL   time.Duration
	refreshTokenTTL  time.Duration
	now              func() time.Time
}

func NewAuthService(
	userRepo repository.UserRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	cfg *config.Config,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		jwtSecret:        cfg.JWTSecret,
		accessTokenTTL:   cfg.AccessTokenTTL,  // 15 minutes
		refreshTokenTTL:  cfg.RefreshTokenTTL, // 7 days
		now:              time.Now,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	switch in.Role {
	case policy.RolePodcaster, policy.RoleListener:
	case policy.RoleAdmin:
		return nil, ErrRoleNotAllowed
	default:
		return nil, fmt.Errorf("%w: %q", ErrRoleNotAllowed, in.Role)
	}
	return s.Provision(ctx, in)
}

func (s *authService) Provision(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if len(in.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrRoleNotAllowed, in.Role)
	}

	// Check if email exists
	if _, err := s.userRepo.FindByID(ctx, email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}
	user := &models.User{
		ID:          email,
		DisplayName: displayName,
		Password:    hashedPassword,
		Role:        in.Role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	slog.Info("user_registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// Login authenticates a user and returns access and refresh tokens.
func (s *authService) Login(ctx context.Context, email, password string) (string, string, *models.User, error) {
	user, err := s.userRepo.FindByID(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return "", "", nil, err
		}
		// keep timing the same as a wrong password
		auth.BurnCompare(password)
		return "", "", nil, ErrInvalidCredentials
	}

	if err := auth.VerifyPassword(user.Password, password); err != nil {
		return "", "", nil, ErrInvalidCredentials
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return "", "", nil, err
	}
	refreshToken, err := s.generateRefreshToken(ctx, user)
	if err != nil {
		return "", "", nil, err
	}

	if err := s.userRepo.TouchLastLogin(ctx, user.ID, s.now().UTC()); err != nil {
		slog.Warn("last_login_update_failed", "user_id", user.ID, "error", err)
	}
	return accessToken, refreshToken, user, nil
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		Type:   "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

func (s *authService) generateRefreshToken(ctx context.Context, user *models.User) (string, error) {
	refreshToken := &models.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Token:     uuid.New().String(),
		ExpiresAt: s.now().Add(s.refreshTokenTTL),
	}
	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return "", err
	}
	return refreshToken.Token, nil
}

func (s *authService) RefreshAccessToken(ctx context.Context, refreshTokenString string) (string, error) {
	refreshToken, err := s.refreshTokenRepo.FindByToken(ctx, refreshTokenString)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}
	if refreshToken.Revoked {
		return "", ErrInvalidToken
	}
	if !refreshToken.Usable(s.now()) {
		return "", ErrExpiredToken
	}

	// Role is read again so a role change takes effect on the next refresh
	user, err := s.userRepo.FindByID(ctx, refreshToken.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}
	return s.generateAccessToken(user)
}

func (s *authService) Revoke(ctx context.Context, refreshTokenString string) error {
	refreshToken, err := s.refreshTokenRepo.FindByToken(ctx, refreshTokenString)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	return s.refreshTokenRepo.Revoke(ctx, refreshToken.ID)
}

// ValidateToken parses an access token and returns the principal it names.
func (s *authService) ValidateToken(tokenString string) (policy.Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return policy.Anonymous(), ErrExpiredToken
		}
		return policy.Anonymous(), ErrInvalidToken
	}
	if !token.Valid || claims.Type != "access" {
		return policy.Anonymous(), ErrInvalidToken
	}

	p := policy.Principal{ID: claims.UserID, Role: claims.Role}
	if !p.Authenticated() {
		return policy.Anonymous(), ErrInvalidToken
	}
	return p, nil
}
