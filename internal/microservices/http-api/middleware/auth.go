package middleware

import (
	"errors"
	"net/http"
	"strings"

	"podcasthub/internal/microservices/http-api/service"
	"podcasthub/internal/policy"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// TokenValidator is the part of service.AuthService the middleware needs.
type TokenValidator interface {
	ValidateToken(tokenString string) (policy.Principal, error)
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// ok is false when the header is absent, err is set when it is malformed.
func bearerToken(c *gin.Context) (token string, ok bool, err error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false, nil
	}
	parts := strings.Split(authHeader, " ") // 0 is Bearer, 1 is token
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", true, errors.New("invalid authorization header format")
	}
	return parts[1], true, nil
}

func setPrincipal(c *gin.Context, p policy.Principal) {
	c.Set(principalKey, p)
	c.Set("userID", p.ID)
	c.Set("role", p.Role)
}

// AuthMiddleware rejects requests without a valid access token and stores the
// caller's principal in the context for handlers to use.
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok, err := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		p, err := validator.ValidateToken(token)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, service.ErrExpiredToken) {
				msg = "token has expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		setPrincipal(c, p)
		c.Next()
	}
}

// OptionalAuth resolves the principal when a token is present and otherwise
// leaves the request anonymous. A bad token is still rejected.
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok, err := bearerToken(c)
		if !ok {
			setPrincipal(c, policy.Anonymous())
			c.Next()
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		p, err := validator.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		setPrincipal(c, p)
		c.Next()
	}
}

// PrincipalFrom returns the caller set by AuthMiddleware or OptionalAuth,
// or the anonymous principal.
func PrincipalFrom(c *gin.Context) policy.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return policy.Anonymous()
	}
	p, ok := v.(policy.Principal)
	if !ok {
		return policy.Anonymous()
	}
	return p
}

// RequireAuth rejects anonymous callers. Use after OptionalAuth.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !PrincipalFrom(c).Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// RequireRole checks the caller holds one of roles.
func RequireRole(roles ...policy.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := PrincipalFrom(c)
		if !p.Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		for _, r := range roles {
			if p.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":    "Insufficient permissions",
			"required": roles,
			"current":  p.Role,
		})
	}
}

// RequireAdmin is a convenience function for requiring admin role
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(policy.RoleAdmin)
}
