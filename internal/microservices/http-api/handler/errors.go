package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"podcasthub/internal/microservices/http-api/repository"
	"podcasthub/internal/microservices/http-api/service"
	"podcasthub/internal/policy"

	"github.com/gin-gonic/gin"
)

const (
	requestTimeout = 5 * time.Second
	uploadTimeout  = 2 * time.Minute
)

var validationErrors = []error{
	service.ErrInvalidPodcast,
	service.ErrInvalidEpisode,
	service.ErrAudioRequired,
	service.ErrNegativeDuration,
	service.ErrInvalidSearchType,
	service.ErrInvalidDateRange,
	service.ErrInvalidComment,
	service.ErrInvalidEmail,
	service.ErrWeakPassword,
	service.ErrRoleNotAllowed,
}

// respondError maps service and policy errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var denied *policy.DeniedError
	if errors.As(err, &denied) {
		status := http.StatusForbidden
		if denied.Reason == policy.ReasonUnauthenticated {
			status = http.StatusUnauthorized
		}
		body := gin.H{"error": denied.Error(), "reason": denied.Reason}
		if denied.Reason == policy.ReasonEditWindowExpired {
			body["hours_ago"] = denied.HoursAgo
		}
		c.JSON(status, body)
		return
	}

	switch {
	case errors.Is(err, policy.ErrNotFound), errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case errors.Is(err, service.ErrEmailInUse):
		c.JSON(http.StatusConflict, gin.H{"error": "Account creation failed"})
		return
	case errors.Is(err, service.ErrAudioTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return
	case errors.Is(err, service.ErrAudioUpload):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Audio upload failed. Please try again."})
		return
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request timed out"})
		return
	}
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	slog.Error("request_failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// paramID parses a positive int64 path parameter, answering 400 when it is not one.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}
