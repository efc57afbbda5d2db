package handler

import (
	"context"
	"errors"
	"net/http"

	"podcasthub/internal/microservices/http-api/dto"
	"podcasthub/internal/microservices/http-api/middleware"
	"podcasthub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

func (h *SubscriptionHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/subscriptions", middleware.RequireAuth(), h.List)

	sub := router.Group("/podcasts/:id/subscription", middleware.RequireAuth())
	{
		sub.GET("", h.Status)
		sub.POST("", h.Subscribe)
		sub.DELETE("", h.Unsubscribe)
	}
}

func (h *SubscriptionHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	subs, err := h.subscriptionService.List(ctx, middleware.PrincipalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.FromModelsToSubscriptionResponses(subs)})
}

// Subscribe is idempotent: a repeat answers 200 with already_subscribed.
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	podcastID, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	sub, err := h.subscriptionService.Subscribe(ctx, middleware.PrincipalFrom(c), podcastID)
	if errors.Is(err, service.ErrAlreadySubscribed) {
		c.JSON(http.StatusOK, dto.SubscribeResponse{
			Subscription:      dto.FromModelToSubscriptionResponse(sub),
			AlreadySubscribed: true,
		})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.SubscribeResponse{Subscription: dto.FromModelToSubscriptionResponse(sub)})
}

func (h *SubscriptionHandler) Unsubscribe(c *gin.Context) {
	podcastID, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.subscriptionService.Unsubscribe(ctx, middleware.PrincipalFrom(c), podcastID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Unsubscribed"})
}

func (h *SubscriptionHandler) Status(c *gin.Context) {
	podcastID, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	subscribed, err := h.subscriptionService.IsSubscribed(ctx, middleware.PrincipalFrom(c), podcastID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SubscriptionStatusResponse{PodcastID: podcastID, Subscribed: subscribed})
}
