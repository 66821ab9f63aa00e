package handlers

import (
	"net/http"

	"github.com/anonto42/socialape/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles liking and unliking posts
type LikeHandler struct {
	engagement *services.EngagementService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(engagement *services.EngagementService) *LikeHandler {
	return &LikeHandler{engagement: engagement}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.GET("/post/:id/like", h.LikePost, requireAuth)
	g.GET("/post/:id/unlike", h.UnlikePost, requireAuth)
}

// LikePost likes a post and returns it with the new like count
func (h *LikeHandler) LikePost(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	post, err := h.engagement.LikePost(c.Request().Context(), identity, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// UnlikePost withdraws a like and returns the post with the new like count
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	post, err := h.engagement.UnlikePost(c.Request().Context(), identity, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}
