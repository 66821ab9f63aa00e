package handlers

import (
	"net/http"

	"github.com/anonto42/socialape/backend/internal/apperrors"
	"github.com/anonto42/socialape/backend/internal/models"
	"github.com/anonto42/socialape/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	engagement *services.EngagementService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(engagement *services.EngagementService) *CommentHandler {
	return &CommentHandler{engagement: engagement}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/post/:id/comment", h.CreateComment, requireAuth)
}

// CreateComment comments on a post as the caller
func (h *CommentHandler) CreateComment(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("Invalid request payload")
	}

	comment, err := h.engagement.CommentOnPost(c.Request().Context(), identity, c.Param("id"), req.Body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, comment)
}
