package handlers

import (
	"net/http"

	"github.com/anonto42/socialape/backend/internal/apperrors"
	"github.com/anonto42/socialape/backend/internal/models"
	"github.com/anonto42/socialape/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	posts *services.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.GET("/posts", h.GetPosts)
	g.POST("/post", h.CreatePost, requireAuth)
	g.GET("/post/:id", h.GetPost)
	g.DELETE("/post/:id", h.DeletePost, requireAuth)
}

// GetPosts lists every post, newest first
func (h *PostHandler) GetPosts(c echo.Context) error {
	posts, err := h.posts.ListAllPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

// CreatePost creates a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("Invalid request payload")
	}

	post, err := h.posts.CreatePost(c.Request().Context(), identity, req.Body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, post)
}

// GetPost retrieves a post and its comments
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.posts.GetPost(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost deletes a post owned by the caller
func (h *PostHandler) DeletePost(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	if err := h.posts.DeletePost(c.Request().Context(), identity, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, message("Post deleted successfully"))
}
