package handlers

import (
	"net/http"

	"github.com/anonto42/socialape/backend/internal/apperrors"
	"github.com/anonto42/socialape/backend/internal/models"
	"github.com/anonto42/socialape/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to user profiles
type UserHandler struct {
	users *services.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterProfileRoutes registers profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.GET("/user", h.GetProfile, requireAuth)
	g.POST("/user", h.AddUserDetails, requireAuth)
	g.POST("/user/image", h.UploadImage, requireAuth)
	g.GET("/user/:handle", h.GetUser)
}

// GetProfile returns the caller's profile, likes and notifications
func (h *UserHandler) GetProfile(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	profile, err := h.users.GetOwnProfile(c.Request().Context(), identity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// GetUser returns any user's public profile and posts
func (h *UserHandler) GetUser(c echo.Context) error {
	profile, err := h.users.GetUser(c.Request().Context(), c.Param("handle"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// AddUserDetails updates bio, website and location of the caller
func (h *UserHandler) AddUserDetails(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	var req models.UserDetailsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.users.AddUserDetails(c.Request().Context(), identity, req); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, message("Details added successfully"))
}

// UploadImage replaces the caller's profile picture with the multipart
// "image" file
func (h *UserHandler) UploadImage(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return apperrors.Validation("Image file is required").WithField("image")
	}
	file, err := fh.Open()
	if err != nil {
		return apperrors.Internal(err)
	}
	defer file.Close()

	url, err := h.users.UploadImage(c.Request().Context(), identity, fh.Header.Get(echo.HeaderContentType), file)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message":  "Image uploaded successfully",
		"imageUrl": url,
	})
}
