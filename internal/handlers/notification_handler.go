package handlers

import (
	"net/http"

	"github.com/anonto42/socialape/backend/internal/apperrors"
	"github.com/anonto42/socialape/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles HTTP requests related to notifications
type NotificationHandler struct {
	users *services.UserService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(users *services.UserService) *NotificationHandler {
	return &NotificationHandler{users: users}
}

// RegisterNotificationRoutes registers notification-related routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/notifications", h.MarkAsRead, requireAuth)
}

// MarkAsRead marks the notifications whose ids make up the body as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	var ids []string
	if err := c.Bind(&ids); err != nil {
		return apperrors.Validation("Body must be an array of notification ids")
	}
	if _, err := h.users.MarkNotificationsRead(c.Request().Context(), identity, ids); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, message("Notifications marked read"))
}
