package models

import "time"

const (
	NotificationLike    = "like"
	NotificationComment = "comment"
)

// Notification tells Recipient that Sender engaged with one of their posts.
// NotificationID is the id of the like or comment it was derived from.
type Notification struct {
	NotificationID string    `json:"notificationId"`
	Recipient      string    `json:"recipient"`
	Sender         string    `json:"sender"`
	PostID         string    `json:"postId"`
	Type           string    `json:"type"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"createdAt"`
}
