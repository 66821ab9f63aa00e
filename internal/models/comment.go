package models

import "time"

// Comment represents a comment on a post
type Comment struct {
	CommentID  string    `json:"commentId"`
	PostID     string    `json:"postId"`
	Body       string    `json:"body"`
	UserHandle string    `json:"userHandle"`
	UserImage  string    `json:"userImage"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CreateCommentRequest defines the request body for commenting on a post
type CreateCommentRequest struct {
	Body string `json:"body"`
}
