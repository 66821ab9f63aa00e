package models

import "time"

// Post is a text entry. LikeCount and CommentCount are maintained alongside
// the likes and comments collections, not recomputed on read.
type Post struct {
	PostID       string    `json:"postId"`
	Body         string    `json:"body"`
	UserHandle   string    `json:"userHandle"`
	UserImage    string    `json:"userImage"`
	CreatedAt    time.Time `json:"createdAt"`
	LikeCount    int64     `json:"likeCount"`
	CommentCount int64     `json:"commentCount"`
}

// PostWithComments is a post together with its comments, newest first.
type PostWithComments struct {
	Post
	Comments []Comment `json:"comments"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Body string `json:"body"`
}
