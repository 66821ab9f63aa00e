package models

// Like represents a like on a post. A user likes a post at most once.
type Like struct {
	LikeID     string `json:"likeId"`
	PostID     string `json:"postId"`
	UserHandle string `json:"userHandle"`
}
