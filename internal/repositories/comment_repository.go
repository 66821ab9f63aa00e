package repositories

import (
	"context"

	"github.com/anonto42/socialape/backend/internal/models"
	"github.com/anonto42/socialape/backend/internal/store"
)

// CommentRepository reads and writes comments through a store or a transaction.
type CommentRepository struct {
	db store.Tx
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db store.Tx) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create stores a new comment, assigning it an id when it has none.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.CommentID == "" {
		comment.CommentID = store.NewID()
	}
	return r.db.Create(ctx, CommentsCollection, comment.CommentID, store.Fields{
		"postId":     comment.PostID,
		"body":       comment.Body,
		"userHandle": comment.UserHandle,
		"userImage":  comment.UserImage,
		"createdAt":  comment.CreatedAt,
	})
}

// ListByPost returns the comments on a post, newest first.
func (r *CommentRepository) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	docs, err := r.db.Query(ctx, CommentsCollection, store.Where("postId", postID).Newest("createdAt"))
	if err != nil {
		return nil, err
	}
	comments := make([]models.Comment, 0, len(docs))
	for _, d := range docs {
		comments = append(comments, commentFromDocument(d))
	}
	return comments, nil
}

func commentFromDocument(doc store.Document) models.Comment {
	f := doc.Fields
	return models.Comment{
		CommentID:  doc.ID,
		PostID:     f.String("postId"),
		Body:       f.String("body"),
		UserHandle: f.String("userHandle"),
		UserImage:  f.String("userImage"),
		CreatedAt:  f.Time("createdAt"),
	}
}
