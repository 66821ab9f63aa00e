package repositories

import (
	"context"

	"github.com/anonto42/socialape/backend/internal/models"
	"github.com/anonto42/socialape/backend/internal/store"
)

// LikeRepository reads and writes likes through a store or a transaction.
type LikeRepository struct {
	db store.Tx
}

// NewLikeRepository creates a new LikeRepository
func NewLikeRepository(db store.Tx) *LikeRepository {
	return &LikeRepository{db: db}
}

// Create stores a new like under a fresh id.
func (r *LikeRepository) Create(ctx context.Context, like *models.Like) error {
	if like.LikeID == "" {
		like.LikeID = store.NewID()
	}
	return r.db.Create(ctx, LikesCollection, like.LikeID, store.Fields{
		"postId":     like.PostID,
		"userHandle": like.UserHandle,
	})
}

// Find returns the like handle gave postID, or store.ErrNotFound.
func (r *LikeRepository) Find(ctx context.Context, postID, handle string) (*models.Like, error) {
	docs, err := r.db.Query(ctx, LikesCollection, store.Where("postId", postID).And("userHandle", handle).First(1))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, store.ErrNotFound
	}
	like := likeFromDocument(docs[0])
	return &like, nil
}

func (r *LikeRepository) Delete(ctx context.Context, id string) error {
	return r.db.Delete(ctx, LikesCollection, id)
}

// ListByUser returns every like a user gave.
func (r *LikeRepository) ListByUser(ctx context.Context, handle string) ([]models.Like, error) {
	return r.list(ctx, store.Where("userHandle", handle))
}

// ListByPost returns every like on a post.
func (r *LikeRepository) ListByPost(ctx context.Context, postID string) ([]models.Like, error) {
	return r.list(ctx, store.Where("postId", postID))
}

func (r *LikeRepository) list(ctx context.Context, q store.Query) ([]models.Like, error) {
	docs, err := r.db.Query(ctx, LikesCollection, q)
	if err != nil {
		return nil, err
	}
	likes := make([]models.Like, 0, len(docs))
	for _, d := range docs {
		likes = append(likes, likeFromDocument(d))
	}
	return likes, nil
}

func likeFromDocument(doc store.Document) models.Like {
	return models.Like{
		LikeID:     doc.ID,
		PostID:     doc.Fields.String("postId"),
		UserHandle: doc.Fields.String("userHandle"),
	}
}
