package repositories

import (
	"context"

	"github.com/anonto42/socialape/backend/internal/models"
	"github.com/anonto42/socialape/backend/internal/store"
)

// PostRepository reads and writes posts through a store or a transaction.
type PostRepository struct {
	db store.Tx
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db store.Tx) *PostRepository {
	return &PostRepository{db: db}
}

// Create stores a new post, assigning it an id when it has none.
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.PostID == "" {
		post.PostID = store.NewID()
	}
	return r.db.Create(ctx, PostsCollection, post.PostID, postFields(post))
}

// Get returns store.ErrNotFound when the post does not exist.
func (r *PostRepository) Get(ctx context.Context, id string) (*models.Post, error) {
	doc, err := r.db.Get(ctx, PostsCollection, id)
	if err != nil {
		return nil, err
	}
	post := postFromDocument(*doc)
	return &post, nil
}

// List returns every post, newest first.
func (r *PostRepository) List(ctx context.Context) ([]models.Post, error) {
	docs, err := r.db.Query(ctx, PostsCollection, store.Query{}.Newest("createdAt"))
	if err != nil {
		return nil, err
	}
	return postsFromDocuments(docs), nil
}

// ListByUser returns the posts of one user, newest first.
func (r *PostRepository) ListByUser(ctx context.Context, handle string) ([]models.Post, error) {
	docs, err := r.db.Query(ctx, PostsCollection, store.Where("userHandle", handle).Newest("createdAt"))
	if err != nil {
		return nil, err
	}
	return postsFromDocuments(docs), nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	return r.db.Delete(ctx, PostsCollection, id)
}

func (r *PostRepository) AddLikes(ctx context.Context, id string, delta int64) error {
	return r.db.Increment(ctx, PostsCollection, id, "likeCount", delta)
}

func (r *PostRepository) AddComments(ctx context.Context, id string, delta int64) error {
	return r.db.Increment(ctx, PostsCollection, id, "commentCount", delta)
}

// SetCounters overwrites both engagement counters.
func (r *PostRepository) SetCounters(ctx context.Context, id string, likes, comments int64) error {
	return r.db.Update(ctx, PostsCollection, id, store.Fields{
		"likeCount":    likes,
		"commentCount": comments,
	})
}

func postFields(p *models.Post) store.Fields {
	return store.Fields{
		"body":         p.Body,
		"userHandle":   p.UserHandle,
		"userImage":    p.UserImage,
		"createdAt":    p.CreatedAt,
		"likeCount":    p.LikeCount,
		"commentCount": p.CommentCount,
	}
}

func postFromDocument(doc store.Document) models.Post {
	f := doc.Fields
	return models.Post{
		PostID:       doc.ID,
		Body:         f.String("body"),
		UserHandle:   f.String("userHandle"),
		UserImage:    f.String("userImage"),
		CreatedAt:    f.Time("createdAt"),
		LikeCount:    f.Int("likeCount"),
		CommentCount: f.Int("commentCount"),
	}
}

func postsFromDocuments(docs []store.Document) []models.Post {
	posts := make([]models.Post, 0, len(docs))
	for _, d := range docs {
		posts = append(posts, postFromDocument(d))
	}
	return posts
}
