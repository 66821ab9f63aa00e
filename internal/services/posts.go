package services

import (
	"context"
	"strings"

	"github.com/anonto42/socialape/backend/internal/apperrors"
	"github.com/anonto42/socialape/backend/internal/models"
	"github.com/anonto42/socialape/backend/internal/repositories"
	"github.com/anonto42/socialape/backend/internal/store"
	"github.com/anonto42/socialape/backend/pkg/log"
	"github.com/sirupsen/logrus"
)

// PostService creates, reads and deletes posts. Dependents of a deleted post
// are removed by the cascade cleanup reacting to the delete.
type PostService struct {
	db  store.Store
	now Clock
}

func NewPostService(db store.Store) *PostService {
	return &PostService{db: db, now: utcNow}
}

// CreatePost publishes a post as caller with zeroed counters.
func (s *PostService) CreatePost(ctx context.Context, caller models.Identity, body string) (*models.Post, error) {
	if strings.TrimSpace(body) == "" {
		return nil, apperrors.Validation("Must not be empty").WithField("post")
	}

	post := &models.Post{
		Body:       body,
		UserHandle: caller.Handle,
		UserImage:  caller.ImageURL,
		CreatedAt:  s.now(),
	}
	if err := repositories.NewPostRepository(s.db).Create(ctx, post); err != nil {
		return nil, apperrors.Internal(err)
	}
	return post, nil
}

// GetPost returns a post with its comments, newest first.
func (s *PostService) GetPost(ctx context.Context, postID string) (*models.PostWithComments, error) {
	post, err := repositories.NewPostRepository(s.db).Get(ctx, postID)
	if err != nil {
		return nil, classify(postNotFound(err))
	}
	comments, err := repositories.NewCommentRepository(s.db).ListByPost(ctx, postID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &models.PostWithComments{Post: *post, Comments: comments}, nil
}

// DeletePost removes a post the caller owns.
func (s *PostService) DeletePost(ctx context.Context, caller models.Identity, postID string) error {
	err := s.db.RunTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		posts := repositories.NewPostRepository(tx)
		post, err := posts.Get(ctx, postID)
		if err != nil {
			return postNotFound(err)
		}
		if post.UserHandle != caller.Handle {
			return apperrors.Forbidden("Unauthorized")
		}
		return posts.Delete(ctx, postID)
	})
	return classify(err)
}

// ListAllPosts returns every post, newest first.
func (s *PostService) ListAllPosts(ctx context.Context) ([]models.Post, error) {
	posts, err := repositories.NewPostRepository(s.db).List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return posts, nil
}

// ReconcileCounters recounts the likes and comments of a post and rewrites
// its counters if they drifted. It reports whether anything changed.
func (s *PostService) ReconcileCounters(ctx context.Context, postID string) (bool, error) {
	changed := false
	err := s.db.RunTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		changed = false
		posts := repositories.NewPostRepository(tx)
		post, err := posts.Get(ctx, postID)
		if err != nil {
			return postNotFound(err)
		}
		likes, err := repositories.NewLikeRepository(tx).ListByPost(ctx, postID)
		if err != nil {
			return err
		}
		comments, err := repositories.NewCommentRepository(tx).ListByPost(ctx, postID)
		if err != nil {
			return err
		}

		likeCount, commentCount := int64(len(likes)), int64(len(comments))
		if post.LikeCount == likeCount && post.CommentCount == commentCount {
			return nil
		}
		log.Log.WithFields(logrus.Fields{
			"postId":       postID,
			"likeCount":    post.LikeCount,
			"likes":        likeCount,
			"commentCount": post.CommentCount,
			"comments":     commentCount,
		}).Warn("post counters drifted")
		changed = true
		return posts.SetCounters(ctx, postID, likeCount, commentCount)
	})
	return changed, classify(err)
}

// ReconcileAll reconciles every post and returns how many were corrected.
// Posts deleted while it runs are skipped.
func (s *PostService) ReconcileAll(ctx context.Context) (int, error) {
	posts, err := s.ListAllPosts(ctx)
	if err != nil {
		return 0, err
	}

	fixed := 0
	for _, p := range posts {
		changed, err := s.ReconcileCounters(ctx, p.PostID)
		if err != nil {
			if apperrors.Is(err, apperrors.KindNotFound) {
				continue
			}
			return fixed, err
		}
		if changed {
			fixed++
		}
	}
	return fixed, nil
}
