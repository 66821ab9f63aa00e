package services

import (
	"context"
	"strings"

	"github.com/anonto42/socialape/backend/internal/apperrors"
	"github.com/anonto42/socialape/backend/internal/models"
	"github.com/anonto42/socialape/backend/internal/repositories"
	"github.com/anonto42/socialape/backend/internal/store"
)

// EngagementService likes, unlikes and comments on posts. The engagement
// record and the post counter change in one transaction, so a user likes a
// post at most once and the counters cannot drift through these paths.
type EngagementService struct {
	db  store.Store
	now Clock
}

func NewEngagementService(db store.Store) *EngagementService {
	return &EngagementService{db: db, now: utcNow}
}

// LikePost records that caller likes a post and returns the post with its
// new count.
func (s *EngagementService) LikePost(ctx context.Context, caller models.Identity, postID string) (*models.Post, error) {
	var post *models.Post
	err := s.db.RunTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		posts := repositories.NewPostRepository(tx)
		likes := repositories.NewLikeRepository(tx)

		p, err := posts.Get(ctx, postID)
		if err != nil {
			return postNotFound(err)
		}
		_, err = likes.Find(ctx, postID, caller.Handle)
		if err == nil {
			return apperrors.Conflict("Post already liked")
		}
		if !store.IsNotFound(err) {
			return err
		}

		if err := likes.Create(ctx, &models.Like{PostID: postID, UserHandle: caller.Handle}); err != nil {
			if store.IsAlreadyExists(err) {
				return apperrors.Conflict("Post already liked")
			}
			return err
		}
		if err := posts.AddLikes(ctx, postID, 1); err != nil {
			return err
		}
		p.LikeCount++
		post = p
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return post, nil
}

// UnlikePost removes caller's like and returns the post with its new count.
func (s *EngagementService) UnlikePost(ctx context.Context, caller models.Identity, postID string) (*models.Post, error) {
	var post *models.Post
	err := s.db.RunTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		posts := repositories.NewPostRepository(tx)
		likes := repositories.NewLikeRepository(tx)

		p, err := posts.Get(ctx, postID)
		if err != nil {
			return postNotFound(err)
		}
		like, err := likes.Find(ctx, postID, caller.Handle)
		if err != nil {
			if store.IsNotFound(err) {
				return apperrors.Conflict("Post not liked")
			}
			return err
		}

		if err := likes.Delete(ctx, like.LikeID); err != nil {
			return err
		}
		if err := posts.AddLikes(ctx, postID, -1); err != nil {
			return err
		}
		p.LikeCount--
		post = p
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return post, nil
}

// CommentOnPost adds a comment as caller. The counter is bumped before the
// comment is written.
func (s *EngagementService) CommentOnPost(ctx context.Context, caller models.Identity, postID, body string) (*models.Comment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, apperrors.Validation("Must not be empty").WithField("comment")
	}

	var comment *models.Comment
	err := s.db.RunTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		posts := repositories.NewPostRepository(tx)
		if _, err := posts.Get(ctx, postID); err != nil {
			return postNotFound(err)
		}
		if err := posts.AddComments(ctx, postID, 1); err != nil {
			return err
		}

		c := &models.Comment{
			PostID:     postID,
			Body:       body,
			UserHandle: caller.Handle,
			UserImage:  caller.ImageURL,
			CreatedAt:  s.now(),
		}
		if err := repositories.NewCommentRepository(tx).Create(ctx, c); err != nil {
			return err
		}
		comment = c
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return comment, nil
}
