package triggers

import (
	"context"

	"github.com/anonto42/socialape/backend/internal/events"
	"github.com/anonto42/socialape/backend/internal/repositories"
	"github.com/anonto42/socialape/backend/internal/store"
	"github.com/anonto42/socialape/backend/pkg/log"
	"github.com/sirupsen/logrus"
)

// CascadeCleanup removes everything that hung off a deleted post.
type CascadeCleanup struct {
	db store.Store
}

func NewCascadeCleanup(db store.Store) *CascadeCleanup {
	return &CascadeCleanup{db: db}
}

// OnPostDeleted deletes the comments, likes and notifications of the post in
// one batch: all of them go or none do. Firestore caps a commit at 500
// writes.
func (c *CascadeCleanup) OnPostDeleted(ctx context.Context, e events.ChangeEvent) error {
	postID := e.ID

	comments, err := repositories.NewCommentRepository(c.db).ListByPost(ctx, postID)
	if err != nil {
		return err
	}
	likes, err := repositories.NewLikeRepository(c.db).ListByPost(ctx, postID)
	if err != nil {
		return err
	}
	notifications, err := repositories.NewNotificationRepository(c.db).ListByPost(ctx, postID)
	if err != nil {
		return err
	}

	batch := store.NewBatch(c.db)
	for _, cm := range comments {
		batch.Delete(repositories.CommentsCollection, cm.CommentID)
	}
	for _, l := range likes {
		batch.Delete(repositories.LikesCollection, l.LikeID)
	}
	for _, n := range notifications {
		batch.Delete(repositories.NotificationsCollection, n.NotificationID)
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := batch.Commit(ctx); err != nil {
		return err
	}

	log.Log.WithFields(logrus.Fields{
		"postId":        postID,
		"comments":      len(comments),
		"likes":         len(likes),
		"notifications": len(notifications),
	}).Info("removed dependents of deleted post")
	return nil
}
