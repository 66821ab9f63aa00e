package triggers

import (
	"context"
	"time"

	"github.com/anonto42/socialape/backend/internal/events"
	"github.com/anonto42/socialape/backend/internal/models"
	"github.com/anonto42/socialape/backend/internal/repositories"
	"github.com/anonto42/socialape/backend/internal/store"
)

// NotificationSynthesizer derives notifications from likes and comments. A
// notification shares the id of the like or comment it came from, so
// replaying an event rewrites the same notification.
type NotificationSynthesizer struct {
	db  store.Store
	now func() time.Time
}

func NewNotificationSynthesizer(db store.Store) *NotificationSynthesizer {
	return &NotificationSynthesizer{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (n *NotificationSynthesizer) OnLikeCreated(ctx context.Context, e events.ChangeEvent) error {
	return n.notify(ctx, e, models.NotificationLike)
}

func (n *NotificationSynthesizer) OnCommentCreated(ctx context.Context, e events.ChangeEvent) error {
	return n.notify(ctx, e, models.NotificationComment)
}

// notify writes the notification only while both the post and the record
// that triggered it still exist, so a late event cannot resurrect a
// notification for a deleted post or a withdrawn like.
func (n *NotificationSynthesizer) notify(ctx context.Context, e events.ChangeEvent, kind string) error {
	postID := e.After.String("postId")
	sender := e.After.String("userHandle")

	return n.db.RunTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		post, err := repositories.NewPostRepository(tx).Get(ctx, postID)
		if err != nil {
			if store.IsNotFound(err) {
				return nil
			}
			return err
		}
		if post.UserHandle == sender {
			return nil
		}
		if _, err := tx.Get(ctx, e.Collection, e.ID); err != nil {
			if store.IsNotFound(err) {
				return nil
			}
			return err
		}

		return repositories.NewNotificationRepository(tx).Put(ctx, &models.Notification{
			NotificationID: e.ID,
			Recipient:      post.UserHandle,
			Sender:         sender,
			PostID:         postID,
			Type:           kind,
			Read:           false,
			CreatedAt:      n.now(),
		})
	})
}

// OnLikeDeleted removes the notification derived from the like, if any.
// Comment notifications outlive their comment.
func (n *NotificationSynthesizer) OnLikeDeleted(ctx context.Context, e events.ChangeEvent) error {
	return repositories.NewNotificationRepository(n.db).Delete(ctx, e.ID)
}
