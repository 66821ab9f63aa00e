package repositories

import (
	"context"

	"github.com/anonto42/socialape/backend/internal/models"
	"github.com/anonto42/socialape/backend/internal/store"
)

// NotificationRepository reads and writes notifications through a store or a
// transaction.
type NotificationRepository struct {
	db store.Tx
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db store.Tx) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Put writes n under its id, replacing any notification already stored there.
func (r *NotificationRepository) Put(ctx context.Context, n *models.Notification) error {
	return r.db.Set(ctx, NotificationsCollection, n.NotificationID, store.Fields{
		"recipient": n.Recipient,
		"sender":    n.Sender,
		"postId":    n.PostID,
		"type":      n.Type,
		"read":      n.Read,
		"createdAt": n.CreatedAt,
	})
}

// Get returns store.ErrNotFound when the notification does not exist.
func (r *NotificationRepository) Get(ctx context.Context, id string) (*models.Notification, error) {
	doc, err := r.db.Get(ctx, NotificationsCollection, id)
	if err != nil {
		return nil, err
	}
	n := notificationFromDocument(*doc)
	return &n, nil
}

// ListForRecipient returns a user's notifications, newest first.
func (r *NotificationRepository) ListForRecipient(ctx context.Context, handle string) ([]models.Notification, error) {
	return r.list(ctx, store.Where("recipient", handle).Newest("createdAt"))
}

// ListByPost returns every notification about a post.
func (r *NotificationRepository) ListByPost(ctx context.Context, postID string) ([]models.Notification, error) {
	return r.list(ctx, store.Where("postId", postID))
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	return r.db.Update(ctx, NotificationsCollection, id, store.Fields{"read": true})
}

// Delete removes a notification; a missing one is not an error.
func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	return r.db.Delete(ctx, NotificationsCollection, id)
}

func (r *NotificationRepository) list(ctx context.Context, q store.Query) ([]models.Notification, error) {
	docs, err := r.db.Query(ctx, NotificationsCollection, q)
	if err != nil {
		return nil, err
	}
	out := make([]models.Notification, 0, len(docs))
	for _, d := range docs {
		out = append(out, notificationFromDocument(d))
	}
	return out, nil
}

func notificationFromDocument(doc store.Document) models.Notification {
	f := doc.Fields
	return models.Notification{
		NotificationID: doc.ID,
		Recipient:      f.String("recipient"),
		Sender:         f.String("sender"),
		PostID:         f.String("postId"),
		Type:           f.String("type"),
		Read:           f.Bool("read"),
		CreatedAt:      f.Time("createdAt"),
	}
}
