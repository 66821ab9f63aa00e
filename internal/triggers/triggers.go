// Package triggers holds the reactive side of the backend: handlers that
// follow document changes on the event bus and keep derived data in step.
// Failures are logged and dropped; nothing is retried.
package triggers

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/anonto42/socialape/backend/internal/events"
	"github.com/anonto42/socialape/backend/internal/repositories"
	"github.com/anonto42/socialape/backend/internal/store"
	"github.com/anonto42/socialape/backend/pkg/log"
	"github.com/sirupsen/logrus"
)

type handlerFunc func(ctx context.Context, e events.ChangeEvent) error

// Triggers bundles the reactive managers.
type Triggers struct {
	Notifications *NotificationSynthesizer
	Cascade       *CascadeCleanup
	Mirror        *ProfileMirror
}

// New builds the managers on top of db. Writes they make through a
// publishing store are published in turn.
func New(db store.Store) *Triggers {
	return &Triggers{
		Notifications: NewNotificationSynthesizer(db),
		Cascade:       NewCascadeCleanup(db),
		Mirror:        NewProfileMirror(db),
	}
}

// Register subscribes every manager to its topic on router.
func (t *Triggers) Register(router *message.Router, sub message.Subscriber) {
	routes := []struct {
		name  string
		topic string
		fn    handlerFunc
	}{
		{"notify_on_like", events.Topic(repositories.LikesCollection, events.OpCreated), t.Notifications.OnLikeCreated},
		{"unnotify_on_unlike", events.Topic(repositories.LikesCollection, events.OpDeleted), t.Notifications.OnLikeDeleted},
		{"notify_on_comment", events.Topic(repositories.CommentsCollection, events.OpCreated), t.Notifications.OnCommentCreated},
		{"cascade_post_delete", events.Topic(repositories.PostsCollection, events.OpDeleted), t.Cascade.OnPostDeleted},
		{"mirror_profile_image", events.Topic(repositories.UsersCollection, events.OpUpdated), t.Mirror.OnUserUpdated},
	}
	for _, r := range routes {
		router.AddNoPublisherHandler(r.name, r.topic, sub, handle(r.name, r.fn))
	}
}

// handle adapts fn to watermill. It always acks: a failed or panicking
// trigger is logged and the event is dropped.
func handle(name string, fn handlerFunc) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		entry := log.Log.WithFields(logrus.Fields{
			"trigger":      name,
			"message_uuid": msg.UUID,
		})
		defer func() {
			if r := recover(); r != nil {
				entry.WithField("panic", r).Error("trigger panicked")
			}
		}()

		e, err := events.Decode(msg)
		if err != nil {
			entry.WithError(err).Error("dropping undecodable change event")
			return nil
		}
		entry = entry.WithFields(logrus.Fields{
			"collection": e.Collection,
			"id":         e.ID,
		})

		if err := fn(msg.Context(), e); err != nil {
			entry.WithError(err).Error("trigger failed")
			return nil
		}
		entry.Debug("trigger done")
		return nil
	}
}
