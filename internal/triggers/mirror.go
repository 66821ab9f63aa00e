package triggers

import (
	"context"

	"github.com/anonto42/socialape/backend/internal/events"
	"github.com/anonto42/socialape/backend/internal/repositories"
	"github.com/anonto42/socialape/backend/internal/store"
)

// ProfileMirror copies a user's profile image onto their posts.
type ProfileMirror struct {
	db store.Store
}

func NewProfileMirror(db store.Store) *ProfileMirror {
	return &ProfileMirror{db: db}
}

// OnUserUpdated rewrites userImage on every post of the user when imageUrl
// changed. The image written is the one the user has now, not the one in the
// event: update events can be handled out of order and a stale one must not
// win.
func (m *ProfileMirror) OnUserUpdated(ctx context.Context, e events.ChangeEvent) error {
	if e.Before.String("imageUrl") == e.After.String("imageUrl") {
		return nil
	}
	handle := e.Before.String("handle")
	if handle == "" {
		handle = e.ID
	}

	return m.db.RunTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		user, err := repositories.NewUserRepository(tx).Get(ctx, handle)
		if err != nil {
			if store.IsNotFound(err) {
				return nil
			}
			return err
		}
		image := user.ImageURL

		posts := repositories.NewPostRepository(tx)
		owned, err := posts.ListByUser(ctx, handle)
		if err != nil {
			return err
		}
		for _, p := range owned {
			if p.UserImage == image {
				continue
			}
			if err := tx.Update(ctx, repositories.PostsCollection, p.PostID, store.Fields{"userImage": image}); err != nil {
				return err
			}
		}
		return nil
	})
}
