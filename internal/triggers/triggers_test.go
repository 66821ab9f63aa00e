package triggers

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/socialape/backend/internal/events"
	"github.com/anonto42/socialape/backend/internal/models"
	"github.com/anonto42/socialape/backend/internal/repositories"
	"github.com/anonto42/socialape/backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPost(t *testing.T, db store.Store, id, owner string) {
	t.Helper()
	require.NoError(t, repositories.NewPostRepository(db).Create(context.Background(), &models.Post{
		PostID:     id,
		Body:       "body of " + id,
		UserHandle: owner,
		UserImage:  "old.png",
		CreatedAt:  time.Now().UTC(),
	}))
}

func seedLike(t *testing.T, db store.Store, id, postID, handle string) events.ChangeEvent {
	t.Helper()
	require.NoError(t, repositories.NewLikeRepository(db).Create(context.Background(), &models.Like{
		LikeID: id, PostID: postID, UserHandle: handle,
	}))
	return events.ChangeEvent{
		Collection: repositories.LikesCollection,
		Op:         events.OpCreated,
		ID:         id,
		After:      store.Fields{"postId": postID, "userHandle": handle},
	}
}

func TestNotificationOnLike(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemoryStore()
	n := NewNotificationSynthesizer(db)
	notifications := repositories.NewNotificationRepository(db)
	seedPost(t, db, "p1", "alice")

	e := seedLike(t, db, "l1", "p1", "bob")
	require.NoError(t, n.OnLikeCreated(ctx, e))
	// Replays overwrite the same notification.
	require.NoError(t, n.OnLikeCreated(ctx, e))

	got, err := notifications.ListForRecipient(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "l1", got[0].NotificationID)
	assert.Equal(t, "bob", got[0].Sender)
	assert.Equal(t, "alice", got[0].Recipient)
	assert.Equal(t, "p1", got[0].PostID)
	assert.Equal(t, models.NotificationLike, got[0].Type)
	assert.False(t, got[0].Read)

	require.NoError(t, n.OnLikeDeleted(ctx, events.ChangeEvent{Collection: repositories.LikesCollection, Op: events.OpDeleted, ID: "l1"}))
	_, err = notifications.Get(ctx, "l1")
	assert.True(t, store.IsNotFound(err))
	assert.NoError(t, n.OnLikeDeleted(ctx, events.ChangeEvent{ID: "l1"}), "absent notification is fine")
}

func TestNoNotificationWhenNothingToNotify(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemoryStore()
	n := NewNotificationSynthesizer(db)
	seedPost(t, db, "p1", "alice")

	self := seedLike(t, db, "self", "p1", "alice")
	require.NoError(t, n.OnLikeCreated(ctx, self))

	orphan := seedLike(t, db, "orphan", "gone", "bob")
	require.NoError(t, n.OnLikeCreated(ctx, orphan))

	withdrawn := seedLike(t, db, "withdrawn", "p1", "carol")
	require.NoError(t, repositories.NewLikeRepository(db).Delete(ctx, "withdrawn"))
	require.NoError(t, n.OnLikeCreated(ctx, withdrawn))

	all, err := db.Query(ctx, repositories.NotificationsCollection, store.Query{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestNotificationOnComment(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemoryStore()
	n := NewNotificationSynthesizer(db)
	seedPost(t, db, "p1", "alice")

	c := &models.Comment{CommentID: "c1", PostID: "p1", Body: "nice", UserHandle: "bob", CreatedAt: time.Now()}
	require.NoError(t, repositories.NewCommentRepository(db).Create(ctx, c))
	require.NoError(t, n.OnCommentCreated(ctx, events.ChangeEvent{
		Collection: repositories.CommentsCollection,
		Op:         events.OpCreated,
		ID:         "c1",
		After:      store.Fields{"postId": "p1", "userHandle": "bob", "body": "nice"},
	}))

	got, err := repositories.NewNotificationRepository(db).Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.NotificationComment, got.Type)
	assert.Equal(t, "alice", got.Recipient)
}

func TestCascadeCleanup(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemoryStore()
	seedPost(t, db, "p1", "alice")
	seedPost(t, db, "p2", "alice")

	comments := repositories.NewCommentRepository(db)
	notifications := repositories.NewNotificationRepository(db)
	for _, postID := range []string{"p1", "p2"} {
		for i := 0; i < 3; i++ {
			require.NoError(t, comments.Create(ctx, &models.Comment{PostID: postID, Body: "c", UserHandle: "bob"}))
		}
		seedLike(t, db, "like-"+postID, postID, "bob")
		require.NoError(t, notifications.Put(ctx, &models.Notification{
			NotificationID: "like-" + postID, PostID: postID, Recipient: "alice", Sender: "bob", Type: models.NotificationLike,
		}))
	}
	require.NoError(t, repositories.NewPostRepository(db).Delete(ctx, "p1"))

	c := NewCascadeCleanup(db)
	require.NoError(t, c.OnPostDeleted(ctx, events.ChangeEvent{Collection: repositories.PostsCollection, Op: events.OpDeleted, ID: "p1"}))

	for _, coll := range []string{repositories.CommentsCollection, repositories.LikesCollection, repositories.NotificationsCollection} {
		gone, err := db.Query(ctx, coll, store.Where("postId", "p1"))
		require.NoError(t, err)
		assert.Empty(t, gone, coll)

		kept, err := db.Query(ctx, coll, store.Where("postId", "p2"))
		require.NoError(t, err)
		assert.NotEmpty(t, kept, coll)
	}

	// Nothing left to delete the second time round.
	assert.NoError(t, c.OnPostDeleted(ctx, events.ChangeEvent{ID: "p1"}))
}

func seedUser(t *testing.T, db store.Store, handle, image string) {
	t.Helper()
	require.NoError(t, repositories.NewUserRepository(db).Create(context.Background(), &models.User{
		Handle:    handle,
		UserID:    "uid-" + handle,
		ImageURL:  image,
		CreatedAt: time.Now().UTC(),
	}))
}

func userUpdated(handle, before, after string) events.ChangeEvent {
	return events.ChangeEvent{
		Collection: repositories.UsersCollection,
		Op:         events.OpUpdated,
		ID:         handle,
		Before:     store.Fields{"handle": handle, "imageUrl": before},
		After:      store.Fields{"handle": handle, "imageUrl": after},
	}
}

func TestProfileMirror(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemoryStore()
	seedUser(t, db, "alice", "new.png")
	seedPost(t, db, "a1", "alice")
	seedPost(t, db, "a2", "alice")
	seedPost(t, db, "b1", "bob")
	m := NewProfileMirror(db)
	posts := repositories.NewPostRepository(db)

	unchanged := userUpdated("alice", "old.png", "old.png")
	unchanged.After["bio"] = "hi"
	require.NoError(t, m.OnUserUpdated(ctx, unchanged))
	a1, err := posts.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "old.png", a1.UserImage)

	require.NoError(t, m.OnUserUpdated(ctx, userUpdated("alice", "old.png", "new.png")))

	for _, id := range []string{"a1", "a2"} {
		p, err := posts.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "new.png", p.UserImage)
	}
	b1, err := posts.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "old.png", b1.UserImage)
}

func TestProfileMirrorIgnoresStaleEvent(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemoryStore()
	seedUser(t, db, "alice", "third.png")
	seedPost(t, db, "a1", "alice")
	m := NewProfileMirror(db)

	// The newest update was handled first; an older one arrives late.
	require.NoError(t, m.OnUserUpdated(ctx, userUpdated("alice", "second.png", "third.png")))
	require.NoError(t, m.OnUserUpdated(ctx, userUpdated("alice", "old.png", "second.png")))

	p, err := repositories.NewPostRepository(db).Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "third.png", p.UserImage)
}

func TestProfileMirrorWithoutUser(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemoryStore()
	seedPost(t, db, "a1", "alice")

	require.NoError(t, NewProfileMirror(db).OnUserUpdated(ctx, userUpdated("alice", "old.png", "new.png")))

	p, err := repositories.NewPostRepository(db).Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "old.png", p.UserImage)
}
