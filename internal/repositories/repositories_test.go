package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/socialape/backend/internal/models"
	"github.com/anonto42/socialape/backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestPostRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	posts := NewPostRepository(store.NewMemoryStore())

	post := &models.Post{Body: "hello", UserHandle: "alice", UserImage: "img", CreatedAt: epoch}
	require.NoError(t, posts.Create(ctx, post))
	require.NotEmpty(t, post.PostID)

	got, err := posts.Get(ctx, post.PostID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Body)
	assert.Equal(t, "alice", got.UserHandle)
	assert.True(t, epoch.Equal(got.CreatedAt))
	assert.Zero(t, got.LikeCount)

	require.NoError(t, posts.AddLikes(ctx, post.PostID, 2))
	require.NoError(t, posts.AddComments(ctx, post.PostID, 1))
	got, err = posts.Get(ctx, post.PostID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.LikeCount)
	assert.Equal(t, int64(1), got.CommentCount)

	require.NoError(t, posts.SetCounters(ctx, post.PostID, 0, 0))
	got, err = posts.Get(ctx, post.PostID)
	require.NoError(t, err)
	assert.Zero(t, got.LikeCount)
	assert.Zero(t, got.CommentCount)

	require.NoError(t, posts.Delete(ctx, post.PostID))
	_, err = posts.Get(ctx, post.PostID)
	assert.True(t, store.IsNotFound(err))
}

func TestPostRepositoryListsNewestFirst(t *testing.T) {
	ctx := context.Background()
	posts := NewPostRepository(store.NewMemoryStore())

	for i, handle := range []string{"alice", "bob", "alice"} {
		require.NoError(t, posts.Create(ctx, &models.Post{
			PostID:     string(rune('a' + i)),
			Body:       "post",
			UserHandle: handle,
			CreatedAt:  epoch.Add(time.Duration(i) * time.Minute),
		}))
	}

	all, err := posts.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{all[0].PostID, all[1].PostID, all[2].PostID})

	mine, err := posts.ListByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "c", mine[0].PostID)
	assert.Equal(t, "a", mine[1].PostID)
}

func TestLikeRepositoryFind(t *testing.T) {
	ctx := context.Background()
	likes := NewLikeRepository(store.NewMemoryStore())

	_, err := likes.Find(ctx, "p1", "alice")
	assert.True(t, store.IsNotFound(err))

	like := &models.Like{PostID: "p1", UserHandle: "alice"}
	require.NoError(t, likes.Create(ctx, like))
	require.NoError(t, likes.Create(ctx, &models.Like{PostID: "p2", UserHandle: "alice"}))

	found, err := likes.Find(ctx, "p1", "alice")
	require.NoError(t, err)
	assert.Equal(t, like.LikeID, found.LikeID)

	_, err = likes.Find(ctx, "p1", "bob")
	assert.True(t, store.IsNotFound(err))

	byUser, err := likes.ListByUser(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	require.NoError(t, likes.Delete(ctx, like.LikeID))
	byPost, err := likes.ListByPost(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, byPost)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository(store.NewMemoryStore())

	user := &models.User{Handle: "alice", Email: "a@example.com", UserID: "uid-1", ImageURL: "img", CreatedAt: epoch}
	require.NoError(t, users.Create(ctx, user))

	err := users.Create(ctx, &models.User{Handle: "alice", UserID: "uid-2"})
	assert.True(t, store.IsAlreadyExists(err))

	got, err := users.GetByUserID(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Handle)
	assert.Empty(t, got.Bio)

	_, err = users.GetByUserID(ctx, "uid-404")
	assert.True(t, store.IsNotFound(err))

	require.NoError(t, users.Update(ctx, "alice", store.Fields{"bio": "hi", "imageUrl": "new"}))
	got, err = users.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "hi", got.Bio)
	assert.Equal(t, "new", got.ImageURL)
	assert.Equal(t, "a@example.com", got.Email)
}

func TestNotificationRepository(t *testing.T) {
	ctx := context.Background()
	notifications := NewNotificationRepository(store.NewMemoryStore())

	older := &models.Notification{NotificationID: "n1", Recipient: "alice", Sender: "bob", PostID: "p1", Type: models.NotificationLike, CreatedAt: epoch}
	newer := &models.Notification{NotificationID: "n2", Recipient: "alice", Sender: "carol", PostID: "p2", Type: models.NotificationComment, CreatedAt: epoch.Add(time.Minute)}
	require.NoError(t, notifications.Put(ctx, older))
	require.NoError(t, notifications.Put(ctx, newer))
	require.NoError(t, notifications.Put(ctx, &models.Notification{NotificationID: "n3", Recipient: "bob", PostID: "p1", CreatedAt: epoch}))

	list, err := notifications.ListForRecipient(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "n2", list[0].NotificationID)
	assert.Equal(t, models.NotificationComment, list[0].Type)
	assert.False(t, list[0].Read)

	require.NoError(t, notifications.MarkRead(ctx, "n1"))
	got, err := notifications.Get(ctx, "n1")
	require.NoError(t, err)
	assert.True(t, got.Read)

	// Put replaces the whole document.
	require.NoError(t, notifications.Put(ctx, older))
	got, err = notifications.Get(ctx, "n1")
	require.NoError(t, err)
	assert.False(t, got.Read)

	byPost, err := notifications.ListByPost(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, byPost, 2)

	require.NoError(t, notifications.Delete(ctx, "n1"))
	require.NoError(t, notifications.Delete(ctx, "n1"))
	_, err = notifications.Get(ctx, "n1")
	assert.True(t, store.IsNotFound(err))
}

func TestMongoIndexesCoverLikeUniqueness(t *testing.T) {
	var found bool
	for _, idx := range MongoIndexes() {
		if idx.Collection == LikesCollection && idx.Unique {
			found = true
		}
	}
	assert.True(t, found)
}
