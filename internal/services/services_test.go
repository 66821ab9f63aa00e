package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/socialape/backend/internal/auth"
	"github.com/anonto42/socialape/backend/internal/media"
	"github.com/anonto42/socialape/backend/internal/models"
	"github.com/anonto42/socialape/backend/internal/repositories"
	"github.com/anonto42/socialape/backend/internal/store"
	"github.com/stretchr/testify/require"
)

const defaultImage = "https://firebasestorage.googleapis.com/v0/b/test/o/blank.png?alt=media"

// testClock hands out strictly increasing times so ordering by createdAt is
// deterministic.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type fixture struct {
	db         *store.MemoryStore
	provider   *auth.LocalProvider
	uploader   *media.MemoryUploader
	posts      *PostService
	engagement *EngagementService
	users      *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := store.NewMemoryStore()
	provider := auth.NewLocalProvider(auth.NewMemoryAccountStore(), "secret", time.Hour)
	uploader := media.NewMemoryUploader("test")
	clock := newTestClock()

	f := &fixture{
		db:         db,
		provider:   provider,
		uploader:   uploader,
		posts:      NewPostService(db),
		engagement: NewEngagementService(db),
		users:      NewUserService(db, provider, uploader, defaultImage),
	}
	f.posts.now = clock.Now
	f.engagement.now = clock.Now
	f.users.now = clock.Now
	return f
}

// signup registers handle and returns the identity requests would carry.
func (f *fixture) signup(t *testing.T, handle string) models.Identity {
	t.Helper()
	ctx := context.Background()
	token, err := f.users.Signup(ctx, models.SignupRequest{
		Email:           handle + "@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		Handle:          handle,
	})
	require.NoError(t, err)
	uid, err := f.provider.Verify(ctx, token)
	require.NoError(t, err)

	user, err := repositories.NewUserRepository(f.db).Get(ctx, handle)
	require.NoError(t, err)
	require.Equal(t, uid, user.UserID)
	return models.Identity{Handle: user.Handle, UserID: user.UserID, ImageURL: user.ImageURL}
}

func (f *fixture) post(t *testing.T, author models.Identity, body string) *models.Post {
	t.Helper()
	p, err := f.posts.CreatePost(context.Background(), author, body)
	require.NoError(t, err)
	return p
}
