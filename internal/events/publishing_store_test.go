package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/anonto42/socialape/backend/internal/store"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturePublisher records published events instead of delivering them.
type capturePublisher struct {
	mu     sync.Mutex
	events []ChangeEvent
}

func (p *capturePublisher) Publish(topic string, msgs ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range msgs {
		e, err := Decode(m)
		if err != nil {
			return err
		}
		if e.Topic() != topic {
			return errors.Errorf("event for %s published on %s", e.Topic(), topic)
		}
		p.events = append(p.events, e)
	}
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Topic())
	}
	return out
}

func newTestStore() (*PublishingStore, *capturePublisher) {
	pub := &capturePublisher{}
	return NewPublishingStore(store.NewMemoryStore(), pub), pub
}

func TestPublishingStoreCreateUpdateDelete(t *testing.T) {
	ctx := context.Background()
	s, pub := newTestStore()

	require.NoError(t, s.Create(ctx, "users", "alice", store.Fields{"imageUrl": "a.png", "handle": "alice"}))
	require.NoError(t, s.Update(ctx, "users", "alice", store.Fields{"imageUrl": "b.png"}))
	require.NoError(t, s.Delete(ctx, "users", "alice"))
	require.NoError(t, s.Delete(ctx, "users", "alice"))

	assert.Equal(t, []string{"users.created", "users.updated", "users.deleted"}, pub.topics())

	update := pub.events[1]
	assert.Equal(t, "alice", update.ID)
	assert.Equal(t, "a.png", update.Before.String("imageUrl"))
	assert.Equal(t, "b.png", update.After.String("imageUrl"))
	assert.Equal(t, "alice", update.After.String("handle"))

	assert.Equal(t, "b.png", pub.events[2].Before.String("imageUrl"))
	assert.Empty(t, pub.events[2].After)
}

func TestPublishingStoreFailedWriteIsNotPublished(t *testing.T) {
	ctx := context.Background()
	s, pub := newTestStore()

	assert.True(t, store.IsNotFound(s.Update(ctx, "posts", "missing", store.Fields{"a": "b"})))
	require.NoError(t, s.Create(ctx, "posts", "p1", store.Fields{}))
	assert.True(t, store.IsAlreadyExists(s.Create(ctx, "posts", "p1", store.Fields{})))

	assert.Equal(t, []string{"posts.created"}, pub.topics())
}

func TestPublishingStoreSetReportsCreateThenUpdate(t *testing.T) {
	ctx := context.Background()
	s, pub := newTestStore()

	require.NoError(t, s.Set(ctx, "notifications", "n1", store.Fields{"read": false}))
	require.NoError(t, s.Set(ctx, "notifications", "n1", store.Fields{"read": true}))

	assert.Equal(t, []string{"notifications.created", "notifications.updated"}, pub.topics())
}

func TestPublishingStoreTransactionPublishesAfterCommit(t *testing.T) {
	ctx := context.Background()
	s, pub := newTestStore()
	require.NoError(t, s.Create(ctx, "posts", "p1", store.Fields{"likeCount": int64(0)}))

	err := s.RunTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := tx.Get(ctx, "posts", "p1"); err != nil {
			return err
		}
		if err := tx.Create(ctx, "likes", "l1", store.Fields{"postId": "p1"}); err != nil {
			return err
		}
		return tx.Increment(ctx, "posts", "p1", "likeCount", 1)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"posts.created", "likes.created", "posts.updated"}, pub.topics())

	inc := pub.events[2]
	assert.Equal(t, int64(0), inc.Before.Int("likeCount"))
	assert.Equal(t, int64(1), inc.After.Int("likeCount"))

	err = s.RunTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.Delete(ctx, "likes", "l1"); err != nil {
			return err
		}
		return errors.New("abort")
	})
	assert.Error(t, err)
	assert.Len(t, pub.events, 3, "rolled back writes must not be published")
}

func TestEventRoundTripKeepsTypes(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	e := ChangeEvent{
		Collection: "posts",
		Op:         OpCreated,
		ID:         "p1",
		After:      store.Fields{"likeCount": int64(7), "createdAt": at, "body": "hi"},
		At:         at,
	}
	msg, err := e.Message()
	require.NoError(t, err)
	assert.Equal(t, "posts", msg.Metadata.Get("collection"))

	decoded, err := Decode(msg)
	require.NoError(t, err)
	assert.Equal(t, "posts.created", decoded.Topic())
	assert.Equal(t, int64(7), decoded.After.Int("likeCount"))
	assert.True(t, at.Equal(decoded.After.Time("createdAt")))
	assert.Equal(t, "hi", decoded.After.String("body"))
}
