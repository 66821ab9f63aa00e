package store

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCreateGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Create(ctx, "posts", "p1", Fields{"body": "hi", "likeCount": int64(0)}))

	doc, err := s.Get(ctx, "posts", "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", doc.ID)
	assert.Equal(t, "hi", doc.Fields.String("body"))

	err = s.Create(ctx, "posts", "p1", Fields{"body": "again"})
	assert.True(t, IsAlreadyExists(err))

	_, err = s.Get(ctx, "posts", "missing")
	assert.True(t, IsNotFound(err))
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	fields := Fields{"body": "original"}
	require.NoError(t, s.Create(ctx, "posts", "p1", fields))

	fields["body"] = "mutated"
	doc, err := s.Get(ctx, "posts", "p1")
	require.NoError(t, err)
	doc.Fields["body"] = "mutated too"

	doc, err = s.Get(ctx, "posts", "p1")
	require.NoError(t, err)
	assert.Equal(t, "original", doc.Fields.String("body"))
}

func TestMemoryStoreUpdateIncrementDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Create(ctx, "posts", "p1", Fields{"likeCount": int64(1), "body": "b"}))

	require.NoError(t, s.Increment(ctx, "posts", "p1", "likeCount", 2))
	require.NoError(t, s.Update(ctx, "posts", "p1", Fields{"userImage": "img"}))

	doc, err := s.Get(ctx, "posts", "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), doc.Fields.Int("likeCount"))
	assert.Equal(t, "img", doc.Fields.String("userImage"))
	assert.Equal(t, "b", doc.Fields.String("body"))

	assert.True(t, IsNotFound(s.Update(ctx, "posts", "nope", Fields{"a": 1})))
	assert.True(t, IsNotFound(s.Increment(ctx, "posts", "nope", "likeCount", 1)))

	require.NoError(t, s.Delete(ctx, "posts", "p1"))
	require.NoError(t, s.Delete(ctx, "posts", "p1"))
	_, err = s.Get(ctx, "posts", "p1")
	assert.True(t, IsNotFound(err))
}

func TestMemoryStoreQuery(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c", "d"} {
		owner := "alice"
		if id == "c" {
			owner = "bob"
		}
		require.NoError(t, s.Create(ctx, "posts", id, Fields{
			"userHandle": owner,
			"createdAt":  base.Add(time.Duration(i) * time.Hour),
		}))
	}

	docs, err := s.Query(ctx, "posts", Where("userHandle", "alice").Newest("createdAt"))
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "b", "a"}, ids(docs))

	docs, err = s.Query(ctx, "posts", Query{OrderBy: "createdAt"}.First(2))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(docs))

	docs, err = s.Query(ctx, "posts", Where("userHandle", "alice").And("createdAt", base))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(docs))
}

func TestMemoryStoreTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Create(ctx, "posts", "p1", Fields{"likeCount": int64(0)}))

	boom := errors.New("boom")
	err := s.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		if err := tx.Create(ctx, "likes", "l1", Fields{"postId": "p1"}); err != nil {
			return err
		}
		if err := tx.Increment(ctx, "posts", "p1", "likeCount", 1); err != nil {
			return err
		}
		return boom
	})
	assert.Equal(t, boom, err)

	_, err = s.Get(ctx, "likes", "l1")
	assert.True(t, IsNotFound(err))
	doc, err := s.Get(ctx, "posts", "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), doc.Fields.Int("likeCount"))
}

func TestMemoryStoreTransactionSeesOwnWrites(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	err := s.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		require.NoError(t, tx.Create(ctx, "likes", "l1", Fields{"postId": "p1"}))
		docs, err := tx.Query(ctx, "likes", Where("postId", "p1"))
		require.NoError(t, err)
		assert.Len(t, docs, 1)

		require.NoError(t, tx.Delete(ctx, "likes", "l1"))
		docs, err = tx.Query(ctx, "likes", Where("postId", "p1"))
		require.NoError(t, err)
		assert.Empty(t, docs)
		return nil
	})
	require.NoError(t, err)
}

func TestBatchCommitIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Create(ctx, "posts", "p1", Fields{"userImage": "old"}))
	require.NoError(t, s.Create(ctx, "comments", "c1", Fields{"postId": "p1"}))

	b := NewBatch(s)
	b.Delete("comments", "c1")
	b.Update("posts", "missing", Fields{"userImage": "new"})
	assert.Equal(t, 2, b.Len())
	assert.True(t, IsNotFound(b.Commit(ctx)))

	_, err := s.Get(ctx, "comments", "c1")
	assert.NoError(t, err, "delete must not be applied when the batch fails")

	b = NewBatch(s)
	b.Delete("comments", "c1")
	b.Update("posts", "p1", Fields{"userImage": "new"})
	require.NoError(t, b.Commit(ctx))

	_, err = s.Get(ctx, "comments", "c1")
	assert.True(t, IsNotFound(err))
	doc, err := s.Get(ctx, "posts", "p1")
	require.NoError(t, err)
	assert.Equal(t, "new", doc.Fields.String("userImage"))

	assert.NoError(t, NewBatch(s).Commit(ctx))
}

func TestMemoryStoreCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewMemoryStore().Create(ctx, "posts", "p1", Fields{}), context.Canceled)
}

func ids(docs []Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}
