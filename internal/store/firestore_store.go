package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore maps collections and documents one to one onto Firestore.
// Queries that filter on one field and order by another need a composite
// index on the project.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) ref(collection, id string) *firestore.DocumentRef {
	return s.client.Collection(collection).Doc(id)
}

func (s *FirestoreStore) query(collection string, q Query) firestore.Query {
	query := s.client.Collection(collection).Query
	for _, f := range q.Where {
		query = query.Where(f.Field, "==", f.Value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Descending {
			dir = firestore.Desc
		}
		query = query.OrderBy(q.OrderBy, dir)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	return query
}

func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	snap, err := s.ref(collection, id).Get(ctx)
	if err != nil {
		return nil, translateFirestoreError(err)
	}
	return snapshotDocument(snap), nil
}

func (s *FirestoreStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	snaps, err := s.query(collection, q).Documents(ctx).GetAll()
	if err != nil {
		return nil, translateFirestoreError(err)
	}
	return snapshotDocuments(snaps), nil
}

func (s *FirestoreStore) Create(ctx context.Context, collection, id string, fields Fields) error {
	_, err := s.ref(collection, id).Create(ctx, map[string]interface{}(fields))
	return translateFirestoreError(err)
}

func (s *FirestoreStore) Set(ctx context.Context, collection, id string, fields Fields) error {
	_, err := s.ref(collection, id).Set(ctx, map[string]interface{}(fields))
	return translateFirestoreError(err)
}

func (s *FirestoreStore) Update(ctx context.Context, collection, id string, fields Fields) error {
	_, err := s.ref(collection, id).Update(ctx, toUpdates(fields))
	return translateFirestoreError(err)
}

func (s *FirestoreStore) Increment(ctx context.Context, collection, id, field string, delta int64) error {
	_, err := s.ref(collection, id).Update(ctx, []firestore.Update{
		{Path: field, Value: firestore.Increment(delta)},
	})
	return translateFirestoreError(err)
}

func (s *FirestoreStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.ref(collection, id).Delete(ctx)
	return translateFirestoreError(err)
}

// RunTransaction uses a Firestore transaction, which the client retries on
// contention. Commits are limited to 500 writes.
func (s *FirestoreStore) RunTransaction(ctx context.Context, fn TxFunc) error {
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		return fn(ctx, &firestoreTx{store: s, tx: tx})
	})
	return translateFirestoreError(err)
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

type firestoreTx struct {
	store *FirestoreStore
	tx    *firestore.Transaction
}

func (t *firestoreTx) Get(_ context.Context, collection, id string) (*Document, error) {
	snap, err := t.tx.Get(t.store.ref(collection, id))
	if err != nil {
		return nil, translateFirestoreError(err)
	}
	return snapshotDocument(snap), nil
}

func (t *firestoreTx) Query(_ context.Context, collection string, q Query) ([]Document, error) {
	snaps, err := t.tx.Documents(t.store.query(collection, q)).GetAll()
	if err != nil {
		return nil, translateFirestoreError(err)
	}
	return snapshotDocuments(snaps), nil
}

func (t *firestoreTx) Create(_ context.Context, collection, id string, fields Fields) error {
	return translateFirestoreError(t.tx.Create(t.store.ref(collection, id), map[string]interface{}(fields)))
}

func (t *firestoreTx) Set(_ context.Context, collection, id string, fields Fields) error {
	return translateFirestoreError(t.tx.Set(t.store.ref(collection, id), map[string]interface{}(fields)))
}

func (t *firestoreTx) Update(_ context.Context, collection, id string, fields Fields) error {
	return translateFirestoreError(t.tx.Update(t.store.ref(collection, id), toUpdates(fields)))
}

func (t *firestoreTx) Increment(_ context.Context, collection, id, field string, delta int64) error {
	return translateFirestoreError(t.tx.Update(t.store.ref(collection, id), []firestore.Update{
		{Path: field, Value: firestore.Increment(delta)},
	}))
}

func (t *firestoreTx) Delete(_ context.Context, collection, id string) error {
	return translateFirestoreError(t.tx.Delete(t.store.ref(collection, id)))
}

func toUpdates(fields Fields) []firestore.Update {
	updates := make([]firestore.Update, 0, len(fields))
	for k, v := range fields {
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}
	return updates
}

func snapshotDocument(snap *firestore.DocumentSnapshot) *Document {
	return &Document{ID: snap.Ref.ID, Fields: Fields(snap.Data())}
}

func snapshotDocuments(snaps []*firestore.DocumentSnapshot) []Document {
	docs := make([]Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, *snapshotDocument(snap))
	}
	return docs
}

func translateFirestoreError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		// Not an RPC failure: an error returned by a transaction function.
		return err
	}
	switch st.Code() {
	case codes.NotFound:
		return ErrNotFound
	case codes.AlreadyExists:
		return ErrAlreadyExists
	}
	return errors.Wrap(err, "firestore")
}
