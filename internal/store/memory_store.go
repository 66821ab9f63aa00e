package store

import (
	"context"
	"sort"
	"sync"
)

type docKey struct {
	collection string
	id         string
}

// MemoryStore keeps every collection in process memory. Transactions are
// serialised on a single mutex, which makes every read-then-write sequence
// run in isolation. It backs local development and tests.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]map[string]Fields
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]Fields)}
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	var doc *Document
	err := s.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		doc, err = tx.Get(ctx, collection, id)
		return err
	})
	return doc, err
}

func (s *MemoryStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	var docs []Document
	err := s.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		docs, err = tx.Query(ctx, collection, q)
		return err
	})
	return docs, err
}

func (s *MemoryStore) Create(ctx context.Context, collection, id string, fields Fields) error {
	return s.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		return tx.Create(ctx, collection, id, fields)
	})
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, fields Fields) error {
	return s.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		return tx.Set(ctx, collection, id, fields)
	})
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields Fields) error {
	return s.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		return tx.Update(ctx, collection, id, fields)
	})
}

func (s *MemoryStore) Increment(ctx context.Context, collection, id, field string, delta int64) error {
	return s.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		return tx.Increment(ctx, collection, id, field, delta)
	})
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	return s.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		return tx.Delete(ctx, collection, id)
	})
}

// RunTransaction stages the writes of fn in an overlay and merges it into the
// committed data only when fn succeeds. fn must go through tx; calling back
// into the store from fn deadlocks.
func (s *MemoryStore) RunTransaction(ctx context.Context, fn TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{store: s, overlay: make(map[docKey]Fields)}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	for k, fields := range tx.overlay {
		coll := s.data[k.collection]
		if fields == nil {
			delete(coll, k.id)
			continue
		}
		if coll == nil {
			coll = make(map[string]Fields)
			s.data[k.collection] = coll
		}
		coll[k.id] = fields
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// memoryTx sees its own staged writes. A nil entry in overlay marks a
// staged delete.
type memoryTx struct {
	store   *MemoryStore
	overlay map[docKey]Fields
}

func (tx *memoryTx) lookup(k docKey) (Fields, bool) {
	if fields, ok := tx.overlay[k]; ok {
		return fields, fields != nil
	}
	fields, ok := tx.store.data[k.collection][k.id]
	return fields, ok
}

func (tx *memoryTx) put(k docKey, fields Fields) {
	tx.overlay[k] = fields
}

func (tx *memoryTx) Get(_ context.Context, collection, id string) (*Document, error) {
	fields, ok := tx.lookup(docKey{collection, id})
	if !ok {
		return nil, ErrNotFound
	}
	return &Document{ID: id, Fields: fields.Clone()}, nil
}

func (tx *memoryTx) Query(_ context.Context, collection string, q Query) ([]Document, error) {
	ids := make(map[string]struct{})
	for id := range tx.store.data[collection] {
		ids[id] = struct{}{}
	}
	for k := range tx.overlay {
		if k.collection == collection {
			ids[k.id] = struct{}{}
		}
	}

	var docs []Document
	for id := range ids {
		fields, ok := tx.lookup(docKey{collection, id})
		if !ok || !matches(fields, q.Where) {
			continue
		}
		docs = append(docs, Document{ID: id, Fields: fields.Clone()})
	}

	sort.Slice(docs, func(i, j int) bool {
		if q.OrderBy != "" {
			c := compareValues(docs[i].Fields[q.OrderBy], docs[j].Fields[q.OrderBy])
			if c != 0 {
				if q.Descending {
					return c > 0
				}
				return c < 0
			}
		}
		return docs[i].ID < docs[j].ID
	})

	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs, nil
}

func matches(fields Fields, filters []Filter) bool {
	for _, f := range filters {
		v, ok := fields[f.Field]
		if !ok || !equalValues(v, f.Value) {
			return false
		}
	}
	return true
}

func (tx *memoryTx) Create(_ context.Context, collection, id string, fields Fields) error {
	k := docKey{collection, id}
	if _, ok := tx.lookup(k); ok {
		return ErrAlreadyExists
	}
	tx.put(k, fields.Clone())
	return nil
}

func (tx *memoryTx) Set(_ context.Context, collection, id string, fields Fields) error {
	tx.put(docKey{collection, id}, fields.Clone())
	return nil
}

func (tx *memoryTx) Update(_ context.Context, collection, id string, fields Fields) error {
	k := docKey{collection, id}
	current, ok := tx.lookup(k)
	if !ok {
		return ErrNotFound
	}
	tx.put(k, current.Merge(fields))
	return nil
}

func (tx *memoryTx) Increment(_ context.Context, collection, id, field string, delta int64) error {
	k := docKey{collection, id}
	current, ok := tx.lookup(k)
	if !ok {
		return ErrNotFound
	}
	tx.put(k, current.Merge(Fields{field: current.Int(field) + delta}))
	return nil
}

func (tx *memoryTx) Delete(_ context.Context, collection, id string) error {
	tx.put(docKey{collection, id}, nil)
	return nil
}
