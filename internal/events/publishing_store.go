package events

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/anonto42/socialape/backend/internal/store"
	"github.com/anonto42/socialape/backend/pkg/log"
	"github.com/sirupsen/logrus"
)

// PublishingStore decorates a store so that every committed write is
// published as a ChangeEvent, the way database triggers observe writes.
// Events are published after the write succeeds, never before. A failed
// publish is logged: the write itself stands.
type PublishingStore struct {
	store.Store
	publisher message.Publisher
	now       func() time.Time
}

func NewPublishingStore(inner store.Store, publisher message.Publisher) *PublishingStore {
	return &PublishingStore{Store: inner, publisher: publisher, now: time.Now}
}

func (s *PublishingStore) Create(ctx context.Context, collection, id string, fields store.Fields) error {
	if err := s.Store.Create(ctx, collection, id, fields); err != nil {
		return err
	}
	s.publish(ChangeEvent{Collection: collection, Op: OpCreated, ID: id, After: fields.Clone()})
	return nil
}

func (s *PublishingStore) Set(ctx context.Context, collection, id string, fields store.Fields) error {
	before := s.snapshot(ctx, collection, id)
	if err := s.Store.Set(ctx, collection, id, fields); err != nil {
		return err
	}
	op := OpUpdated
	if before == nil {
		op = OpCreated
	}
	s.publish(ChangeEvent{Collection: collection, Op: op, ID: id, Before: before, After: fields.Clone()})
	return nil
}

// Update reads the document before and after the write. The pair is not
// atomic with the write: a concurrent writer can slip in between.
func (s *PublishingStore) Update(ctx context.Context, collection, id string, fields store.Fields) error {
	before := s.snapshot(ctx, collection, id)
	if err := s.Store.Update(ctx, collection, id, fields); err != nil {
		return err
	}
	s.publishUpdate(ctx, collection, id, before, before.Merge(fields))
	return nil
}

func (s *PublishingStore) Increment(ctx context.Context, collection, id, field string, delta int64) error {
	before := s.snapshot(ctx, collection, id)
	if err := s.Store.Increment(ctx, collection, id, field, delta); err != nil {
		return err
	}
	s.publishUpdate(ctx, collection, id, before, before.Merge(store.Fields{field: before.Int(field) + delta}))
	return nil
}

func (s *PublishingStore) publishUpdate(ctx context.Context, collection, id string, before, fallback store.Fields) {
	after := s.snapshot(ctx, collection, id)
	if after == nil {
		after = fallback
	}
	s.publish(ChangeEvent{Collection: collection, Op: OpUpdated, ID: id, Before: before, After: after})
}

// Delete publishes only when a document was actually removed.
func (s *PublishingStore) Delete(ctx context.Context, collection, id string) error {
	before := s.snapshot(ctx, collection, id)
	if err := s.Store.Delete(ctx, collection, id); err != nil {
		return err
	}
	if before != nil {
		s.publish(ChangeEvent{Collection: collection, Op: OpDeleted, ID: id, Before: before})
	}
	return nil
}

// RunTransaction records the writes of the attempt that commits and
// publishes them once the commit succeeded.
func (s *PublishingStore) RunTransaction(ctx context.Context, fn store.TxFunc) error {
	var rec *recordingTx
	err := s.Store.RunTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		rec = newRecordingTx(tx)
		return fn(ctx, rec)
	})
	if err != nil {
		return err
	}
	if rec != nil {
		for _, e := range rec.events {
			s.publish(e)
		}
	}
	return nil
}

func (s *PublishingStore) snapshot(ctx context.Context, collection, id string) store.Fields {
	doc, err := s.Store.Get(ctx, collection, id)
	if err != nil {
		if !store.IsNotFound(err) {
			log.Log.WithError(err).WithFields(logrus.Fields{
				"collection": collection,
				"id":         id,
			}).Warn("could not read snapshot for change event")
		}
		return nil
	}
	return doc.Fields
}

func (s *PublishingStore) publish(e ChangeEvent) {
	e.At = s.now().UTC()
	entry := log.Log.WithFields(logrus.Fields{
		"topic": e.Topic(),
		"id":    e.ID,
	})

	msg, err := e.Message()
	if err != nil {
		entry.WithError(err).Error("failed to encode change event")
		return
	}
	if err := s.publisher.Publish(e.Topic(), msg); err != nil {
		entry.WithError(err).Error("failed to publish change event")
		return
	}
	entry.Debug("change event published")
}

// recordingTx passes operations through to the transaction and remembers
// what was written. Documents the transaction read serve as the Before
// snapshot of later writes, since transactions cannot read after writing.
type recordingTx struct {
	tx     store.Tx
	seen   map[string]store.Fields
	events []ChangeEvent
}

func newRecordingTx(tx store.Tx) *recordingTx {
	return &recordingTx{tx: tx, seen: make(map[string]store.Fields)}
}

func key(collection, id string) string { return collection + "/" + id }

func (r *recordingTx) Get(ctx context.Context, collection, id string) (*store.Document, error) {
	doc, err := r.tx.Get(ctx, collection, id)
	if err == nil {
		r.seen[key(collection, id)] = doc.Fields.Clone()
	}
	return doc, err
}

func (r *recordingTx) Query(ctx context.Context, collection string, q store.Query) ([]store.Document, error) {
	docs, err := r.tx.Query(ctx, collection, q)
	if err == nil {
		for _, d := range docs {
			r.seen[key(collection, d.ID)] = d.Fields.Clone()
		}
	}
	return docs, err
}

func (r *recordingTx) Create(ctx context.Context, collection, id string, fields store.Fields) error {
	if err := r.tx.Create(ctx, collection, id, fields); err != nil {
		return err
	}
	r.seen[key(collection, id)] = fields.Clone()
	r.events = append(r.events, ChangeEvent{Collection: collection, Op: OpCreated, ID: id, After: fields.Clone()})
	return nil
}

// Set inside a transaction is reported as an update when the transaction
// read the document first and as a create otherwise.
func (r *recordingTx) Set(ctx context.Context, collection, id string, fields store.Fields) error {
	if err := r.tx.Set(ctx, collection, id, fields); err != nil {
		return err
	}
	k := key(collection, id)
	before, seen := r.seen[k]
	op := OpCreated
	if seen {
		op = OpUpdated
	}
	r.seen[k] = fields.Clone()
	r.events = append(r.events, ChangeEvent{Collection: collection, Op: op, ID: id, Before: before, After: fields.Clone()})
	return nil
}

func (r *recordingTx) Update(ctx context.Context, collection, id string, fields store.Fields) error {
	if err := r.tx.Update(ctx, collection, id, fields); err != nil {
		return err
	}
	r.recordUpdate(collection, id, func(before store.Fields) store.Fields {
		return before.Merge(fields)
	})
	return nil
}

func (r *recordingTx) Increment(ctx context.Context, collection, id, field string, delta int64) error {
	if err := r.tx.Increment(ctx, collection, id, field, delta); err != nil {
		return err
	}
	r.recordUpdate(collection, id, func(before store.Fields) store.Fields {
		return before.Merge(store.Fields{field: before.Int(field) + delta})
	})
	return nil
}

func (r *recordingTx) recordUpdate(collection, id string, apply func(store.Fields) store.Fields) {
	k := key(collection, id)
	before := r.seen[k]
	after := apply(before)
	r.seen[k] = after
	r.events = append(r.events, ChangeEvent{Collection: collection, Op: OpUpdated, ID: id, Before: before, After: after})
}

func (r *recordingTx) Delete(ctx context.Context, collection, id string) error {
	if err := r.tx.Delete(ctx, collection, id); err != nil {
		return err
	}
	k := key(collection, id)
	before := r.seen[k]
	delete(r.seen, k)
	r.events = append(r.events, ChangeEvent{Collection: collection, Op: OpDeleted, ID: id, Before: before})
	return nil
}
