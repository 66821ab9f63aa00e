package store

import "context"

// Batch collects writes and commits them all-or-nothing. It is built on
// RunTransaction, so it does not block concurrent readers from seeing the
// state before the commit.
type Batch struct {
	store Store
	ops   []func(ctx context.Context, tx Tx) error
}

func NewBatch(s Store) *Batch {
	return &Batch{store: s}
}

func (b *Batch) Update(collection, id string, fields Fields) {
	b.ops = append(b.ops, func(ctx context.Context, tx Tx) error {
		return tx.Update(ctx, collection, id, fields)
	})
}

func (b *Batch) Delete(collection, id string) {
	b.ops = append(b.ops, func(ctx context.Context, tx Tx) error {
		return tx.Delete(ctx, collection, id)
	})
}

// Len is the number of writes queued.
func (b *Batch) Len() int { return len(b.ops) }

// Commit applies every queued write. An empty batch is a no-op.
func (b *Batch) Commit(ctx context.Context) error {
	if len(b.ops) == 0 {
		return nil
	}
	return b.store.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		for _, op := range b.ops {
			if err := op(ctx, tx); err != nil {
				return err
			}
		}
		return nil
	})
}
