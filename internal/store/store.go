// Package store is the document database the rest of the backend talks to.
// Backends (Firestore, MongoDB, in-memory) differ only in how they honour the
// contract below.
package store

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	ErrNotFound      = errors.New("document not found")
	ErrAlreadyExists = errors.New("document already exists")
)

// Document is a stored record and the id it is stored under.
type Document struct {
	ID     string
	Fields Fields
}

// Filter is an equality match on a single field.
type Filter struct {
	Field string
	Value interface{}
}

// Query selects documents of one collection. A zero Limit means no limit.
type Query struct {
	Where      []Filter
	OrderBy    string
	Descending bool
	Limit      int
}

// Where starts a query with a single equality filter.
func Where(field string, value interface{}) Query {
	return Query{Where: []Filter{{Field: field, Value: value}}}
}

// And adds another equality filter.
func (q Query) And(field string, value interface{}) Query {
	q.Where = append(append([]Filter(nil), q.Where...), Filter{Field: field, Value: value})
	return q
}

// Newest orders the result by field, most recent first.
func (q Query) Newest(field string) Query {
	q.OrderBy = field
	q.Descending = true
	return q
}

// First limits the result to n documents.
func (q Query) First(n int) Query {
	q.Limit = n
	return q
}

// Reader is the read half of a store or transaction.
type Reader interface {
	// Get returns ErrNotFound when the document does not exist.
	Get(ctx context.Context, collection, id string) (*Document, error)
	Query(ctx context.Context, collection string, q Query) ([]Document, error)
}

// Writer is the write half of a store or transaction.
type Writer interface {
	// Create inserts a document only if id is unused, otherwise it fails with
	// ErrAlreadyExists.
	Create(ctx context.Context, collection, id string, fields Fields) error
	// Set writes the whole document, creating or replacing it.
	Set(ctx context.Context, collection, id string, fields Fields) error
	// Update merges fields into an existing document, ErrNotFound otherwise.
	Update(ctx context.Context, collection, id string, fields Fields) error
	// Increment atomically adds delta to a numeric field.
	Increment(ctx context.Context, collection, id, field string, delta int64) error
	// Delete removes a document. Deleting a missing document is not an error.
	Delete(ctx context.Context, collection, id string) error
}

// Tx is the view a transaction function gets. All reads must happen before
// the first write.
type Tx interface {
	Reader
	Writer
}

// TxFunc is run by RunTransaction. It may be invoked more than once when the
// backend retries on contention, so it must not have side effects outside tx.
type TxFunc func(ctx context.Context, tx Tx) error

type Store interface {
	Tx

	// RunTransaction commits every write fn made atomically, or none of them
	// if fn or the commit fails. It is the only compare-and-update primitive
	// the store offers.
	RunTransaction(ctx context.Context, fn TxFunc) error

	Close() error
}

// NewID generates a document id.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// IsNotFound reports whether err means the document does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists reports whether err means a conditional insert lost.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}
