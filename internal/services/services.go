// Package services holds the request-side business rules: posts, engagement
// and user profiles. Every read-then-write sequence runs in a store
// transaction.
package services

import (
	"time"

	"github.com/anonto42/socialape/backend/internal/apperrors"
	"github.com/anonto42/socialape/backend/internal/store"
	"github.com/pkg/errors"
)

// Clock returns the current time. Services stamp documents with it.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

// classify passes classified errors through and maps store failures onto the
// closest kind.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.Internal(err)
}

func postNotFound(err error) error {
	if store.IsNotFound(err) {
		return apperrors.NotFound("Post not found")
	}
	return err
}
