// Package apperrors defines the error kinds handlers report to clients and
// how each kind is rendered over HTTP.
package apperrors

import (
	"net/http"

	"github.com/anonto42/socialape/backend/pkg/log"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Status is the HTTP status code a kind is reported with.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindUnauthorized, KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure. Field is the key the message is reported
// under in the response body; it defaults to "error".
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Details map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// WithField sets the response key the message is reported under.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// Body is the JSON body sent to the client.
func (e *Error) Body() map[string]string {
	if len(e.Details) > 0 {
		return e.Details
	}
	field := e.Field
	if field == "" {
		field = "error"
	}
	return map[string]string{field: e.Message}
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Validation(msg string) *Error { return newError(KindValidation, msg, nil) }

// ValidationFields reports one message per offending input field.
func ValidationFields(details map[string]string) *Error {
	e := newError(KindValidation, "invalid input", nil)
	e.Details = details
	return e
}

func Unauthorized(msg string, err error) *Error { return newError(KindUnauthorized, msg, err) }
func Forbidden(msg string) *Error               { return newError(KindForbidden, msg, nil) }
func NotFound(msg string) *Error                { return newError(KindNotFound, msg, nil) }
func Conflict(msg string) *Error                { return newError(KindConflict, msg, nil) }

// Internal wraps an unexpected store or provider failure.
func Internal(err error) *Error {
	return newError(KindInternal, "Internal server error", err)
}

// KindOf classifies err; unclassified errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPErrorHandler renders classified errors with their status and body and
// hides the cause of anything unclassified.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		status int
		body   interface{}
	)

	var appErr *Error
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		status = appErr.Kind.Status()
		body = appErr.Body()
		if appErr.Kind == KindInternal {
			log.Log.WithError(err).Error("internal error")
		}
	case errors.As(err, &httpErr):
		status = httpErr.Code
		body = map[string]interface{}{"error": httpErr.Message}
	default:
		log.Log.WithError(err).Error("unclassified error")
		status = http.StatusInternalServerError
		body = map[string]string{"error": "Internal server error"}
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, body)
	}
	if writeErr != nil {
		log.Log.WithError(writeErr).Error("failed to write error response")
	}
}
