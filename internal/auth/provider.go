// Package auth issues and verifies the identity tokens requests are
// authenticated with. Profiles live in the document store; this package only
// knows accounts: an email, a password and a stable user id.
package auth

import (
	"context"

	"github.com/pkg/errors"
)

var (
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// Session is what a successful signup or login hands back to the client.
type Session struct {
	UserID string
	Token  string
}

// Provider is an identity provider.
type Provider interface {
	// SignUp creates an account. It fails with ErrEmailInUse when the email
	// belongs to another account.
	SignUp(ctx context.Context, email, password string) (Session, error)
	// SignIn fails with ErrInvalidCredentials on a bad email/password pair.
	SignIn(ctx context.Context, email, password string) (Session, error)
	// Verify returns the user id a token was issued to, or ErrInvalidToken.
	Verify(ctx context.Context, token string) (string, error)
	DeleteAccount(ctx context.Context, userID string) error
}
