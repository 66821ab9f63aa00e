package auth

import (
	"context"
	"testing"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFirebaseAccounts struct {
	created []string
	deleted []string
	tokens  map[string]string
}

func (f *fakeFirebaseAccounts) CreateUser(_ context.Context, _ *fbauth.UserToCreate) (*fbauth.UserRecord, error) {
	uid := "uid-1"
	f.created = append(f.created, uid)
	return &fbauth.UserRecord{UserInfo: &fbauth.UserInfo{UID: uid}}, nil
}

func (f *fakeFirebaseAccounts) DeleteUser(_ context.Context, uid string) error {
	f.deleted = append(f.deleted, uid)
	return nil
}

func (f *fakeFirebaseAccounts) VerifyIDToken(_ context.Context, token string) (*fbauth.Token, error) {
	uid, ok := f.tokens[token]
	if !ok {
		return nil, errors.New("token rejected")
	}
	return &fbauth.Token{UID: uid}, nil
}

func TestFirebaseSignUpRemovesAccountWhenSignInFails(t *testing.T) {
	accounts := &fakeFirebaseAccounts{}
	p := &FirebaseProvider{
		client: accounts,
		signIn: func(context.Context, string, string) (Session, error) {
			return Session{}, errors.New("identity toolkit unavailable")
		},
	}

	_, err := p.SignUp(context.Background(), "alice@example.com", "secret1")
	require.Error(t, err)
	assert.Equal(t, []string{"uid-1"}, accounts.created)
	assert.Equal(t, []string{"uid-1"}, accounts.deleted)
}

func TestFirebaseSignUp(t *testing.T) {
	accounts := &fakeFirebaseAccounts{tokens: map[string]string{"id-token": "uid-1"}}
	p := &FirebaseProvider{
		client: accounts,
		signIn: func(context.Context, string, string) (Session, error) {
			return Session{UserID: "uid-1", Token: "id-token"}, nil
		},
	}
	ctx := context.Background()

	session, err := p.SignUp(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", session.UserID)
	assert.Empty(t, accounts.deleted)

	uid, err := p.Verify(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", uid)

	_, err = p.Verify(ctx, "forged")
	assert.True(t, errors.Is(err, ErrInvalidToken))
}
