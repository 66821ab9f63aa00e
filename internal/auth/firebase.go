package auth

import (
	"context"
	"net/http"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/anonto42/socialape/backend/pkg/log"
	"github.com/pkg/errors"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// firebaseAccounts is the part of the Admin SDK auth client the provider
// uses. *fbauth.Client satisfies it.
type firebaseAccounts interface {
	CreateUser(ctx context.Context, user *fbauth.UserToCreate) (*fbauth.UserRecord, error)
	DeleteUser(ctx context.Context, uid string) error
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

type passwordSignIn func(ctx context.Context, email, password string) (Session, error)

// FirebaseProvider manages accounts with the Firebase Admin SDK. Password
// sign-in is not part of the Admin SDK, so it goes through the Identity
// Toolkit REST API with the project's web API key.
type FirebaseProvider struct {
	client firebaseAccounts
	signIn passwordSignIn
}

func NewFirebaseProvider(ctx context.Context, client *fbauth.Client, apiKey string) (*FirebaseProvider, error) {
	svc, err := identitytoolkit.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, errors.Wrap(err, "create identity toolkit client")
	}
	return &FirebaseProvider{client: client, signIn: verifyPassword(svc.Relyingparty)}, nil
}

// SignUp creates the account and signs it in. When sign-in fails the account
// is deleted again, so a failed signup never leaves an account behind.
func (p *FirebaseProvider) SignUp(ctx context.Context, email, password string) (Session, error) {
	params := (&fbauth.UserToCreate{}).Email(email).Password(password)
	record, err := p.client.CreateUser(ctx, params)
	if err != nil {
		if fbauth.IsEmailAlreadyExists(err) {
			return Session{}, ErrEmailInUse
		}
		return Session{}, errors.Wrap(err, "create firebase user")
	}

	session, err := p.signIn(ctx, email, password)
	if err != nil {
		if derr := p.DeleteAccount(ctx, record.UID); derr != nil {
			log.Log.WithError(derr).WithField("userId", record.UID).Error("failed to remove account after sign-in failure")
		}
		return Session{}, errors.Wrapf(err, "sign in new user %s", record.UID)
	}
	return session, nil
}

func (p *FirebaseProvider) SignIn(ctx context.Context, email, password string) (Session, error) {
	return p.signIn(ctx, email, password)
}

func verifyPassword(relyingParty *identitytoolkit.RelyingpartyService) passwordSignIn {
	return func(ctx context.Context, email, password string) (Session, error) {
		resp, err := relyingParty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
			Email:             email,
			Password:          password,
			ReturnSecureToken: true,
		}).Context(ctx).Do()
		if err != nil {
			var apiErr *googleapi.Error
			if errors.As(err, &apiErr) && apiErr.Code == http.StatusBadRequest {
				return Session{}, ErrInvalidCredentials
			}
			return Session{}, errors.Wrap(err, "verify password")
		}
		return Session{UserID: resp.LocalId, Token: resp.IdToken}, nil
	}
}

func (p *FirebaseProvider) Verify(ctx context.Context, token string) (string, error) {
	decoded, err := p.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", errors.Wrap(ErrInvalidToken, err.Error())
	}
	return decoded.UID, nil
}

func (p *FirebaseProvider) DeleteAccount(ctx context.Context, userID string) error {
	if err := p.client.DeleteUser(ctx, userID); err != nil && !fbauth.IsUserNotFound(err) {
		return errors.Wrap(err, "delete firebase user")
	}
	return nil
}
