package middleware

import (
	"context"
	"strings"

	"github.com/anonto42/socialape/backend/internal/apperrors"
	"github.com/anonto42/socialape/backend/internal/auth"
	"github.com/anonto42/socialape/backend/internal/models"
	"github.com/anonto42/socialape/backend/internal/repositories"
	"github.com/anonto42/socialape/backend/internal/store"
	"github.com/anonto42/socialape/backend/pkg/log"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const identityKey = "identity"

// Authenticator resolves bearer tokens to the profile of the caller.
type Authenticator struct {
	provider auth.Provider
	users    *repositories.UserRepository
}

func NewAuthenticator(provider auth.Provider, db store.Store) *Authenticator {
	return &Authenticator{provider: provider, users: repositories.NewUserRepository(db)}
}

// Authenticate verifies the token in an Authorization header and looks up the
// profile linked to its subject. A valid token without a profile is reported
// as Unauthorized with the ProfileMissing message.
func (a *Authenticator) Authenticate(ctx context.Context, header string) (models.Identity, error) {
	token, err := bearerToken(header)
	if err != nil {
		return models.Identity{}, apperrors.Unauthorized("Unauthorized", err)
	}

	uid, err := a.provider.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return models.Identity{}, apperrors.Unauthorized("Unauthorized", err)
		}
		return models.Identity{}, apperrors.Internal(err)
	}

	user, err := a.users.GetByUserID(ctx, uid)
	if err != nil {
		if store.IsNotFound(err) {
			log.Log.WithField("userId", uid).Warn("verified token has no profile")
			return models.Identity{}, apperrors.Unauthorized("ProfileMissing", err)
		}
		return models.Identity{}, apperrors.Internal(err)
	}

	return models.Identity{Handle: user.Handle, UserID: user.UserID, ImageURL: user.ImageURL}, nil
}

// Middleware rejects requests that do not authenticate and stores the
// caller's identity in the context otherwise.
func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, err := a.Authenticate(c.Request().Context(), c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return err
			}
			c.Set(identityKey, identity)
			return next(c)
		}
	}
}

// CurrentIdentity returns the identity Middleware stored for the request.
func CurrentIdentity(c echo.Context) (models.Identity, bool) {
	identity, ok := c.Get(identityKey).(models.Identity)
	return identity, ok
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("authorization header is missing")
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", errors.New("authorization header must be in Bearer format")
	}
	return parts[1], nil
}
