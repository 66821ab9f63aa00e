package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anonto42/socialape/backend/internal/apperrors"
	"github.com/anonto42/socialape/backend/internal/auth"
	"github.com/anonto42/socialape/backend/internal/models"
	"github.com/anonto42/socialape/backend/internal/repositories"
	"github.com/anonto42/socialape/backend/internal/store"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gateFixture struct {
	gate     *Authenticator
	provider *auth.LocalProvider
	db       *store.MemoryStore
}

func newGateFixture(t *testing.T) gateFixture {
	t.Helper()
	db := store.NewMemoryStore()
	provider := auth.NewLocalProvider(auth.NewMemoryAccountStore(), "secret", time.Hour)
	return gateFixture{gate: NewAuthenticator(provider, db), provider: provider, db: db}
}

func (f gateFixture) signup(t *testing.T, handle string, withProfile bool) string {
	t.Helper()
	ctx := context.Background()
	session, err := f.provider.SignUp(ctx, handle+"@example.com", "secret1")
	require.NoError(t, err)
	if withProfile {
		require.NoError(t, repositories.NewUserRepository(f.db).Create(ctx, &models.User{
			Handle:   handle,
			UserID:   session.UserID,
			ImageURL: "img/" + handle,
		}))
	}
	return session.Token
}

func TestAuthenticate(t *testing.T) {
	f := newGateFixture(t)
	token := f.signup(t, "alice", true)
	orphan := f.signup(t, "ghost", false)

	identity, err := f.gate.Authenticate(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Handle)
	assert.Equal(t, "img/alice", identity.ImageURL)

	tests := []struct {
		name    string
		header  string
		message string
	}{
		{"missing header", "", "Unauthorized"},
		{"wrong scheme", "Basic " + token, "Unauthorized"},
		{"no token", "Bearer ", "Unauthorized"},
		{"invalid token", "Bearer nope", "Unauthorized"},
		{"profile missing", "Bearer " + orphan, "ProfileMissing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.gate.Authenticate(context.Background(), tt.header)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))
			var appErr *apperrors.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.message, appErr.Message)
		})
	}
}

func TestMiddlewareSetsIdentity(t *testing.T) {
	f := newGateFixture(t)
	token := f.signup(t, "bob", true)

	e := echo.New()
	e.HTTPErrorHandler = apperrors.HTTPErrorHandler
	e.GET("/me", func(c echo.Context) error {
		identity, ok := CurrentIdentity(c)
		require.True(t, ok)
		return c.String(http.StatusOK, identity.Handle)
	}, f.gate.Middleware())

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bob", rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
}
