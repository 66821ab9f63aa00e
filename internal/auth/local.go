package auth

import (
	"context"
	"strings"
	"time"

	"github.com/anonto42/socialape/backend/internal/store"
	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// Claims are the custom claims of a locally issued token.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// LocalProvider keeps accounts in an AccountStore with bcrypt password hashes
// and issues HS256 JWTs.
type LocalProvider struct {
	accounts AccountStore
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func NewLocalProvider(accounts AccountStore, secret string, ttl time.Duration) *LocalProvider {
	return &LocalProvider{
		accounts: accounts,
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (p *LocalProvider) SignUp(ctx context.Context, email, password string) (Session, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, errors.Wrap(err, "hash password")
	}

	account := &Account{
		ID:           store.NewID(),
		Email:        normalizeEmail(email),
		PasswordHash: string(hash),
	}
	if err := p.accounts.Create(ctx, account); err != nil {
		return Session{}, err
	}
	return p.issue(account)
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (Session, error) {
	account, err := p.accounts.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	return p.issue(account)
}

func (p *LocalProvider) Verify(_ context.Context, tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return "", errors.Wrap(ErrInvalidToken, err.Error())
	}
	if !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

func (p *LocalProvider) DeleteAccount(ctx context.Context, userID string) error {
	return p.accounts.Delete(ctx, userID)
}

func (p *LocalProvider) issue(account *Account) (Session, error) {
	now := p.now()
	claims := &Claims{
		UserID: account.ID,
		Email:  account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return Session{}, errors.Wrap(err, "sign token")
	}
	return Session{UserID: account.ID, Token: signed}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
