package auth

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var ErrAccountNotFound = errors.New("account not found")

// Account is a locally managed login.
type Account struct {
	ID           string `gorm:"primaryKey;size:64"`
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
}

// AccountStore persists accounts for the LocalProvider.
type AccountStore interface {
	// Create fails with ErrEmailInUse when the email is taken.
	Create(ctx context.Context, account *Account) error
	// GetByEmail returns ErrAccountNotFound when no account has the email.
	GetByEmail(ctx context.Context, email string) (*Account, error)
	Delete(ctx context.Context, id string) error
}

// PostgresAccountStore keeps accounts in PostgreSQL. The unique index on
// email makes concurrent signups with the same address lose cleanly.
type PostgresAccountStore struct {
	db *gorm.DB
}

// NewPostgresAccountStore migrates the accounts table and returns the store.
func NewPostgresAccountStore(db *gorm.DB) (*PostgresAccountStore, error) {
	if err := db.AutoMigrate(&Account{}); err != nil {
		return nil, errors.Wrap(err, "migrate accounts")
	}
	return &PostgresAccountStore{db: db}, nil
}

func (s *PostgresAccountStore) Create(ctx context.Context, account *Account) error {
	err := s.db.WithContext(ctx).Create(account).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailInUse
	}
	return errors.Wrap(err, "create account")
}

func (s *PostgresAccountStore) GetByEmail(ctx context.Context, email string) (*Account, error) {
	var account Account
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, errors.Wrap(err, "get account")
	}
	return &account, nil
}

func (s *PostgresAccountStore) Delete(ctx context.Context, id string) error {
	return errors.Wrap(s.db.WithContext(ctx).Delete(&Account{}, "id = ?", id).Error, "delete account")
}

// MemoryAccountStore keeps accounts in process memory.
type MemoryAccountStore struct {
	mu       sync.Mutex
	accounts map[string]Account
}

func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{accounts: make(map[string]Account)}
}

func (s *MemoryAccountStore) Create(_ context.Context, account *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Email == account.Email {
			return ErrEmailInUse
		}
	}
	account.CreatedAt = time.Now()
	s.accounts[account.ID] = *account
	return nil
}

func (s *MemoryAccountStore) GetByEmail(_ context.Context, email string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Email == email {
			found := a
			return &found, nil
		}
	}
	return nil, ErrAccountNotFound
}

func (s *MemoryAccountStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, id)
	return nil
}
