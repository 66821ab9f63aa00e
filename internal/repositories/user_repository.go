package repositories

import (
	"context"

	"github.com/anonto42/socialape/backend/internal/models"
	"github.com/anonto42/socialape/backend/internal/store"
)

// UserRepository reads and writes user profiles through a store or a
// transaction. Profiles are keyed by handle.
type UserRepository struct {
	db store.Tx
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db store.Tx) *UserRepository {
	return &UserRepository{db: db}
}

// Create stores a new profile. It fails with store.ErrAlreadyExists when the
// handle is taken.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.Create(ctx, UsersCollection, user.Handle, userFields(user))
}

// Get returns store.ErrNotFound when no user has the handle.
func (r *UserRepository) Get(ctx context.Context, handle string) (*models.User, error) {
	doc, err := r.db.Get(ctx, UsersCollection, handle)
	if err != nil {
		return nil, err
	}
	user := userFromDocument(*doc)
	return &user, nil
}

// GetByUserID finds the profile linked to an auth account, or returns
// store.ErrNotFound.
func (r *UserRepository) GetByUserID(ctx context.Context, userID string) (*models.User, error) {
	docs, err := r.db.Query(ctx, UsersCollection, store.Where("userId", userID).First(1))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, store.ErrNotFound
	}
	user := userFromDocument(docs[0])
	return &user, nil
}

// Update merges fields into the profile.
func (r *UserRepository) Update(ctx context.Context, handle string, fields store.Fields) error {
	return r.db.Update(ctx, UsersCollection, handle, fields)
}

func userFields(u *models.User) store.Fields {
	f := store.Fields{
		"handle":    u.Handle,
		"email":     u.Email,
		"userId":    u.UserID,
		"imageUrl":  u.ImageURL,
		"createdAt": u.CreatedAt,
	}
	for k, v := range map[string]string{"bio": u.Bio, "website": u.Website, "location": u.Location} {
		if v != "" {
			f[k] = v
		}
	}
	return f
}

func userFromDocument(doc store.Document) models.User {
	f := doc.Fields
	return models.User{
		Handle:    doc.ID,
		Email:     f.String("email"),
		UserID:    f.String("userId"),
		ImageURL:  f.String("imageUrl"),
		CreatedAt: f.Time("createdAt"),
		Bio:       f.String("bio"),
		Website:   f.String("website"),
		Location:  f.String("location"),
	}
}
