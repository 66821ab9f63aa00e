package services

import (
	"context"
	"io"
	"strings"

	"github.com/anonto42/socialape/backend/internal/apperrors"
	"github.com/anonto42/socialape/backend/internal/auth"
	"github.com/anonto42/socialape/backend/internal/media"
	"github.com/anonto42/socialape/backend/internal/models"
	"github.com/anonto42/socialape/backend/internal/repositories"
	"github.com/anonto42/socialape/backend/internal/store"
	"github.com/anonto42/socialape/backend/pkg/log"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// UserService signs users up and in and manages their profiles.
type UserService struct {
	db           store.Store
	provider     auth.Provider
	uploader     media.Uploader
	defaultImage string
	now          Clock
}

func NewUserService(db store.Store, provider auth.Provider, uploader media.Uploader, defaultImage string) *UserService {
	return &UserService{
		db:           db,
		provider:     provider,
		uploader:     uploader,
		defaultImage: defaultImage,
		now:          utcNow,
	}
}

func handleTaken() error {
	return apperrors.Conflict("Handle already taken").WithField("handle")
}

// Signup creates the auth account and the profile and returns a token. The
// profile is inserted only if the handle is still free; when a concurrent
// signup took it in the meantime the new account is removed again.
func (s *UserService) Signup(ctx context.Context, req models.SignupRequest) (string, error) {
	users := repositories.NewUserRepository(s.db)

	_, err := users.Get(ctx, req.Handle)
	if err == nil {
		return "", handleTaken()
	}
	if !store.IsNotFound(err) {
		return "", apperrors.Internal(err)
	}

	session, err := s.provider.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailInUse) {
			return "", apperrors.Conflict("Email is already in use").WithField("email")
		}
		return "", apperrors.Internal(err)
	}

	user := &models.User{
		Handle:    req.Handle,
		Email:     req.Email,
		UserID:    session.UserID,
		ImageURL:  s.defaultImage,
		CreatedAt: s.now(),
	}
	if err := users.Create(ctx, user); err != nil {
		s.discardAccount(ctx, session.UserID)
		if store.IsAlreadyExists(err) {
			return "", handleTaken()
		}
		return "", apperrors.Internal(err)
	}
	return session.Token, nil
}

func (s *UserService) discardAccount(ctx context.Context, userID string) {
	if err := s.provider.DeleteAccount(ctx, userID); err != nil {
		log.Log.WithError(err).WithField("userId", userID).Error("failed to remove account of aborted signup")
	}
}

// Login exchanges credentials for a token.
func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (string, error) {
	session, err := s.provider.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return "", apperrors.Unauthorized("Incorrect credentials. Please try again", err).WithField("general")
		}
		return "", apperrors.Internal(err)
	}
	return session.Token, nil
}

// GetOwnProfile returns the caller's profile, the likes they gave and their
// notifications, newest first.
func (s *UserService) GetOwnProfile(ctx context.Context, caller models.Identity) (*models.OwnProfile, error) {
	user, err := repositories.NewUserRepository(s.db).Get(ctx, caller.Handle)
	if err != nil {
		return nil, classify(userNotFound(err))
	}
	likes, err := repositories.NewLikeRepository(s.db).ListByUser(ctx, caller.Handle)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	notifications, err := repositories.NewNotificationRepository(s.db).ListForRecipient(ctx, caller.Handle)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &models.OwnProfile{Credentials: *user, Likes: likes, Notifications: notifications}, nil
}

// GetUser returns a user's public profile and posts, newest first.
func (s *UserService) GetUser(ctx context.Context, handle string) (*models.UserProfile, error) {
	user, err := repositories.NewUserRepository(s.db).Get(ctx, handle)
	if err != nil {
		return nil, classify(userNotFound(err))
	}
	posts, err := repositories.NewPostRepository(s.db).ListByUser(ctx, handle)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &models.UserProfile{User: *user, Posts: posts}, nil
}

// AddUserDetails stores the non-empty profile fields of req.
func (s *UserService) AddUserDetails(ctx context.Context, caller models.Identity, req models.UserDetailsRequest) error {
	fields := detailFields(req)
	if len(fields) == 0 {
		return nil
	}
	err := repositories.NewUserRepository(s.db).Update(ctx, caller.Handle, fields)
	return classify(userNotFound(err))
}

// detailFields trims every field, drops empty ones and gives a bare website
// a scheme.
func detailFields(req models.UserDetailsRequest) store.Fields {
	fields := store.Fields{}
	if bio := strings.TrimSpace(req.Bio); bio != "" {
		fields["bio"] = bio
	}
	if website := strings.TrimSpace(req.Website); website != "" {
		if !strings.HasPrefix(website, "http") {
			website = "http://" + website
		}
		fields["website"] = website
	}
	if location := strings.TrimSpace(req.Location); location != "" {
		fields["location"] = location
	}
	return fields
}

// UploadImage stores a new profile picture and points the caller's profile
// at it. Posts pick the new image up through the profile mirror.
func (s *UserService) UploadImage(ctx context.Context, caller models.Identity, contentType string, r io.Reader) (string, error) {
	url, err := s.uploader.Upload(ctx, contentType, r)
	if err != nil {
		if errors.Is(err, media.ErrUnsupportedType) {
			return "", apperrors.Validation("File type not supported")
		}
		return "", apperrors.Internal(err)
	}

	if err := repositories.NewUserRepository(s.db).Update(ctx, caller.Handle, store.Fields{"imageUrl": url}); err != nil {
		return "", classify(userNotFound(err))
	}
	return url, nil
}

// MarkNotificationsRead flags the caller's notifications among ids as read.
// Unknown ids and notifications addressed to someone else are skipped. It
// returns how many notifications were updated.
func (s *UserService) MarkNotificationsRead(ctx context.Context, caller models.Identity, ids []string) (int, error) {
	marked := 0
	err := s.db.RunTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		notifications := repositories.NewNotificationRepository(tx)

		var owned []string
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			n, err := notifications.Get(ctx, id)
			if err != nil {
				if store.IsNotFound(err) {
					continue
				}
				return err
			}
			if n.Recipient == caller.Handle {
				owned = append(owned, id)
			}
		}

		for _, id := range owned {
			if err := notifications.MarkRead(ctx, id); err != nil {
				return err
			}
		}
		marked = len(owned)
		return nil
	})
	if err != nil {
		log.Log.WithError(err).WithFields(logrus.Fields{"handle": caller.Handle}).Error("failed to mark notifications read")
		return 0, classify(err)
	}
	return marked, nil
}

func userNotFound(err error) error {
	if store.IsNotFound(err) {
		return apperrors.NotFound("User not found")
	}
	return err
}
