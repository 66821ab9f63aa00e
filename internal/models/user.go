package models

import "time"

// User is a profile, keyed by its handle. UserID is the id the auth provider
// knows the account by.
type User struct {
	Handle    string    `json:"handle"`
	Email     string    `json:"email"`
	UserID    string    `json:"userId"`
	ImageURL  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
	Bio       string    `json:"bio,omitempty"`
	Website   string    `json:"website,omitempty"`
	Location  string    `json:"location,omitempty"`
}

// Identity is the caller of an authenticated request.
type Identity struct {
	Handle   string
	UserID   string
	ImageURL string
}

// OwnProfile is what an authenticated user sees about themselves.
type OwnProfile struct {
	Credentials   User           `json:"credentials"`
	Likes         []Like         `json:"likes"`
	Notifications []Notification `json:"notifications"`
}

// UserProfile is the public view of a user.
type UserProfile struct {
	User  User   `json:"user"`
	Posts []Post `json:"posts"`
}

type SignupRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	Handle          string `json:"handle" validate:"required,handle"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserDetailsRequest carries the optional profile fields a user can edit.
type UserDetailsRequest struct {
	Bio      string `json:"bio" validate:"max=500"`
	Website  string `json:"website" validate:"max=200"`
	Location string `json:"location" validate:"max=100"`
}

// AuthResponse carries the token issued on signup and login.
type AuthResponse struct {
	Token string `json:"token"`
}
