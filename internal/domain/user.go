package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for user operations.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already in use")
)

// UserProfile represents a registered user's identity and preferences.
// Preferences are the categories the user is subscribed to; MaxDistanceKm
// bounds the nearby feed.
// swagger:model UserProfile
type UserProfile struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	PasswordHash  string    `json:"-"`
	Salt          string    `json:"-"`
	PhotoURL      *string   `json:"photo_url,omitempty"`
	Preferences   []string  `json:"preferences"`
	MaxDistanceKm *float64  `json:"max_distance_km,omitempty"`
	PushToken     *string   `json:"push_token,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UserProfileUpdate carries the mutable profile fields for a partial
// update. Nil fields are left unchanged.
type UserProfileUpdate struct {
	Name          *string
	PhotoURL      *string
	Preferences   *[]string
	MaxDistanceKm *float64
	PushToken     *string
}

// PasswordHasher handles salt generation, hashing, and verification.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// UserRepository defines the interface for user storage.
type UserRepository interface {
	Create(ctx context.Context, user *UserProfile) error
	GetByID(ctx context.Context, id string) (*UserProfile, error)
	GetByEmail(ctx context.Context, email string) (*UserProfile, error)
	ListByIDs(ctx context.Context, ids []string) ([]*UserProfile, error)
	Update(ctx context.Context, userID string, upd UserProfileUpdate) (*UserProfile, error)
}

// AuthService handles signup and login.
type AuthService interface {
	SignUp(ctx context.Context, email, password, name string) (*UserProfile, error)
	Login(ctx context.Context, email, password string) (token string, err error)
}

// UserService handles profile reads and updates for the current user.
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, upd UserProfileUpdate) (*UserProfile, error)
}
