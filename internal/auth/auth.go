package auth

import (
	"context"
	"errors"

	"github.com/taskdeck/taskdeck/internal/models"
)

// Session is an authenticated user session
type Session struct {
	User models.User
}

// Provider is the identity provider contract: email/password sign-in and
// sign-up, session retrieval, sign-out and session-change notifications.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	Register(ctx context.Context, user models.User, password string) (*Session, error)
	CurrentSession(ctx context.Context) (*Session, error)
	UpdateProfile(ctx context.Context, user models.User) error
	SignOut(ctx context.Context) error
	// OnSessionChange registers fn to run on sign-in, sign-out and profile
	// updates. The returned func removes the registration.
	OnSessionChange(fn func(*Session)) func()
}

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("an account with this email already exists")
)
