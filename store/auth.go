package store

import (
	"context"
)

type AuthEvent string

const (
	SignedIn  AuthEvent = "SIGNED_IN"
	SignedOut AuthEvent = "SIGNED_OUT"
)

// Session describes an authenticated principal as reported by the backend.
// Subject is the stable user identifier claim; Name comes from the session
// metadata and may be empty.
type Session struct {
	AccessToken string
	TokenType   string
	ExpiresAt   int64

	Subject string
	Email   string
	Name    string
}

type AuthCallback func(event AuthEvent, session *Session)

type AuthClient interface {
	SignUp(ctx context.Context, email, password, name string) (*Session, error)

	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)

	// SignOut clears the session and notifies every registered auth-state
	// subscriber with a signed-out event before returning.
	SignOut(ctx context.Context) error

	// GetSession returns the current session, or nil if signed out.
	GetSession(ctx context.Context) (*Session, error)

	// OnAuthStateChange registers the callback, schedules one asynchronous
	// notification reflecting the current state, and returns an unsubscribe
	// handle.
	OnAuthStateChange(cb AuthCallback) (unsubscribe func())
}
