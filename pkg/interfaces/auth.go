package interfaces

import (
	"context"
	"strings"
	"time"
)

// AuthSession describes an authenticated session held by the remote backend.
type AuthSession struct {
	UserID      string
	Email       string
	AccessToken string
	ExpiresAt   time.Time
}

// Valid reports whether the session carries a token that has not expired at now.
// A zero ExpiresAt is treated as non-expiring.
func (s *AuthSession) Valid(now time.Time) bool {
	if s == nil || strings.TrimSpace(s.AccessToken) == "" {
		return false
	}
	if s.ExpiresAt.IsZero() {
		return true
	}
	return now.Before(s.ExpiresAt)
}

// AuthEventType enumerates auth state transitions reported by a backend.
type AuthEventType string

const (
	AuthEventSignedIn        AuthEventType = "SIGNED_IN"
	AuthEventSignedOut       AuthEventType = "SIGNED_OUT"
	AuthEventTokenRefreshed  AuthEventType = "TOKEN_REFRESHED"
	AuthEventSessionExpired  AuthEventType = "SESSION_EXPIRED"
	AuthEventInitialSession  AuthEventType = "INITIAL_SESSION"
	AuthEventSessionReplaced AuthEventType = "SESSION_REPLACED"
)

// AuthEvent is delivered to auth state listeners. Session is nil once signed out.
type AuthEvent struct {
	Type    AuthEventType
	Session *AuthSession
}

// AuthBackend brokers credentials against the hosted backend and reports
// out-of-band session changes (expiry, sign-in from another client).
type AuthBackend interface {
	// SignInWithPassword exchanges credentials for a session. The returned error
	// message is expected to be human readable.
	SignInWithPassword(ctx context.Context, identifier, secret string) (*AuthSession, error)
	// SignOut invalidates the current session.
	SignOut(ctx context.Context) error
	// CurrentSession returns the active session or nil when there is none.
	CurrentSession(ctx context.Context) (*AuthSession, error)
	// OnAuthStateChange registers fn for every auth transition and returns a
	// function that removes the registration.
	OnAuthStateChange(fn func(AuthEvent)) (unsubscribe func())
}
