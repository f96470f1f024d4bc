package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-estate/pkg/interfaces"
)

// MemoryBackend is an in-process AuthBackend with a fixed set of accounts.
type MemoryBackend struct {
	mu        sync.Mutex
	accounts  map[string]string
	session   *interfaces.AuthSession
	ttl       time.Duration
	now       func() time.Time
	listeners *Listeners
}

// MemoryOption configures a MemoryBackend.
type MemoryOption func(*MemoryBackend)

// WithAccount registers an email/password pair.
func WithAccount(email, password string) MemoryOption {
	return func(b *MemoryBackend) {
		b.accounts[normalizeEmail(email)] = password
	}
}

// WithMemorySessionTTL bounds issued sessions. Zero issues non-expiring sessions.
func WithMemorySessionTTL(ttl time.Duration) MemoryOption {
	return func(b *MemoryBackend) {
		b.ttl = ttl
	}
}

// WithMemoryClock overrides the clock used to stamp expiries.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(b *MemoryBackend) {
		if now != nil {
			b.now = now
		}
	}
}

func NewMemoryBackend(opts ...MemoryOption) *MemoryBackend {
	b := &MemoryBackend{
		accounts:  make(map[string]string),
		now:       time.Now,
		listeners: NewListeners(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var _ interfaces.AuthBackend = (*MemoryBackend)(nil)

func (b *MemoryBackend) SignInWithPassword(_ context.Context, identifier, secret string) (*interfaces.AuthSession, error) {
	email := normalizeEmail(identifier)
	if email == "" || secret == "" {
		return nil, ErrCredentialsMissing
	}

	b.mu.Lock()
	password, ok := b.accounts[email]
	if !ok || password != secret {
		b.mu.Unlock()
		return nil, ErrInvalidCredentials
	}
	session := &interfaces.AuthSession{
		UserID:      uuid.NewString(),
		Email:       email,
		AccessToken: uuid.NewString(),
	}
	if b.ttl > 0 {
		session.ExpiresAt = b.now().Add(b.ttl)
	}
	b.session = session
	b.mu.Unlock()

	b.listeners.Emit(interfaces.AuthEvent{Type: interfaces.AuthEventSignedIn, Session: cloneSession(session)})
	return cloneSession(session), nil
}

func (b *MemoryBackend) SignOut(context.Context) error {
	b.mu.Lock()
	b.session = nil
	b.mu.Unlock()

	b.listeners.Emit(interfaces.AuthEvent{Type: interfaces.AuthEventSignedOut})
	return nil
}

func (b *MemoryBackend) CurrentSession(context.Context) (*interfaces.AuthSession, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.session.Valid(b.now()) {
		return nil, nil
	}
	return cloneSession(b.session), nil
}

func (b *MemoryBackend) OnAuthStateChange(fn func(interfaces.AuthEvent)) func() {
	return b.listeners.Add(fn)
}

// Expire drops the current session and reports SESSION_EXPIRED, as a hosted
// backend does when a token lapses.
func (b *MemoryBackend) Expire() {
	b.mu.Lock()
	b.session = nil
	b.mu.Unlock()
	b.listeners.Emit(interfaces.AuthEvent{Type: interfaces.AuthEventSessionExpired})
}

// Replace installs session as if another client signed in and reports
// SESSION_REPLACED.
func (b *MemoryBackend) Replace(session interfaces.AuthSession) {
	b.mu.Lock()
	b.session = cloneSession(&session)
	b.mu.Unlock()
	b.listeners.Emit(interfaces.AuthEvent{Type: interfaces.AuthEventSessionReplaced, Session: cloneSession(&session)})
}

func cloneSession(s *interfaces.AuthSession) *interfaces.AuthSession {
	if s == nil {
		return nil
	}
	cloned := *s
	return &cloned
}

func normalizeEmail(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
