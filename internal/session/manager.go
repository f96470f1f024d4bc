package session

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-estate/internal/logging"
	"github.com/goliatone/go-estate/pkg/interfaces"
)

// Manager tracks whether the current process holds a privileged (staff)
// session. The flag follows the backend's auth events from construction
// until Close.
type Manager struct {
	backend     interfaces.AuthBackend
	logger      interfaces.Logger
	now         func() time.Time
	privileged  atomic.Bool
	changes     *changeBroadcaster
	unsubscribe func()
	closeOnce   sync.Once
}

// Option configures a Manager.
type Option func(*Manager)

func WithLogger(logger interfaces.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager subscribes to backend auth events and returns the manager.
func NewManager(backend interfaces.AuthBackend, opts ...Option) (*Manager, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	m := &Manager{
		backend: backend,
		logger:  logging.NoOp(),
		now:     time.Now,
		changes: newChangeBroadcaster(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.unsubscribe = backend.OnAuthStateChange(m.handleEvent)
	return m, nil
}

// IsPrivileged reports whether a valid staff session is held.
func (m *Manager) IsPrivileged() bool {
	return m.privileged.Load()
}

// SignIn exchanges credentials for a session. Failures leave the privileged
// flag untouched and are returned as *AuthError.
func (m *Manager) SignIn(ctx context.Context, identifier, secret string) error {
	if strings.TrimSpace(identifier) == "" || strings.TrimSpace(secret) == "" {
		return &AuthError{Message: "Email and password are required.", Err: ErrCredentialsRequired}
	}

	session, err := m.backend.SignInWithPassword(ctx, strings.TrimSpace(identifier), secret)
	if err != nil {
		m.logger.Info("session.sign_in.failed", "error", err)
		return &AuthError{Message: err.Error(), Err: err}
	}
	if !session.Valid(m.now()) {
		m.logger.Warn("session.sign_in.invalid_session")
		return &AuthError{Message: ErrNoSession.Error(), Err: ErrNoSession}
	}

	m.privileged.Store(true)
	m.logger.Info("session.sign_in.succeeded", "user", session.Email)
	return nil
}

// SignOut ends the remote session. The local flag is always cleared; a remote
// failure is only logged.
func (m *Manager) SignOut(ctx context.Context) {
	if err := m.backend.SignOut(ctx); err != nil {
		m.logger.Warn("session.sign_out.remote_failed", "error", err)
	}
	m.privileged.Store(false)
}

// RestoreSession derives the flag from the backend's current session and
// returns it. Backend errors are logged and count as not privileged.
func (m *Manager) RestoreSession(ctx context.Context) bool {
	session, err := m.backend.CurrentSession(ctx)
	if err != nil {
		m.logger.Warn("session.restore.failed", "error", err)
		m.privileged.Store(false)
		return false
	}
	valid := session.Valid(m.now())
	m.privileged.Store(valid)
	m.logger.Debug("session.restore.completed", "privileged", valid)
	return valid
}

// Subscribe streams a Change for every backend auth event until ctx is done
// or the manager is closed. Slow watchers miss changes rather than block.
func (m *Manager) Subscribe(ctx context.Context) <-chan Change {
	return m.changes.subscribe(ctx)
}

// Close stops listening to the backend and closes every watcher. It is safe
// to call more than once.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		if m.unsubscribe != nil {
			m.unsubscribe()
		}
		m.changes.close()
	})
}

func (m *Manager) handleEvent(evt interfaces.AuthEvent) {
	var privileged bool
	switch evt.Type {
	case interfaces.AuthEventSignedOut, interfaces.AuthEventSessionExpired:
		privileged = false
	default:
		privileged = evt.Session.Valid(m.now())
	}
	m.privileged.Store(privileged)
	m.logger.Debug("session.auth_event", "event", string(evt.Type), "privileged", privileged)
	m.changes.broadcast(Change{Event: evt.Type, Privileged: privileged})
}
