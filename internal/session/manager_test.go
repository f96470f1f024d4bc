package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-estate/internal/auth"
	"github.com/goliatone/go-estate/pkg/interfaces"
)

type stubBackend struct {
	signInErr    error
	signOutErr   error
	currentErr   error
	current      *interfaces.AuthSession
	listener     func(interfaces.AuthEvent)
	unsubscribed int
}

func (s *stubBackend) SignInWithPassword(context.Context, string, string) (*interfaces.AuthSession, error) {
	if s.signInErr != nil {
		return nil, s.signInErr
	}
	return &interfaces.AuthSession{Email: "admin@example.com", AccessToken: "tok"}, nil
}

func (s *stubBackend) SignOut(context.Context) error { return s.signOutErr }

func (s *stubBackend) CurrentSession(context.Context) (*interfaces.AuthSession, error) {
	return s.current, s.currentErr
}

func (s *stubBackend) OnAuthStateChange(fn func(interfaces.AuthEvent)) func() {
	s.listener = fn
	return func() { s.unsubscribed++ }
}

func TestNewManagerRequiresBackend(t *testing.T) {
	if _, err := NewManager(nil); !errors.Is(err, ErrBackendRequired) {
		t.Fatalf("expected ErrBackendRequired, got %v", err)
	}
}

func TestSignInSetsPrivileged(t *testing.T) {
	backend := auth.NewMemoryBackend(auth.WithAccount("admin@example.com", "pw"))
	m, err := NewManager(backend)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	if err := m.SignIn(context.Background(), "admin@example.com", "pw"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if !m.IsPrivileged() {
		t.Fatal("expected privileged after sign in")
	}
}

func TestSignInFailureCarriesBackendMessage(t *testing.T) {
	backend := auth.NewMemoryBackend(auth.WithAccount("admin@example.com", "pw"))
	m, _ := NewManager(backend)
	defer m.Close()

	err := m.SignIn(context.Background(), "admin@example.com", "wrong")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthError, got %T", err)
	}
	if authErr.Message != auth.ErrInvalidCredentials.Error() {
		t.Fatalf("expected backend message, got %q", authErr.Message)
	}
	if !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected error to unwrap to backend error")
	}
	if m.IsPrivileged() {
		t.Fatal("expected privileged to stay false")
	}
}

func TestSignInRejectsBlankCredentialsLocally(t *testing.T) {
	backend := &stubBackend{signInErr: errors.New("should not be called")}
	m, _ := NewManager(backend)
	defer m.Close()

	if err := m.SignIn(context.Background(), "  ", "pw"); !errors.Is(err, ErrCredentialsRequired) {
		t.Fatalf("expected ErrCredentialsRequired, got %v", err)
	}
}

func TestSignOutClearsFlagEvenWhenRemoteFails(t *testing.T) {
	backend := &stubBackend{signOutErr: errors.New("network down")}
	m, _ := NewManager(backend)
	defer m.Close()

	if err := m.SignIn(context.Background(), "admin@example.com", "pw"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	m.SignOut(context.Background())
	if m.IsPrivileged() {
		t.Fatal("expected privileged to drop after sign out")
	}
}

func TestRestoreSession(t *testing.T) {
	backend := &stubBackend{current: &interfaces.AuthSession{AccessToken: "tok", ExpiresAt: time.Now().Add(time.Hour)}}
	m, _ := NewManager(backend)
	defer m.Close()

	if !m.RestoreSession(context.Background()) || !m.IsPrivileged() {
		t.Fatal("expected restored session to be privileged")
	}

	backend.current = &interfaces.AuthSession{AccessToken: "tok", ExpiresAt: time.Now().Add(-time.Minute)}
	if m.RestoreSession(context.Background()) || m.IsPrivileged() {
		t.Fatal("expected expired session to be unprivileged")
	}

	backend.current = nil
	backend.currentErr = errors.New("backend unavailable")
	m.privileged.Store(true)
	if m.RestoreSession(context.Background()) || m.IsPrivileged() {
		t.Fatal("expected restore error to leave session unprivileged")
	}
}

func TestAuthEventsDriveFlagAndSubscribers(t *testing.T) {
	backend := auth.NewMemoryBackend(auth.WithAccount("admin@example.com", "pw"))
	m, _ := NewManager(backend)
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := m.Subscribe(ctx)

	if err := m.SignIn(ctx, "admin@example.com", "pw"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	backend.Expire()
	if m.IsPrivileged() {
		t.Fatal("expected SESSION_EXPIRED to drop privileged")
	}

	first := <-changes
	second := <-changes
	if first.Event != interfaces.AuthEventSignedIn || !first.Privileged {
		t.Fatalf("unexpected first change %+v", first)
	}
	if second.Event != interfaces.AuthEventSessionExpired || second.Privileged {
		t.Fatalf("unexpected second change %+v", second)
	}

	backend.Replace(interfaces.AuthSession{Email: "other@example.com", AccessToken: "x"})
	if !m.IsPrivileged() {
		t.Fatal("expected SESSION_REPLACED with a valid session to be privileged")
	}
}

func TestCloseUnsubscribesOnceAndClosesWatchers(t *testing.T) {
	backend := &stubBackend{}
	m, _ := NewManager(backend)
	changes := m.Subscribe(context.Background())

	m.Close()
	m.Close()

	if backend.unsubscribed != 1 {
		t.Fatalf("expected one unsubscribe, got %d", backend.unsubscribed)
	}
	if _, ok := <-changes; ok {
		t.Fatal("expected watcher channel to be closed")
	}
	if _, ok := <-m.Subscribe(context.Background()); ok {
		t.Fatal("expected subscribe after close to return a closed channel")
	}
}
